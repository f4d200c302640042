package client

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"gnsnode/internal/gossip"
	"gnsnode/internal/identity"

	"github.com/pkg/errors"
)

const maxErrorBody = 4 << 10

// HTTPClient reaches a peer node's /sync surface over plain HTTP.
type HTTPClient struct {
	client *http.Client
}

func NewHTTPClient(timeout time.Duration) *HTTPClient {
	return &HTTPClient{client: &http.Client{Timeout: timeout}}
}

func (c *HTTPClient) Pull(ctx context.Context, peer string, entity identity.EntityType, since time.Time, limit int) (*gossip.PullResultDTO, error) {
	q := url.Values{}
	if !since.IsZero() {
		q.Set("since", since.UTC().Format(time.RFC3339Nano))
	}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	endpoint := strings.TrimRight(peer, "/") + "/sync/" + string(entity)
	if len(q) > 0 {
		endpoint += "?" + q.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, errors.Wrap(err, "gossipClient.Pull.NewRequest: ")
	}
	res := new(gossip.PullResultDTO)
	if err := c.do(req, res); err != nil {
		return nil, errors.Wrap(err, "gossipClient.Pull: ")
	}
	return res, nil
}

func (c *HTTPClient) Push(ctx context.Context, peer string, cmd gossip.PushCommand) (*gossip.PushResultDTO, error) {
	body, err := json.Marshal(cmd)
	if err != nil {
		return nil, errors.Wrap(err, "gossipClient.Push.Marshal: ")
	}
	endpoint := strings.TrimRight(peer, "/") + "/sync/push"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, errors.Wrap(err, "gossipClient.Push.NewRequest: ")
	}
	req.Header.Set("Content-Type", "application/json")
	res := new(gossip.PushResultDTO)
	if err := c.do(req, res); err != nil {
		return nil, errors.Wrap(err, "gossipClient.Push: ")
	}
	return res, nil
}

func (c *HTTPClient) do(req *http.Request, out any) error {
	req.Header.Set("Accept", "application/json")
	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return errors.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.Wrap(err, "decode response")
	}
	return nil
}
