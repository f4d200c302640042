// Package settlement credits the welcome grant that follows a first handle
// claim. The settlement system is an external collaborator reached over HTTP.
package settlement

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"gnsnode/config"
	"gnsnode/internal/identity"
	"gnsnode/pkg/logger"

	"github.com/pkg/errors"
)

type grantRequest struct {
	Handle    string `json:"handle"`
	PublicKey string `json:"public_key"`
}

type HTTPGranter struct {
	url    string
	client *http.Client
	logger logger.Logger
}

// LogGranter stands in when no settlement endpoint is configured.
type LogGranter struct {
	logger logger.Logger
}

// NewGranter returns an HTTP granter, or a log-only one when cfg.URL is empty.
func NewGranter(cfg config.Settlement, logger logger.Logger) identity.Granter {
	logger = logger.With("component", "settlement")
	if cfg.URL == "" {
		return &LogGranter{logger: logger}
	}
	return &HTTPGranter{
		url:    strings.TrimRight(cfg.URL, "/") + "/welcome-grants",
		client: &http.Client{Timeout: 10 * time.Second},
		logger: logger,
	}
}

func (g *LogGranter) WelcomeGrant(_ context.Context, handle, pk string) error {
	g.logger.Info("welcome grant skipped, no settlement endpoint", "handle", handle, "pk", pk)
	return nil
}

// WelcomeGrant posts the grant. The handle doubles as idempotency key so a
// retried task is credited once.
func (g *HTTPGranter) WelcomeGrant(ctx context.Context, handle, pk string) error {
	body, err := json.Marshal(grantRequest{Handle: handle, PublicKey: pk})
	if err != nil {
		return errors.Wrap(err, "settlement.WelcomeGrant.Marshal: ")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.url, bytes.NewReader(body))
	if err != nil {
		return errors.Wrap(err, "settlement.WelcomeGrant.NewRequest: ")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Idempotency-Key", "welcome:"+handle)

	resp, err := g.client.Do(req)
	if err != nil {
		return errors.Wrap(err, "settlement.WelcomeGrant.Do: ")
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusConflict {
		g.logger.Info("welcome grant already credited", "handle", handle)
		return nil
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return errors.Errorf("settlement.WelcomeGrant: status %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
	}
	g.logger.Info("welcome grant credited", "handle", handle, "pk", pk)
	return nil
}
