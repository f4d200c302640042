package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"gnsnode/config"
	"gnsnode/internal/gossip"
	gossipClient "gnsnode/internal/gossip/client"
	gossipRepo "gnsnode/internal/gossip/repository"
	gossipUsecase "gnsnode/internal/gossip/usecase"
	"gnsnode/internal/identity"
	identityRepo "gnsnode/internal/identity/repository"
	identityUsecase "gnsnode/internal/identity/usecase"
	"gnsnode/internal/message"
	messageRepo "gnsnode/internal/message/repository"
	messageUsecase "gnsnode/internal/message/usecase"
	"gnsnode/internal/outbox"
	"gnsnode/internal/pairing"
	pairingRepo "gnsnode/internal/pairing/repository"
	pairingUsecase "gnsnode/internal/pairing/usecase"
	"gnsnode/internal/realtime"
	"gnsnode/internal/server"
	"gnsnode/internal/settlement"
	"gnsnode/internal/storage"
	"gnsnode/internal/sweeper"
	"gnsnode/pkg/logger"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the node's HTTP and realtime server",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		log, err := newLogger(cfg)
		if err != nil {
			return err
		}
		defer log.Sync()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return serve(ctx, *cfg, log)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

type stores struct {
	identity identity.Repository
	messages message.Repository
	pairing  pairing.Repository
	sync     gossip.Repository
	ready    func(ctx context.Context) error
	close    func() error
}

func openStores(ctx context.Context, cfg config.Config, log logger.Logger) (*stores, error) {
	switch cfg.Store.Driver {
	case "memory":
		log.Warn("using in-memory store, state is lost on restart")
		return &stores{
			identity: identityRepo.NewMemoryRepository(),
			messages: messageRepo.NewMemoryRepository(),
			pairing:  pairingRepo.NewMemoryRepository(),
			sync:     gossipRepo.NewMemoryRepository(),
			close:    func() error { return nil },
		}, nil
	case "postgres", "":
		db, err := storage.Open(ctx, cfg.Bun)
		if err != nil {
			return nil, err
		}
		if err := storage.Migrate(ctx, db, log); err != nil {
			db.Close()
			return nil, err
		}
		return &stores{
			identity: identityRepo.NewIdentityRepository(db, log),
			messages: messageRepo.NewMessageRepository(db, log),
			pairing:  pairingRepo.NewPairingRepository(db, log),
			sync:     gossipRepo.NewSyncRepository(db, log),
			ready:    db.PingContext,
			close:    db.Close,
		}, nil
	default:
		return nil, errors.Errorf("unsupported store driver %q (supported: postgres, memory)", cfg.Store.Driver)
	}
}

func serve(ctx context.Context, cfg config.Config, log logger.Logger) error {
	st, err := openStores(ctx, cfg, log)
	if err != nil {
		return errors.Wrap(err, "open store")
	}
	defer st.close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	background := func(fn func(context.Context)) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			fn(ctx)
		}()
	}

	tasks := outbox.NewQueue(cfg.Outbox, log)
	tasks.Start(ctx)

	hub := realtime.NewHub(cfg.Realtime, log)

	ids := identityUsecase.NewIdentityUsecase(st.identity, log, cfg)
	if cfg.Ledger.WelcomeGrant {
		ids.WithWelcomeGrant(tasks, settlement.NewGranter(cfg.Settlement, log))
	}
	msgs := messageUsecase.NewMessageUsecase(st.messages, hub, log, cfg)
	pair := pairingUsecase.NewPairingUsecase(st.pairing, log, cfg)

	peers := gossipClient.NewHTTPClient(cfg.Server.WriteTimeout)
	syncer := gossipUsecase.NewSyncUsecase(st.sync, st.identity, ids, peers, tasks, log, cfg)
	ids.SetReplicator(syncer)

	sweep := sweeper.New(cfg.Sweeper, log,
		sweeper.Target{Name: "reservations", Sweepable: ids},
		sweeper.Target{Name: "envelopes", Sweepable: msgs},
		sweeper.Target{Name: "pairing_sessions", Sweepable: pair},
	)
	background(sweep.Run)
	background(hub.RunHeartbeat)
	background(syncer.Run)

	srv := server.New(server.Deps{
		Identity: ids,
		Messages: msgs,
		Pairing:  pair,
		Sync:     syncer,
		Hub:      hub,
		Ready:    st.ready,
	}, cfg, log)
	httpServer := srv.HTTPServer()

	errCh := make(chan error, 1)
	go func() {
		log.Info("gnsnode listening", "addr", httpServer.Addr, "store", cfg.Store.Driver, "node_id", cfg.Sync.NodeID)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received")
	case err := <-errCh:
		if err != nil {
			return errors.Wrap(err, "http server")
		}
	}

	shutCtx, shutCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutCancel()
	if err := httpServer.Shutdown(shutCtx); err != nil {
		log.Error("graceful shutdown error", "err", err)
	}
	cancel()
	hub.CloseAll()
	wg.Wait()
	tasks.Stop()
	log.Info("gnsnode stopped")
	return nil
}
