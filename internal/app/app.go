package app

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
	"github.com/walletfy/walletfy/internal/config"
	"github.com/walletfy/walletfy/internal/event_bus"
	"github.com/walletfy/walletfy/internal/rest"
	"github.com/walletfy/walletfy/internal/utils"
	"github.com/walletfy/walletfy/pkg/notifier"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 30 * time.Second

// Application wires configuration, storage, router, and server lifecycle.
type Application struct {
	cfg       config.Application
	router    *mux.Router
	srv       *http.Server
	storage   *Storage
	publisher *notifier.Publisher
}

// NewApplication constructs the full HTTP application, ready to Run().
func NewApplication(configPath string) (*Application, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	storage, err := OpenStorage(cfg.Storage, &utils.SystemClock{})
	if err != nil {
		return nil, err
	}

	bus := event_bus.NewEventBus()
	var publisher *notifier.Publisher
	if cfg.Amqp.Url != "" {
		publisher, err = notifier.Dial(cfg.Amqp.Url, cfg.Amqp.Exchange)
		if err != nil {
			storage.Close()
			return nil, err
		}
		publisher.Attach(bus)
		log.Infof("Forwarding change notifications to exchange %s", cfg.Amqp.Exchange)
	}

	router, err := NewRouter(storage, bus, cfg)
	if err != nil {
		storage.Close()
		return nil, err
	}

	srv := &http.Server{
		Handler:      router,
		Addr:         cfg.Server.Addr,
		WriteTimeout: 15 * time.Second,
		ReadTimeout:  15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &Application{cfg: cfg, router: router, srv: srv, storage: storage, publisher: publisher}, nil
}

// NewRouter builds the HTTP router on top of the given storage.
func NewRouter(storage *Storage, bus *event_bus.EventBus, cfg config.Application) (*mux.Router, error) {
	deps, err := BuildDependencies(storage, bus, cfg)
	if err != nil {
		return nil, err
	}

	r := mux.NewRouter()
	SetupMiddleware(r)
	RegisterRoutes(r, deps)

	if cfg.Frontend.Enabled {
		frontend := rest.NewFrontendHandler(cfg.Frontend.Dir, "index.html")
		r.PathPrefix("/").Handler(frontend)
	}
	return r, nil
}

// Run starts the HTTP server and blocks until ctx is cancelled or the server
// fails. On cancellation the server is shut down gracefully.
func (a *Application) Run(ctx context.Context) error {
	defer a.close()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Infof("Starting server on %s", a.srv.Addr)
		if err := a.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		log.Info("Shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return a.srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func (a *Application) close() {
	if a.publisher != nil {
		if err := a.publisher.Close(); err != nil {
			log.Errorf("failed to close notifier: %v", err)
		}
	}
	a.storage.Close()
	log.Info("Server stopped")
}
