// Package api provides the HTTP surface and the main server bootstrap for Atelier.
//
// It exposes operational endpoints for inspecting profiles and conversations,
// accepts inbound Twilio webhooks, and wires the store, AI client, dialogue
// router and messaging transport together.
package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ateliergo/atelier/internal/conversation"
	"github.com/ateliergo/atelier/internal/flow"
	"github.com/ateliergo/atelier/internal/genai"
	"github.com/ateliergo/atelier/internal/messaging"
	"github.com/ateliergo/atelier/internal/profile"
	"github.com/ateliergo/atelier/internal/store"
	"github.com/ateliergo/atelier/internal/twiliowhatsapp"
	"github.com/ateliergo/atelier/internal/whatsapp"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Transport names accepted by WithTransport.
const (
	TransportWhatsApp = "whatsapp"
	TransportTwilio   = "twilio"
)

// DefaultAddr is the default API listen address.
const DefaultAddr = ":8080"

// shutdownTimeout bounds graceful HTTP shutdown.
const shutdownTimeout = 10 * time.Second

// Opts holds configuration options for the API server.
type Opts struct {
	Addr      string // API listen address
	Transport string // messaging transport: "whatsapp" or "twilio"
}

// Option defines a configuration option for the API server.
type Option func(*Opts)

// WithAddr sets the API listen address.
func WithAddr(addr string) Option {
	return func(o *Opts) {
		o.Addr = addr
	}
}

// WithTransport selects the messaging transport.
func WithTransport(name string) Option {
	return func(o *Opts) {
		o.Transport = name
	}
}

// Server bundles the HTTP surface with the modules it inspects.
type Server struct {
	addr       string
	st         store.Store
	profiles   *profile.Manager
	convLog    *conversation.Log
	msgService messaging.Service
	twilioSvc  *messaging.TwilioService // non-nil only for the Twilio transport
}

// NewServer creates a Server over already-constructed modules.
func NewServer(addr string, st store.Store, profiles *profile.Manager, convLog *conversation.Log, msgService messaging.Service, twilioSvc *messaging.TwilioService) *Server {
	return &Server{
		addr:       addr,
		st:         st,
		profiles:   profiles,
		convLog:    convLog,
		msgService: msgService,
		twilioSvc:  twilioSvc,
	}
}

// Run bootstraps every module and serves until SIGINT or SIGTERM.
func Run(waOpts []whatsapp.Option, storeOpts []store.Option, genaiOpts []genai.Option, apiOpts []Option) error {
	var cfg Opts
	for _, opt := range apiOpts {
		opt(&cfg)
	}
	if cfg.Addr == "" {
		cfg.Addr = DefaultAddr
	}
	if cfg.Transport == "" {
		cfg.Transport = TransportWhatsApp
	}
	slog.Debug("api.Run options applied", "addr", cfg.Addr, "transport", cfg.Transport)

	st, err := newStore(storeOpts)
	if err != nil {
		return fmt.Errorf("failed to initialize store: %w", err)
	}
	defer st.Close()

	aiClient, err := genai.NewClient(genaiOpts...)
	if err != nil {
		return fmt.Errorf("failed to initialize AI client: %w", err)
	}

	profiles := profile.NewManager(st)
	convLog := conversation.NewLog(st)
	router := flow.NewRouter(profiles, convLog, aiClient)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var (
		msgService messaging.Service
		twilioSvc  *messaging.TwilioService
	)
	switch cfg.Transport {
	case TransportTwilio:
		twClient, err := twiliowhatsapp.NewClient()
		if err != nil {
			return fmt.Errorf("failed to initialize Twilio client: %w", err)
		}
		twilioSvc = messaging.NewTwilioService(twClient)
		msgService = twilioSvc
	case TransportWhatsApp:
		waClient, err := whatsapp.NewClient(waOpts...)
		if err != nil {
			return fmt.Errorf("failed to initialize WhatsApp client: %w", err)
		}
		msgService = messaging.NewWhatsAppService(waClient)
	default:
		return fmt.Errorf("unknown transport %q", cfg.Transport)
	}

	if err := msgService.Start(ctx); err != nil {
		return fmt.Errorf("failed to start messaging service: %w", err)
	}
	defer msgService.Stop()

	handler := messaging.NewHandler(msgService, router)
	go func() {
		if err := handler.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			slog.Error("api.Run message handler stopped", "error", err)
		}
	}()

	srv := NewServer(cfg.Addr, st, profiles, convLog, msgService, twilioSvc)
	return srv.serve(ctx)
}

// newStore selects a storage backend based on the configured DSN.
func newStore(storeOpts []store.Option) (store.Store, error) {
	var cfg store.Opts
	for _, opt := range storeOpts {
		opt(&cfg)
	}
	if cfg.DSN == "" {
		slog.Info("No database DSN provided, using in-memory store")
		return store.NewMemoryStore(), nil
	}

	switch store.DetectDSNType(cfg.DSN) {
	case "postgres":
		slog.Info("Initializing PostgreSQL store")
		return store.NewPostgresStore(storeOpts...)
	case "sqlite":
		slog.Info("Initializing SQLite store", "path", cfg.DSN)
		return store.NewSQLiteStore(storeOpts...)
	default:
		slog.Info("Initializing file store", "dir", cfg.DSN)
		return store.NewFileStore(storeOpts...)
	}
}

// routes assembles the HTTP router.
func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/health", s.healthHandler)
	r.Get("/api/profiles/{userID}", s.getProfileHandler)
	r.Get("/api/conversations/{userID}", s.getConversationHandler)
	r.Post("/api/send", s.sendHandler)

	if s.twilioSvc != nil {
		r.Post("/webhook/twilio", s.twilioSvc.WebhookHandler)
	}

	return r
}

// serve runs the HTTP server until the context is cancelled.
func (s *Server) serve(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:    s.addr,
		Handler: s.routes(),
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Atelier API listening", "addr", s.addr)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		slog.Info("Shutdown signal received, stopping API server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("failed to shut down API server: %w", err)
		}
		return nil
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("API server failed: %w", err)
		}
		return nil
	}
}
