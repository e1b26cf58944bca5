// Package listener accepts document updates over HTTP and writes them to a
// document store.
package listener

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/goliatone/go-artificial-world/pkg/remote"
)

// Route is the endpoint documents are posted to.
const Route = "/api"

// DefaultAddr matches the port the original listener bound to.
const DefaultAddr = "0.0.0.0:5000"

const maxBodyBytes = 10 << 20

// Writer persists a document; it reports success rather than failing.
type Writer interface {
	Write(ctx context.Context, name string, value any) bool
}

type reply struct {
	Update bool   `json:"update"`
	Error  string `json:"error,omitempty"`
}

// Handler serves POST /api.
type Handler struct {
	store  Writer
	logger *slog.Logger
}

// Option configures a Handler.
type Option func(*Handler)

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(h *Handler) {
		if logger != nil {
			h.logger = logger
		}
	}
}

// NewHandler returns a handler writing into store.
func NewHandler(store Writer, opts ...Option) *Handler {
	h := &Handler{
		store:  store,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(h)
		}
	}
	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeReply(w, http.StatusMethodNotAllowed, reply{Error: "method not allowed"})
		return
	}
	h.logger.InfoContext(ctx, "received update request", "remote", r.RemoteAddr)

	payload, err := decodePayload(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		h.logger.WarnContext(ctx, "rejected update request", "error", err)
		writeReply(w, http.StatusBadRequest, reply{Error: err.Error()})
		return
	}

	name := filepath.Clean(payload.Path)
	updated := h.store.Write(ctx, name, payload.Data)
	h.logger.InfoContext(ctx, "processed update request", "path", name, "update", updated)
	writeReply(w, http.StatusCreated, reply{Update: updated})
}

func decodePayload(body io.Reader) (remote.Payload, error) {
	var payload remote.Payload
	decoder := json.NewDecoder(body)
	decoder.UseNumber()
	if err := decoder.Decode(&payload); err != nil {
		if errors.Is(err, io.EOF) {
			return payload, fmt.Errorf("listener: request body is empty")
		}
		return payload, fmt.Errorf("listener: decode body: %w", err)
	}
	if strings.TrimSpace(payload.Path) == "" {
		return payload, fmt.Errorf("listener: path is required")
	}
	return payload, nil
}

func writeReply(w http.ResponseWriter, status int, body reply) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// NewMux routes Route to h.
func NewMux(h http.Handler) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle(Route, h)
	return mux
}

// Serve listens on addr until ctx is cancelled, then shuts down gracefully.
func Serve(ctx context.Context, addr string, h http.Handler, logger *slog.Logger) error {
	if addr == "" {
		addr = DefaultAddr
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	server := &http.Server{
		Addr:              addr,
		Handler:           NewMux(h),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listener started", "addr", addr)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("listener: serve %s: %w", addr, err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		logger.Info("listener stopping", "addr", addr)
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("listener: shutdown: %w", err)
		}
		return nil
	}
}
