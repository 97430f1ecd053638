// Package sidecar serves the sequence model as a separately-deployable
// process. The engine reaches it through the gateway's HTTP client; if
// this process is down, the gateway's fallback keeps turns flowing.
package sidecar

import (
	"context"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/adaptlearn/skilltrace/internal/dkt"
)

// Server wraps the HTTP server around a sequence model.
type Server struct {
	httpServer *http.Server
	log        *zap.Logger
}

// New builds a Server listening on addr, serving predictions from the
// given model.
func New(addr string, model *dkt.Model, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}

	h := NewHandler(model, log)
	return &Server{
		httpServer: &http.Server{
			Addr:              addr,
			Handler:           h,
			ReadHeaderTimeout: 5 * time.Second,
			IdleTimeout:       60 * time.Second,
		},
		log: log,
	}
}

// Run serves until the context is cancelled, then shuts down
// gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.log.Info("sequence model sidecar listening", zap.String("addr", s.httpServer.Addr))
		errCh <- s.httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.httpServer.Shutdown(shutdownCtx)
}

// NewHandler builds the route table. Split from New so tests can drive
// it through httptest.
func NewHandler(model *dkt.Model, log *zap.Logger) http.Handler {
	if log == nil {
		log = zap.NewNop()
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", handleHealthz)
	mux.HandleFunc("POST /v1/predict", handlePredict(model))

	var h http.Handler = mux
	h = recoverMiddleware(log)(h)
	h = accessLogMiddleware(log)(h)
	return h
}

func handleHealthz(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
