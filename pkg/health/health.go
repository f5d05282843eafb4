// Package health exposes a minimal liveness probe so hosting platforms
// can tell the process is alive. It shares no state with the bot.
package health

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/minthantoo333/srttospeech/pkg/logger"
)

type Response struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

// Server serves the liveness endpoint on its own port.
type Server struct {
	version string
	srv     *http.Server
}

func NewServer(port int, version string) *Server {
	s := &Server{version: version}

	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleAlive)
	mux.HandleFunc("/healthz", s.handleAlive)

	s.srv = &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

// Handler returns the probe handler, exposed for tests.
func (s *Server) Handler() http.Handler {
	return s.srv.Handler
}

// Start listens in a background goroutine and shuts down when ctx is
// cancelled. The returned error covers listener setup only.
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.srv.Addr)
	if err != nil {
		return fmt.Errorf("health listener: %w", err)
	}

	logger.InfoCF("health", "Liveness probe listening", map[string]any{
		"addr": s.srv.Addr,
	})

	go func() {
		if err := s.srv.Serve(ln); err != nil && err != http.ErrServerClosed {
			logger.ErrorCF("health", "Probe server stopped", map[string]any{
				"error": err.Error(),
			})
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		s.srv.Shutdown(shutdownCtx)
	}()

	return nil
}

func (s *Server) handleAlive(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(Response{Status: "alive", Version: s.version})
}
