package daemon

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"tasklist/internal/api"
	"tasklist/internal/config"
	"tasklist/internal/logging"
)

type apiServer struct {
	bind         string
	maxBodyBytes int64
	logger       *slog.Logger
	daemon       *Daemon

	mu       sync.Mutex
	listener net.Listener
	server   *http.Server
}

func newAPIServer(cfg *config.Config, d *Daemon, logger *slog.Logger) *apiServer {
	srv := &apiServer{
		bind:         strings.TrimSpace(cfg.Server.Bind),
		maxBodyBytes: cfg.Server.MaxBodyBytes,
		logger:       logger,
		daemon:       d,
	}
	srv.server = &http.Server{
		Handler:           srv.handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return srv
}

func (s *apiServer) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc(api.TodosPath, s.handleTodos)
	mux.HandleFunc(api.StatusPath, s.handleStatus)
	mux.HandleFunc(api.HealthPath, s.handleHealth)
	return withRequestID(withAccessLog(s.log(), mux))
}

func (s *apiServer) start(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.bind)
	if err != nil {
		return fmt.Errorf("api listen: %w", err)
	}
	s.mu.Lock()
	s.listener = listener
	s.mu.Unlock()

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log().Error("api server error", logging.Error(err))
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}()

	s.log().Info("api server listening", logging.String("address", listener.Addr().String()))
	return nil
}

func (s *apiServer) stop() {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = s.server.Shutdown(shutdownCtx)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener != nil {
		_ = s.listener.Close()
	}
}

func (s *apiServer) addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.bind
}

func (s *apiServer) handleTodos(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.readAll(w, r)
	case http.MethodPost:
		s.replaceAll(w, r)
	default:
		w.Header().Set("Allow", "GET, POST")
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusMethodNotAllowed)
		_, _ = io.WriteString(w, fmt.Sprintf("Method %s Not Allowed", r.Method))
	}
}

func (s *apiServer) readAll(w http.ResponseWriter, r *http.Request) {
	data, err := s.daemon.store.ReadAll(r.Context())
	if err != nil {
		logging.ErrorWithContext(logging.WithContext(r.Context(), s.log()), "read tasks failed", "tasks_read_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check that the data file exists and holds valid JSON"))
		s.writeError(w, http.StatusInternalServerError, api.MessageInternalError, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		s.log().Warn("failed to write response",
			logging.String(logging.FieldEventType, "response_write_failed"),
			logging.Error(err))
	}
}

func (s *apiServer) replaceAll(w http.ResponseWriter, r *http.Request) {
	body := r.Body
	if s.maxBodyBytes > 0 {
		body = http.MaxBytesReader(w, r.Body, s.maxBodyBytes)
	}
	raw, err := io.ReadAll(body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.writeError(w, http.StatusRequestEntityTooLarge, api.MessageEntityTooLarge,
				fmt.Errorf("request body exceeds %d bytes", tooLarge.Limit))
			return
		}
		s.writeError(w, http.StatusBadRequest, api.MessageBadRequest, fmt.Errorf("read request body: %w", err))
		return
	}

	var pretty bytes.Buffer
	if err := json.Indent(&pretty, bytes.TrimSpace(raw), "", "  "); err != nil {
		s.writeError(w, http.StatusBadRequest, api.MessageBadRequest, fmt.Errorf("request body is not valid JSON: %w", err))
		return
	}

	if err := s.daemon.store.ReplaceAll(r.Context(), pretty.Bytes()); err != nil {
		logging.ErrorWithContext(logging.WithContext(r.Context(), s.log()), "replace tasks failed", "tasks_write_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check permissions and free space on paths.data_dir"))
		s.writeError(w, http.StatusInternalServerError, api.MessageInternalError, err)
		return
	}
	logging.WithContext(r.Context(), s.log()).Debug("replaced task collection", logging.Int("bytes", pretty.Len()))
	s.writeJSON(w, http.StatusOK, api.MessageResponse{Message: api.MessageUpdated})
}

func (s *apiServer) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed", nil)
		return
	}
	s.writeJSON(w, http.StatusOK, s.daemon.Status(r.Context()))
}

func (s *apiServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed", nil)
		return
	}
	s.writeJSON(w, http.StatusOK, api.HealthResponse{
		Status: "ok",
		Time:   time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *apiServer) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.log().Error("failed to encode response", logging.Error(err))
	}
}

func (s *apiServer) writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := api.MessageResponse{Message: message}
	if err != nil {
		resp.Error = err.Error()
	}
	s.writeJSON(w, status, resp)
}

func (s *apiServer) log() *slog.Logger {
	return logging.NewComponentLogger(s.logger, "api-server")
}
