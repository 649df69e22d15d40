// Package server exposes compilation over HTTP and streams rendered
// samples over websockets.
package server

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/gorilla/websocket"

	"bytebeat/pkg/cache"
	"bytebeat/pkg/config"
	"bytebeat/pkg/diag"
	"bytebeat/pkg/rpn"
	"bytebeat/pkg/wasm"
)

const (
	defaultBlockSize = 1024
	cacheSize        = 256
	maxBodyBytes     = 64 << 10
)

type Server struct {
	cfg       *config.Config
	cache     *cache.Cache
	secret    []byte
	log       *log.Logger
	upgrader  websocket.Upgrader
	blockSize int
	tick      time.Duration
	now       func() time.Time
}

type Option func(*Server)

func WithLogger(l *log.Logger) Option { return func(s *Server) { s.log = l } }

// WithBlockSize sets the number of frames per websocket message.
func WithBlockSize(n int) Option { return func(s *Server) { s.blockSize = n } }

// WithTick overrides the render pacing, which defaults to real time.
func WithTick(d time.Duration) Option { return func(s *Server) { s.tick = d } }

func New(cfg *config.Config, opts ...Option) (*Server, error) {
	s := &Server{
		cfg:       cfg,
		cache:     cache.New(cacheSize),
		log:       log.New(os.Stderr, "server: ", log.LstdFlags),
		blockSize: defaultBlockSize,
		now:       time.Now,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
	for _, opt := range opts {
		opt(s)
	}

	if cfg.Server.TokenSecret != "" {
		s.secret = []byte(cfg.Server.TokenSecret)
	} else {
		s.secret = make([]byte, 32)
		if _, err := rand.Read(s.secret); err != nil {
			return nil, fmt.Errorf("generate token secret: %w", err)
		}
		s.log.Printf("no token secret configured, tokens will not survive a restart")
	}
	if s.blockSize < 1 {
		return nil, fmt.Errorf("block size must be positive, got %d", s.blockSize)
	}
	if s.tick == 0 {
		s.tick = time.Duration(float64(s.blockSize) / cfg.Audio.SampleRate * float64(time.Second))
	}
	return s, nil
}

// InitSentry enables error reporting when dsn is set. The returned func
// flushes pending events.
func InitSentry(dsn string) (func(), error) {
	if dsn == "" {
		return func() {}, nil
	}
	if err := sentry.Init(sentry.ClientOptions{Dsn: dsn}); err != nil {
		return nil, fmt.Errorf("sentry: %w", err)
	}
	return func() { sentry.Flush(2 * time.Second) }, nil
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/compile", s.method(http.MethodPost, s.handleCompile))
	mux.HandleFunc("/api/wat", s.method(http.MethodPost, s.handleWat))
	mux.HandleFunc("/api/glitch", s.handleGlitch)
	mux.HandleFunc("/ws", s.method(http.MethodGet, s.handleStream))
	return s.recover(mux)
}

// ListenAndServe serves until ctx is done, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Server.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.log.Printf("listening on %s", srv.Addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

func (s *Server) method(m string, h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != m {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h(w, r)
	}
}

func (s *Server) recover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				sentry.CurrentHub().Recover(rec)
				s.log.Printf("panic in %s %s: %v", r.Method, r.URL.Path, rec)
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

type compileRequest struct {
	Backend   string   `json:"backend"`
	Code      string   `json:"code"`
	Frequency *float64 `json:"frequency"`
	Tempo     *float64 `json:"tempo"`
	FloatMode bool     `json:"floatMode"`
}

type compileResponse struct {
	Valid   bool   `json:"valid"`
	Session string `json:"session,omitempty"`
	Token   string `json:"token,omitempty"`
	Kind    string `json:"kind,omitempty"`
	Error   string `json:"error,omitempty"`
	At      string `json:"at,omitempty"`
	Pos     *int   `json:"pos,omitempty"`
}

func (s *Server) handleCompile(w http.ResponseWriter, r *http.Request) {
	var req compileRequest
	if !s.decode(w, r, &req) {
		return
	}

	claims := &Claims{
		Backend:   req.Backend,
		Code:      req.Code,
		Frequency: s.cfg.Audio.Frequency,
		Tempo:     s.cfg.Audio.Tempo,
		FloatMode: req.FloatMode,
	}
	if claims.Backend == "" {
		claims.Backend = s.cfg.Audio.Backend
	}
	if req.Frequency != nil {
		claims.Frequency = *req.Frequency
	}
	if req.Tempo != nil {
		claims.Tempo = *req.Tempo
	}

	backend, err := claims.backend()
	if err != nil {
		s.writeJSON(w, http.StatusBadRequest, compileResponse{Error: err.Error()})
		return
	}
	claims.Backend = string(backend)
	if err := claims.processorConfig(s.cfg.Audio.SampleRate).Validate(); err != nil {
		s.writeJSON(w, http.StatusBadRequest, compileResponse{Error: err.Error()})
		return
	}

	if _, err := s.cache.Compile(backend, req.Code); err != nil {
		s.writeJSON(w, http.StatusUnprocessableEntity, compileFailure(err))
		return
	}

	session, token, err := signToken(claims, s.secret, s.cfg.Server.TokenTTL, s.now())
	if err != nil {
		sentry.CaptureException(err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	s.writeJSON(w, http.StatusOK, compileResponse{Valid: true, Session: session, Token: token})
}

func compileFailure(err error) compileResponse {
	resp := compileResponse{Error: err.Error()}
	var de *diag.Error
	if errors.As(err, &de) {
		resp.Kind = de.Kind.String()
		resp.At = de.Token
		if de.Pos >= 0 {
			pos := de.Pos
			resp.Pos = &pos
		}
	}
	return resp
}

func (s *Server) handleWat(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Code string `json:"code"`
	}
	if !s.decode(w, r, &req) {
		return
	}
	wat, err := wasm.ToWat(req.Code)
	if err != nil {
		s.writeJSON(w, http.StatusUnprocessableEntity, compileFailure(err))
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"wat": wat})
}

func (s *Server) handleGlitch(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		var req struct {
			Code string `json:"code"`
			Name string `json:"name"`
		}
		if !s.decode(w, r, &req) {
			return
		}
		url, err := rpn.ToGlitchURL(req.Code, req.Name)
		if err != nil {
			s.writeJSON(w, http.StatusUnprocessableEntity, compileFailure(err))
			return
		}
		s.writeJSON(w, http.StatusOK, map[string]string{"url": url})

	case http.MethodGet:
		name, code, err := rpn.FromGlitchURL(r.URL.Query().Get("url"))
		if err != nil {
			s.writeJSON(w, http.StatusUnprocessableEntity, compileFailure(err))
			return
		}
		s.writeJSON(w, http.StatusOK, map[string]string{"name": name, "code": code})

	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		s.writeJSON(w, http.StatusBadRequest, compileResponse{Error: fmt.Sprintf("invalid request body: %v", err)})
		return false
	}
	return true
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Printf("write response: %v", err)
	}
}
