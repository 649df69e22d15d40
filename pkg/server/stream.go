package server

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/gorilla/websocket"

	"bytebeat/pkg/generator"
	"bytebeat/pkg/processor"
)

// Command is a text message sent by the client on /ws.
type Command struct {
	Message string  `json:"message"`
	Time    float64 `json:"time"`
}

// Status is the last text message the server sends before closing.
type Status struct {
	Message string `json:"message"`
	Session string `json:"session"`
	Faults  uint64 `json:"faults"`
}

type stream struct {
	s       *Server
	conn    *websocket.Conn
	proc    *processor.Processor
	session string
}

func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	claims, err := verifyToken(r.URL.Query().Get("token"), s.secret)
	if err != nil {
		http.Error(w, "invalid token", http.StatusUnauthorized)
		return
	}
	backend, err := claims.backend()
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	art, err := s.cache.Compile(backend, claims.Code)
	if err != nil {
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	gen, err := art.NewGenerator(ctx)
	if err != nil {
		sentry.CaptureException(err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	defer generator.Release(gen)

	proc, err := processor.New(gen, claims.processorConfig(s.cfg.Audio.SampleRate))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Printf("websocket upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	transaction := sentry.StartTransaction(ctx, "stream.session")
	defer transaction.Finish()

	st := &stream{s: s, conn: conn, proc: proc, session: claims.ID}
	s.log.Printf("[%s] stream opened (%s)", st.session, backend)

	go st.readCommands(cancel)
	if err := st.render(ctx); err != nil {
		s.log.Printf("[%s] stream error: %v", st.session, err)
		sentry.CaptureException(err)
		transaction.Status = sentry.SpanStatusInternalError
		return
	}
	s.log.Printf("[%s] stream closed, %d faults", st.session, proc.Faults())
}

// readCommands applies start and stop messages until the client goes away.
func (st *stream) readCommands(cancel context.CancelFunc) {
	defer cancel()
	for {
		kind, msg, err := st.conn.ReadMessage()
		if err != nil {
			return
		}
		if kind != websocket.TextMessage {
			continue
		}
		var cmd Command
		if err := json.Unmarshal(msg, &cmd); err != nil {
			st.s.log.Printf("[%s] bad command: %v", st.session, err)
			continue
		}
		switch cmd.Message {
		case "start":
			err = st.proc.Start(cmd.Time)
		case "stop":
			err = st.proc.Stop(cmd.Time)
		default:
			st.s.log.Printf("[%s] unknown command %q", st.session, cmd.Message)
			continue
		}
		if err != nil {
			st.s.log.Printf("[%s] %s: %v", st.session, cmd.Message, err)
		}
	}
}

// render writes one binary message of little-endian float32 samples per
// tick until the processor finishes or ctx is cancelled.
func (st *stream) render(ctx context.Context) error {
	ticker := time.NewTicker(st.s.tick)
	defer ticker.Stop()

	sampleRate := st.proc.Config().SampleRate
	block := make([]float32, st.s.blockSize)
	out := [][]float32{block}
	payload := make([]byte, 4*len(block))
	var frames uint64

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}

		alive := st.proc.Process(out, float64(frames)/sampleRate)
		frames += uint64(len(block))

		for i, v := range block {
			binary.LittleEndian.PutUint32(payload[4*i:], math.Float32bits(v))
		}
		if err := st.conn.WriteMessage(websocket.BinaryMessage, payload); err != nil {
			return ignoreClosed(err)
		}
		if !alive {
			return st.finish()
		}
	}
}

func (st *stream) finish() error {
	status, err := json.Marshal(Status{Message: "done", Session: st.session, Faults: st.proc.Faults()})
	if err != nil {
		return err
	}
	if err := st.conn.WriteMessage(websocket.TextMessage, status); err != nil {
		return ignoreClosed(err)
	}
	closing := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "done")
	deadline := time.Now().Add(time.Second)
	return ignoreClosed(st.conn.WriteControl(websocket.CloseMessage, closing, deadline))
}

func ignoreClosed(err error) error {
	if err == nil || errors.Is(err, websocket.ErrCloseSent) ||
		websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
		return nil
	}
	return err
}
