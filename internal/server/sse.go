package server

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
)

// keepAliveInterval is how often an idle event stream gets a comment line,
// so proxies do not drop the connection.
const keepAliveInterval = 15 * time.Second

// sseQueueSize bounds the responses waiting to be written to one stream.
const sseQueueSize = 16

// sseSession is one open GET /sse stream.
type sseSession struct {
	id     string
	events chan []byte
	done   chan struct{}
	once   sync.Once
}

func newSSESession() *sseSession {
	return &sseSession{
		id:     uuid.NewString(),
		events: make(chan []byte, sseQueueSize),
		done:   make(chan struct{}),
	}
}

func (ss *sseSession) close() {
	ss.once.Do(func() { close(ss.done) })
}

// send queues msg for the stream. It reports false once the stream is gone.
func (ss *sseSession) send(msg []byte) bool {
	select {
	case <-ss.done:
		return false
	default:
	}
	select {
	case ss.events <- msg:
		return true
	case <-ss.done:
		return false
	}
}

// sseTransport serves MCP over HTTP with server-sent events: a client opens
// GET /sse, learns its message endpoint from the first event, and POSTs
// requests there. Responses come back as "message" events on the stream.
type sseTransport struct {
	server    *Server
	log       *zap.Logger
	keepAlive time.Duration

	mu       sync.Mutex
	sessions map[string]*sseSession
}

func newSSETransport(s *Server) *sseTransport {
	return &sseTransport{
		server:    s,
		log:       s.log.With(zap.String("transport", "sse")),
		keepAlive: keepAliveInterval,
		sessions:  make(map[string]*sseSession),
	}
}

// App returns the fiber application serving the SSE transport.
func (s *Server) App() *fiber.App {
	return newSSETransport(s).app()
}

// ServeSSE listens on addr and serves the SSE transport until ctx is done.
func (s *Server) ServeSSE(ctx context.Context, addr string) error {
	t := newSSETransport(s)
	app := t.app()

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("serving MCP over SSE", zap.String("addr", addr), zap.String("version", s.version))
		errCh <- app.Listen(addr)
	}()

	select {
	case err := <-errCh:
		return errors.Wrap(err, "listening")
	case <-ctx.Done():
	}

	t.closeAll()
	if err := app.ShutdownWithTimeout(5 * time.Second); err != nil {
		return errors.Wrap(err, "shutting down")
	}
	return nil
}

func (t *sseTransport) app() *fiber.App {
	// Bodies get the same bound as a stdio line; fiber's default is 4 MiB.
	app := fiber.New(fiber.Config{
		AppName:               Name,
		DisableStartupMessage: true,
		BodyLimit:             maxLineSize,
	})

	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})
	app.Get("/sse", t.handleStream)
	app.Post("/messages", t.handlePost)
	return app
}

func (t *sseTransport) add(ss *sseSession) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.sessions[ss.id] = ss
}

func (t *sseTransport) get(id string) *sseSession {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.sessions[id]
}

func (t *sseTransport) remove(id string) {
	t.mu.Lock()
	ss, ok := t.sessions[id]
	delete(t.sessions, id)
	t.mu.Unlock()
	if ok {
		ss.close()
	}
}

func (t *sseTransport) closeAll() {
	t.mu.Lock()
	sessions := t.sessions
	t.sessions = make(map[string]*sseSession)
	t.mu.Unlock()
	for _, ss := range sessions {
		ss.close()
	}
}

// handleStream opens an event stream for a new session.
func (t *sseTransport) handleStream(c *fiber.Ctx) error {
	ss := newSSESession()
	t.add(ss)
	t.log.Info("client connected", zap.String("session_id", ss.id))

	c.Set(fiber.HeaderContentType, "text/event-stream")
	c.Set(fiber.HeaderCacheControl, "no-cache")
	c.Set(fiber.HeaderConnection, "keep-alive")
	c.Set("X-Accel-Buffering", "no")

	c.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		defer t.remove(ss.id)
		t.stream(w, ss)
		t.log.Info("client disconnected", zap.String("session_id", ss.id))
	}))
	return nil
}

// stream writes the endpoint event, then queued responses and keep-alive
// comments, until the session closes or a write fails.
func (t *sseTransport) stream(w *bufio.Writer, ss *sseSession) {
	fmt.Fprintf(w, "event: endpoint\ndata: /messages?session_id=%s\n\n", ss.id)
	if err := w.Flush(); err != nil {
		return
	}

	ticker := time.NewTicker(t.keepAlive)
	defer ticker.Stop()

	for {
		select {
		case msg := <-ss.events:
			fmt.Fprintf(w, "event: message\ndata: %s\n\n", msg)
		case <-ticker.C:
			fmt.Fprint(w, ": keep-alive\n\n")
		case <-ss.done:
			return
		}
		if err := w.Flush(); err != nil {
			return
		}
	}
}

// handlePost accepts one JSON-RPC message for an open session. The response,
// if any, is delivered on the session's event stream.
func (t *sseTransport) handlePost(c *fiber.Ctx) error {
	id := c.Query("session_id")
	ss := t.get(id)
	if ss == nil {
		return c.Status(fiber.StatusNotFound).SendString("unknown session")
	}

	var req MCPRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return c.Status(fiber.StatusBadRequest).SendString("invalid JSON-RPC message")
	}

	resp := t.server.handleRequest(&req)
	if resp != nil {
		data, err := json.Marshal(resp)
		if err != nil {
			t.log.Error("failed to encode response", zap.Error(err))
			return c.SendStatus(fiber.StatusInternalServerError)
		}
		if !ss.send(data) {
			t.log.Warn("dropped response for closed session", zap.String("session_id", id))
		}
	}
	return c.SendStatus(fiber.StatusAccepted)
}
