package server

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/ironsheep/docx-tools-mcp/internal/session"
)

// Name is reported to clients in the initialize handshake.
const Name = "docx-tools-mcp"

const protocolVersion = "2024-11-05"

// maxLineSize bounds a single stdio request. Inline Base64 images travel in
// the request line, so it is far above bufio's default.
const maxLineSize = 64 * 1024 * 1024

// JSON-RPC error codes.
const (
	codeParseError     = -32700
	codeInvalidRequest = -32600
	codeMethodNotFound = -32601
	codeInvalidParams  = -32602
)

// Server handles MCP protocol communication
type Server struct {
	// mu serializes tool calls; the session is not safe for concurrent use
	// and the SSE transport delivers requests from many goroutines.
	mu      sync.Mutex
	session *session.Manager

	validate *validator.Validate
	log      *zap.Logger
	version  string
	maxLine  int
}

// MCPRequest represents an incoming JSON-RPC request
type MCPRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      interface{}     `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// MCPResponse represents an outgoing JSON-RPC response
type MCPResponse struct {
	JSONRPC string      `json:"jsonrpc"`
	ID      interface{} `json:"id"`
	Result  interface{} `json:"result,omitempty"`
	Error   *MCPError   `json:"error,omitempty"`
}

// MCPError represents a JSON-RPC error
type MCPError struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the server logger. It is also handed to the session
// unless WithSession supplies one.
func WithLogger(log *zap.Logger) Option {
	return func(s *Server) { s.log = log }
}

// WithSession replaces the document session.
func WithSession(m *session.Manager) Option {
	return func(s *Server) { s.session = m }
}

// WithVersion sets the version reported in serverInfo.
func WithVersion(v string) Option {
	return func(s *Server) { s.version = v }
}

// New creates a new MCP server instance with an empty session.
func New(opts ...Option) *Server {
	s := &Server{
		log:     zap.NewNop(),
		version: "dev",
		maxLine: maxLineSize,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.session == nil {
		s.session = session.NewManager(session.WithLogger(s.log))
	}
	s.validate = newValidator()
	return s
}

// Run serves MCP over stdin and stdout until stdin closes or ctx is done.
func (s *Server) Run(ctx context.Context) error {
	return s.Serve(ctx, os.Stdin, os.Stdout)
}

// Serve reads newline-delimited JSON-RPC messages from in and writes one
// response line per request to out. Notifications produce no output. It
// returns nil when in reaches EOF and ctx.Err() as soon as ctx is done, even
// while a read is pending.
func (s *Server) Serve(ctx context.Context, in io.Reader, out io.Writer) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	lines := make(chan inputLine)
	go s.readLines(ctx, bufio.NewReaderSize(in, 64*1024), lines)

	encoder := json.NewEncoder(out)

	s.log.Info("serving MCP over stdio", zap.String("version", s.version))
	for {
		var next inputLine
		var ok bool
		select {
		case <-ctx.Done():
			return ctx.Err()
		case next, ok = <-lines:
		}
		if !ok {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if next.err != nil {
			return errors.Wrap(next.err, "reading request")
		}

		var resp *MCPResponse
		if next.tooLong {
			s.log.Warn("request line too long", zap.Int("limit", s.maxLine))
			resp = s.errorResponse(nil, codeInvalidRequest, "Request too large",
				fmt.Sprintf("request line exceeds %d bytes", s.maxLine))
		} else {
			line := bytes.TrimSpace(next.data)
			if len(line) == 0 {
				continue
			}
			resp = s.handleMessage(line)
		}
		if resp == nil {
			continue
		}
		if err := encoder.Encode(resp); err != nil {
			return errors.Wrap(err, "writing response")
		}
	}
}

// inputLine is one line read from the stdio input.
type inputLine struct {
	data    []byte
	tooLong bool
	err     error
}

// readLines feeds lines to out until EOF, a read error or ctx is done, then
// closes out. A blocked read outlives ctx; the caller does not wait for it.
func (s *Server) readLines(ctx context.Context, r *bufio.Reader, out chan<- inputLine) {
	defer close(out)
	for {
		data, tooLong, err := readLine(r, s.maxLine)
		if err == io.EOF {
			return
		}
		select {
		case out <- inputLine{data: data, tooLong: tooLong, err: err}:
		case <-ctx.Done():
			return
		}
		if err != nil {
			return
		}
	}
}

// readLine reads up to and including the next newline. A line longer than
// limit is consumed and dropped, and reported as tooLong. A final line
// without a newline is returned with a nil error; the next call sees io.EOF.
func readLine(r *bufio.Reader, limit int) ([]byte, bool, error) {
	var line []byte
	var n int
	tooLong := false
	for {
		chunk, err := r.ReadSlice('\n')
		n += len(chunk)
		if !tooLong {
			if n > limit+1 {
				tooLong = true
				line = nil
			} else {
				line = append(line, chunk...)
			}
		}
		switch {
		case err == bufio.ErrBufferFull:
			continue
		case err == io.EOF && n > 0:
			return line, tooLong, nil
		case err != nil:
			return nil, false, err
		}
		return line, tooLong, nil
	}
}

// handleMessage decodes one raw JSON-RPC message and handles it.
func (s *Server) handleMessage(raw []byte) *MCPResponse {
	var req MCPRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		s.log.Warn("failed to parse request", zap.Error(err))
		return s.errorResponse(nil, codeParseError, "Parse error", err.Error())
	}
	return s.handleRequest(&req)
}

// handleRequest routes requests to appropriate handlers
func (s *Server) handleRequest(req *MCPRequest) *MCPResponse {
	s.log.Debug("request", zap.String("method", req.Method), zap.Any("id", req.ID))

	switch req.Method {
	case "initialize":
		return s.handleInitialize(req)
	case "notifications/initialized", "notifications/cancelled":
		// Client notifications, no response needed
		return nil
	case "tools/list":
		return s.handleToolsList(req)
	case "tools/call":
		return s.handleToolsCall(req)
	case "ping":
		return &MCPResponse{
			JSONRPC: "2.0",
			ID:      req.ID,
			Result:  map[string]interface{}{},
		}
	default:
		if req.ID == nil && strings.HasPrefix(req.Method, "notifications/") {
			s.log.Debug("ignoring notification", zap.String("method", req.Method))
			return nil
		}
		return s.errorResponse(req.ID, codeMethodNotFound, "Method not found: "+req.Method, "")
	}
}

// handleInitialize responds to the initialize request
func (s *Server) handleInitialize(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"protocolVersion": protocolVersion,
			"capabilities": map[string]interface{}{
				"tools": map[string]interface{}{},
			},
			"serverInfo": map[string]interface{}{
				"name":    Name,
				"version": s.version,
			},
		},
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message, data string) *MCPResponse {
	mcpErr := &MCPError{
		Code:    code,
		Message: message,
	}
	if data != "" {
		mcpErr.Data = data
	}
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error:   mcpErr,
	}
}
