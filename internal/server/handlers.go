package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
	"runtime/debug"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/ironsheep/docx-tools-mcp/internal/session"
)

// ErrUnknownTool is returned for a tools/call naming no known tool.
var ErrUnknownTool = errors.New("unknown tool")

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "add_paragraph", "save_document").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// Every outcome, success or failure, is a single text item:
//
//	{
//	  "content": [{"type": "text", "text": "<confirmation or Error: ...>"}]
//	}
//
// Only params that cannot be decoded produce a JSON-RPC error (-32602).
func (s *Server) handleToolsCall(req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, codeInvalidParams, "Invalid params", err.Error())
	}
	if params.Name == "" {
		return s.errorResponse(req.ID, codeInvalidParams, "Invalid params", "missing tool name")
	}

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": s.callTool(params.Name, params.Arguments),
				},
			},
		},
	}
}

// callTool runs one tool with exclusive access to the session and renders
// its outcome as text. Panics are recovered and rendered like errors.
func (s *Server) callTool(name string, args json.RawMessage) (text string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	defer func() {
		if r := recover(); r != nil {
			s.log.Error("tool panicked", zap.String("tool", name), zap.Any("panic", r))
			text = fmt.Sprintf("Error: %v\n%s", r, debug.Stack())
		}
	}()

	out, err := s.executeTool(name, args)
	if err != nil {
		s.log.Warn("tool failed", zap.String("tool", name), zap.Error(err))
		return renderError(err)
	}
	s.log.Debug("tool succeeded", zap.String("tool", name))
	return out
}

// renderError formats err as the message line followed by its stack trace.
func renderError(err error) string {
	return fmt.Sprintf("Error: %s\n%+v", err.Error(), err)
}

// executeTool dispatches tool execution to the appropriate handler function.
//
// Each tool handler:
//  1. Decodes and validates its arguments
//  2. Applies default values for optional parameters
//  3. Calls the session
//  4. Returns the confirmation text or JSON
func (s *Server) executeTool(name string, args json.RawMessage) (string, error) {
	switch name {
	// Document lifecycle
	case "create_new_document":
		return s.session.CreateNew()
	case "load_document":
		return s.handleLoadDocument(args)
	case "save_document":
		return s.handleSaveDocument(args)

	// Reading
	case "get_document_structure":
		return s.handleGetDocumentStructure()
	case "read_full_content":
		return s.handleReadFullContent()

	// Editing
	case "add_paragraph":
		return s.handleAddParagraph(args)
	case "add_heading":
		return s.handleAddHeading(args)
	case "add_table":
		return s.handleAddTable(args)
	case "add_image":
		return s.handleAddImage(args)

	// Images
	case "extract_images":
		return s.handleExtractImages(args)
	case "describe_images":
		return s.handleDescribeImages(args)

	default:
		return "", errors.WithStack(fmt.Errorf("%w: %s", ErrUnknownTool, name))
	}
}

// decodeArgs unmarshals args into v and validates it. Missing or null
// arguments decode as an empty object.
func (s *Server) decodeArgs(args json.RawMessage, v interface{}) error {
	if trimmed := bytes.TrimSpace(args); len(trimmed) > 0 && !bytes.Equal(trimmed, []byte("null")) {
		if err := json.Unmarshal(trimmed, v); err != nil {
			return errors.Wrapf(session.ErrValidation, "malformed arguments: %v", err)
		}
	}
	if err := s.validate.Struct(v); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			return errors.Wrap(session.ErrValidation, describeFieldErrors(fieldErrs))
		}
		return errors.Wrap(session.ErrValidation, err.Error())
	}
	return nil
}

// newValidator returns a validator that reports fields by their JSON names.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func describeFieldErrors(fieldErrs validator.ValidationErrors) string {
	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		var msg string
		switch fe.Tag() {
		case "required":
			msg = "is required"
		case "min":
			msg = "must be at least " + fe.Param()
		case "max":
			msg = "must be at most " + fe.Param()
		case "gt":
			msg = "must be greater than " + fe.Param()
		default:
			msg = "failed " + fe.Tag() + " check"
		}
		msgs = append(msgs, fe.Field()+" "+msg)
	}
	return strings.Join(msgs, "; ")
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// On marshal failure, returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// === Document Lifecycle Handlers ===

func (s *Server) handleLoadDocument(args json.RawMessage) (string, error) {
	var a loadDocumentArgs
	if err := s.decodeArgs(args, &a); err != nil {
		return "", err
	}
	return s.session.Load(a.Path)
}

func (s *Server) handleSaveDocument(args json.RawMessage) (string, error) {
	var a saveDocumentArgs
	if err := s.decodeArgs(args, &a); err != nil {
		return "", err
	}
	return s.session.Save(a.Path)
}

// === Reading Handlers ===

func (s *Server) handleGetDocumentStructure() (string, error) {
	records, err := s.session.Structure()
	if err != nil {
		return "", err
	}
	return mustMarshalJSON(records), nil
}

func (s *Server) handleReadFullContent() (string, error) {
	summary, err := s.session.ReadFullContent()
	if err != nil {
		return "", err
	}
	return mustMarshalJSON(summary), nil
}

// === Editing Handlers ===

func (s *Server) handleAddParagraph(args json.RawMessage) (string, error) {
	var a addParagraphArgs
	if err := s.decodeArgs(args, &a); err != nil {
		return "", err
	}
	return s.session.AddParagraph(*a.Text, a.Style)
}

func (s *Server) handleAddHeading(args json.RawMessage) (string, error) {
	var a addHeadingArgs
	if err := s.decodeArgs(args, &a); err != nil {
		return "", err
	}

	level := 1
	if a.Level != nil {
		level = *a.Level
	}
	return s.session.AddHeading(*a.Text, level)
}

func (s *Server) handleAddTable(args json.RawMessage) (string, error) {
	var a addTableArgs
	if err := s.decodeArgs(args, &a); err != nil {
		return "", err
	}

	data := make([][]string, len(a.Data))
	for i, row := range a.Data {
		data[i] = make([]string, len(row))
		for j, cell := range row {
			data[i][j] = cellText(cell)
		}
	}
	return s.session.AddTable(*a.Rows, *a.Cols, data)
}

// cellText converts a decoded JSON value to the text written into a cell.
func cellText(v interface{}) string {
	switch v := v.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprint(v)
		}
		return string(b)
	}
}

func (s *Server) handleAddImage(args json.RawMessage) (string, error) {
	var a addImageArgs
	if err := s.decodeArgs(args, &a); err != nil {
		return "", err
	}

	// An open document is checked before the source is read or decoded.
	if !s.session.IsOpen() {
		return "", errors.WithStack(session.ErrNoDocument)
	}
	src, err := session.ParseImageSource(a.SourceType, a.ImageSource)
	if err != nil {
		return "", err
	}
	return s.session.AddImage(src, a.WidthInches)
}

// === Image Handlers ===

func (s *Server) handleExtractImages(args json.RawMessage) (string, error) {
	var a extractImagesArgs
	if err := s.decodeArgs(args, &a); err != nil {
		return "", err
	}

	paths, err := s.session.ExtractImages(a.OutputDir)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("Extracted %d images: %s", len(paths), strings.Join(paths, ", ")), nil
}

func (s *Server) handleDescribeImages(args json.RawMessage) (string, error) {
	var a describeImagesArgs
	if err := s.decodeArgs(args, &a); err != nil {
		return "", err
	}

	descriptions, err := s.session.DescribeImages(a.OCR, a.Language)
	if err != nil {
		return "", err
	}
	return mustMarshalJSON(descriptions), nil
}
