package server

import (
	"github.com/invopop/jsonschema"
)

// Tool represents an MCP tool definition
type Tool struct {
	Name        string             `json:"name"`
	Description string             `json:"description"`
	InputSchema *jsonschema.Schema `json:"inputSchema"`
}

// Tool argument types. The JSON schema advertised in tools/list is derived
// from these structs, and the validate tags are checked before a call runs.

type noArgs struct{}

type loadDocumentArgs struct {
	Path string `json:"path" jsonschema_description:"Path of the .docx file to open." validate:"required"`
}

type saveDocumentArgs struct {
	Path string `json:"path,omitempty" jsonschema_description:"Where to write the document. Defaults to the path it was loaded from or last saved to."`
}

type addParagraphArgs struct {
	Text  *string `json:"text" jsonschema_description:"Paragraph text. Tabs and newlines become tab and line-break runs." validate:"required"`
	Style string  `json:"style,omitempty" jsonschema_description:"Paragraph style name, e.g. 'Normal', 'Quote' or 'List Bullet'."`
}

type addHeadingArgs struct {
	Text  *string `json:"text" jsonschema_description:"Heading text." validate:"required"`
	Level *int    `json:"level,omitempty" jsonschema:"default=1,minimum=0,maximum=9" jsonschema_description:"Heading level. 0 is the document title." validate:"omitempty,min=0,max=9"`
}

type addTableArgs struct {
	Rows *int            `json:"rows" jsonschema:"minimum=1" jsonschema_description:"Number of rows." validate:"required,min=1"`
	Cols *int            `json:"cols" jsonschema:"minimum=1" jsonschema_description:"Number of columns." validate:"required,min=1"`
	Data [][]interface{} `json:"data,omitempty" jsonschema_description:"Cell values, row by row. Values outside the table are ignored; non-string values are converted to text."`
}

type addImageArgs struct {
	ImageSource string   `json:"image_source" jsonschema_description:"A file path, or Base64 image bytes (a data: URL prefix is accepted)." validate:"required"`
	WidthInches *float64 `json:"width_inches,omitempty" jsonschema:"exclusiveMinimum=0" jsonschema_description:"Display width in inches. The height keeps the aspect ratio. Defaults to the image's native size." validate:"omitempty,gt=0"`
	SourceType  string   `json:"source_type,omitempty" jsonschema:"enum=auto,enum=path,enum=base64,default=auto" jsonschema_description:"How to interpret image_source. 'auto' treats it as a path when a file exists there, otherwise as Base64."`
}

type extractImagesArgs struct {
	OutputDir string `json:"output_dir" jsonschema_description:"Directory to write the images into. Created if missing." validate:"required"`
}

type describeImagesArgs struct {
	OCR      bool   `json:"ocr,omitempty" jsonschema_description:"Also recognize text in each image."`
	Language string `json:"language,omitempty" jsonschema:"default=eng" jsonschema_description:"Tesseract language code(s) for OCR, joined with '+', e.g. 'eng+deu'."`
}

// GenerateSchema derives a tool input schema from an argument struct.
// Fields without omitempty are required.
func GenerateSchema[T any]() *jsonschema.Schema {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
		Anonymous:                 true,
	}
	var v T
	schema := reflector.Reflect(v)
	schema.Version = ""
	return schema
}

var toolDefinitions = []Tool{
	// Document lifecycle
	{
		Name:        "create_new_document",
		Description: "Create a new, empty Word document. Replaces any open document without saving it.",
		InputSchema: GenerateSchema[noArgs](),
	},
	{
		Name:        "load_document",
		Description: "Open an existing .docx file. On failure the previously open document stays open.",
		InputSchema: GenerateSchema[loadDocumentArgs](),
	},
	{
		Name:        "save_document",
		Description: "Save the open document, to the given path or to where it was loaded from or last saved.",
		InputSchema: GenerateSchema[saveDocumentArgs](),
	},

	// Reading
	{
		Name:        "get_document_structure",
		Description: "List the document's top-level paragraphs with their text and style as JSON. Tables are not listed.",
		InputSchema: GenerateSchema[noArgs](),
	},
	{
		Name:        "read_full_content",
		Description: "Return all paragraph texts, the cell text of each table, and the number of tables and images as JSON.",
		InputSchema: GenerateSchema[noArgs](),
	},

	// Editing
	{
		Name:        "add_paragraph",
		Description: "Append a paragraph, optionally in a named style.",
		InputSchema: GenerateSchema[addParagraphArgs](),
	},
	{
		Name:        "add_heading",
		Description: "Append a heading. Level 0 is the title; 1 to 9 are heading levels.",
		InputSchema: GenerateSchema[addHeadingArgs](),
	},
	{
		Name:        "add_table",
		Description: "Append a table in the 'Table Grid' style, optionally filled with data.",
		InputSchema: GenerateSchema[addTableArgs](),
	},
	{
		Name:        "add_image",
		Description: "Append an image from a file path or Base64 data in its own paragraph.",
		InputSchema: GenerateSchema[addImageArgs](),
	},

	// Images
	{
		Name:        "extract_images",
		Description: "Write every image embedded in the document to a directory, named after the image part.",
		InputSchema: GenerateSchema[extractImagesArgs](),
	},
	{
		Name:        "describe_images",
		Description: "Describe each embedded image as JSON: size, format, DPI and dominant colors, and optionally the text it contains.",
		InputSchema: GenerateSchema[describeImagesArgs](),
	},
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return toolDefinitions
}

// handleToolsList returns the list of available tools
func (s *Server) handleToolsList(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"tools": GetToolDefinitions(),
		},
	}
}
