// Package server implements the MCP (Model Context Protocol) server for Word
// document tools.
//
// This package provides a JSON-RPC 2.0 server that exposes a single editable
// .docx session through the MCP protocol, so MCP clients can create, read,
// edit and save documents.
//
// # Protocol
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Transports
//
// Stdio (Serve, Run):
//   - Input: JSON-RPC requests on stdin (one per line)
//   - Output: JSON-RPC responses on stdout
//
// HTTP with server-sent events (ServeSSE, App):
//   - GET /sse opens an event stream; the first "endpoint" event names the
//     URL to POST requests to
//   - POST /messages?session_id=<id> returns 202 and the response arrives as
//     a "message" event
//   - GET /healthz returns "ok"
//
// # Available Tools
//
// Document lifecycle:
//   - create_new_document, load_document, save_document
//
// Reading:
//   - get_document_structure: paragraphs with text and style
//   - read_full_content: paragraph texts, table cells, table and image counts
//
// Editing:
//   - add_paragraph, add_heading, add_table, add_image
//
// Images:
//   - extract_images: write embedded images to a directory
//   - describe_images: size, format, DPI, colors and optional OCR text
//
// # Results and Errors
//
// Every tool call yields one text content item. Failures are reported in
// that text as "Error: <message>" followed by a stack trace, never as a
// JSON-RPC error; only undecodable tools/call params get -32602. Tool calls
// are serialized, so both transports share one session safely.
//
// # Usage
//
//	srv := server.New(server.WithLogger(log))
//	if err := srv.Run(ctx); err != nil {
//	    log.Fatal("server stopped", zap.Error(err))
//	}
package server
