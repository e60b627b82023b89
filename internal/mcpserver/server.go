// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes the note store for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/nyberg/lagu/internal/models"
	"github.com/nyberg/lagu/internal/notestore"
)

// Server wraps the MCP server with note store tools.
type Server struct {
	mcp   *server.MCPServer
	store *notestore.Store
}

// New creates a new MCP server with all tools registered.
func New(store *notestore.Store) *Server {
	s := &Server{store: store}

	s.mcp = server.NewMCPServer(
		"lagu",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("list_notes",
		mcp.WithDescription("List the folders and note previews in the current directory or a named subfolder."),
		mcp.WithString("folder", mcp.Description("Optional subfolder name (empty for the root)")),
	), s.listNotes)

	s.mcp.AddTool(mcp.NewTool("read_note",
		mcp.WithDescription("Read the full content of a Markdown note."),
		mcp.WithString("filename", mcp.Required(), mcp.Description("Note filename without the .md extension")),
		mcp.WithString("folder", mcp.Description("Optional subfolder name")),
	), s.readNote)

	s.mcp.AddTool(mcp.NewTool("save_note",
		mcp.WithDescription("Create or update a Markdown note. Pass previous_filename when renaming."),
		mcp.WithString("filename", mcp.Required(), mcp.Description("Target filename without the .md extension")),
		mcp.WithString("content", mcp.Required(), mcp.Description("Markdown content")),
		mcp.WithString("previous_filename", mcp.Description("Former filename when renaming an existing note")),
		mcp.WithString("folder", mcp.Description("Optional subfolder name")),
	), s.saveNote)

	s.mcp.AddTool(mcp.NewTool("delete_note",
		mcp.WithDescription("Delete a Markdown note."),
		mcp.WithString("filename", mcp.Required(), mcp.Description("Note filename without the .md extension")),
		mcp.WithString("folder", mcp.Description("Optional subfolder name")),
	), s.deleteNote)

	s.mcp.AddTool(mcp.NewTool("storage_location",
		mcp.WithDescription("Describe where notes are currently stored (app, public, or custom location)."),
	), s.storageLocation)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func (s *Server) listNotes(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	folder := ""
	if f, err := req.RequireString("folder"); err == nil {
		folder = f
	}

	target := ""
	if folder != "" {
		// Resolve the folder by walking the current listing; unknown
		// folders read as empty rather than erroring.
		contents := s.store.DirectoryContents(ctx, "")
		for _, f := range contents.Folders {
			if f.Name == folder {
				target = f.Path
				break
			}
		}
		if target == "" {
			return mcp.NewToolResultText("folder not found: " + folder), nil
		}
	}

	contents := s.store.DirectoryContents(ctx, target)
	var lines []string
	for _, f := range contents.Folders {
		lines = append(lines, f.Name+"/")
	}
	for _, n := range contents.Notes {
		lines = append(lines, n.Filename)
	}
	if len(lines) == 0 {
		return mcp.NewToolResultText("no notes"), nil
	}
	return mcp.NewToolResultText(strings.Join(lines, "\n")), nil
}

func (s *Server) readNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	filename, err := req.RequireString("filename")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	folder := ""
	if f, err := req.RequireString("folder"); err == nil {
		folder = f
	}

	note := s.store.GetNote(ctx, filename, folder)
	if note == nil {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", filename)), nil
	}
	return mcp.NewToolResultText(note.Content), nil
}

func (s *Server) saveNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	filename, err := req.RequireString("filename")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	content, err := req.RequireString("content")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	previous := ""
	if p, err := req.RequireString("previous_filename"); err == nil {
		previous = p
	}
	folder := ""
	if f, err := req.RequireString("folder"); err == nil {
		folder = f
	}

	saved, err := s.store.SaveNote(ctx, &models.Note{Filename: filename, Content: content}, previous, folder)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.Marshal(map[string]string{"filename": saved.Filename, "location": saved.Location})
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) deleteNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	filename, err := req.RequireString("filename")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	folder := ""
	if f, err := req.RequireString("folder"); err == nil {
		folder = f
	}

	if err := s.store.DeleteNote(ctx, filename, folder); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("deleted: %s", filename)), nil
}

func (s *Server) storageLocation(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	loc := s.store.StorageLocation()
	out, _ := json.MarshalIndent(loc, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}
