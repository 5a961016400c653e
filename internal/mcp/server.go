package mcp

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/paularlott/mcp"

	"github.com/equipctl/equipctl/internal/client"
	"github.com/equipctl/equipctl/internal/log"
	"github.com/equipctl/equipctl/internal/model"
)

// Server exposes the equipment collection as MCP tools backed by the REST
// client. It keeps no state of its own; every tool call goes straight to
// the backend.
type Server struct {
	mcpServer   *mcp.Server
	client      *client.Client
	bearerToken string
}

// NewServer creates an MCP server for equipment management.
func NewServer(c *client.Client, bearerToken string) *Server {
	s := &Server{
		mcpServer:   mcp.NewServer("equipctl", "1.0.0"),
		client:      c,
		bearerToken: bearerToken,
	}
	s.registerTools()
	return s
}

func (s *Server) registerTools() {
	s.mcpServer.RegisterTool(
		mcp.NewTool("equipment_list", "List all equipment records in the remote inventory"),
		s.handleList,
	)

	s.mcpServer.RegisterTool(
		mcp.NewTool("equipment_add", "Register a new equipment record. All four fields are required.",
			mcp.String("nombre", "Equipment name", mcp.Required()),
			mcp.String("tipo", "Equipment type", mcp.Required()),
			mcp.String("ubicacion", "Physical location", mcp.Required()),
			mcp.String("estado", "Status: Activo, Inactivo or Mantenimiento", mcp.Required()),
		),
		s.handleAdd,
	)

	s.mcpServer.RegisterTool(
		mcp.NewTool("equipment_delete", "Delete an equipment record by id",
			mcp.String("id", "Equipment id", mcp.Required()),
		),
		s.handleDelete,
	)
}

// HandleRequest handles MCP HTTP requests with optional bearer token
// authentication.
func (s *Server) HandleRequest(w http.ResponseWriter, r *http.Request) {
	log.Debug("MCP request received", "method", r.Method, "path", r.URL.Path, "remote_addr", r.RemoteAddr)

	if s.bearerToken != "" {
		auth := r.Header.Get("Authorization")
		if auth == "" {
			log.Warn("MCP request missing Authorization header", "remote_addr", r.RemoteAddr)
			http.Error(w, "Unauthorized: Missing Authorization header", http.StatusUnauthorized)
			return
		}
		if !strings.HasPrefix(auth, "Bearer ") {
			log.Warn("MCP request invalid Authorization format", "remote_addr", r.RemoteAddr)
			http.Error(w, "Unauthorized: Invalid Authorization format", http.StatusUnauthorized)
			return
		}
		if strings.TrimPrefix(auth, "Bearer ") != s.bearerToken {
			log.Warn("MCP request invalid token", "remote_addr", r.RemoteAddr)
			http.Error(w, "Unauthorized: Invalid token", http.StatusUnauthorized)
			return
		}
	}

	s.mcpServer.HandleRequest(w, r)
}

func (s *Server) handleList(ctx context.Context, req *mcp.ToolRequest) (*mcp.ToolResponse, error) {
	log.Debug("MCP equipment list request")

	items, err := s.client.List(ctx)
	if err != nil {
		log.Error("MCP equipment list failed", "error", err)
		return nil, mcp.NewToolErrorInternal("failed to list equipment: " + err.Error())
	}

	log.Info("MCP equipment list completed", "count", len(items))

	if len(items) == 0 {
		return mcp.NewToolResponseText("No equipment found"), nil
	}

	var result strings.Builder
	result.WriteString(fmt.Sprintf("Found %d equipment records:\n\n", len(items)))
	for _, item := range items {
		result.WriteString(formatEquipment(item))
		result.WriteString("\n")
	}
	return mcp.NewToolResponseText(result.String()), nil
}

func (s *Server) handleAdd(ctx context.Context, req *mcp.ToolRequest) (*mcp.ToolResponse, error) {
	draft := model.Draft{
		Name:     req.StringOr("nombre", ""),
		Type:     req.StringOr("tipo", ""),
		Location: req.StringOr("ubicacion", ""),
		Status:   req.StringOr("estado", ""),
	}
	if err := draft.Validate(); err != nil {
		log.Warn("MCP equipment add - invalid draft", "error", err)
		return nil, mcp.NewToolErrorInvalidParams(err.Error())
	}

	log.Debug("MCP equipment add request", "name", draft.Name)

	msg, err := s.client.Create(ctx, draft)
	if err != nil {
		log.Error("MCP equipment add failed", "error", err, "name", draft.Name)
		return nil, mcp.NewToolErrorInternal("failed to add equipment: " + err.Error())
	}

	log.Info("MCP equipment added", "name", draft.Name)
	return mcp.NewToolResponseText(msg), nil
}

func (s *Server) handleDelete(ctx context.Context, req *mcp.ToolRequest) (*mcp.ToolResponse, error) {
	id, err := req.String("id")
	if err != nil {
		log.Warn("MCP equipment delete - missing id", "error", err)
		return nil, mcp.NewToolErrorInvalidParams("id is required: " + err.Error())
	}

	log.Debug("MCP equipment delete request", "id", id)

	msg, err := s.client.Remove(ctx, id)
	if err != nil {
		log.Error("MCP equipment delete failed", "error", err, "id", id)
		return nil, mcp.NewToolErrorInternal("failed to delete equipment: " + err.Error())
	}

	log.Info("MCP equipment deleted", "id", id)
	return mcp.NewToolResponseText(msg), nil
}

func formatEquipment(e model.Equipment) string {
	var result strings.Builder
	result.WriteString(fmt.Sprintf("ID: %s\n", e.ID))
	result.WriteString(fmt.Sprintf("Nombre: %s\n", e.Name))
	result.WriteString(fmt.Sprintf("Tipo: %s\n", e.Type))
	result.WriteString(fmt.Sprintf("Ubicación: %s\n", e.Location))
	result.WriteString(fmt.Sprintf("Estado: %s\n", e.Status))
	return result.String()
}

// GetHTTPHandler returns the HTTP handler for the MCP server.
func (s *Server) GetHTTPHandler() http.HandlerFunc {
	return s.HandleRequest
}

// LogStartup logs MCP server startup information.
func (s *Server) LogStartup() {
	log.Info("MCP Server initialized", "version", "1.0.0")
	if s.bearerToken != "" {
		log.Info("MCP authentication enabled", "type", "Bearer token")
	} else {
		log.Info("MCP authentication disabled")
	}
	tools := s.mcpServer.ListTools()
	log.Info("MCP tools registered", "count", len(tools))
	for _, tool := range tools {
		log.Debug("MCP tool registered", "name", tool.Name, "description", tool.Description)
	}
}
