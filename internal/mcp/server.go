package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"content-studio/backend/pkg/models"
)

// FlowRunService runs a request against the remote workflow service.
type FlowRunService interface {
	Run(ctx context.Context, req models.RunFlowRequest) (json.RawMessage, error)
}

// Defaults fills identifiers a tool call leaves out.
type Defaults struct {
	FlowID     string
	LangflowID string
}

type Server struct {
	mcpServer *server.MCPServer
	flows     FlowRunService
	defaults  Defaults
}

func NewServer(flows FlowRunService, defaults Defaults, version string) *Server {
	s := &Server{
		mcpServer: server.NewMCPServer(
			"Content Studio",
			version,
			server.WithToolCapabilities(true),
		),
		flows:    flows,
		defaults: defaults,
	}

	s.registerTools()
	return s
}

func (s *Server) GetMCPServer() *server.MCPServer {
	return s.mcpServer
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(
		mcp.NewTool(
			"run_flow",
			mcp.WithDescription("Run a Langflow flow with a chat input and return its response"),
			mcp.WithString("input_value", mcp.Required(), mcp.Description("The chat input, e.g. a display type: Reel, Carousel or Static")),
			mcp.WithString("flow_id", mcp.Description("Flow to run; defaults to the configured flow")),
			mcp.WithString("langflow_id", mcp.Description("Langflow namespace; defaults to the configured namespace")),
			mcp.WithObject("tweaks", mcp.Description("Component overrides passed through to Langflow")),
			mcp.WithBoolean("stream", mcp.Description("Request a streamed run (default false)")),
		),
		s.handleRunFlow,
	)
}

func (s *Server) handleRunFlow(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return mcp.NewToolResultError("Invalid arguments type"), nil
	}

	inputValue, ok := args["input_value"].(string)
	if !ok || inputValue == "" {
		return mcp.NewToolResultError("Missing required parameter: input_value"), nil
	}

	req := models.RunFlowRequest{
		FlowID:     stringArg(args, "flow_id", s.defaults.FlowID),
		LangflowID: stringArg(args, "langflow_id", s.defaults.LangflowID),
		InputValue: inputValue,
		Tweaks:     json.RawMessage(`{}`),
	}
	if tweaks, ok := args["tweaks"].(map[string]interface{}); ok {
		raw, err := json.Marshal(tweaks)
		if err != nil {
			return mcp.NewToolResultError("Invalid parameter: tweaks"), nil
		}
		req.Tweaks = raw
	}
	if stream, ok := args["stream"].(bool); ok {
		req.Stream = stream
	}

	payload, err := s.flows.Run(ctx, req)
	if err != nil {
		if errors.Is(err, models.ErrInvalidRequestBody) {
			return mcp.NewToolResultError(models.ErrorInvalidRequestBody + ": flow_id and langflow_id are required"), nil
		}
		return mcp.NewToolResultError(models.ErrorInitiatingSession + ": " + err.Error()), nil
	}

	return mcp.NewToolResultText(string(payload)), nil
}

func stringArg(args map[string]interface{}, key, fallback string) string {
	if v, ok := args[key].(string); ok && v != "" {
		return v
	}
	return fallback
}

func MountHTTPHandlers(mux *http.ServeMux, mcpServer *server.MCPServer) {
	// Use SSE server for /mcp/sse and /mcp/message endpoints
	sseServer := server.NewSSEServer(mcpServer, server.WithStaticBasePath("/mcp"))

	mux.HandleFunc("/mcp/sse", sseServer.ServeHTTP)
	mux.HandleFunc("/mcp/message", sseServer.ServeHTTP)
}
