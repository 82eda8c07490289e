// Package server exposes a document session's command bus as MCP tools.
package server

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/mj1618/docbind/internal/command"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// Session is the command surface the server drives.
type Session interface {
	Dispatch(ctx context.Context, req command.Request) command.Response
	Commands() []string
}

// Config holds MCP server configuration.
type Config struct {
	Name      string
	Version   string
	Transport string
	Port      int
	CacheTTL  time.Duration
}

// Server wraps the MCP server with the session and response cache.
type Server struct {
	session Session
	cache   *ResponseCache
	// document calls are serialized so cached reads never interleave with writes
	mu     sync.Mutex
	mcp    *mcpserver.MCPServer
	tools  []string
	logger *zap.Logger
}

// New creates and configures an MCP server with one tool per command.
func New(session Session, cfg Config, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Name == "" {
		cfg.Name = "docbind"
	}
	s := &Server{
		session: session,
		cache:   NewResponseCache(cfg.CacheTTL),
		logger:  logger,
	}
	s.mcp = mcpserver.NewMCPServer(cfg.Name, cfg.Version)
	s.registerTools()
	return s
}

// Invalidate drops cached responses. Wire it to selection changes.
func (s *Server) Invalidate() { s.cache.InvalidateAll() }

// Tools lists the registered tool names.
func (s *Server) Tools() []string { return append([]string(nil), s.tools...) }

// Serve starts the MCP server with the configured transport.
func (s *Server) Serve(cfg Config) error {
	switch cfg.Transport {
	case "", "stdio":
		return mcpserver.ServeStdio(s.mcp)
	case "streamable-http":
		httpServer := mcpserver.NewStreamableHTTPServer(s.mcp)
		return httpServer.Start(fmt.Sprintf(":%d", cfg.Port))
	default:
		return fmt.Errorf("unsupported transport: %s (use stdio or streamable-http)", cfg.Transport)
	}
}

func (s *Server) addTool(tool mcp.Tool, handler mcpserver.ToolHandlerFunc) {
	s.mcp.AddTool(tool, handler)
	s.tools = append(s.tools, tool.Name)
}

func (s *Server) registerTools() {
	for _, name := range s.session.Commands() {
		desc, ok := descriptions[name]
		if !ok {
			desc = "Run the " + name + " command"
		}
		s.addTool(
			mcp.NewTool(name,
				mcp.WithDescription(desc),
				mcp.WithObject("data", mcp.Description("Command payload. Top-level arguments are used when omitted.")),
			),
			s.handleCommand(name),
		)
	}

	s.addTool(
		mcp.NewTool("dispatch",
			mcp.WithDescription("Send a raw {command, data} request to the document session"),
			mcp.WithString("command", mcp.Description("Command name"), mcp.Required()),
			mcp.WithObject("data", mcp.Description("Command payload")),
		),
		s.handleDispatch,
	)

	s.addTool(
		mcp.NewTool("list-commands",
			mcp.WithDescription("List the commands the document session accepts"),
		),
		s.handleListCommands,
	)
}

var descriptions = map[string]string{
	command.InsertText:                  "Insert a bound text field content control (tag bind:<key>) at the cursor",
	command.InsertLink:                  "Insert a styled hyperlink carrying a JSON payload",
	command.InsertWordArt:               "Insert WordArt from a preset (classic, modern, fun) with overrides",
	command.InsertTable:                 "Insert a table, optionally with headers and data",
	command.InsertDynamicTable:          "Insert a titled data table bound to metadata",
	command.InsertShapeVariants:         "Insert a shape as a paragraph, inline or floating object",
	command.BindSelection:               "Wrap the current selection in a binding content control",
	command.AnalyzeSelection:            "Suggest bindings for the current selection",
	command.BindChartData:               "Attach a data payload to a chart found by scanning",
	command.ReportActiveState:           "Report what the cursor or selection currently touches",
	command.ScanDocument:                "List drawings and positional elements with classifications",
	command.GetBindingSummary:           "Summarize charts and their recovered bindings",
	command.DetectLinkClick:             "Detect a link control under the cursor",
	command.DetectTableClick:            "Detect the table cell under the cursor",
	command.DetectPreciseTableCellClick: "Detect the table cell under the cursor with raw indexes",
	command.DetectBindingClick:          "Detect a binding content control under the cursor",
	command.DetectElementClick:          "Detect the drawing or element under the cursor",
	command.DetectChartClick:            "Detect the clicked chart and its binding",
}

// resultToText serializes a response to YAML for the MCP result.
func resultToText(resp command.Response) string {
	b, err := yaml.Marshal(resp)
	if err != nil {
		return fmt.Sprintf("ok: %v\nerror: %s", resp.OK, resp.Error)
	}
	return string(b)
}

func (s *Server) run(ctx context.Context, req command.Request) *mcp.CallToolResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	resp := s.cache.Do(req, func() command.Response {
		return s.session.Dispatch(ctx, req)
	})
	if !resp.OK {
		s.logger.Debug("tool failed", zap.String("command", req.Command), zap.String("error", resp.Error))
		return mcp.NewToolResultError(resultToText(resp))
	}
	return mcp.NewToolResultText(resultToText(resp))
}

// payload picks the command data out of tool arguments.
func payload(args map[string]interface{}) interface{} {
	if data, ok := args["data"]; ok {
		return data
	}
	if len(args) == 0 {
		return nil
	}
	return args
}

func (s *Server) handleCommand(name string) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return s.run(ctx, command.Request{Command: name, Data: payload(request.GetArguments())}), nil
	}
}

func (s *Server) handleDispatch(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	name, _ := args["command"].(string)
	if name == "" {
		return mcp.NewToolResultError("command is required"), nil
	}
	return s.run(ctx, command.Request{Command: name, Data: args["data"]}), nil
}

func (s *Server) handleListCommands(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	b, err := yaml.Marshal(s.session.Commands())
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(b)), nil
}
