// Package mcp provides an MCP (Model Context Protocol) server for tcx.
// This allows AI agents to query the telecommand index through MCP tools
// instead of CLI commands.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/calgarytospace/tcx/internal/config"
	"github.com/calgarytospace/tcx/internal/extract"
	"github.com/calgarytospace/tcx/internal/jsonscan"
	"github.com/calgarytospace/tcx/internal/output"
	"github.com/calgarytospace/tcx/internal/preview"
	"github.com/calgarytospace/tcx/internal/store"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// Server wraps the MCP server with tcx-specific functionality
type Server struct {
	mcpServer    *server.MCPServer
	store        *store.Store
	cfg          *config.Config
	tcxDir       string
	projectRoot  string
	tools        map[string]bool
	lastActivity time.Time
	timeout      time.Duration
	mu           sync.RWMutex
}

// Config holds server configuration
type Config struct {
	Tools   []string      // Which tools to expose (empty = all)
	Timeout time.Duration // Inactivity timeout (0 = no timeout)
}

// DefaultTools is the default set of tools to expose
var DefaultTools = []string{"tcx_find", "tcx_show", "tcx_preview", "tcx_reformat"}

// AllTools lists all available tools
var AllTools = []string{"tcx_find", "tcx_show", "tcx_preview", "tcx_reformat", "tcx_export"}

// New creates a new MCP server for tcx
func New(cfg Config) (*Server, error) {
	// Find .tcx directory
	tcxDir, err := config.FindConfigDir(".")
	if err != nil {
		return nil, fmt.Errorf("tcx not initialized: run 'tcx init && tcx scan' first")
	}
	projectRoot := filepath.Dir(tcxDir)

	fileCfg, err := config.Load(projectRoot)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	// Open store
	storeDB, err := store.Open(tcxDir)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}

	// Create MCP server
	mcpServer := server.NewMCPServer(
		"tcx",
		"1.0.0",
		server.WithToolCapabilities(false),
	)

	s := &Server{
		mcpServer:    mcpServer,
		store:        storeDB,
		cfg:          fileCfg,
		tcxDir:       tcxDir,
		projectRoot:  projectRoot,
		tools:        make(map[string]bool),
		lastActivity: time.Now(),
		timeout:      cfg.Timeout,
	}

	// Determine which tools to register
	toolsToRegister := cfg.Tools
	if len(toolsToRegister) == 0 {
		toolsToRegister = DefaultTools
	}

	// Register tools
	for _, toolName := range toolsToRegister {
		if err := s.registerTool(toolName); err != nil {
			storeDB.Close()
			return nil, fmt.Errorf("failed to register tool %s: %w", toolName, err)
		}
		s.tools[toolName] = true
	}

	return s, nil
}

// registerTool registers a single tool with the MCP server
func (s *Server) registerTool(name string) error {
	switch name {
	case "tcx_find":
		return s.registerFindTool()
	case "tcx_show":
		return s.registerShowTool()
	case "tcx_preview":
		return s.registerPreviewTool()
	case "tcx_reformat":
		return s.registerReformatTool()
	case "tcx_export":
		return s.registerExportTool()
	default:
		return fmt.Errorf("unknown tool: %s", name)
	}
}

// ServeStdio starts the server using stdio transport
func (s *Server) ServeStdio() error {
	// Start timeout checker if timeout is set
	if s.timeout > 0 {
		go s.timeoutChecker()
	}

	return server.ServeStdio(s.mcpServer)
}

// timeoutChecker monitors for inactivity and exits if timeout exceeded
func (s *Server) timeoutChecker() {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for range ticker.C {
		s.mu.RLock()
		elapsed := time.Since(s.lastActivity)
		s.mu.RUnlock()

		if elapsed > s.timeout {
			fmt.Fprintf(os.Stderr, "tcx serve: timeout after %v of inactivity\n", s.timeout)
			os.Exit(0)
		}
	}
}

// updateActivity updates the last activity timestamp
func (s *Server) updateActivity() {
	s.mu.Lock()
	s.lastActivity = time.Now()
	s.mu.Unlock()
}

// Close closes the server and its resources
func (s *Server) Close() error {
	if s.store != nil {
		return s.store.Close()
	}
	return nil
}

// ListTools returns the list of registered tools
func (s *Server) ListTools() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tools := make([]string, 0, len(s.tools))
	for t := range s.tools {
		tools = append(tools, t)
	}
	return tools
}

// ToolSchema describes a tool's name, description, and parameters.
type ToolSchema struct {
	Name        string            `json:"name" yaml:"name"`
	Description string            `json:"description" yaml:"description"`
	Parameters  []ParameterSchema `json:"parameters" yaml:"parameters"`
}

// ParameterSchema describes a single tool parameter.
type ParameterSchema struct {
	Name        string `json:"name" yaml:"name"`
	Type        string `json:"type" yaml:"type"`
	Description string `json:"description" yaml:"description"`
	Required    bool   `json:"required" yaml:"required"`
}

// toolSchemaRegistry holds the schema definitions for all tools.
// These mirror the mcp.NewTool() definitions in the register*Tool() functions.
var toolSchemaRegistry = map[string]ToolSchema{
	"tcx_find": {
		Name:        "tcx_find",
		Description: "Search indexed telecommands by name pattern. Returns name, handler symbol, argument count, and readiness level.",
		Parameters: []ParameterSchema{
			{Name: "pattern", Type: "string", Description: "Name pattern to search for (substring match, empty = all)"},
			{Name: "ready", Type: "string", Description: "Filter by readiness level (e.g. TCMD_READINESS_LEVEL_FOR_OPERATION)"},
			{Name: "exact", Type: "boolean", Description: "Require an exact name match"},
			{Name: "limit", Type: "number", Description: "Maximum results (default: 20)"},
		},
	},
	"tcx_show": {
		Name:        "tcx_show",
		Description: "Show detailed information about a single telecommand, including its docstring and argument descriptions.",
		Parameters: []ParameterSchema{
			{Name: "name", Type: "string", Description: "Telecommand name to look up", Required: true},
			{Name: "density", Type: "string", Description: "Detail level: sparse, medium, dense (default: medium)"},
		},
	},
	"tcx_preview": {
		Name:        "tcx_preview",
		Description: "Render the exact uplink string for a telecommand invocation, validated against the indexed argument count.",
		Parameters: []ParameterSchema{
			{Name: "name", Type: "string", Description: "Telecommand name to preview", Required: true},
			{Name: "args", Type: "string", Description: "Comma-separated argument values"},
			{Name: "tssent", Type: "boolean", Description: "Include the @tssent send timestamp tag"},
			{Name: "at", Type: "string", Description: "RFC3339 time to pin the @tssent tag to (default: now)"},
			{Name: "tsexec", Type: "string", Description: "Unix millisecond timestamp for scheduled execution (@tsexec)"},
			{Name: "resp_fname", Type: "string", Description: "Satellite file to redirect the response into (@resp_fname)"},
		},
	},
	"tcx_reformat": {
		Name:        "tcx_reformat",
		Description: "Find JSON blobs embedded in free-form text (telemetry logs, downlink captures) and pretty-print them in place.",
		Parameters: []ParameterSchema{
			{Name: "text", Type: "string", Description: "Text containing embedded JSON blobs", Required: true},
		},
	},
	"tcx_export": {
		Name:        "tcx_export",
		Description: "Export the active telecommand index to a CSV file.",
		Parameters: []ParameterSchema{
			{Name: "path", Type: "string", Description: "Output file path (default: telecommands_<timestamp>.csv)"},
		},
	},
}

// GetToolSchemas returns schemas for all registered tools.
func (s *Server) GetToolSchemas() []ToolSchema {
	s.mu.RLock()
	defer s.mu.RUnlock()

	schemas := make([]ToolSchema, 0, len(s.tools))
	for name := range s.tools {
		if schema, ok := toolSchemaRegistry[name]; ok {
			schemas = append(schemas, schema)
		}
	}
	return schemas
}

// CallTool dispatches a tool call by name with the given arguments.
// Returns the JSON result string or an error.
func (s *Server) CallTool(name string, args map[string]interface{}) (string, error) {
	s.mu.RLock()
	registered := s.tools[name]
	s.mu.RUnlock()

	if !registered {
		return "", fmt.Errorf("unknown tool: %s (run 'tcx call --list' to see available tools)", name)
	}

	switch name {
	case "tcx_find":
		pattern, _ := args["pattern"].(string)
		ready, _ := args["ready"].(string)
		exact, _ := args["exact"].(bool)
		limit := 20
		if l, ok := args["limit"].(float64); ok {
			limit = int(l)
		}
		return s.executeFind(pattern, ready, exact, limit)

	case "tcx_show":
		tcName, _ := args["name"].(string)
		if tcName == "" {
			return "", fmt.Errorf("name parameter is required")
		}
		density, _ := args["density"].(string)
		if density == "" {
			density = "medium"
		}
		return s.executeShow(tcName, density)

	case "tcx_preview":
		tcName, _ := args["name"].(string)
		if tcName == "" {
			return "", fmt.Errorf("name parameter is required")
		}
		argsStr, _ := args["args"].(string)
		tssent, _ := args["tssent"].(bool)
		at, _ := args["at"].(string)
		tsexec, _ := args["tsexec"].(string)
		respFname, _ := args["resp_fname"].(string)
		return s.executePreview(tcName, argsStr, tssent, at, tsexec, respFname)

	case "tcx_reformat":
		text, _ := args["text"].(string)
		if text == "" {
			return "", fmt.Errorf("text parameter is required")
		}
		return s.executeReformat(text)

	case "tcx_export":
		path, _ := args["path"].(string)
		return s.executeExport(path)

	default:
		return "", fmt.Errorf("unknown tool: %s", name)
	}
}

// registerFindTool registers the tcx_find tool
func (s *Server) registerFindTool() error {
	tool := mcp.NewTool("tcx_find",
		mcp.WithDescription("Search indexed telecommands by name pattern. Returns name, handler symbol, argument count, and readiness level."),
		mcp.WithString("pattern",
			mcp.Description("Name pattern to search for (substring match, empty = all)"),
		),
		mcp.WithString("ready",
			mcp.Description("Filter by readiness level (e.g. TCMD_READINESS_LEVEL_FOR_OPERATION)"),
		),
		mcp.WithBoolean("exact",
			mcp.Description("Require an exact name match"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum results (default: 20)"),
		),
	)

	s.mcpServer.AddTool(tool, s.handleFind)
	return nil
}

// registerShowTool registers the tcx_show tool
func (s *Server) registerShowTool() error {
	tool := mcp.NewTool("tcx_show",
		mcp.WithDescription("Show detailed information about a single telecommand, including its docstring and argument descriptions."),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Telecommand name to look up"),
		),
		mcp.WithString("density",
			mcp.Description("Detail level: sparse, medium, dense (default: medium)"),
		),
	)

	s.mcpServer.AddTool(tool, s.handleShow)
	return nil
}

// registerPreviewTool registers the tcx_preview tool
func (s *Server) registerPreviewTool() error {
	tool := mcp.NewTool("tcx_preview",
		mcp.WithDescription("Render the exact uplink string for a telecommand invocation, validated against the indexed argument count."),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Telecommand name to preview"),
		),
		mcp.WithString("args",
			mcp.Description("Comma-separated argument values"),
		),
		mcp.WithBoolean("tssent",
			mcp.Description("Include the @tssent send timestamp tag"),
		),
		mcp.WithString("at",
			mcp.Description("RFC3339 time to pin the @tssent tag to (default: now)"),
		),
		mcp.WithString("tsexec",
			mcp.Description("Unix millisecond timestamp for scheduled execution (@tsexec)"),
		),
		mcp.WithString("resp_fname",
			mcp.Description("Satellite file to redirect the response into (@resp_fname)"),
		),
	)

	s.mcpServer.AddTool(tool, s.handlePreview)
	return nil
}

// registerReformatTool registers the tcx_reformat tool
func (s *Server) registerReformatTool() error {
	tool := mcp.NewTool("tcx_reformat",
		mcp.WithDescription("Find JSON blobs embedded in free-form text (telemetry logs, downlink captures) and pretty-print them in place."),
		mcp.WithString("text",
			mcp.Required(),
			mcp.Description("Text containing embedded JSON blobs"),
		),
	)

	s.mcpServer.AddTool(tool, s.handleReformat)
	return nil
}

// registerExportTool registers the tcx_export tool
func (s *Server) registerExportTool() error {
	tool := mcp.NewTool("tcx_export",
		mcp.WithDescription("Export the active telecommand index to a CSV file."),
		mcp.WithString("path",
			mcp.Description("Output file path (default: telecommands_<timestamp>.csv)"),
		),
	)

	s.mcpServer.AddTool(tool, s.handleExport)
	return nil
}

// Tool handlers

func (s *Server) handleFind(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s.updateActivity()

	args := req.GetArguments()
	pattern, _ := args["pattern"].(string)
	ready, _ := args["ready"].(string)
	exact, _ := args["exact"].(bool)

	limit := 20
	if l, ok := args["limit"].(float64); ok {
		limit = int(l)
	}

	result, err := s.executeFind(pattern, ready, exact, limit)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(result), nil
}

func (s *Server) handleShow(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s.updateActivity()

	args := req.GetArguments()
	name, ok := args["name"].(string)
	if !ok || name == "" {
		return mcp.NewToolResultError("name parameter is required"), nil
	}

	density, _ := args["density"].(string)
	if density == "" {
		density = "medium"
	}

	result, err := s.executeShow(name, density)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(result), nil
}

func (s *Server) handlePreview(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s.updateActivity()

	args := req.GetArguments()
	name, ok := args["name"].(string)
	if !ok || name == "" {
		return mcp.NewToolResultError("name parameter is required"), nil
	}

	argsStr, _ := args["args"].(string)
	tssent, _ := args["tssent"].(bool)
	at, _ := args["at"].(string)
	tsexec, _ := args["tsexec"].(string)
	respFname, _ := args["resp_fname"].(string)

	result, err := s.executePreview(name, argsStr, tssent, at, tsexec, respFname)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(result), nil
}

func (s *Server) handleReformat(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s.updateActivity()

	args := req.GetArguments()
	text, ok := args["text"].(string)
	if !ok || text == "" {
		return mcp.NewToolResultError("text parameter is required"), nil
	}

	result, err := s.executeReformat(text)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(result), nil
}

func (s *Server) handleExport(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s.updateActivity()

	args := req.GetArguments()
	path, _ := args["path"].(string)

	result, err := s.executeExport(path)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(result), nil
}

// Execution functions (implementations)

func (s *Server) executeFind(pattern, ready string, exact bool, limit int) (string, error) {
	rows, err := s.store.QueryTelecommands(store.TelecommandFilter{
		Name:      pattern,
		Exact:     exact,
		Readiness: ready,
		Status:    "active",
		Limit:     limit,
	})
	if err != nil {
		return "", fmt.Errorf("search failed: %w", err)
	}

	results := make([]map[string]interface{}, 0, len(rows))
	for _, r := range rows {
		results = append(results, map[string]interface{}{
			"name":      r.Name,
			"function":  r.FunctionSymbol,
			"args":      r.ArgumentCount,
			"readiness": r.ReadinessLevel,
		})
	}

	return toJSON(map[string]interface{}{
		"pattern": pattern,
		"count":   len(results),
		"results": results,
	})
}

func (s *Server) executeShow(name, density string) (string, error) {
	d, err := output.ParseDensity(density)
	if err != nil {
		return "", err
	}

	row, err := s.store.GetTelecommand(name)
	if err != nil {
		// Fall back to a substring search before giving up
		rows, qerr := s.store.QueryTelecommands(store.TelecommandFilter{
			Name:   name,
			Status: "active",
			Limit:  1,
		})
		if qerr != nil || len(rows) == 0 {
			return "", fmt.Errorf("telecommand not found: %s", name)
		}
		row = rows[0]
	}

	ext := row.ToExtract()
	rec := output.NewRecordOutput(&ext, d)
	rec.Status = row.Status
	if d.IncludesSymbols() {
		rec.SourceFile = row.SourceFile
	}
	if d.IncludesTimestamps() {
		rec.Timestamps = &output.Timestamps{
			FirstSeen: row.FirstSeen.Format(time.RFC3339),
			LastSeen:  row.LastSeen.Format(time.RFC3339),
		}
	}

	return toJSON(map[string]*output.RecordOutput{row.Name: rec})
}

func (s *Server) executePreview(name, argsStr string, tssent bool, at, tsexec, respFname string) (string, error) {
	row, err := s.store.GetTelecommand(name)
	if err != nil {
		return "", fmt.Errorf("telecommand not found: %s", name)
	}

	var args []string
	if argsStr != "" {
		args = strings.Split(argsStr, ",")
		for i := range args {
			args[i] = strings.TrimSpace(args[i])
		}
	}

	if len(args) != row.ArgumentCount {
		return "", fmt.Errorf("%s takes %d argument(s), got %d",
			name, row.ArgumentCount, len(args))
	}

	var ts time.Time
	if at != "" {
		ts, err = time.Parse(time.RFC3339, at)
		if err != nil {
			return "", fmt.Errorf("invalid at value %q: expected RFC3339", at)
		}
	}

	uplink := preview.Generate(name, args, preview.Options{
		IncludeTimestamp: tssent,
		Timestamp:        ts,
		ExecTime:         tsexec,
		ResponseFile:     respFname,
		Prefix:           s.cfg.Preview.Prefix,
	})

	return toJSON(map[string]interface{}{
		"telecommand": name,
		"uplink":      uplink,
		"length":      len(uplink),
	})
}

func (s *Server) executeReformat(text string) (string, error) {
	matches := jsonscan.ScanAll(text)
	formatted := jsonscan.Reformat(text)

	return toJSON(map[string]interface{}{
		"blobs_found": len(matches),
		"formatted":   formatted,
	})
}

func (s *Server) executeExport(path string) (string, error) {
	rows, err := s.store.QueryTelecommands(store.TelecommandFilter{Status: "active"})
	if err != nil {
		return "", fmt.Errorf("query failed: %w", err)
	}
	if len(rows) == 0 {
		return "", fmt.Errorf("no telecommands indexed: run 'tcx scan' first")
	}

	if path == "" {
		dir := s.cfg.Output.ExportDir
		if dir == "" {
			dir = "."
		}
		path = filepath.Join(dir, output.ExportFilename(time.Now()))
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(s.projectRoot, path)
	}

	records := make([]extract.Telecommand, 0, len(rows))
	for _, r := range rows {
		records = append(records, r.ToExtract())
	}

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create export file: %w", err)
	}
	defer f.Close()

	if err := output.WriteTelecommandCSV(f, records); err != nil {
		return "", fmt.Errorf("write csv: %w", err)
	}

	return toJSON(map[string]interface{}{
		"path":  path,
		"count": len(records),
	})
}

// Helper functions

func toJSON(v interface{}) (string, error) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", err
	}
	return string(b), nil
}
