package mcp

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/samber/lo"

	"github.com/akoskomuves/promptly/internal/analyzer"
	"github.com/akoskomuves/promptly/internal/config"
	"github.com/akoskomuves/promptly/internal/session"
)

// maxLineBytes bounds a single JSON-RPC request line.
const maxLineBytes = 4 << 20

const protocolVersion = "2024-11-05"

// JSON-RPC 2.0 error codes.
const (
	codeParseError     = -32700
	codeMethodNotFound = -32601
	codeInvalidParams  = -32602
)

// SessionSource supplies stored session rows to the tools.
type SessionSource interface {
	ListAllSessions() ([]session.RawRecord, error)
	GetSession(id string) (session.RawRecord, error)
}

// Server is an MCP stdio server. It reads JSON-RPC requests from r and
// writes JSON-RPC responses to w. Calls are dispatched to registered tools.
type Server struct {
	tools   []toolDef
	source  SessionSource
	quality *analyzer.QualityAnalyzer
	prices  analyzer.PriceTable
	trends  config.Trends
	overlap analyzer.OverlapOptions
	version string
	log     *slog.Logger

	// now is the reference time for week boundaries.
	now func() time.Time
}

// toolDef describes a registered MCP tool.
type toolDef struct {
	Name        string
	Description string
	InputSchema json.RawMessage
	Handler     toolHandler
}

type toolHandler func(args json.RawMessage) (any, error)

type jsonrpcRequest struct {
	JSONRPC string           `json:"jsonrpc"`
	ID      *json.RawMessage `json:"id,omitempty"`
	Method  string           `json:"method"`
	Params  json.RawMessage  `json:"params,omitempty"`
}

type jsonrpcResponse struct {
	JSONRPC string           `json:"jsonrpc"`
	ID      *json.RawMessage `json:"id,omitempty"`
	Result  any              `json:"result,omitempty"`
	Error   *jsonrpcError    `json:"error,omitempty"`
}

type jsonrpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type toolsCallParams struct {
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments,omitempty"`
}

// toolsCallResult is the MCP result of tools/call. Tool failures are
// reported here with IsError set, not as JSON-RPC errors.
type toolsCallResult struct {
	Content []mcpContent `json:"content"`
	IsError bool         `json:"isError,omitempty"`
}

type mcpContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type toolListEntry struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	InputSchema json.RawMessage `json:"inputSchema"`
}

// methodFunc answers one JSON-RPC method.
type methodFunc func(s *Server, params json.RawMessage) (any, *jsonrpcError)

var methods = map[string]methodFunc{
	"initialize": (*Server).initialize,
	"tools/list": (*Server).listTools,
	"tools/call": (*Server).invokeTool,
	"ping": func(*Server, json.RawMessage) (any, *jsonrpcError) {
		return struct{}{}, nil
	},
}

// NewServer constructs a Server reading sessions from src. cfg supplies
// pricing, the context window, and the trend and overlap settings.
func NewServer(src SessionSource, cfg *config.Config, version string) *Server {
	s := &Server{
		source:  src,
		quality: analyzer.NewQualityAnalyzer(cfg.Patterns()),
		prices:  cfg.PriceTable(),
		trends:  cfg.Trends,
		overlap: analyzer.OverlapOptions{IncludeTouching: cfg.Overlap.IncludeTouching},
		version: version,
		log:     slog.New(slog.DiscardHandler),
		now:     time.Now,
	}
	addTools(s)
	return s
}

// SetLogger routes request diagnostics to l. Stdout carries the protocol, so
// l must write elsewhere.
func (s *Server) SetLogger(l *slog.Logger) {
	s.log = l
}

func (s *Server) registerTool(def toolDef) {
	s.tools = append(s.tools, def)
}

// Run serves newline-delimited JSON-RPC 2.0 requests from r, writing one
// response line per request to w. It returns nil when r reaches EOF or ctx is
// cancelled, and the read or write error otherwise.
func (s *Server) Run(ctx context.Context, r io.Reader, w io.Writer) error {
	lines := make(chan string)
	readErr := make(chan error, 1)
	go func() {
		sc := bufio.NewScanner(r)
		sc.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-ctx.Done():
				return
			}
		}
		readErr <- sc.Err()
	}()

	bw := bufio.NewWriter(w)
	for {
		select {
		case <-ctx.Done():
			return nil
		case err := <-readErr:
			return err
		case line := <-lines:
			resp, ok := s.dispatch(line)
			if !ok {
				continue
			}
			if err := writeLine(bw, resp); err != nil {
				return fmt.Errorf("writing response: %w", err)
			}
		}
	}
}

// dispatch answers one request line. ok is false for notifications.
func (s *Server) dispatch(line string) (resp jsonrpcResponse, ok bool) {
	resp.JSONRPC = "2.0"

	var req jsonrpcRequest
	if err := json.Unmarshal([]byte(line), &req); err != nil {
		s.log.Debug("mcp: unparseable request", "err", err)
		resp.Error = &jsonrpcError{Code: codeParseError, Message: "Parse error"}
		return resp, true
	}
	if req.ID == nil {
		s.log.Debug("mcp: notification", "method", req.Method)
		return resp, false
	}
	resp.ID = req.ID

	method, found := methods[req.Method]
	if !found {
		resp.Error = &jsonrpcError{Code: codeMethodNotFound, Message: "Method not found"}
		return resp, true
	}
	resp.Result, resp.Error = method(s, req.Params)
	return resp, true
}

func (s *Server) initialize(json.RawMessage) (any, *jsonrpcError) {
	return map[string]any{
		"protocolVersion": protocolVersion,
		"capabilities":    map[string]any{"tools": map[string]any{}},
		"serverInfo":      map[string]any{"name": "promptly", "version": s.version},
	}, nil
}

func (s *Server) listTools(json.RawMessage) (any, *jsonrpcError) {
	entries := lo.Map(s.tools, func(t toolDef, _ int) toolListEntry {
		return toolListEntry{Name: t.Name, Description: t.Description, InputSchema: t.InputSchema}
	})
	return map[string]any{"tools": entries}, nil
}

func (s *Server) invokeTool(raw json.RawMessage) (any, *jsonrpcError) {
	var params toolsCallParams
	if err := json.Unmarshal(raw, &params); err != nil {
		return nil, &jsonrpcError{Code: codeInvalidParams, Message: "Invalid params"}
	}

	def, found := lo.Find(s.tools, func(t toolDef) bool { return t.Name == params.Name })
	if !found {
		return toolError(fmt.Errorf("unknown tool: %s", params.Name)), nil
	}

	args := params.Arguments
	if len(args) == 0 {
		args = json.RawMessage(`{}`)
	}
	result, err := def.Handler(args)
	if err == nil {
		var data []byte
		if data, err = json.Marshal(result); err == nil {
			return toolsCallResult{Content: []mcpContent{{Type: "text", Text: string(data)}}}, nil
		}
	}
	s.log.Debug("mcp: tool failed", "tool", params.Name, "err", err)
	return toolError(err), nil
}

func toolError(err error) toolsCallResult {
	return toolsCallResult{
		Content: []mcpContent{{Type: "text", Text: err.Error()}},
		IsError: true,
	}
}

// writeLine encodes resp as one line and flushes it to the client.
func writeLine(bw *bufio.Writer, resp jsonrpcResponse) error {
	if err := json.NewEncoder(bw).Encode(resp); err != nil {
		return err
	}
	return bw.Flush()
}
