package cvextract

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/hazyhaar/cvtext/kit"
)

// RegisterMCP registers extraction tools on an MCP server.
func (e *Engine) RegisterMCP(srv *mcp.Server) {
	e.registerExtractTool(srv)
	e.registerScoreTool(srv)
}

func inputSchema(properties map[string]any, required []string) map[string]any {
	s := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		s["required"] = required
	}
	return s
}

// --- extract ---

type extractReq struct {
	Path string `json:"path"`
}

func (e *Engine) registerExtractTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "cvtext_extract",
		Description: "Extract the best available plain text from a résumé PDF file.",
		InputSchema: inputSchema(map[string]any{
			"path": map[string]any{"type": "string", "description": "PDF file path to extract"},
		}, []string{"path"}),
	}

	endpoint := func(ctx context.Context, req any) (any, error) {
		r := req.(*extractReq)
		doc, err := os.ReadFile(r.Path)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", r.Path, err)
		}
		return e.Extract(ctx, doc)
	}

	decode := func(req *mcp.CallToolRequest) (any, error) {
		var r extractReq
		if err := json.Unmarshal(req.Params.Arguments, &r); err != nil {
			return nil, err
		}
		return &r, nil
	}

	kit.RegisterMCPTool(srv, tool, endpoint, decode)
}

// --- score ---

type scoreReq struct {
	Text string `json:"text"`
}

func (e *Engine) registerScoreTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "cvtext_score",
		Description: "Clean a text fragment and score its readability (0-100 plus quality bucket).",
		InputSchema: inputSchema(map[string]any{
			"text": map[string]any{"type": "string", "description": "Text fragment to clean and score"},
		}, []string{"text"}),
	}

	endpoint := func(_ context.Context, req any) (any, error) {
		r := req.(*scoreReq)
		cleaned := Clean(r.Text)
		score := scoreText(cleaned)
		return map[string]any{
			"cleaned": cleaned,
			"score":   score,
			"bucket":  bucketFor(score, e.cfg.Thresholds),
		}, nil
	}

	decode := func(req *mcp.CallToolRequest) (any, error) {
		var r scoreReq
		if err := json.Unmarshal(req.Params.Arguments, &r); err != nil {
			return nil, err
		}
		return &r, nil
	}

	kit.RegisterMCPTool(srv, tool, endpoint, decode)
}
