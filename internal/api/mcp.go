package api

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/kalambet/folio/internal/answer"
	"github.com/kalambet/folio/internal/chat"
)

// MCPDeps holds dependencies for the MCP server.
type MCPDeps struct {
	Chat      Answerer
	Portfolio PortfolioReader
	Version   string
}

// NewMCPServer creates an MCP server exposing the portfolio assistant.
func NewMCPServer(deps MCPDeps) *server.MCPServer {
	version := deps.Version
	if version == "" {
		version = "dev"
	}
	s := server.NewMCPServer(
		"folio",
		version,
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(false, true),
		server.WithInstructions("folio answers questions about one person's portfolio and accepts \"add skill/project/experience\" commands."),
		server.WithRecovery(),
	)

	s.AddTool(
		mcp.NewTool("ask_portfolio",
			mcp.WithDescription("Ask a question about the portfolio, or send an add command such as \"add skill name=Go level=Advanced\"."),
			mcp.WithString("message", mcp.Description("The question or command"), mcp.Required()),
			mcp.WithString("history", mcp.Description("Optional JSON array of prior {role, content} turns")),
		),
		mcpAskPortfolio(deps),
	)

	s.AddResource(
		mcp.NewResource(
			"portfolio://profile",
			"Portfolio",
			mcp.WithResourceDescription("The full portfolio as JSON"),
			mcp.WithMIMEType("application/json"),
		),
		mcpResourcePortfolio(deps),
	)

	return s
}

func mcpAskPortfolio(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		message, err := req.RequireString("message")
		if err != nil {
			return mcpError("message is required"), nil
		}

		var history []answer.Turn
		if raw := req.GetString("history", ""); raw != "" {
			if err := json.Unmarshal([]byte(raw), &history); err != nil {
				return mcpError(fmt.Sprintf("invalid history JSON: %v", err)), nil
			}
		}

		chatReq := chat.Request{Message: message, History: history}
		if err := validateChatRequest(chatReq); err != nil {
			return mcpError(err.Error()), nil
		}

		resp, err := deps.Chat.Answer(ctx, chatReq)
		if err != nil {
			return mcpError(fmt.Sprintf("answering failed: %v", err)), nil
		}
		return mcpText(resp.Answer), nil
	}
}

func mcpResourcePortfolio(deps MCPDeps) server.ResourceHandlerFunc {
	return func(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		p, err := deps.Portfolio.LoadProfile(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to load portfolio: %w", err)
		}

		b, err := json.Marshal(p)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal portfolio: %w", err)
		}

		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      req.Params.URI,
				MIMEType: "application/json",
				Text:     string(b),
			},
		}, nil
	}
}

func mcpText(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: text},
		},
	}
}

func mcpError(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: msg},
		},
		IsError: true,
	}
}
