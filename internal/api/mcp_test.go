package api

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/kalambet/folio/internal/answer"
	"github.com/kalambet/folio/internal/chat"
	"github.com/kalambet/folio/internal/profile"
	"github.com/kalambet/folio/internal/storage"
)

// --- mocks ---

type staticGenerator struct{ answer string }

func (g staticGenerator) Generate(context.Context, string, []answer.Turn, string) (string, error) {
	return g.answer, nil
}

// --- helpers ---

func newTestMCPDeps(t *testing.T) (MCPDeps, *storage.Store) {
	t.Helper()
	store, err := storage.Open(":memory:")
	if err != nil {
		t.Fatalf("opening store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	seed := profile.Profile{
		Name:   "Alex Rivera",
		Title:  "Backend Engineer",
		Skills: []profile.Skill{{Name: "Go", Level: "Advanced", Category: "Languages"}},
	}
	if err := store.ReplaceProfile(context.Background(), seed); err != nil {
		t.Fatalf("seeding: %v", err)
	}

	return MCPDeps{
		Chat:      chat.NewService(store, staticGenerator{answer: "Alex writes Go."}),
		Portfolio: store,
		Version:   "test",
	}, store
}

func toolText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	if len(result.Content) == 0 {
		t.Fatal("no content in result")
	}
	tc, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("expected TextContent, got %T", result.Content[0])
	}
	return tc.Text
}

func makeCallToolRequest(name string, args map[string]interface{}) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      name,
			Arguments: args,
		},
	}
}

func makeReadResourceRequest(uri string) mcp.ReadResourceRequest {
	return mcp.ReadResourceRequest{
		Params: mcp.ReadResourceParams{
			URI: uri,
		},
	}
}

// --- tests ---

func TestMCPTool_AskPortfolio_Question(t *testing.T) {
	deps, _ := newTestMCPDeps(t)
	handler := mcpAskPortfolio(deps)

	result, err := handler(context.Background(), makeCallToolRequest("ask_portfolio", map[string]interface{}{
		"message": "What languages?",
		"history": `[{"role":"user","content":"hi"}]`,
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.IsError {
		t.Fatalf("unexpected tool error: %s", toolText(t, result))
	}
	if got := toolText(t, result); got != "Alex writes Go." {
		t.Errorf("answer = %q", got)
	}
}

func TestMCPTool_AskPortfolio_Mutation(t *testing.T) {
	deps, store := newTestMCPDeps(t)
	handler := mcpAskPortfolio(deps)

	result, err := handler(context.Background(), makeCallToolRequest("ask_portfolio", map[string]interface{}{
		"message": "add project title=CLI summary=A tool stack=Go,Cobra",
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := toolText(t, result); got != "Added project: CLI." {
		t.Errorf("answer = %q", got)
	}

	p, err := store.LoadProfile(context.Background())
	if err != nil {
		t.Fatalf("LoadProfile: %v", err)
	}
	if len(p.Projects) != 1 || p.Projects[0].Title != "CLI" {
		t.Errorf("projects = %+v", p.Projects)
	}
}

func TestMCPTool_AskPortfolio_InvalidInput(t *testing.T) {
	deps, _ := newTestMCPDeps(t)
	handler := mcpAskPortfolio(deps)

	cases := []map[string]interface{}{
		{},
		{"message": "hi", "history": "not json"},
		{"message": "hi", "history": `[{"role":"system","content":"x"}]`},
	}
	for _, args := range cases {
		result, err := handler(context.Background(), makeCallToolRequest("ask_portfolio", args))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !result.IsError {
			t.Errorf("args %v: expected tool error, got %q", args, toolText(t, result))
		}
	}
}

func TestMCPTool_AskPortfolio_StoreError(t *testing.T) {
	deps := MCPDeps{Chat: &mockAnswerer{err: errors.New("boom")}}
	handler := mcpAskPortfolio(deps)

	result, err := handler(context.Background(), makeCallToolRequest("ask_portfolio", map[string]interface{}{"message": "hi"}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.IsError {
		t.Fatal("expected tool error")
	}
}

func TestMCPResource_Portfolio(t *testing.T) {
	deps, _ := newTestMCPDeps(t)
	handler := mcpResourcePortfolio(deps)

	contents, err := handler(context.Background(), makeReadResourceRequest("portfolio://profile"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(contents) != 1 {
		t.Fatalf("expected 1 content, got %d", len(contents))
	}

	tc, ok := contents[0].(mcp.TextResourceContents)
	if !ok {
		t.Fatalf("expected TextResourceContents, got %T", contents[0])
	}
	if tc.URI != "portfolio://profile" {
		t.Errorf("URI = %q", tc.URI)
	}

	var p profile.Profile
	if err := json.Unmarshal([]byte(tc.Text), &p); err != nil {
		t.Fatalf("failed to parse portfolio JSON: %v", err)
	}
	if p.Name != "Alex Rivera" || len(p.Skills) != 1 {
		t.Errorf("portfolio = %+v", p)
	}
}

func TestMCPResource_Portfolio_NotSeeded(t *testing.T) {
	deps := MCPDeps{Portfolio: &mockPortfolio{err: storage.ErrNotFound}}
	handler := mcpResourcePortfolio(deps)

	_, err := handler(context.Background(), makeReadResourceRequest("portfolio://profile"))
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestMCPServer_ConcurrentCalls(t *testing.T) {
	deps, store := newTestMCPDeps(t)
	handler := mcpAskPortfolio(deps)

	var wg sync.WaitGroup
	errs := make(chan error, 10)

	for i := 0; i < 5; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, err := handler(context.Background(), makeCallToolRequest("ask_portfolio", map[string]interface{}{
				"message": "add skill Rust",
			}))
			if err != nil {
				errs <- err
			}
		}()
		go func() {
			defer wg.Done()
			_, err := handler(context.Background(), makeCallToolRequest("ask_portfolio", map[string]interface{}{
				"message": "What skills?",
			}))
			if err != nil {
				errs <- err
			}
		}()
	}

	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatalf("concurrent call failed: %v", err)
	}

	p, err := store.LoadProfile(context.Background())
	if err != nil {
		t.Fatalf("LoadProfile: %v", err)
	}
	if len(p.Skills) != 6 {
		t.Errorf("skills = %d, want 6", len(p.Skills))
	}
}

func TestNewMCPServer(t *testing.T) {
	deps, _ := newTestMCPDeps(t)
	if s := NewMCPServer(deps); s == nil {
		t.Fatal("NewMCPServer returned nil")
	}
}
