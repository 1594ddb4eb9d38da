package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/kalambet/folio/internal/answer"
	"github.com/kalambet/folio/internal/chat"
	"github.com/kalambet/folio/internal/profile"
	"github.com/kalambet/folio/internal/proxy"
	"github.com/kalambet/folio/internal/storage"
)

// --- mocks ---

type mockAnswerer struct {
	resp chat.Response
	err  error

	calls int
	last  chat.Request
}

func (m *mockAnswerer) Answer(_ context.Context, req chat.Request) (chat.Response, error) {
	m.calls++
	m.last = req
	return m.resp, m.err
}

type mockPortfolio struct {
	p   profile.Profile
	err error
}

func (m *mockPortfolio) LoadProfile(context.Context) (profile.Profile, error) {
	return m.p, m.err
}

// --- helpers ---

func newTestHandler(a Answerer, p PortfolioReader) http.Handler {
	return NewHandler(Deps{
		Chat:        a,
		Portfolio:   p,
		Env:         "test",
		CORSOrigins: []string{"http://localhost:5173"},
	})
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func errorBody(t *testing.T, rr *httptest.ResponseRecorder) (msg, typ string) {
	t.Helper()
	var body struct {
		Error struct {
			Message string `json:"message"`
			Type    string `json:"type"`
		} `json:"error"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&body); err != nil {
		t.Fatalf("decoding error body: %v", err)
	}
	return body.Error.Message, body.Error.Type
}

// --- tests ---

func TestHealth(t *testing.T) {
	h := newTestHandler(&mockAnswerer{}, &mockPortfolio{})
	rr := do(t, h, http.MethodGet, "/health", "")

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	var body map[string]string
	json.NewDecoder(rr.Body).Decode(&body)
	if body["status"] != "ok" || body["env"] != "test" {
		t.Errorf("body = %v", body)
	}
}

func TestRootAndFavicon(t *testing.T) {
	h := newTestHandler(&mockAnswerer{}, &mockPortfolio{})

	if rr := do(t, h, http.MethodGet, "/", ""); rr.Code != http.StatusOK {
		t.Errorf("GET / status = %d, want 200", rr.Code)
	}
	rr := do(t, h, http.MethodGet, "/favicon.ico", "")
	if rr.Code != http.StatusNoContent || rr.Body.Len() != 0 {
		t.Errorf("GET /favicon.ico = %d with %d bytes, want empty 204", rr.Code, rr.Body.Len())
	}
}

func TestGetPortfolio(t *testing.T) {
	p := profile.Profile{
		Name:     "Alex Rivera",
		Projects: []profile.Project{{ID: 7, Title: "Folio", Stack: []string{"Go"}}},
	}
	h := newTestHandler(&mockAnswerer{}, &mockPortfolio{p: p})

	rr := do(t, h, http.MethodGet, "/api/portfolio", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}

	var got map[string]any
	if err := json.NewDecoder(rr.Body).Decode(&got); err != nil {
		t.Fatalf("decoding: %v", err)
	}
	if got["name"] != "Alex Rivera" {
		t.Errorf("name = %v", got["name"])
	}
	projects, _ := got["projects"].([]any)
	if len(projects) != 1 {
		t.Fatalf("projects = %v", got["projects"])
	}
	if first, _ := projects[0].(map[string]any); first["id"] != float64(7) {
		t.Errorf("project = %v, want id 7", first)
	}
}

func TestGetPortfolio_NotSeeded(t *testing.T) {
	notFound := fmt.Errorf("portfolio data %w", storage.ErrNotFound)
	h := newTestHandler(&mockAnswerer{}, &mockPortfolio{err: notFound})

	rr := do(t, h, http.MethodGet, "/api/portfolio", "")
	if rr.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rr.Code)
	}
	msg, typ := errorBody(t, rr)
	if typ != "not_found_error" || !strings.Contains(msg, "not found") {
		t.Errorf("error = %q (%s)", msg, typ)
	}
}

func TestChat_Success(t *testing.T) {
	a := &mockAnswerer{resp: chat.Response{Answer: "Go and SQL."}}
	h := newTestHandler(a, &mockPortfolio{})

	body := `{"message":"What skills?","history":[{"role":"user","content":"hi"},{"role":"assistant","content":"hello"}]}`
	rr := do(t, h, http.MethodPost, "/api/chat", body)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rr.Code, rr.Body.String())
	}

	var resp chat.Response
	json.NewDecoder(rr.Body).Decode(&resp)
	if resp.Answer != "Go and SQL." {
		t.Errorf("answer = %q", resp.Answer)
	}
	if a.last.Message != "What skills?" || len(a.last.History) != 2 {
		t.Errorf("request = %+v", a.last)
	}
}

func TestChat_HistoryOptional(t *testing.T) {
	a := &mockAnswerer{resp: chat.Response{Answer: "ok"}}
	h := newTestHandler(a, &mockPortfolio{})

	rr := do(t, h, http.MethodPost, "/api/chat", `{"message":"hi"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	if a.last.History != nil {
		t.Errorf("history = %v, want none", a.last.History)
	}
}

func TestChat_Validation(t *testing.T) {
	long := strings.Repeat("a", maxTextLength+1)
	exact := strings.Repeat("é", maxTextLength)

	tests := []struct {
		name   string
		body   string
		status int
	}{
		{"malformed json", `{"message":`, http.StatusUnprocessableEntity},
		{"missing message", `{}`, http.StatusUnprocessableEntity},
		{"empty message", `{"message":""}`, http.StatusUnprocessableEntity},
		{"message too long", `{"message":"` + long + `"}`, http.StatusUnprocessableEntity},
		{"message at limit in runes", `{"message":"` + exact + `"}`, http.StatusOK},
		{"bad role", `{"message":"hi","history":[{"role":"system","content":"x"}]}`, http.StatusUnprocessableEntity},
		{"empty history content", `{"message":"hi","history":[{"role":"user","content":""}]}`, http.StatusUnprocessableEntity},
		{"long history content", `{"message":"hi","history":[{"role":"assistant","content":"` + long + `"}]}`, http.StatusUnprocessableEntity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := &mockAnswerer{resp: chat.Response{Answer: "ok"}}
			h := newTestHandler(a, &mockPortfolio{})

			rr := do(t, h, http.MethodPost, "/api/chat", tt.body)
			if rr.Code != tt.status {
				t.Fatalf("status = %d, want %d: %s", rr.Code, tt.status, rr.Body.String())
			}
			if tt.status != http.StatusOK {
				if _, typ := errorBody(t, rr); typ != "invalid_request_error" {
					t.Errorf("type = %q, want invalid_request_error", typ)
				}
				if a.calls != 0 {
					t.Errorf("answerer called %d times, want 0", a.calls)
				}
			}
		})
	}
}

func TestChat_Errors(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		typ    string
	}{
		{"not seeded", fmt.Errorf("loading: %w", storage.ErrNotFound), http.StatusNotFound, "not_found_error"},
		{"store failure", errors.New("database is locked"), http.StatusInternalServerError, "api_error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestHandler(&mockAnswerer{err: tt.err}, &mockPortfolio{})

			rr := do(t, h, http.MethodPost, "/api/chat", `{"message":"hi"}`)
			if rr.Code != tt.status {
				t.Fatalf("status = %d, want %d", rr.Code, tt.status)
			}
			msg, typ := errorBody(t, rr)
			if typ != tt.typ {
				t.Errorf("type = %q, want %q", typ, tt.typ)
			}
			if tt.status == http.StatusInternalServerError && strings.Contains(msg, "locked") {
				t.Errorf("internal error detail leaked: %q", msg)
			}
		})
	}
}

// TestChat_EndToEnd runs the real chat service against an in-memory store
// with no API key configured.
func TestChat_EndToEnd(t *testing.T) {
	store, err := storage.Open(":memory:")
	if err != nil {
		t.Fatalf("opening store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	if err := store.ReplaceProfile(context.Background(), profile.Profile{Name: "Alex Rivera", Title: "Engineer"}); err != nil {
		t.Fatalf("ReplaceProfile: %v", err)
	}

	svc := chat.NewService(store, answer.NewGenerator(proxy.NewClient(""), "m"))
	h := newTestHandler(svc, store)

	rr := do(t, h, http.MethodPost, "/api/chat", `{"message":"add skill name=Rust level=Beginner category=Systems"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rr.Code, rr.Body.String())
	}
	var resp chat.Response
	json.NewDecoder(rr.Body).Decode(&resp)
	if resp.Answer != "Added skill: Rust (Beginner, Systems)." {
		t.Errorf("answer = %q", resp.Answer)
	}

	rr = do(t, h, http.MethodGet, "/api/portfolio", "")
	var p profile.Profile
	json.NewDecoder(rr.Body).Decode(&p)
	if len(p.Skills) != 1 || p.Skills[0].Name != "Rust" {
		t.Errorf("skills = %+v", p.Skills)
	}

	rr = do(t, h, http.MethodPost, "/api/chat", `{"message":"What do you do?"}`)
	json.NewDecoder(rr.Body).Decode(&resp)
	if resp.Answer != answer.MissingKeyAnswer {
		t.Errorf("answer = %q, want %q", resp.Answer, answer.MissingKeyAnswer)
	}
}
