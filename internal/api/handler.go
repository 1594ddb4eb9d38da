package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"unicode/utf8"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/kalambet/folio/internal/chat"
	"github.com/kalambet/folio/internal/profile"
	"github.com/kalambet/folio/internal/storage"
)

const (
	maxRequestBodySize = 1 << 20 // 1MB
	maxTextLength      = 2000
)

// Answerer handles one chat request.
type Answerer interface {
	Answer(ctx context.Context, req chat.Request) (chat.Response, error)
}

// PortfolioReader loads the current portfolio.
type PortfolioReader interface {
	LoadProfile(ctx context.Context) (profile.Profile, error)
}

// Deps holds dependencies for the HTTP API.
type Deps struct {
	Chat        Answerer
	Portfolio   PortfolioReader
	Env         string
	CORSOrigins []string
}

// NewHandler returns the HTTP API: the chat and portfolio endpoints under
// /api plus health and root probes.
func NewHandler(deps Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(CORS(deps.CORSOrigins))

	r.Get("/", handleRoot)
	r.Get("/favicon.ico", handleFavicon)
	r.Get("/health", handleHealth(deps.Env))

	r.Route("/api", func(r chi.Router) {
		r.Get("/portfolio", handleGetPortfolio(deps))
		r.Post("/chat", handleChat(deps))
	})

	return r
}

func handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"message": "folio portfolio assistant",
		"health":  "/health",
	})
}

func handleFavicon(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}

func handleHealth(env string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "env": env})
	}
}

func handleGetPortfolio(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, err := deps.Portfolio.LoadProfile(r.Context())
		if err != nil {
			storeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, p)
	}
}

func handleChat(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
		defer r.Body.Close()

		var req chat.Request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpError(w, http.StatusUnprocessableEntity, "invalid_request_error", "invalid request body: %v", err)
			return
		}
		if err := validateChatRequest(req); err != nil {
			httpError(w, http.StatusUnprocessableEntity, "invalid_request_error", "%v", err)
			return
		}

		resp, err := deps.Chat.Answer(r.Context(), req)
		if err != nil {
			storeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func validateChatRequest(req chat.Request) error {
	if err := checkLength("message", req.Message); err != nil {
		return err
	}
	for i, turn := range req.History {
		if turn.Role != "user" && turn.Role != "assistant" {
			return fmt.Errorf("history[%d].role must be \"user\" or \"assistant\"", i)
		}
		if err := checkLength(fmt.Sprintf("history[%d].content", i), turn.Content); err != nil {
			return err
		}
	}
	return nil
}

func checkLength(field, value string) error {
	n := utf8.RuneCountInString(value)
	if n < 1 || n > maxTextLength {
		return fmt.Errorf("%s must be between 1 and %d characters", field, maxTextLength)
	}
	return nil
}

// storeError maps a failure from the store-backed paths to a response.
func storeError(w http.ResponseWriter, err error) {
	if errors.Is(err, storage.ErrNotFound) {
		httpError(w, http.StatusNotFound, "not_found_error", "%v", err)
		return
	}
	slog.Error("request failed", "error", err)
	httpError(w, http.StatusInternalServerError, "api_error", "internal error")
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func httpError(w http.ResponseWriter, code int, errType string, format string, args ...any) {
	writeJSON(w, code, map[string]any{
		"error": map[string]any{
			"message": fmt.Sprintf(format, args...),
			"type":    errType,
		},
	})
}
