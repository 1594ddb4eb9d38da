// Package chat answers one chat message: either by applying an add command
// to the portfolio or by asking the hosted model, falling back to a local
// keyword answer when the model fails.
package chat

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/kalambet/folio/internal/answer"
	"github.com/kalambet/folio/internal/mutation"
	"github.com/kalambet/folio/internal/profile"
	"github.com/kalambet/folio/internal/storage"
)

// Request is one incoming chat message with its prior turns.
type Request struct {
	Message string        `json:"message"`
	History []answer.Turn `json:"history"`
}

// Response carries exactly one answer.
type Response struct {
	Answer string `json:"answer"`
}

// Generator produces a grounded answer from the hosted model.
type Generator interface {
	Generate(ctx context.Context, message string, history []answer.Turn, contextBlob string) (string, error)
}

// Service orchestrates a single chat request. It holds no per-request state
// and is safe for concurrent use.
type Service struct {
	store     *storage.Store
	generator Generator
}

// NewService creates a chat Service.
func NewService(store *storage.Store, generator Generator) *Service {
	return &Service{store: store, generator: generator}
}

// Answer handles req. Store failures, including a missing portfolio
// (storage.ErrNotFound), are returned as errors; model failures never are.
func (s *Service) Answer(ctx context.Context, req Request) (Response, error) {
	log := slog.With("request_id", uuid.NewString())

	reply, handled, p, err := s.resolve(ctx, req.Message)
	if err != nil {
		log.Error("chat request failed", "error", err)
		return Response{}, err
	}
	if handled {
		log.Info("add command handled", "command", mutation.Classify(req.Message))
		return Response{Answer: reply}, nil
	}

	ans, err := s.generator.Generate(ctx, req.Message, req.History, profile.BuildContext(p))
	if err != nil {
		log.Warn("hosted model failed, using local answer",
			"error", err,
			"bucket", profile.BucketFor(req.Message),
		)
		return Response{Answer: profile.LocalAnswer(req.Message, p)}, nil
	}
	log.Debug("answered by hosted model", "history", len(req.History))
	return Response{Answer: ans}, nil
}

// resolve does all store work for one request on a single session and
// releases it before any model call is made.
func (s *Service) resolve(ctx context.Context, message string) (reply string, handled bool, p profile.Profile, err error) {
	sess, err := s.store.Acquire(ctx)
	if err != nil {
		return "", false, profile.Profile{}, err
	}
	defer sess.Close()

	reply, handled, err = mutation.Apply(ctx, sess, message)
	if err != nil || handled {
		return reply, handled, profile.Profile{}, err
	}

	p, err = sess.LoadProfile(ctx)
	return "", false, p, err
}
