// internal/chat/engine.go
package chat

import (
	"context"
	"errors"
	"fmt"
	"time"

	errs "github.com/bettersnoozing/hack-mcwics/internal/common/errors"
	"github.com/bettersnoozing/hack-mcwics/internal/common/logger"
	"github.com/bettersnoozing/hack-mcwics/internal/common/metrics"
	"github.com/bettersnoozing/hack-mcwics/internal/models"
)

// Generator produces the conversational reply. The system note is the only
// pipeline output it sees; it never learns whether a write happened beyond
// what the note says.
type Generator interface {
	Reply(ctx context.Context, message string, history []models.ChatMessage, systemNote string) (string, error)
}

// Reply is the outcome of one chat turn.
type Reply struct {
	Content string `json:"content"`
	// CommandApplied is true only when a status update was recognized and
	// the store confirmed it (freshly applied or already in state).
	CommandApplied bool `json:"commandApplied"`
}

// Engine runs the chat pipeline: resolve scope, interpret, authorize, apply,
// then generate a reply over the session history. A turn never fails outright
// because a command inside it failed; the failure becomes part of the reply.
type Engine struct {
	resolver  *Resolver
	gate      *Gate
	executor  *Executor
	sessions  SessionStore
	generator Generator
	logger    logger.Logger
}

func NewEngine(resolver *Resolver, gate *Gate, executor *Executor, sessions SessionStore, generator Generator, log logger.Logger) *Engine {
	return &Engine{
		resolver:  resolver,
		gate:      gate,
		executor:  executor,
		sessions:  sessions,
		generator: generator,
		logger:    log.WithFields(map[string]interface{}{"component": "chat-engine"}),
	}
}

// Handle processes one user message and returns the assistant reply.
func (e *Engine) Handle(ctx context.Context, sessionID, callerEmail, message string) (*Reply, error) {
	start := time.Now()
	defer func() {
		metrics.ChatPipelineDuration.Observe(time.Since(start).Seconds())
	}()

	scope := e.resolver.Resolve(ctx, callerEmail)
	metrics.ChatMessagesTotal.WithLabelValues(scope.Kind.String()).Inc()

	history, err := e.sessions.History(ctx, sessionID)
	if err != nil {
		e.logger.Warn("session history unavailable, continuing without it", map[string]interface{}{
			"sessionId": sessionID,
			"error":     err.Error(),
		})
		history = nil
	}

	systemNote, applied := e.runCommand(ctx, scope, message)

	content := e.generate(ctx, message, history, systemNote)

	now := time.Now().UTC()
	e.appendTurn(ctx, sessionID, models.ChatMessage{Role: "user", Content: message, Timestamp: now})
	e.appendTurn(ctx, sessionID, models.ChatMessage{Role: "assistant", Content: content, Timestamp: now})

	return &Reply{Content: content, CommandApplied: applied}, nil
}

// Reset discards a session's history.
func (e *Engine) Reset(ctx context.Context, sessionID string) error {
	return e.sessions.Clear(ctx, sessionID)
}

// runCommand interprets and, when recognized, executes a status-update
// command. The returned note describes what happened for the reply generator;
// it is empty for ordinary conversation.
func (e *Engine) runCommand(ctx context.Context, scope Scope, message string) (note string, applied bool) {
	match := Interpret(message, scope.Pool)
	if match == nil {
		return "", false
	}

	if err := e.gate.Authorize(ctx, scope.CallerEmail, &match.Application); err != nil {
		return e.failNote(scope, match, err), false
	}

	outcome, err := e.executor.ApplyStatus(ctx, match.Application.ID, string(match.Status), scope.CallerEmail)
	if err != nil {
		return e.failNote(scope, match, err), false
	}

	metrics.ChatCommandsTotal.WithLabelValues(string(outcome.Outcome)).Inc()

	name := match.Application.Applicant.Name
	if name == "" {
		name = match.Application.ID
	}
	switch outcome.Outcome {
	case OutcomeAlreadyInState:
		return fmt.Sprintf("The application from %s was already marked %s; nothing changed.", name, match.Status), true
	default:
		return fmt.Sprintf("The application from %s has been updated to %s.", name, match.Status), true
	}
}

func (e *Engine) failNote(scope Scope, match *Match, err error) string {
	code := string(errs.ErrCodeStoreUnavailable)
	var stdErr *errs.StandardError
	if errors.As(err, &stdErr) {
		code = string(stdErr.Code)
	}
	metrics.ChatCommandFailures.WithLabelValues(code).Inc()

	e.logger.Warn("status-update command failed", map[string]interface{}{
		"caller":        scope.CallerEmail,
		"applicationId": match.Application.ID,
		"status":        string(match.Status),
		"errorCode":     code,
	})

	name := match.Application.Applicant.Name
	if name == "" {
		name = match.Application.ID
	}

	var msg string
	switch {
	case errors.Is(err, errs.ErrUnauthorized):
		msg = "The caller is not authorized to update application statuses."
	case errors.Is(err, errs.ErrNotFound):
		msg = fmt.Sprintf("The application from %s could not be found; it may have been removed.", name)
	case errors.Is(err, errs.ErrInvalidStatus):
		msg = fmt.Sprintf("The requested status for %s is not recognized.", name)
	case errors.Is(err, errs.ErrNoChange):
		msg = fmt.Sprintf("The update for %s could not be confirmed; the record was not changed.", name)
	default:
		msg = fmt.Sprintf("The update for %s failed because the application store is unavailable.", name)
	}
	return msg + " Do not claim the update succeeded."
}

// generate produces the reply text. Without a generator, or when it errors,
// the system note itself (or a canned line) carries the turn so the outcome
// is never hidden from the user.
func (e *Engine) generate(ctx context.Context, message string, history []models.ChatMessage, systemNote string) string {
	if e.generator == nil {
		if systemNote != "" {
			return systemNote
		}
		return "I can help you review applications and update their statuses. Ask me to mark an applicant's status, for example: \"move Jane Doe to under review\"."
	}

	content, err := e.generator.Reply(ctx, message, history, systemNote)
	if err != nil {
		e.logger.Warn("reply generation failed, falling back to system note", map[string]interface{}{
			"error": err.Error(),
		})
		if systemNote != "" {
			return systemNote
		}
		return "Sorry, I could not generate a reply just now. Please try again."
	}
	return content
}

func (e *Engine) appendTurn(ctx context.Context, sessionID string, msg models.ChatMessage) {
	if err := e.sessions.Append(ctx, sessionID, msg); err != nil {
		e.logger.Warn("failed to append session history", map[string]interface{}{
			"sessionId": sessionID,
			"error":     err.Error(),
		})
	}
}
