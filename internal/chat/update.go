// internal/chat/update.go
package chat

import (
	"context"
	"errors"

	errs "github.com/bettersnoozing/hack-mcwics/internal/common/errors"
	"github.com/bettersnoozing/hack-mcwics/internal/common/logger"
	"github.com/bettersnoozing/hack-mcwics/internal/models"
	"github.com/bettersnoozing/hack-mcwics/internal/store"
)

// Outcome classifies a successful status update.
type Outcome string

const (
	// OutcomeApplied means the store modified the record.
	OutcomeApplied Outcome = "applied"
	// OutcomeAlreadyInState means the record already carried the requested
	// status; the call is idempotent and treated as success.
	OutcomeAlreadyInState Outcome = "already_in_state"
)

// UpdateOutcome is the result of one applied status transition.
type UpdateOutcome struct {
	Outcome     Outcome
	Application *models.Application
}

// Executor performs audited, idempotent status transitions. It is shared by
// the chat pipeline and the PATCH endpoint; both go through the same contract.
type Executor struct {
	store  store.RecordStore
	logger logger.Logger
}

func NewExecutor(rs store.RecordStore, log logger.Logger) *Executor {
	return &Executor{
		store:  rs,
		logger: log.WithFields(map[string]interface{}{"component": "update-executor"}),
	}
}

// ApplyStatus transitions one application to newStatus, stamping the caller
// and time. At most one write attempt is made; there are no retries here.
func (e *Executor) ApplyStatus(ctx context.Context, applicationID, newStatus, callerEmail string) (*UpdateOutcome, error) {
	status, ok := models.NormalizeStatus(newStatus)
	if !ok {
		return nil, errs.NewInvalidStatusError(newStatus, models.ValidStatuses())
	}

	id := store.ParseRecordID(applicationID)

	result, err := e.store.UpdateApplicationStatus(ctx, id, store.StatusUpdate{
		Status:        status,
		LastUpdatedBy: callerEmail,
	})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, errs.NewNotFoundError(applicationID)
		}
		return nil, errs.NewStoreUnavailableError("applications", err)
	}

	if result.Modified {
		e.logger.Info("application status updated", map[string]interface{}{
			"applicationId": result.Application.ID,
			"status":        string(status),
			"updatedBy":     callerEmail,
		})
		return &UpdateOutcome{Outcome: OutcomeApplied, Application: result.Application}, nil
	}

	if result.Application != nil && result.Application.Status == status {
		return &UpdateOutcome{Outcome: OutcomeAlreadyInState, Application: result.Application}, nil
	}

	// Write attempted, store reports no modification, prior status differs:
	// ambiguous partial failure.
	return nil, errs.NewNoChangeError(applicationID)
}
