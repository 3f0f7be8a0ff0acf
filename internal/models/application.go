// internal/models/application.go
package models

import (
	"strings"
	"time"
)

// ApplicationStatus is the canonical status enumeration. Values are lowercase
// with underscores; legacy uppercase forms are folded in by NormalizeStatus.
type ApplicationStatus string

const (
	StatusPending            ApplicationStatus = "pending"
	StatusUnderReview        ApplicationStatus = "under_review"
	StatusInterviewScheduled ApplicationStatus = "interview_scheduled"
	StatusAccepted           ApplicationStatus = "accepted"
	StatusRejected           ApplicationStatus = "rejected"
	StatusWaitlisted         ApplicationStatus = "waitlisted"
	StatusWithdrawn          ApplicationStatus = "withdrawn"
)

// ValidStatuses returns the enumeration in a fixed order.
func ValidStatuses() []string {
	return []string{
		string(StatusPending),
		string(StatusUnderReview),
		string(StatusInterviewScheduled),
		string(StatusAccepted),
		string(StatusRejected),
		string(StatusWaitlisted),
		string(StatusWithdrawn),
	}
}

// NormalizeStatus folds case, whitespace, and separator variants into the
// canonical enumeration. "submitted" is a historical alias of "pending".
func NormalizeStatus(s string) (ApplicationStatus, bool) {
	norm := strings.ToLower(strings.TrimSpace(s))
	norm = strings.ReplaceAll(norm, " ", "_")
	norm = strings.ReplaceAll(norm, "-", "_")
	if norm == "submitted" {
		norm = string(StatusPending)
	}
	switch ApplicationStatus(norm) {
	case StatusPending, StatusUnderReview, StatusInterviewScheduled,
		StatusAccepted, StatusRejected, StatusWaitlisted, StatusWithdrawn:
		return ApplicationStatus(norm), true
	}
	return "", false
}

// Applicant is the resolved identity of the person behind an application.
type Applicant struct {
	UserID string `json:"userId,omitempty"`
	Name   string `json:"name"`
	Email  string `json:"email"`
}

// Application is the canonical application shape every component past the
// record store adapter sees. Legacy field-name variants are mapped here once.
type Application struct {
	ID            string                 `json:"id"`
	AlternateIDs  []string               `json:"alternateIds,omitempty"`
	Applicant     Applicant              `json:"applicant"`
	RoleID        string                 `json:"roleId,omitempty"`
	ClubID        string                 `json:"clubId,omitempty"`
	Status        ApplicationStatus      `json:"status"`
	Answers       map[string]interface{} `json:"answers,omitempty"`
	SubmittedAt   time.Time              `json:"submittedAt,omitempty"`
	LastUpdatedBy string                 `json:"lastUpdatedBy,omitempty"`
	LastUpdatedAt time.Time              `json:"lastUpdatedAt,omitempty"`
}

// HasID reports whether the given identifier matches the primary key or any
// historical alternate identifier.
func (a *Application) HasID(id string) bool {
	if a.ID == id {
		return true
	}
	for _, alt := range a.AlternateIDs {
		if alt == id {
			return true
		}
	}
	return false
}
