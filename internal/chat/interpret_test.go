package chat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bettersnoozing/hack-mcwics/internal/models"
)

func testPool() []models.Application {
	return []models.Application{
		{
			ID:     "a1",
			Status: models.StatusPending,
			Applicant: models.Applicant{
				Name:  "Jane Doe",
				Email: "jane.doe@example.edu",
			},
		},
		{
			ID:     "a2",
			Status: models.StatusPending,
			Applicant: models.Applicant{
				Name:  "John Smith",
				Email: "john.smith@example.edu",
			},
		},
		{
			ID:     "a3",
			Status: models.StatusUnderReview,
			Applicant: models.Applicant{
				Name:  "Janet Doherty",
				Email: "janet.d@example.edu",
			},
		},
	}
}

func TestInterpret_RecognizedCommands(t *testing.T) {
	tests := []struct {
		name           string
		message        string
		expectedID     string
		expectedStatus models.ApplicationStatus
	}{
		{
			name:           "full name with accept keyword",
			message:        "please accept Jane Doe's application",
			expectedID:     "a1",
			expectedStatus: models.StatusAccepted,
		},
		{
			name:           "first name possessive",
			message:        "accept Jane's application",
			expectedID:     "a1",
			expectedStatus: models.StatusAccepted,
		},
		{
			name:           "under review wins over bare review",
			message:        "put jane doe under review then accept her",
			expectedID:     "a1",
			expectedStatus: models.StatusUnderReview,
		},
		{
			name:           "email address identifies the target",
			message:        "reject john.smith@example.edu",
			expectedID:     "a2",
			expectedStatus: models.StatusRejected,
		},
		{
			name:           "schedule keyword maps to interview",
			message:        "schedule John Smith for next week",
			expectedID:     "a2",
			expectedStatus: models.StatusInterviewScheduled,
		},
		{
			name:           "waitlist keyword",
			message:        "move janet doherty to the waitlist",
			expectedID:     "a3",
			expectedStatus: models.StatusWaitlisted,
		},
		{
			name:           "first name only still resolves",
			message:        "mark janet as rejected",
			expectedID:     "a3",
			expectedStatus: models.StatusRejected,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			match := Interpret(tt.message, testPool())
			require.NotNil(t, match)
			assert.Equal(t, tt.expectedID, match.Application.ID)
			assert.Equal(t, tt.expectedStatus, match.Status)
		})
	}
}

func TestInterpret_NoCommand(t *testing.T) {
	tests := []struct {
		name    string
		message string
	}{
		{
			name:    "ordinary conversation without intent keywords",
			message: "how many applications came in this week?",
		},
		{
			name:    "intent without a status keyword",
			message: "let's update the meeting notes",
		},
		{
			name:    "status without any matching candidate",
			message: "accept the new proposal",
		},
		{
			name:    "social message mentioning no one",
			message: "let's grab coffee tomorrow",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Nil(t, Interpret(tt.message, testPool()))
		})
	}
}

func TestInterpret_EmptyPool(t *testing.T) {
	assert.Nil(t, Interpret("accept Jane Doe", nil))
}

func TestInterpret_ScoreThreshold(t *testing.T) {
	pool := []models.Application{
		{ID: "short", Applicant: models.Applicant{Name: "Al B"}},
	}
	// "al" scores 3*2=6 on a boundary hit but a bare substring inside
	// another word scores 2*2=4, below the floor.
	match := Interpret("we should reject the proposal", pool)
	assert.Nil(t, match)
}

func TestInterpret_FullNameBeatsTokenOverlap(t *testing.T) {
	pool := []models.Application{
		{ID: "doe", Applicant: models.Applicant{Name: "Jane Doe"}},
		{ID: "doherty", Applicant: models.Applicant{Name: "Jane Doherty"}},
	}

	match := Interpret("accept jane doherty please", pool)
	require.NotNil(t, match)
	assert.Equal(t, "doherty", match.Application.ID)
}

func TestInterpret_TieGoesToFirstSeen(t *testing.T) {
	pool := []models.Application{
		{ID: "first", Applicant: models.Applicant{Name: "Sam Lee"}},
		{ID: "second", Applicant: models.Applicant{Name: "Sam Lee"}},
	}

	match := Interpret("accept sam lee", pool)
	require.NotNil(t, match)
	assert.Equal(t, "first", match.Application.ID)
}

func TestInterpret_CaseInsensitive(t *testing.T) {
	match := Interpret("ACCEPT JANE DOE", testPool())
	require.NotNil(t, match)
	assert.Equal(t, "a1", match.Application.ID)
	assert.Equal(t, models.StatusAccepted, match.Status)
}

func TestContainsWord_MultibyteBoundaries(t *testing.T) {
	tests := []struct {
		name  string
		msg   string
		token string
		want  bool
	}{
		{"ascii whole word", "accept jane now", "jane", true},
		{"ascii inside a longer word", "accept janessa now", "jane", false},
		{"accented token delimited by spaces", "accept josé now", "josé", true},
		{"token preceded by a multi-byte letter", "welcome joséann aboard", "ann", false},
		{"token followed by curly apostrophe", "accept jane’s application", "jane", true},
		{"token at end of message", "please accept josé", "josé", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, containsWord(tt.msg, tt.token))
		})
	}
}

func TestInterpret_AccentedName(t *testing.T) {
	pool := []models.Application{
		{ID: "a1", Applicant: models.Applicant{Name: "José Álvarez"}},
	}

	match := Interpret("accept josé álvarez", pool)
	require.NotNil(t, match)
	assert.Equal(t, "a1", match.Application.ID)
}
