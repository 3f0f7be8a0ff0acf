// internal/chat/interpret.go
package chat

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/bettersnoozing/hack-mcwics/internal/models"
)

// Match is the ephemeral result of interpreting one message against a
// candidate pool: the single best-scoring application plus the requested
// status. It is consumed immediately and never persisted.
type Match struct {
	Application models.Application
	Status      models.ApplicationStatus
	Score       int
}

// intentKeywords gate interpretation: a message containing none of these is
// ordinary conversation, not a command.
var intentKeywords = []string{
	"update", "change", "set", "mark", "move",
	"reject", "accept", "approve", "schedule",
	"waitlist", "review", "put",
}

// statusKeywords maps trigger phrases to target statuses. Ordered longest
// phrase first so "under review" wins over "review"; the scan stops at the
// first hit.
var statusKeywords = []struct {
	keyword string
	status  models.ApplicationStatus
}{
	{"under review", models.StatusUnderReview},
	{"interview", models.StatusInterviewScheduled},
	{"schedule", models.StatusInterviewScheduled},
	{"waitlist", models.StatusWaitlisted},
	{"withdraw", models.StatusWithdrawn},
	{"pending", models.StatusPending},
	{"approve", models.StatusAccepted},
	{"accept", models.StatusAccepted},
	{"review", models.StatusUnderReview},
	{"reject", models.StatusRejected},
	{"deny", models.StatusRejected},
}

// Scoring constants. The rules are ordered and additive so identical input
// always yields identical output.
const (
	scoreFullName  = 100 // full normalized applicant name appears in message
	scoreFullEmail = 80  // full email appears in message
	tokenBoundary  = 3   // per-rune weight of a word-boundary token match
	tokenSubstring = 2   // per-rune weight of a bare substring token match
	minTargetScore = 5   // floor below which a match is spurious noise
	minTokenLength = 2
)

// Interpret parses one free-text message against the candidate pool. It
// returns nil unless both a target application and a status keyword resolve.
func Interpret(message string, pool []models.Application) *Match {
	msg := strings.ToLower(message)

	if !containsIntent(msg) {
		return nil
	}

	status, ok := resolveStatus(msg)
	if !ok {
		return nil
	}

	var best *Match
	for i := range pool {
		score := scoreCandidate(msg, &pool[i])
		if score < minTargetScore {
			continue
		}
		// Strictly greater: first seen wins ties.
		if best == nil || score > best.Score {
			best = &Match{Application: pool[i], Status: status, Score: score}
		}
	}

	return best
}

func containsIntent(msg string) bool {
	for _, kw := range intentKeywords {
		if strings.Contains(msg, kw) {
			return true
		}
	}
	return false
}

func resolveStatus(msg string) (models.ApplicationStatus, bool) {
	for _, entry := range statusKeywords {
		if strings.Contains(msg, entry.keyword) {
			return entry.status, true
		}
	}
	return "", false
}

// scoreCandidate applies the ordered scoring rules for one application.
func scoreCandidate(msg string, app *models.Application) int {
	score := 0

	name := strings.ToLower(strings.TrimSpace(app.Applicant.Name))
	if name != "" && strings.Contains(msg, name) {
		score += scoreFullName
	}

	for _, token := range strings.Fields(name) {
		if len(token) < minTokenLength {
			continue
		}
		switch {
		case containsWord(msg, token):
			score += tokenBoundary * len(token)
		case strings.Contains(msg, token):
			score += tokenSubstring * len(token)
		}
	}

	email := strings.ToLower(strings.TrimSpace(app.Applicant.Email))
	if email != "" && strings.Contains(msg, email) {
		score += scoreFullEmail
	} else if local, _, found := strings.Cut(email, "@"); found && len(local) >= minTokenLength {
		if strings.Contains(msg, local) {
			score += tokenSubstring * len(local)
		}
	}

	return score
}

// containsWord reports whether token appears in msg delimited by non-letter,
// non-digit runes on both sides.
func containsWord(msg, token string) bool {
	for start := 0; ; {
		idx := strings.Index(msg[start:], token)
		if idx < 0 {
			return false
		}
		idx += start

		prev, _ := utf8.DecodeLastRuneInString(msg[:idx])
		before := idx == 0 || isBoundary(prev)
		afterIdx := idx + len(token)
		next, _ := utf8.DecodeRuneInString(msg[afterIdx:])
		after := afterIdx >= len(msg) || isBoundary(next)
		if before && after {
			return true
		}
		start = idx + 1
	}
}

func isBoundary(r rune) bool {
	return !unicode.IsLetter(r) && !unicode.IsDigit(r)
}
