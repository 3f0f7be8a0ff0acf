// internal/models/openrole.go
package models

import "time"

// OpenRole is a recruitment position in the document store, the thing an
// application points at.
type OpenRole struct {
	ID        string    `json:"id"`
	ClubID    string    `json:"clubId"`
	JobTitle  string    `json:"jobTitle"`
	Deadline  time.Time `json:"deadline,omitempty"`
	Questions []string  `json:"questions,omitempty"`
}
