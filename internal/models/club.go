// internal/models/club.go
package models

import "time"

// Club is the canonical document-store club shape. Admin identity arrives in
// several legacy forms (direct email, admin id list, user cross-reference);
// all of them are preserved here so the scope resolver can match on any.
type Club struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Slug        string   `json:"slug,omitempty"`
	Email       string   `json:"email,omitempty"`
	AdminIDs    []string `json:"adminIds,omitempty"`
	OpenRoleIDs []string `json:"openRoleIds,omitempty"`
}

// ClubListing is a row of the directory store's clubs table, serving the
// public CRUD and discovery surface.
type ClubListing struct {
	ID          string    `json:"id"`
	Slug        string    `json:"slug"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Tags        string    `json:"tags,omitempty"`
	MemberCount int       `json:"memberCount"`
	Recruiting  bool      `json:"isRecruiting"`
	CreatedAt   time.Time `json:"createdAt,omitempty"`
}

// Position is a row of the directory store's positions table.
type Position struct {
	ID             string    `json:"id"`
	ClubID         string    `json:"clubId"`
	Title          string    `json:"title"`
	Description    string    `json:"description,omitempty"`
	Requirements   string    `json:"requirements,omitempty"`
	Deadline       time.Time `json:"deadline,omitempty"`
	IsOpen         bool      `json:"isOpen"`
	ApplicantCount int       `json:"applicantCount"`
	CreatedAt      time.Time `json:"createdAt,omitempty"`
}

// RecruitmentEntry joins a club and one of its positions for the read-only
// recruitment view.
type RecruitmentEntry struct {
	ClubName       string    `json:"clubName"`
	ClubTags       string    `json:"clubTags,omitempty"`
	PositionTitle  string    `json:"positionTitle"`
	Description    string    `json:"positionDescription,omitempty"`
	Requirements   string    `json:"requirements,omitempty"`
	Deadline       time.Time `json:"deadline,omitempty"`
	IsOpen         bool      `json:"isOpen"`
	ApplicantCount int       `json:"applicantCount"`
}
