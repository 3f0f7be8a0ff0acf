// internal/store/normalize.go
package store

import (
	"time"

	"github.com/bettersnoozing/hack-mcwics/internal/models"
)

// Normalization of heterogeneous legacy documents into canonical shapes.
// Field names drifted across schema generations: applicant identity may be a
// scalar id, an embedded object, or split across flat fields. All of that is
// resolved here, once, so no other component does multi-key lookups.

func normalizeApplication(id string, src map[string]interface{}) models.Application {
	app := models.Application{
		ID:      id,
		Status:  models.StatusPending,
		Answers: asMap(src["answers"]),
	}

	if id == "" {
		app.ID = firstString(src, "id", "_id", "applicationId")
	}
	for _, key := range []string{"applicationId", "legacyId"} {
		if v := asString(src[key]); v != "" && v != app.ID {
			app.AlternateIDs = append(app.AlternateIDs, v)
		}
	}
	for _, v := range asStringSlice(src["alternateIds"]) {
		if v != app.ID {
			app.AlternateIDs = append(app.AlternateIDs, v)
		}
	}

	app.Applicant = normalizeApplicant(src)

	app.RoleID = refID(src, "openRole", "openRoleId", "roleId", "positionId")
	app.ClubID = refID(src, "club", "clubId")

	if s, ok := models.NormalizeStatus(asString(src["status"])); ok {
		app.Status = s
	}

	app.SubmittedAt = firstTime(src, "submittedAt", "createdAt")
	app.LastUpdatedAt = firstTime(src, "lastUpdatedAt", "updatedAt")
	app.LastUpdatedBy = firstString(src, "lastUpdatedBy", "updatedBy")

	return app
}

// normalizeApplicant folds the three observed applicant encodings: an
// embedded object, flat applicantName/applicantEmail fields, or top-level
// name/email fields, with a scalar applicant holding just the user id.
func normalizeApplicant(src map[string]interface{}) models.Applicant {
	a := models.Applicant{}

	switch v := src["applicant"].(type) {
	case map[string]interface{}:
		a.UserID = firstString(v, "id", "_id", "userId")
		a.Name = asString(v["name"])
		a.Email = asString(v["email"])
	case string:
		a.UserID = v
	}

	if a.Name == "" {
		a.Name = firstString(src, "applicantName", "applicant_name", "name")
	}
	if a.Email == "" {
		a.Email = firstString(src, "applicantEmail", "applicant_email", "email")
	}

	return a
}

func normalizeClub(id string, src map[string]interface{}) models.Club {
	c := models.Club{
		ID:    id,
		Name:  asString(src["name"]),
		Slug:  asString(src["slug"]),
		Email: firstString(src, "email", "adminEmail"),
	}
	if id == "" {
		c.ID = firstString(src, "id", "_id")
	}
	c.AdminIDs = asStringSlice(src["admins"])
	if len(c.AdminIDs) == 0 {
		c.AdminIDs = asStringSlice(src["adminIds"])
	}
	c.OpenRoleIDs = asStringSlice(src["openRoles"])
	if len(c.OpenRoleIDs) == 0 {
		c.OpenRoleIDs = asStringSlice(src["openRoleIds"])
	}
	return c
}

func normalizeUser(id string, src map[string]interface{}) models.User {
	u := models.User{
		ID:    id,
		Email: asString(src["email"]),
		Name:  asString(src["name"]),
		Roles: asStringSlice(src["roles"]),
	}
	if id == "" {
		u.ID = firstString(src, "id", "_id")
	}
	u.AdminClubID = refID(src, "adminClub", "adminClubId")
	u.PasswordHash = firstString(src, "passwordHash", "password_hash")
	return u
}

func normalizeOpenRole(id string, src map[string]interface{}) models.OpenRole {
	r := models.OpenRole{
		ID:        id,
		JobTitle:  firstString(src, "jobTitle", "title"),
		Questions: asStringSlice(src["applicationQuestions"]),
	}
	if id == "" {
		r.ID = firstString(src, "id", "_id")
	}
	r.ClubID = refID(src, "club", "clubId")
	r.Deadline = firstTime(src, "deadline")
	return r
}

// refID reads a reference that may be a scalar id or an embedded object.
func refID(src map[string]interface{}, keys ...string) string {
	for _, key := range keys {
		switch v := src[key].(type) {
		case string:
			if v != "" {
				return v
			}
		case map[string]interface{}:
			if id := firstString(v, "id", "_id"); id != "" {
				return id
			}
		}
	}
	return ""
}

func firstString(src map[string]interface{}, keys ...string) string {
	for _, key := range keys {
		if v := asString(src[key]); v != "" {
			return v
		}
	}
	return ""
}

func firstTime(src map[string]interface{}, keys ...string) time.Time {
	for _, key := range keys {
		if s := asString(src[key]); s != "" {
			if t, err := time.Parse(time.RFC3339, s); err == nil {
				return t
			}
		}
	}
	return time.Time{}
}

func asString(v interface{}) string {
	s, _ := v.(string)
	return s
}

func asMap(v interface{}) map[string]interface{} {
	m, _ := v.(map[string]interface{})
	return m
}

func asStringSlice(v interface{}) []string {
	raw, ok := v.([]interface{})
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		if s, ok := item.(string); ok && s != "" {
			out = append(out, s)
		}
	}
	return out
}
