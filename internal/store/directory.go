// internal/store/directory.go
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bettersnoozing/hack-mcwics/internal/common/logger"
	"github.com/bettersnoozing/hack-mcwics/internal/common/metrics"
	"github.com/bettersnoozing/hack-mcwics/internal/models"
)

// Directory serves the flat clubs/positions tables of the relational store.
// Everything here is direct field mapping; the chat core never reads it.
type Directory struct {
	db     *sql.DB
	logger logger.Logger
}

func NewDirectory(db *sql.DB, log logger.Logger) *Directory {
	return &Directory{
		db:     db,
		logger: log.WithFields(map[string]interface{}{"store": "postgres"}),
	}
}

// ClubFilter holds the optional list filters of GET /clubs.
type ClubFilter struct {
	Tag        string
	Recruiting *bool
	MinMembers int
}

// PositionFilter holds the optional list filters of GET /positions.
type PositionFilter struct {
	ClubID string
	IsOpen *bool
}

// Stats is the aggregate snapshot served by GET /stats.
type Stats struct {
	TotalClubs        int                      `json:"totalClubs"`
	RecruitingClubs   int                      `json:"recruitingClubs"`
	TotalPositions    int                      `json:"totalPositions"`
	OpenPositions     int                      `json:"openPositions"`
	TotalApplicants   int                      `json:"totalApplicants"`
	TopClubsByMembers []ClubMemberCount        `json:"topClubsByMembers"`
	UpcomingDeadlines []UpcomingDeadline       `json:"upcomingDeadlines"`
}

type ClubMemberCount struct {
	Name        string `json:"name"`
	MemberCount int    `json:"memberCount"`
}

type UpcomingDeadline struct {
	Title    string    `json:"title"`
	ClubName string    `json:"clubName"`
	Deadline time.Time `json:"deadline"`
}

const clubColumns = "id, slug, name, description, tags, member_count, is_recruiting, created_at"
const positionColumns = "id, club_id, title, description, requirements, deadline, is_open, applicant_count, created_at"

func (d *Directory) observe(op string, start time.Time) {
	metrics.StoreOperationDuration.WithLabelValues("postgres", op).Observe(time.Since(start).Seconds())
}

func (d *Directory) ListClubs(ctx context.Context, filter ClubFilter) ([]models.ClubListing, error) {
	defer d.observe("list_clubs", time.Now())

	query := "SELECT " + clubColumns + " FROM clubs WHERE 1=1"
	var args []interface{}
	if filter.Tag != "" {
		args = append(args, "%"+strings.ToLower(filter.Tag)+"%")
		query += fmt.Sprintf(" AND LOWER(tags) LIKE $%d", len(args))
	}
	if filter.Recruiting != nil {
		args = append(args, *filter.Recruiting)
		query += fmt.Sprintf(" AND is_recruiting = $%d", len(args))
	}
	if filter.MinMembers > 0 {
		args = append(args, filter.MinMembers)
		query += fmt.Sprintf(" AND member_count >= $%d", len(args))
	}
	query += " ORDER BY name"

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: list clubs: %v", ErrUnavailable, err)
	}
	defer rows.Close()

	return scanClubs(rows)
}

func (d *Directory) GetClub(ctx context.Context, slug string) (*models.ClubListing, error) {
	defer d.observe("get_club", time.Now())

	row := d.db.QueryRowContext(ctx, "SELECT "+clubColumns+" FROM clubs WHERE slug = $1", slug)
	club, err := scanClub(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: club %s", ErrNotFound, slug)
		}
		return nil, fmt.Errorf("%w: get club: %v", ErrUnavailable, err)
	}
	return club, nil
}

func (d *Directory) CreateClub(ctx context.Context, c *models.ClubListing) error {
	defer d.observe("create_club", time.Now())

	_, err := d.db.ExecContext(ctx,
		`INSERT INTO clubs (id, slug, name, description, tags, member_count, is_recruiting, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, CURRENT_DATE)`,
		c.ID, c.Slug, c.Name, c.Description, c.Tags, c.MemberCount, c.Recruiting,
	)
	if err != nil {
		return fmt.Errorf("%w: create club: %v", ErrUnavailable, err)
	}
	return nil
}

func (d *Directory) UpdateClub(ctx context.Context, slug string, c *models.ClubListing) error {
	defer d.observe("update_club", time.Now())

	res, err := d.db.ExecContext(ctx,
		`UPDATE clubs SET name=$1, description=$2, tags=$3, member_count=$4, is_recruiting=$5 WHERE slug=$6`,
		c.Name, c.Description, c.Tags, c.MemberCount, c.Recruiting, slug,
	)
	if err != nil {
		return fmt.Errorf("%w: update club: %v", ErrUnavailable, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: club %s", ErrNotFound, slug)
	}
	return nil
}

func (d *Directory) DeleteClub(ctx context.Context, slug string) error {
	defer d.observe("delete_club", time.Now())

	res, err := d.db.ExecContext(ctx, "DELETE FROM clubs WHERE slug = $1", slug)
	if err != nil {
		return fmt.Errorf("%w: delete club: %v", ErrUnavailable, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: club %s", ErrNotFound, slug)
	}
	return nil
}

func (d *Directory) ListPositions(ctx context.Context, filter PositionFilter) ([]models.Position, error) {
	defer d.observe("list_positions", time.Now())

	query := "SELECT " + positionColumns + " FROM positions WHERE 1=1"
	var args []interface{}
	if filter.ClubID != "" {
		args = append(args, filter.ClubID)
		query += fmt.Sprintf(" AND club_id = $%d", len(args))
	}
	if filter.IsOpen != nil {
		args = append(args, *filter.IsOpen)
		query += fmt.Sprintf(" AND is_open = $%d", len(args))
	}
	query += " ORDER BY deadline"

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: list positions: %v", ErrUnavailable, err)
	}
	defer rows.Close()

	return scanPositions(rows)
}

func (d *Directory) GetPosition(ctx context.Context, id string) (*models.Position, error) {
	defer d.observe("get_position", time.Now())

	row := d.db.QueryRowContext(ctx, "SELECT "+positionColumns+" FROM positions WHERE id = $1", id)
	pos, err := scanPosition(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: position %s", ErrNotFound, id)
		}
		return nil, fmt.Errorf("%w: get position: %v", ErrUnavailable, err)
	}
	return pos, nil
}

func (d *Directory) CreatePosition(ctx context.Context, p *models.Position) error {
	defer d.observe("create_position", time.Now())

	_, err := d.db.ExecContext(ctx,
		`INSERT INTO positions (id, club_id, title, description, requirements, deadline, is_open, applicant_count, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, CURRENT_DATE)`,
		p.ID, p.ClubID, p.Title, p.Description, p.Requirements, p.Deadline, p.IsOpen, p.ApplicantCount,
	)
	if err != nil {
		return fmt.Errorf("%w: create position: %v", ErrUnavailable, err)
	}
	return nil
}

func (d *Directory) DeletePosition(ctx context.Context, id string) error {
	defer d.observe("delete_position", time.Now())

	res, err := d.db.ExecContext(ctx, "DELETE FROM positions WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("%w: delete position: %v", ErrUnavailable, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: position %s", ErrNotFound, id)
	}
	return nil
}

// Recruitment returns the joined clubs-and-positions view.
func (d *Directory) Recruitment(ctx context.Context) ([]models.RecruitmentEntry, error) {
	defer d.observe("recruitment", time.Now())

	rows, err := d.db.QueryContext(ctx,
		`SELECT c.name, c.tags, p.title, p.description, p.requirements, p.deadline, p.is_open, p.applicant_count
		 FROM clubs c JOIN positions p ON c.id = p.club_id
		 ORDER BY c.name, p.title`)
	if err != nil {
		return nil, fmt.Errorf("%w: recruitment view: %v", ErrUnavailable, err)
	}
	defer rows.Close()

	var entries []models.RecruitmentEntry
	for rows.Next() {
		var e models.RecruitmentEntry
		var tags, description, requirements sql.NullString
		var deadline sql.NullTime
		if err := rows.Scan(&e.ClubName, &tags, &e.PositionTitle, &description,
			&requirements, &deadline, &e.IsOpen, &e.ApplicantCount); err != nil {
			return nil, fmt.Errorf("%w: scan recruitment row: %v", ErrUnavailable, err)
		}
		e.ClubTags = tags.String
		e.Description = description.String
		e.Requirements = requirements.String
		e.Deadline = deadline.Time
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Search runs a substring search across clubs and positions.
func (d *Directory) Search(ctx context.Context, q string) ([]models.ClubListing, []models.Position, error) {
	defer d.observe("search", time.Now())

	like := "%" + q + "%"

	rows, err := d.db.QueryContext(ctx,
		"SELECT "+clubColumns+` FROM clubs
		 WHERE LOWER(name) LIKE LOWER($1) OR LOWER(tags) LIKE LOWER($1) OR LOWER(description) LIKE LOWER($1)`,
		like)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: search clubs: %v", ErrUnavailable, err)
	}
	clubs, err := scanClubs(rows)
	rows.Close()
	if err != nil {
		return nil, nil, err
	}

	rows, err = d.db.QueryContext(ctx,
		"SELECT "+positionColumns+` FROM positions
		 WHERE LOWER(title) LIKE LOWER($1) OR LOWER(requirements) LIKE LOWER($1) OR LOWER(description) LIKE LOWER($1)`,
		like)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: search positions: %v", ErrUnavailable, err)
	}
	positions, err := scanPositions(rows)
	rows.Close()
	if err != nil {
		return nil, nil, err
	}

	return clubs, positions, nil
}

func (d *Directory) GetStats(ctx context.Context) (*Stats, error) {
	defer d.observe("stats", time.Now())

	stats := &Stats{}
	counts := []struct {
		query string
		dest  *int
	}{
		{"SELECT COUNT(*) FROM clubs", &stats.TotalClubs},
		{"SELECT COUNT(*) FROM clubs WHERE is_recruiting = TRUE", &stats.RecruitingClubs},
		{"SELECT COUNT(*) FROM positions", &stats.TotalPositions},
		{"SELECT COUNT(*) FROM positions WHERE is_open = TRUE", &stats.OpenPositions},
		{"SELECT COALESCE(SUM(applicant_count), 0) FROM positions", &stats.TotalApplicants},
	}
	for _, c := range counts {
		if err := d.db.QueryRowContext(ctx, c.query).Scan(c.dest); err != nil {
			return nil, fmt.Errorf("%w: stats: %v", ErrUnavailable, err)
		}
	}

	rows, err := d.db.QueryContext(ctx,
		"SELECT name, member_count FROM clubs ORDER BY member_count DESC LIMIT 5")
	if err != nil {
		return nil, fmt.Errorf("%w: top clubs: %v", ErrUnavailable, err)
	}
	for rows.Next() {
		var c ClubMemberCount
		if err := rows.Scan(&c.Name, &c.MemberCount); err != nil {
			rows.Close()
			return nil, fmt.Errorf("%w: scan top club: %v", ErrUnavailable, err)
		}
		stats.TopClubsByMembers = append(stats.TopClubsByMembers, c)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: top clubs: %v", ErrUnavailable, err)
	}

	rows, err = d.db.QueryContext(ctx,
		`SELECT p.title, c.name, p.deadline FROM positions p JOIN clubs c ON p.club_id = c.id
		 WHERE p.is_open = TRUE ORDER BY p.deadline ASC LIMIT 5`)
	if err != nil {
		return nil, fmt.Errorf("%w: upcoming deadlines: %v", ErrUnavailable, err)
	}
	for rows.Next() {
		var u UpcomingDeadline
		if err := rows.Scan(&u.Title, &u.ClubName, &u.Deadline); err != nil {
			rows.Close()
			return nil, fmt.Errorf("%w: scan deadline: %v", ErrUnavailable, err)
		}
		stats.UpcomingDeadlines = append(stats.UpcomingDeadlines, u)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: upcoming deadlines: %v", ErrUnavailable, err)
	}

	return stats, nil
}

// Recommend returns recruiting clubs and open positions whose tags overlap
// the given interests.
func (d *Directory) Recommend(ctx context.Context, interests []string) ([]models.ClubListing, []models.Position, error) {
	defer d.observe("recommend", time.Now())

	if len(interests) == 0 {
		return nil, nil, nil
	}

	var conds []string
	var args []interface{}
	for _, tag := range interests {
		args = append(args, "%"+strings.ToLower(strings.TrimSpace(tag))+"%")
		conds = append(conds, fmt.Sprintf("LOWER(c.tags) LIKE $%d", len(args)))
	}
	cond := "(" + strings.Join(conds, " OR ") + ")"

	rows, err := d.db.QueryContext(ctx,
		"SELECT "+clubColumns+" FROM clubs c WHERE "+cond+" AND is_recruiting = TRUE", args...)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: recommend clubs: %v", ErrUnavailable, err)
	}
	clubs, err := scanClubs(rows)
	rows.Close()
	if err != nil {
		return nil, nil, err
	}

	rows, err = d.db.QueryContext(ctx,
		`SELECT p.id, p.club_id, p.title, p.description, p.requirements, p.deadline, p.is_open, p.applicant_count, p.created_at
		 FROM positions p JOIN clubs c ON p.club_id = c.id
		 WHERE `+cond+" AND p.is_open = TRUE", args...)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: recommend positions: %v", ErrUnavailable, err)
	}
	positions, err := scanPositions(rows)
	rows.Close()
	if err != nil {
		return nil, nil, err
	}

	return clubs, positions, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanClubRow(s rowScanner) (*models.ClubListing, error) {
	var c models.ClubListing
	var description, tags sql.NullString
	var createdAt sql.NullTime
	if err := s.Scan(&c.ID, &c.Slug, &c.Name, &description, &tags,
		&c.MemberCount, &c.Recruiting, &createdAt); err != nil {
		return nil, err
	}
	c.Description = description.String
	c.Tags = tags.String
	c.CreatedAt = createdAt.Time
	return &c, nil
}

func scanClub(row *sql.Row) (*models.ClubListing, error) {
	return scanClubRow(row)
}

func scanClubs(rows *sql.Rows) ([]models.ClubListing, error) {
	var clubs []models.ClubListing
	for rows.Next() {
		c, err := scanClubRow(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scan club: %v", ErrUnavailable, err)
		}
		clubs = append(clubs, *c)
	}
	return clubs, rows.Err()
}

func scanPositionRow(s rowScanner) (*models.Position, error) {
	var p models.Position
	var description, requirements sql.NullString
	var deadline, createdAt sql.NullTime
	if err := s.Scan(&p.ID, &p.ClubID, &p.Title, &description, &requirements,
		&deadline, &p.IsOpen, &p.ApplicantCount, &createdAt); err != nil {
		return nil, err
	}
	p.Description = description.String
	p.Requirements = requirements.String
	p.Deadline = deadline.Time
	p.CreatedAt = createdAt.Time
	return &p, nil
}

func scanPosition(row *sql.Row) (*models.Position, error) {
	return scanPositionRow(row)
}

func scanPositions(rows *sql.Rows) ([]models.Position, error) {
	var positions []models.Position
	for rows.Next() {
		p, err := scanPositionRow(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scan position: %v", ErrUnavailable, err)
		}
		positions = append(positions, *p)
	}
	return positions, rows.Err()
}
