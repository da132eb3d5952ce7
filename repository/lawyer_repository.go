package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/danilovichz/lawpro-v2/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const lawyerColumns = `id, state, city, county, law_firm, phone_number, email, website, type, created_at`

// LawyerRepository handles database operations for the lawyer directory
type LawyerRepository struct {
	db *pgxpool.Pool
}

// NewLawyerRepository creates a new lawyer repository
func NewLawyerRepository(db *pgxpool.Pool) *LawyerRepository {
	return &LawyerRepository{db: db}
}

// locationColumn maps a location kind onto its directory column
func locationColumn(kind models.LocationKind) (string, error) {
	switch kind {
	case models.LocationKindCounty:
		return "county", nil
	case models.LocationKindState:
		return "state", nil
	}
	return "", fmt.Errorf("unknown location kind %q", kind)
}

// FindExactLocation returns the stored spelling of a county or state that
// matches value case-insensitively
func (r *LawyerRepository) FindExactLocation(ctx context.Context, kind models.LocationKind, value string) (string, bool, error) {
	column, err := locationColumn(kind)
	if err != nil {
		return "", false, err
	}

	query := fmt.Sprintf(`
		SELECT %[1]s
		FROM lawyers_real
		WHERE lower(%[1]s) = lower($1)
		LIMIT 1`, column)

	var stored string
	err = r.db.QueryRow(ctx, query, value).Scan(&stored)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return stored, true, nil
}

// LocationSuggestions returns trigram matches from get_location_suggestions
func (r *LawyerRepository) LocationSuggestions(ctx context.Context, term string) ([]models.DirectorySuggestion, error) {
	query := `
		SELECT location, location_type, similarity_score
		FROM get_location_suggestions($1)`

	rows, err := r.db.Query(ctx, query, term)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var suggestions []models.DirectorySuggestion
	for rows.Next() {
		var s models.DirectorySuggestion
		var kind string
		if err := rows.Scan(&s.Location, &kind, &s.SimilarityScore); err != nil {
			return nil, err
		}
		s.LocationType = models.LocationKind(kind)
		suggestions = append(suggestions, s)
	}

	return suggestions, rows.Err()
}

// SearchLawyersRanked calls search_lawyers_enhanced, which ranks rows by
// county, state and type relevance
func (r *LawyerRepository) SearchLawyersRanked(ctx context.Context, county *string, state string, caseType *models.CaseType) ([]models.LawyerRecord, error) {
	var tag *string
	if caseType != nil {
		t := caseType.DirectoryTag()
		tag = &t
	}

	query := `
		SELECT ` + lawyerColumns + `, relevance_score
		FROM search_lawyers_enhanced($1, $2, $3)`

	rows, err := r.db.Query(ctx, query, county, state, tag)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lawyers []models.LawyerRecord
	for rows.Next() {
		var score *float64
		l, err := scanLawyer(rows, &score)
		if err != nil {
			return nil, err
		}
		if score != nil {
			l.RelevanceScore = *score
		}
		lawyers = append(lawyers, l)
	}

	return lawyers, rows.Err()
}

// buildFilterQuery builds the direct directory scan for filter
func buildFilterQuery(filter models.LawyerFilter) (string, []interface{}) {
	query := `
		SELECT ` + lawyerColumns + `
		FROM lawyers_real
		WHERE lower(state) = lower($1)`

	args := []interface{}{filter.State}
	argIndex := 2

	if filter.County != "" {
		query += fmt.Sprintf(" AND strpos(lower(county), lower($%d)) > 0", argIndex)
		args = append(args, filter.County)
		argIndex++
	}

	if filter.Type != "" {
		query += fmt.Sprintf(" AND strpos(lower(type), lower($%d)) > 0", argIndex)
		args = append(args, filter.Type)
		argIndex++
	}

	query += " ORDER BY created_at DESC"

	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argIndex)
		args = append(args, filter.Limit)
	}

	return query, args
}

// FilterLawyers scans the directory by state, partial county and partial type, newest first
func (r *LawyerRepository) FilterLawyers(ctx context.Context, filter models.LawyerFilter) ([]models.LawyerRecord, error) {
	query, args := buildFilterQuery(filter)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lawyers []models.LawyerRecord
	for rows.Next() {
		l, err := scanLawyer(rows)
		if err != nil {
			return nil, err
		}
		lawyers = append(lawyers, l)
	}

	return lawyers, rows.Err()
}

// GetByID returns a single directory row
func (r *LawyerRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.LawyerRecord, error) {
	query := `SELECT ` + lawyerColumns + ` FROM lawyers_real WHERE id = $1`

	l, err := scanLawyer(r.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrLawyerNotFound
	}
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// CopyLawyers bulk loads directory rows
func (r *LawyerRepository) CopyLawyers(ctx context.Context, lawyers []models.LawyerRecord) (int64, error) {
	return r.db.CopyFrom(
		ctx,
		pgx.Identifier{"lawyers_real"},
		[]string{"state", "city", "county", "law_firm", "phone_number", "email", "website", "type"},
		pgx.CopyFromSlice(len(lawyers), func(i int) ([]any, error) {
			l := lawyers[i]
			return []any{l.State, l.City, l.County, l.LawFirm, l.PhoneNumber, l.Email, l.Website, l.Type}, nil
		}),
	)
}

// scanLawyer scans lawyerColumns followed by any extra destinations.
// Directory columns other than id and state may be NULL.
func scanLawyer(row pgx.Row, extra ...any) (models.LawyerRecord, error) {
	var l models.LawyerRecord
	var city, county, firm, phone, typ *string
	dest := append([]any{
		&l.ID,
		&l.State,
		&city,
		&county,
		&firm,
		&phone,
		&l.Email,
		&l.Website,
		&typ,
		&l.CreatedAt,
	}, extra...)
	if err := row.Scan(dest...); err != nil {
		return l, err
	}
	l.City, l.County, l.LawFirm, l.PhoneNumber, l.Type = str(city), str(county), str(firm), str(phone), str(typ)
	return l, nil
}

func str(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
