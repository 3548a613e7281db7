package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const publicLinkColumns = `id, company_id, job_id, name, access_code, is_active, expires_at,
	visits, started_interviews, completed_interviews, created_at, updated_at`

func scanPublicLink(row pgx.Row) (*PublicLink, error) {
	var l PublicLink
	err := row.Scan(&l.ID, &l.CompanyID, &l.JobID, &l.Name, &l.AccessCode, &l.IsActive, &l.ExpiresAt,
		&l.Visits, &l.StartedInterviews, &l.CompletedInterviews, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// CreatePublicLink inserts a link. A duplicate access code surfaces as an
// error for which IsUniqueViolation is true.
func (db *DB) CreatePublicLink(ctx context.Context, l *PublicLink) error {
	err := db.pool.QueryRow(ctx,
		`INSERT INTO public_interview_links (company_id, job_id, name, access_code, is_active, expires_at)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, visits, started_interviews, completed_interviews, created_at, updated_at`,
		l.CompanyID, l.JobID, l.Name, l.AccessCode, l.IsActive, l.ExpiresAt,
	).Scan(&l.ID, &l.Visits, &l.StartedInterviews, &l.CompletedInterviews, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create public link: %w", err)
	}
	return nil
}

// GetPublicLink retrieves a link owned by companyID. Returns nil, nil when absent.
func (db *DB) GetPublicLink(ctx context.Context, companyID, id uuid.UUID) (*PublicLink, error) {
	l, err := scanPublicLink(db.pool.QueryRow(ctx,
		`SELECT `+publicLinkColumns+` FROM public_interview_links WHERE id = $1 AND company_id = $2`, id, companyID))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get public link: %w", err)
	}
	return l, nil
}

// GetPublicLinkByCode retrieves a link by its access code. Returns nil, nil when absent.
func (db *DB) GetPublicLinkByCode(ctx context.Context, code string) (*PublicLink, error) {
	l, err := scanPublicLink(db.pool.QueryRow(ctx,
		`SELECT `+publicLinkColumns+` FROM public_interview_links WHERE access_code = $1`, code))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get public link: %w", err)
	}
	return l, nil
}

// ListPublicLinks returns the links of one job, newest first.
func (db *DB) ListPublicLinks(ctx context.Context, companyID, jobID uuid.UUID) ([]PublicLink, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT `+publicLinkColumns+` FROM public_interview_links
		 WHERE company_id = $1 AND job_id = $2 ORDER BY created_at DESC`, companyID, jobID)
	if err != nil {
		return nil, fmt.Errorf("failed to list public links: %w", err)
	}
	defer rows.Close()

	links := []PublicLink{}
	for rows.Next() {
		l, err := scanPublicLink(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan public link: %w", err)
		}
		links = append(links, *l)
	}
	return links, rows.Err()
}

// SetPublicLinkActive enables or disables a link. Returns nil, nil when absent.
func (db *DB) SetPublicLinkActive(ctx context.Context, companyID, id uuid.UUID, active bool) (*PublicLink, error) {
	l, err := scanPublicLink(db.pool.QueryRow(ctx,
		`UPDATE public_interview_links SET is_active = $1, updated_at = NOW()
		 WHERE id = $2 AND company_id = $3
		 RETURNING `+publicLinkColumns, active, id, companyID))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to update public link: %w", err)
	}
	return l, nil
}

// DeletePublicLink removes a link. Interviews started through it keep running
// with their public_link_id cleared.
func (db *DB) DeletePublicLink(ctx context.Context, companyID, id uuid.UUID) (bool, error) {
	tag, err := db.pool.Exec(ctx,
		`DELETE FROM public_interview_links WHERE id = $1 AND company_id = $2`, id, companyID)
	if err != nil {
		return false, fmt.Errorf("failed to delete public link: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// Link counters
const (
	CounterVisits    = "visits"
	CounterStarted   = "started_interviews"
	CounterCompleted = "completed_interviews"
)

// IncrementLinkCounter atomically adds one to a link counter and returns the
// updated link. Returns nil, nil when the link does not exist.
func (db *DB) IncrementLinkCounter(ctx context.Context, id uuid.UUID, counter string) (*PublicLink, error) {
	switch counter {
	case CounterVisits, CounterStarted, CounterCompleted:
	default:
		return nil, fmt.Errorf("unknown link counter %q", counter)
	}

	l, err := scanPublicLink(db.pool.QueryRow(ctx,
		`UPDATE public_interview_links SET `+counter+` = `+counter+` + 1, updated_at = NOW()
		 WHERE id = $1
		 RETURNING `+publicLinkColumns, id))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to increment %s: %w", counter, err)
	}
	return l, nil
}
