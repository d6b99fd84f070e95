package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/prankitapotbhare/TinyLink/internal/entities"
)

// Sentinel errors surfaced to the service layer
var (
	ErrNotFound      = errors.New("link not found")
	ErrDuplicateCode = errors.New("short code already exists")
)

// LinkRepository defines the interface for link database operations
type LinkRepository interface {
	Create(ctx context.Context, code, url string) (*entities.Link, error)
	FindByCode(ctx context.Context, code string) (*entities.Link, error)
	List(ctx context.Context) ([]*entities.Link, error)
	Delete(ctx context.Context, code string) error
	RecordClick(ctx context.Context, code string) (*entities.Link, error)
	Ping(ctx context.Context) error
}

type linkRepository struct {
	db *sql.DB
}

// NewLinkRepository creates a new link repository
func NewLinkRepository(db *sql.DB) LinkRepository {
	return &linkRepository{db: db}
}

const linkColumns = `id, code, url, clicks, last_clicked, created_at`

func scanLink(row *sql.Row) (*entities.Link, error) {
	var link entities.Link
	var lastClicked sql.NullTime
	err := row.Scan(&link.ID, &link.Code, &link.URL, &link.Clicks, &lastClicked, &link.CreatedAt)
	if err != nil {
		return nil, err
	}
	if lastClicked.Valid {
		t := lastClicked.Time
		link.LastClicked = &t
	}
	return &link, nil
}

// Create inserts a new link. The unique constraint on code is the single
// source of truth for duplicates; a violation maps to ErrDuplicateCode.
func (r *linkRepository) Create(ctx context.Context, code, url string) (*entities.Link, error) {
	query := `
		INSERT INTO links (code, url)
		VALUES ($1, $2)
		RETURNING ` + linkColumns

	link, err := scanLink(r.db.QueryRowContext(ctx, query, code, url))
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return nil, ErrDuplicateCode
		}
		return nil, fmt.Errorf("failed to create link: %w", err)
	}

	return link, nil
}

// FindByCode finds a link by its short code
func (r *linkRepository) FindByCode(ctx context.Context, code string) (*entities.Link, error) {
	query := `SELECT ` + linkColumns + ` FROM links WHERE code = $1`

	link, err := scanLink(r.db.QueryRowContext(ctx, query, code))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find link: %w", err)
	}

	return link, nil
}

// List returns all links ordered by creation time descending. The ordering is
// a contract with the dashboard, not incidental.
func (r *linkRepository) List(ctx context.Context) ([]*entities.Link, error) {
	query := `SELECT ` + linkColumns + ` FROM links ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list links: %w", err)
	}
	defer rows.Close()

	links := make([]*entities.Link, 0)
	for rows.Next() {
		var link entities.Link
		var lastClicked sql.NullTime
		if err := rows.Scan(&link.ID, &link.Code, &link.URL, &link.Clicks, &lastClicked, &link.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan link: %w", err)
		}
		if lastClicked.Valid {
			t := lastClicked.Time
			link.LastClicked = &t
		}
		links = append(links, &link)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating links: %w", err)
	}

	return links, nil
}

// Delete removes a link by code. Reports ErrNotFound if nothing was deleted.
func (r *linkRepository) Delete(ctx context.Context, code string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM links WHERE code = $1`, code)
	if err != nil {
		return fmt.Errorf("failed to delete link: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

// RecordClick looks the link up and increments clicks together with
// last_clicked as one transaction. SELECT ... FOR UPDATE takes a row lock, so
// concurrent redirects for the same code serialize at the store: N concurrent
// calls commit exactly N increments. A missing code rolls back without
// writing anything.
func (r *linkRepository) RecordClick(ctx context.Context, code string) (*entities.Link, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var id int64
	err = tx.QueryRowContext(ctx, `SELECT id FROM links WHERE code = $1 FOR UPDATE`, code).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to lock link: %w", err)
	}

	query := `
		UPDATE links
		SET clicks = clicks + 1, last_clicked = NOW()
		WHERE id = $1
		RETURNING ` + linkColumns

	var link entities.Link
	var lastClicked sql.NullTime
	err = tx.QueryRowContext(ctx, query, id).Scan(&link.ID, &link.Code, &link.URL, &link.Clicks, &lastClicked, &link.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to record click: %w", err)
	}
	if lastClicked.Valid {
		t := lastClicked.Time
		link.LastClicked = &t
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit click: %w", err)
	}

	return &link, nil
}

// Ping issues one trivial query for the health check
func (r *linkRepository) Ping(ctx context.Context) error {
	var one int
	if err := r.db.QueryRowContext(ctx, `SELECT 1`).Scan(&one); err != nil {
		return fmt.Errorf("database unreachable: %w", err)
	}
	return nil
}
