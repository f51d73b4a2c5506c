package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/serisow/docextract/extract_type"
)

var ErrNotFound = errors.New("extraction not found")

// DB is the part of *pgxpool.Pool the repository uses.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type ExtractionRepository struct {
	db  DB
	now func() time.Time
}

func NewExtractionRepository(db DB) *ExtractionRepository {
	return &ExtractionRepository{db: db, now: time.Now}
}

// Save stores content under a fresh id and returns the stored record.
func (r *ExtractionRepository) Save(ctx context.Context, locator string, content extract_type.ExtractedContent) (extract_type.StoredExtraction, error) {
	id := uuid.New()
	createdAt := r.now().UTC()

	query := `INSERT INTO extraction_results
        (id, locator, file_type, extraction_method, text, confidence, error, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.db.Exec(ctx, query,
		id,
		locator,
		string(content.FileType),
		content.ExtractionMethod,
		content.Text,
		content.Confidence,
		content.Error,
		createdAt,
	)
	if err != nil {
		return extract_type.StoredExtraction{}, fmt.Errorf("failed to store extraction: %w", err)
	}

	return extract_type.StoredExtraction{
		ID:        id.String(),
		Locator:   locator,
		Content:   content,
		CreatedAt: createdAt.Format(time.RFC3339),
	}, nil
}

func (r *ExtractionRepository) GetByID(ctx context.Context, id string) (extract_type.StoredExtraction, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return extract_type.StoredExtraction{}, fmt.Errorf("invalid extraction id %q: %w", id, ErrNotFound)
	}

	var (
		stored    extract_type.StoredExtraction
		fileType  string
		createdAt time.Time
	)
	query := `SELECT locator, file_type, extraction_method, text, confidence, error, created_at
        FROM extraction_results WHERE id = $1`
	err = r.db.QueryRow(ctx, query, parsed).Scan(
		&stored.Locator,
		&fileType,
		&stored.Content.ExtractionMethod,
		&stored.Content.Text,
		&stored.Content.Confidence,
		&stored.Content.Error,
		&createdAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return extract_type.StoredExtraction{}, ErrNotFound
	}
	if err != nil {
		return extract_type.StoredExtraction{}, fmt.Errorf("failed to load extraction %s: %w", id, err)
	}

	stored.ID = parsed.String()
	stored.Content.FileType = extract_type.FileType(fileType)
	stored.CreatedAt = createdAt.UTC().Format(time.RFC3339)
	return stored, nil
}
