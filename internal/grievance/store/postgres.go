package store

import (
	"context"
	_ "embed"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"civicdesk/internal/grievance/models"
)

//go:embed schema.sql
var schemaSQL string

const grievanceColumns = `id, contact_number, title, description, department, priority,
	grievance_type, category, anonymity, status, resolved, created_at, resolved_at`

// Postgres stores grievances in a single table keyed by id.
type Postgres struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

// Migrate applies the embedded schema. It is idempotent.
func (s *Postgres) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("apply grievance schema: %w", err)
	}
	return nil
}

// CreateIfAbsent relies on the primary key: ON CONFLICT DO NOTHING affects
// zero rows when the id is taken.
func (s *Postgres) CreateIfAbsent(ctx context.Context, g *models.Grievance) error {
	tag, err := s.pool.Exec(ctx, `
		INSERT INTO grievances (`+grievanceColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (id) DO NOTHING`,
		g.ID, g.ContactNumber, g.Title, g.Description, g.Department, string(g.Priority),
		g.GrievanceType, g.Category, g.Anonymity, string(g.Status), g.Resolved, g.CreatedAt, g.ResolvedAt,
	)
	if err != nil {
		return fmt.Errorf("insert grievance: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrAlreadyUsed
	}
	return nil
}

func (s *Postgres) FindByID(ctx context.Context, id string) (*models.Grievance, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+grievanceColumns+` FROM grievances WHERE id = $1`, id)
	g, err := scanGrievance(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find grievance: %w", err)
	}
	return g, nil
}

func (s *Postgres) Exists(ctx context.Context, id string) (bool, error) {
	var exists bool
	if err := s.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM grievances WHERE id = $1)`, id).Scan(&exists); err != nil {
		return false, fmt.Errorf("check grievance existence: %w", err)
	}
	return exists, nil
}

// Execute locks the row with SELECT ... FOR UPDATE for the duration of
// validate and mutate, then writes back the mutable columns.
func (s *Postgres) Execute(ctx context.Context, id string, validate func(*models.Grievance) error, mutate func(*models.Grievance)) (*models.Grievance, error) {
	var out *models.Grievance
	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		row := tx.QueryRow(ctx, `SELECT `+grievanceColumns+` FROM grievances WHERE id = $1 FOR UPDATE`, id)
		g, err := scanGrievance(row)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrNotFound
			}
			return fmt.Errorf("lock grievance: %w", err)
		}
		if validate != nil {
			if err := validate(g); err != nil {
				return err
			}
		}
		mutate(g)

		if _, err := tx.Exec(ctx, `
			UPDATE grievances SET status = $2, resolved = $3, resolved_at = $4
			WHERE id = $1`,
			g.ID, string(g.Status), g.Resolved, g.ResolvedAt,
		); err != nil {
			return fmt.Errorf("update grievance: %w", err)
		}
		out = g
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Postgres) ListAll(ctx context.Context) ([]*models.Grievance, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+grievanceColumns+` FROM grievances ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("list grievances: %w", err)
	}
	defer rows.Close()

	var out []*models.Grievance
	for rows.Next() {
		g, err := scanGrievance(rows)
		if err != nil {
			return nil, fmt.Errorf("scan grievance: %w", err)
		}
		out = append(out, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate grievances: %w", err)
	}
	return out, nil
}

func scanGrievance(row pgx.Row) (*models.Grievance, error) {
	var (
		g                models.Grievance
		priority, status string
	)
	err := row.Scan(
		&g.ID, &g.ContactNumber, &g.Title, &g.Description, &g.Department, &priority,
		&g.GrievanceType, &g.Category, &g.Anonymity, &status, &g.Resolved, &g.CreatedAt, &g.ResolvedAt,
	)
	if err != nil {
		return nil, err
	}
	g.Priority = models.Priority(priority)
	g.Status = models.Status(status)
	g.CreatedAt = g.CreatedAt.UTC()
	if g.ResolvedAt != nil {
		at := g.ResolvedAt.UTC()
		g.ResolvedAt = &at
	}
	return &g, nil
}
