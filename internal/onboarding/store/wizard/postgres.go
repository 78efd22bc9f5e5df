package wizard

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"grcadmin/internal/onboarding/models"
	"grcadmin/pkg/domain"
	"grcadmin/pkg/platform/sentinel"
)

// Postgres persists wizards in a single onboarding_wizards table, one row per
// tenant, with the section groups as JSONB.
type Postgres struct {
	db *sql.DB
}

// NewPostgres wraps an open database handle.
func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

const wizardColumns = `id, tenant_id, status, current_step, progress_percent,
	completed_sections, sections, created_at, updated_at, completed_at, completed_by, version`

// Create inserts a new wizard. A second insert for the same tenant fails with
// sentinel.ErrConflict.
func (s *Postgres) Create(ctx context.Context, w *models.Wizard) error {
	sections, err := json.Marshal(w.Sections)
	if err != nil {
		return fmt.Errorf("marshal sections: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO onboarding_wizards
			(id, tenant_id, status, current_step, progress_percent,
			 completed_sections, sections, created_at, updated_at, version)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		w.ID.String(), w.TenantID.String(), string(w.Status), w.CurrentStep, w.ProgressPercent,
		pq.Array(sectionStrings(w.CompletedSections)), sections, w.CreatedAt, w.UpdatedAt, w.Version,
	)
	if isUniqueViolation(err) {
		return sentinel.ErrConflict
	}
	return err
}

// FindByTenant loads the tenant's wizard or returns sentinel.ErrNotFound.
func (s *Postgres) FindByTenant(ctx context.Context, tenantID domain.TenantID) (*models.Wizard, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+wizardColumns+` FROM onboarding_wizards WHERE tenant_id = $1`,
		tenantID.String(),
	)
	return scanWizard(row)
}

// Execute loads the tenant's row FOR UPDATE, runs mutate, and writes the
// result back with version incremented. Concurrent writers serialize on the
// row lock; a version drift between read and write still fails closed with
// sentinel.ErrVersionMismatch.
func (s *Postgres) Execute(ctx context.Context, tenantID domain.TenantID, mutate func(*models.Wizard) error) (*models.Wizard, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	row := tx.QueryRowContext(ctx,
		`SELECT `+wizardColumns+` FROM onboarding_wizards WHERE tenant_id = $1 FOR UPDATE`,
		tenantID.String(),
	)
	w, err := scanWizard(row)
	if err != nil {
		return nil, err
	}

	loadedVersion := w.Version
	if err := mutate(w); err != nil {
		return nil, err
	}

	sections, err := json.Marshal(w.Sections)
	if err != nil {
		return nil, fmt.Errorf("marshal sections: %w", err)
	}

	res, err := tx.ExecContext(ctx, `
		UPDATE onboarding_wizards SET
			status = $1, current_step = $2, progress_percent = $3,
			completed_sections = $4, sections = $5, updated_at = $6,
			completed_at = $7, completed_by = $8, version = version + 1
		WHERE tenant_id = $9 AND version = $10`,
		string(w.Status), w.CurrentStep, w.ProgressPercent,
		pq.Array(sectionStrings(w.CompletedSections)), sections, w.UpdatedAt,
		w.CompletedAt, nullableString(w.CompletedBy), tenantID.String(), loadedVersion,
	)
	if err != nil {
		return nil, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, sentinel.ErrVersionMismatch
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}

	w.Version = loadedVersion + 1
	return w, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanWizard(row rowScanner) (*models.Wizard, error) {
	var (
		w            models.Wizard
		idRaw        string
		tenantRaw    string
		status       string
		completedRaw []string
		sectionsRaw  []byte
		completedAt  sql.NullTime
		completedBy  sql.NullString
	)
	err := row.Scan(&idRaw, &tenantRaw, &status, &w.CurrentStep, &w.ProgressPercent,
		pq.Array(&completedRaw), &sectionsRaw, &w.CreatedAt, &w.UpdatedAt,
		&completedAt, &completedBy, &w.Version)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if w.ID, err = domain.ParseWizardID(idRaw); err != nil {
		return nil, err
	}
	if w.TenantID, err = domain.ParseTenantID(tenantRaw); err != nil {
		return nil, err
	}
	w.Status = models.Status(status)
	for _, c := range completedRaw {
		w.CompletedSections = append(w.CompletedSections, models.SectionCode(c))
	}
	// A corrupt sections document degrades to empty answers rather than
	// bricking the tenant's wizard; coverage then reports the fields missing.
	if len(sectionsRaw) > 0 {
		_ = json.Unmarshal(sectionsRaw, &w.Sections)
	}
	if completedAt.Valid {
		t := completedAt.Time.UTC()
		w.CompletedAt = &t
	}
	w.CompletedBy = completedBy.String
	return &w, nil
}

func sectionStrings(codes []models.SectionCode) []string {
	out := make([]string, len(codes))
	for i, c := range codes {
		out[i] = string(c)
	}
	return out
}

func nullableString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
