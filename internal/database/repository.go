package database

import (
	"crosshair/internal/models"

	"github.com/pkg/errors"
)

// Repository handles all database operations for diagnostics
type Repository struct {
	db *DB
}

// NewRepository creates a new repository instance
func NewRepository(db *DB) *Repository {
	return &Repository{db: db}
}

// CreateDiagnostic inserts a new diagnostic into the database
func (r *Repository) CreateDiagnostic(d *models.Diagnostic) error {
	result := r.db.Create(d)
	if result.Error != nil {
		return errors.Wrap(result.Error, "failed to insert diagnostic")
	}
	return nil
}

// ListDiagnostics returns every diagnostic in insertion order
func (r *Repository) ListDiagnostics() ([]*models.Diagnostic, error) {
	var diags []*models.Diagnostic
	result := r.db.Order("id ASC").Find(&diags)
	if result.Error != nil {
		return nil, errors.Wrap(result.Error, "failed to query diagnostics")
	}
	return diags, nil
}

// CountByKind returns how many diagnostics were recorded per kind
func (r *Repository) CountByKind() ([]models.KindCount, error) {
	var counts []models.KindCount

	result := r.db.Model(&models.Diagnostic{}).
		Select("kind, COUNT(*) as count").
		Group("kind").
		Order("kind ASC").
		Scan(&counts)

	if result.Error != nil {
		return nil, errors.Wrap(result.Error, "failed to count diagnostics")
	}

	return counts, nil
}
