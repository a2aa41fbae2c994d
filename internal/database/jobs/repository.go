// Package jobs provides database operations for job postings.
package jobs

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/jobdesk/jobdesk/internal/database"
	"github.com/jobdesk/jobdesk/internal/entities"
)

// Repository handles all job database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new jobs repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// List returns all postings, newest first.
func (r *Repository) List() ([]entities.Job, error) {
	var jobs []entities.Job
	err := r.db.Order("posted_at DESC").Find(&jobs).Error
	return jobs, err
}

// GetByID retrieves a posting by id. Returns (nil, nil) when absent.
func (r *Repository) GetByID(id uint) (*entities.Job, error) {
	var job entities.Job
	err := r.db.First(&job, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &job, nil
}

// Create inserts a new posting.
func (r *Repository) Create(job *entities.Job) error {
	return r.db.Create(job).Error
}

// Delete soft-deletes a posting.
func (r *Repository) Delete(id uint) error {
	result := r.db.Delete(&entities.Job{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("delete job %d: %w", id, database.ErrNotFound)
	}
	return nil
}

// ListImagePaths returns the image paths referenced by live postings.
// The upload sweeper treats anything not in this list as removable.
func (r *Repository) ListImagePaths() ([]string, error) {
	var paths []string
	err := r.db.Model(&entities.Job{}).
		Where("image_path <> ''").
		Pluck("image_path", &paths).Error
	return paths, err
}
