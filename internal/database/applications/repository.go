// Package applications tracks which users applied to which jobs.
package applications

import (
	"errors"

	"gorm.io/gorm"

	"github.com/jobdesk/jobdesk/internal/entities"
)

// Repository handles application bookkeeping.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new applications repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Apply records that a user applied to a job. Applying twice to the same
// job is a no-op; the composite unique index absorbs the duplicate.
func (r *Repository) Apply(userID, jobID uint) error {
	err := r.db.Create(&entities.Application{UserID: userID, JobID: jobID}).Error
	if err != nil && errors.Is(err, gorm.ErrDuplicatedKey) {
		return nil
	}
	return err
}

// ListJobIDs returns the ids of all jobs the user applied to, in
// application order.
func (r *Repository) ListJobIDs(userID uint) ([]uint, error) {
	var ids []uint
	err := r.db.Model(&entities.Application{}).
		Where("user_id = ?", userID).
		Order("created_at").
		Pluck("job_id", &ids).Error
	return ids, err
}
