package entities

import (
	"time"

	"gorm.io/gorm"
)

// Job is a single posting. ImagePath points at a file managed by the
// uploads store; it is empty when the posting has no image.
type Job struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Title       string `gorm:"size:255" json:"title"`
	Description string `gorm:"type:text" json:"description"`
	Company     string `gorm:"size:255" json:"company"`
	Salary      int    `json:"salary"`
	Active      bool   `json:"active"`
	ImagePath   string `gorm:"size:1024" json:"image_path,omitempty"`

	OwnerID  uint      `gorm:"index" json:"owner_id"`
	PostedAt time.Time `json:"posted_at"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Job) TableName() string {
	return "jobs"
}

// Application records that a user applied to a job. The composite unique
// index makes a second apply for the same pair a no-op at the store level.
type Application struct {
	ID     uint `gorm:"primaryKey" json:"id"`
	UserID uint `gorm:"uniqueIndex:idx_applications_user_job" json:"user_id"`
	JobID  uint `gorm:"uniqueIndex:idx_applications_user_job" json:"job_id"`

	CreatedAt time.Time `json:"created_at"`
}

func (Application) TableName() string {
	return "applications"
}
