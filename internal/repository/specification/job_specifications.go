package specification

import (
	"time"

	"ai-shopassist-be/internal/entity"

	"gorm.io/gorm"
)

// ByJobKey selects a job by its deterministic key.
type ByJobKey struct {
	Key string
}

func (s ByJobKey) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("job_key = ?", s.Key)
}

// ByJobStatus filters jobs in a given state.
type ByJobStatus struct {
	Status entity.JobStatus
}

func (s ByJobStatus) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("status = ?", string(s.Status))
}

// UpdatedBefore selects jobs untouched since Time. A zero Time matches all.
type UpdatedBefore struct {
	Time time.Time
}

func (s UpdatedBefore) Apply(db *gorm.DB) *gorm.DB {
	if s.Time.IsZero() {
		return db
	}
	return db.Where("updated_at < ?", s.Time)
}
