package models

import "time"

// Exam is a scheduled, timed assessment authored by a teacher.
// ScheduledStart is always stored as a UTC instant; DurationMinutes must be
// positive for the exam window to be computable.
type Exam struct {
	ID              uint       `gorm:"primaryKey" json:"id"`
	Title           string     `gorm:"size:150;not null" json:"title"`
	Description     string     `gorm:"type:text" json:"description"`
	ScheduledStart  time.Time  `gorm:"not null;index" json:"scheduled_start"`
	DurationMinutes int        `gorm:"not null" json:"duration_minutes"`
	CreatedBy       uint       `gorm:"not null;index" json:"created_by"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
	Questions       []Question `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"questions,omitempty"`
}

// Duration returns the exam length as a time.Duration.
func (e Exam) Duration() time.Duration {
	return time.Duration(e.DurationMinutes) * time.Minute
}

// End returns the nominal end of the exam window.
func (e Exam) End() time.Time {
	return e.ScheduledStart.Add(e.Duration())
}

// HasValidSchedule reports whether the stored schedule can produce a
// meaningful time window.
func (e Exam) HasValidSchedule() bool {
	return !e.ScheduledStart.IsZero() && e.DurationMinutes > 0
}
