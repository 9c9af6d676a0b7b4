package dto

import (
	"time"

	"github.com/noah-isme/exam-portal-api/internal/models"
)

// ExamCreateRequest is the teacher payload for scheduling a new exam.
type ExamCreateRequest struct {
	Title           string    `json:"title" validate:"required,min=3,max=150"`
	Description     string    `json:"description" validate:"max=2000"`
	ScheduledStart  time.Time `json:"scheduled_start" validate:"required"`
	DurationMinutes int       `json:"duration_minutes" validate:"required,gt=0"`
}

// ExamUpdateRequest updates an existing exam definition.
type ExamUpdateRequest struct {
	Title           *string    `json:"title" validate:"omitempty,min=3,max=150"`
	Description     *string    `json:"description" validate:"omitempty,max=2000"`
	ScheduledStart  *time.Time `json:"scheduled_start"`
	DurationMinutes *int       `json:"duration_minutes" validate:"omitempty,gt=0"`
}

// ExamResponse is the authoring view of an exam.
type ExamResponse struct {
	ID              uint      `json:"id"`
	Title           string    `json:"title"`
	Description     string    `json:"description"`
	ScheduledStart  time.Time `json:"scheduled_start"`
	DurationMinutes int       `json:"duration_minutes"`
	CreatedBy       uint      `json:"created_by"`
	CreatedAt       time.Time `json:"created_at"`
}

// AvailableExamResponse is the student-facing listing entry, annotated with
// the exam's current status.
type AvailableExamResponse struct {
	ID              uint      `json:"id"`
	Title           string    `json:"title"`
	Description     string    `json:"description"`
	ScheduledStart  time.Time `json:"scheduled_start"`
	DurationMinutes int       `json:"duration_minutes"`
	Status          string    `json:"status"`
}

// TakeExamResponse is returned when a student is admitted to an active exam.
// Correct answers are never included.
type TakeExamResponse struct {
	ExamID               uint                   `json:"exam_id"`
	Title                string                 `json:"title"`
	ScheduledStart       time.Time              `json:"scheduled_start"`
	DurationMinutes      int                    `json:"duration_minutes"`
	TimeRemainingSeconds int                    `json:"time_remaining_seconds"`
	Questions            []TakeQuestionResponse `json:"questions"`
}

// NewExamResponse converts an Exam model into a DTO.
func NewExamResponse(model models.Exam) ExamResponse {
	return ExamResponse{
		ID:              model.ID,
		Title:           model.Title,
		Description:     model.Description,
		ScheduledStart:  model.ScheduledStart,
		DurationMinutes: model.DurationMinutes,
		CreatedBy:       model.CreatedBy,
		CreatedAt:       model.CreatedAt,
	}
}
