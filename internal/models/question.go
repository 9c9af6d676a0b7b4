package models

import (
	"time"

	"gorm.io/datatypes"
)

// Question types supported by the portal. MCQ answers are graded
// automatically; short and long answers go through the AI evaluator.
const (
	QuestionTypeMCQ         = "mcq"
	QuestionTypeShortAnswer = "short_answer"
	QuestionTypeLongAnswer  = "long_answer"
)

// Question belongs to one exam. Options and CorrectAnswer are only
// meaningful for MCQ questions; WordLimit only for the free-text types.
type Question struct {
	ID            uint              `gorm:"primaryKey" json:"id"`
	ExamID        uint              `gorm:"not null;index" json:"exam_id"`
	Text          string            `gorm:"type:text;not null" json:"text"`
	Type          string            `gorm:"size:16;not null" json:"type"`
	Marks         int               `gorm:"not null" json:"marks"`
	Options       datatypes.JSONMap `json:"options,omitempty"`
	CorrectAnswer string            `gorm:"size:255" json:"-"`
	WordLimit     *int              `json:"word_limit,omitempty"`
	CreatedAt     time.Time         `json:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at"`
}

// IsFreeText reports whether the question is graded by the AI evaluator.
func (q Question) IsFreeText() bool {
	return q.Type == QuestionTypeShortAnswer || q.Type == QuestionTypeLongAnswer
}
