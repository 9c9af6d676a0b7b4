package models

import "time"

// StudentResponse is one student's answer to one question of one exam.
// The composite unique index backs the at-most-once submission rule: a
// concurrent duplicate submission fails at the storage layer instead of
// silently creating a second batch.
type StudentResponse struct {
	ID           uint        `gorm:"primaryKey" json:"id"`
	StudentID    uint        `gorm:"not null;uniqueIndex:idx_response_identity,priority:1" json:"student_id"`
	ExamID       uint        `gorm:"not null;uniqueIndex:idx_response_identity,priority:2;index" json:"exam_id"`
	QuestionID   uint        `gorm:"not null;uniqueIndex:idx_response_identity,priority:3" json:"question_id"`
	ResponseText *string     `gorm:"type:text" json:"response_text"`
	SubmittedAt  time.Time   `gorm:"not null" json:"submitted_at"`
	Question     Question    `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"question,omitempty"`
	Evaluation   *Evaluation `json:"evaluation,omitempty"`
}

// AnswerText returns the response body, empty when the student skipped the
// question.
func (r StudentResponse) AnswerText() string {
	if r.ResponseText == nil {
		return ""
	}
	return *r.ResponseText
}
