package models

import "time"

// Provenance tags recorded on evaluations.
const (
	// EvaluatedBySystemEmpty marks the empty-answer shortcut: no oracle call
	// was made, the score is always zero.
	EvaluatedBySystemEmpty = "system:empty"
	// EvaluatedBySystemMCQ marks deterministic multiple-choice grading.
	EvaluatedBySystemMCQ = "system:mcq"
	// EvaluatedByOraclePrefix prefixes the model name of the scoring oracle.
	EvaluatedByOraclePrefix = "oracle:"
)

// Evaluation is the graded outcome for exactly one student response. The
// unique index on ResponseID makes "create exactly once" hold across
// processes; a losing concurrent writer gets a uniqueness violation.
type Evaluation struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	ResponseID   uint      `gorm:"not null;uniqueIndex" json:"response_id"`
	MarksAwarded float64   `gorm:"not null" json:"marks_awarded"`
	Feedback     string    `gorm:"type:text;not null" json:"feedback"`
	EvaluatedBy  string    `gorm:"size:80;not null" json:"evaluated_by"`
	EvaluatedAt  time.Time `gorm:"not null" json:"evaluated_at"`
}
