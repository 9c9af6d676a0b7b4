package dto

import (
	"time"

	"github.com/noah-isme/exam-portal-api/internal/models"
)

// EvaluationResponse is the graded outcome for one student response.
type EvaluationResponse struct {
	ID           uint      `json:"id"`
	ResponseID   uint      `json:"response_id"`
	MarksAwarded float64   `json:"marks_awarded"`
	Feedback     string    `json:"feedback"`
	EvaluatedBy  string    `json:"evaluated_by"`
	EvaluatedAt  time.Time `json:"evaluated_at"`
}

// NewEvaluationResponse converts an Evaluation model into a DTO.
func NewEvaluationResponse(model models.Evaluation) EvaluationResponse {
	return EvaluationResponse{
		ID:           model.ID,
		ResponseID:   model.ResponseID,
		MarksAwarded: model.MarksAwarded,
		Feedback:     model.Feedback,
		EvaluatedBy:  model.EvaluatedBy,
		EvaluatedAt:  model.EvaluatedAt,
	}
}
