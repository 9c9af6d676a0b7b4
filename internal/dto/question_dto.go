package dto

import (
	"github.com/noah-isme/exam-portal-api/internal/models"
)

// QuestionCreateRequest is the teacher payload for adding a question.
// Options/CorrectAnswer are required for MCQ; WordLimit only applies to the
// free-text types (the service enforces mutual exclusion).
type QuestionCreateRequest struct {
	Text          string            `json:"text" validate:"required,min=3"`
	Type          string            `json:"type" validate:"required,oneof=mcq short_answer long_answer"`
	Marks         int               `json:"marks" validate:"required,gt=0"`
	Options       map[string]string `json:"options" validate:"omitempty,min=2"`
	CorrectAnswer string            `json:"correct_answer"`
	WordLimit     *int              `json:"word_limit" validate:"omitempty,gt=0"`
}

// QuestionUpdateRequest updates an existing question.
type QuestionUpdateRequest struct {
	Text          *string           `json:"text" validate:"omitempty,min=3"`
	Marks         *int              `json:"marks" validate:"omitempty,gt=0"`
	Options       map[string]string `json:"options" validate:"omitempty,min=2"`
	CorrectAnswer *string           `json:"correct_answer"`
	WordLimit     *int              `json:"word_limit" validate:"omitempty,gt=0"`
}

// QuestionResponse is the authoring view of a question, correct answer
// included.
type QuestionResponse struct {
	ID            uint              `json:"id"`
	ExamID        uint              `json:"exam_id"`
	Text          string            `json:"text"`
	Type          string            `json:"type"`
	Marks         int               `json:"marks"`
	Options       map[string]string `json:"options,omitempty"`
	CorrectAnswer string            `json:"correct_answer,omitempty"`
	WordLimit     *int              `json:"word_limit,omitempty"`
}

// TakeQuestionResponse is the student-facing view of a question: options are
// present for MCQ, the correct answer never is.
type TakeQuestionResponse struct {
	ID        uint              `json:"id"`
	Text      string            `json:"text"`
	Type      string            `json:"type"`
	Marks     int               `json:"marks"`
	Options   map[string]string `json:"options,omitempty"`
	WordLimit *int              `json:"word_limit,omitempty"`
}

// NewQuestionResponse converts a Question model into the authoring DTO.
func NewQuestionResponse(model models.Question) QuestionResponse {
	return QuestionResponse{
		ID:            model.ID,
		ExamID:        model.ExamID,
		Text:          model.Text,
		Type:          model.Type,
		Marks:         model.Marks,
		Options:       optionsToStrings(model),
		CorrectAnswer: model.CorrectAnswer,
		WordLimit:     model.WordLimit,
	}
}

// NewTakeQuestionResponse converts a Question model into the student DTO.
func NewTakeQuestionResponse(model models.Question) TakeQuestionResponse {
	response := TakeQuestionResponse{
		ID:    model.ID,
		Text:  model.Text,
		Type:  model.Type,
		Marks: model.Marks,
	}
	if model.Type == models.QuestionTypeMCQ {
		response.Options = optionsToStrings(model)
	} else {
		response.WordLimit = model.WordLimit
	}
	return response
}

func optionsToStrings(model models.Question) map[string]string {
	if len(model.Options) == 0 {
		return nil
	}
	options := make(map[string]string, len(model.Options))
	for key, value := range model.Options {
		if text, ok := value.(string); ok {
			options[key] = text
		}
	}
	return options
}
