package dto

import "time"

// AnswerSubmission is one answer inside a submission batch. QuestionID is
// left loosely typed on purpose: entries whose id is not a well-formed
// integer are silently dropped by the admission filter instead of rejecting
// the whole batch.
type AnswerSubmission struct {
	QuestionID   interface{} `json:"question_id"`
	ResponseText *string     `json:"response_text"`
}

// ExamSubmissionRequest is the student payload for submitting an exam.
type ExamSubmissionRequest struct {
	Answers []AnswerSubmission `json:"answers" validate:"required"`
}

// SubmissionResultResponse confirms an accepted submission.
type SubmissionResultResponse struct {
	ExamID         uint      `json:"exam_id"`
	AnswersSaved   int       `json:"answers_saved"`
	SubmittedAt    time.Time `json:"submitted_at"`
	AnswersDropped int       `json:"answers_dropped"`
}

// SubmittedExamResponse is one entry of the student's submitted-exams list.
type SubmittedExamResponse struct {
	ExamID         uint      `json:"exam_id"`
	Title          string    `json:"title"`
	ScheduledStart time.Time `json:"scheduled_start"`
	SubmittedAt    time.Time `json:"submitted_at"`
	Status         string    `json:"status"`
}
