package dto

import "time"

// Result statuses reported per exam and per question.
const (
	ResultStatusPending   = "Pending Evaluation"
	ResultStatusEvaluated = "Evaluated"
	ResultStatusDeclared  = "Results Declared"
)

// QuestionResult is one question's outcome within an exam result.
type QuestionResult struct {
	ResponseID    uint       `json:"response_id"`
	QuestionID    uint       `json:"question_id"`
	QuestionText  string     `json:"question_text"`
	QuestionType  string     `json:"question_type"`
	YourResponse  *string    `json:"your_response"`
	SubmittedAt   time.Time  `json:"submitted_at"`
	MarksAwarded  *float64   `json:"marks_awarded"`
	MarksPossible int        `json:"marks_possible"`
	Feedback      string     `json:"feedback"`
	EvaluatedBy   string     `json:"evaluated_by,omitempty"`
	EvaluatedAt   *time.Time `json:"evaluated_at,omitempty"`
	Status        string     `json:"status"`
}

// StudentExamResult is the grader's view of one student's submission. The
// response ids let the caller trigger evaluation of individual answers.
type StudentExamResult struct {
	StudentID          uint             `json:"student_id"`
	SubmittedAt        time.Time        `json:"submitted_at"`
	TotalMarksAwarded  float64          `json:"total_marks_awarded"`
	TotalMarksPossible int              `json:"total_marks_possible"`
	OverallStatus      string           `json:"overall_status"`
	Questions          []QuestionResult `json:"questions"`
}

// ExamResult groups a student's per-question outcomes for one exam.
type ExamResult struct {
	ExamID             uint             `json:"exam_id"`
	ExamTitle          string           `json:"exam_title"`
	ScheduledStart     time.Time        `json:"scheduled_start"`
	TotalMarksAwarded  float64          `json:"total_marks_awarded"`
	TotalMarksPossible int              `json:"total_marks_possible"`
	OverallStatus      string           `json:"overall_status"`
	Questions          []QuestionResult `json:"questions"`
}
