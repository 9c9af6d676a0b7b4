package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/noah-isme/exam-portal-api/internal/dto"
	"github.com/noah-isme/exam-portal-api/internal/examtime"
	"github.com/noah-isme/exam-portal-api/internal/models"
	"github.com/noah-isme/exam-portal-api/internal/repository"
)

// StudentService serves the student's read-only surfaces: the exam listing,
// the submitted-exam history and the per-exam result sheets.
type StudentService interface {
	AvailableExams(ctx context.Context, studentID uint) ([]dto.AvailableExamResponse, error)
	SubmittedExams(ctx context.Context, studentID uint) ([]dto.SubmittedExamResponse, error)
	MyResults(ctx context.Context, studentID uint) ([]dto.ExamResult, error)
}

type studentService struct {
	exams     repository.ExamRepository
	responses repository.ResponseRepository
	logger    zerolog.Logger
	now       func() time.Time
}

// NewStudentService constructs a student read service. now may be nil, in
// which case time.Now is used.
func NewStudentService(examRepo repository.ExamRepository, responseRepo repository.ResponseRepository, logger zerolog.Logger, now func() time.Time) StudentService {
	if now == nil {
		now = time.Now
	}
	return &studentService{
		exams:     examRepo,
		responses: responseRepo,
		logger:    logger.With().Str("component", "student_service").Logger(),
		now:       now,
	}
}

// AvailableExams lists exams the student has not submitted yet, annotated
// with the window status at the time of the call. Expired exams drop out of
// the listing.
func (s *studentService) AvailableExams(ctx context.Context, studentID uint) ([]dto.AvailableExamResponse, error) {
	exams, err := s.exams.List(ctx)
	if err != nil {
		return nil, err
	}

	submitted, err := s.responses.SubmittedExamIDs(ctx, studentID)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	available := make([]dto.AvailableExamResponse, 0, len(exams))
	for _, exam := range exams {
		if _, done := submitted[exam.ID]; done {
			continue
		}
		if !exam.HasValidSchedule() {
			continue
		}

		status := examtime.ExamStatus(now, exam.ScheduledStart, exam.Duration())
		if status == examtime.StatusExpired {
			continue
		}

		available = append(available, dto.AvailableExamResponse{
			ID:              exam.ID,
			Title:           exam.Title,
			Description:     exam.Description,
			ScheduledStart:  exam.ScheduledStart,
			DurationMinutes: exam.DurationMinutes,
			Status:          string(status),
		})
	}

	return available, nil
}

// SubmittedExams lists the exams the student has completed, newest first,
// with the evaluation status across all of that exam's answers.
func (s *studentService) SubmittedExams(ctx context.Context, studentID uint) ([]dto.SubmittedExamResponse, error) {
	responses, err := s.responses.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}

	grouped := groupByExam(responses)
	submitted := make([]dto.SubmittedExamResponse, 0, len(grouped))
	for _, group := range grouped {
		exam, err := s.exams.GetByID(ctx, group[0].ExamID)
		if err != nil {
			return nil, err
		}

		status := dto.ResultStatusDeclared
		for _, response := range group {
			if response.Evaluation == nil {
				status = dto.ResultStatusPending
				break
			}
		}

		submitted = append(submitted, dto.SubmittedExamResponse{
			ExamID:         exam.ID,
			Title:          exam.Title,
			ScheduledStart: exam.ScheduledStart,
			SubmittedAt:    group[0].SubmittedAt,
			Status:         status,
		})
	}

	return submitted, nil
}

// MyResults builds the per-exam result sheets. Marks and feedback appear per
// question as soon as that question is evaluated; the exam total is only
// meaningful once every question is.
func (s *studentService) MyResults(ctx context.Context, studentID uint) ([]dto.ExamResult, error) {
	responses, err := s.responses.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}

	grouped := groupByExam(responses)
	results := make([]dto.ExamResult, 0, len(grouped))
	for _, group := range grouped {
		exam, err := s.exams.GetByID(ctx, group[0].ExamID)
		if err != nil {
			return nil, err
		}

		result := dto.ExamResult{
			ExamID:         exam.ID,
			ExamTitle:      exam.Title,
			ScheduledStart: exam.ScheduledStart,
			OverallStatus:  dto.ResultStatusDeclared,
			Questions:      make([]dto.QuestionResult, 0, len(group)),
		}

		for _, response := range group {
			entry := dto.QuestionResult{
				ResponseID:    response.ID,
				QuestionID:    response.QuestionID,
				QuestionText:  response.Question.Text,
				QuestionType:  response.Question.Type,
				YourResponse:  response.ResponseText,
				SubmittedAt:   response.SubmittedAt,
				MarksPossible: response.Question.Marks,
				Status:        dto.ResultStatusPending,
			}

			result.TotalMarksPossible += response.Question.Marks
			if evaluation := response.Evaluation; evaluation != nil {
				marks := evaluation.MarksAwarded
				evaluatedAt := evaluation.EvaluatedAt
				entry.MarksAwarded = &marks
				entry.Feedback = evaluation.Feedback
				entry.EvaluatedBy = evaluation.EvaluatedBy
				entry.EvaluatedAt = &evaluatedAt
				entry.Status = dto.ResultStatusEvaluated
				result.TotalMarksAwarded += marks
			} else {
				result.OverallStatus = dto.ResultStatusPending
			}

			result.Questions = append(result.Questions, entry)
		}

		results = append(results, result)
	}

	return results, nil
}

// groupByExam partitions responses by exam, preserving the repository's
// ordering (newest exam first, questions in ascending order).
func groupByExam(responses []models.StudentResponse) [][]models.StudentResponse {
	grouped := make([][]models.StudentResponse, 0)
	index := make(map[uint]int)

	for _, response := range responses {
		at, seen := index[response.ExamID]
		if !seen {
			index[response.ExamID] = len(grouped)
			grouped = append(grouped, []models.StudentResponse{response})
			continue
		}
		grouped[at] = append(grouped[at], response)
	}

	return grouped
}
