package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/noah-isme/exam-portal-api/internal/dto"
	"github.com/noah-isme/exam-portal-api/internal/events"
	"github.com/noah-isme/exam-portal-api/internal/models"
	"github.com/noah-isme/exam-portal-api/internal/repository"
	"github.com/noah-isme/exam-portal-api/pkg/oracle"
)

// EmptyResponseFeedback is recorded by the empty-answer shortcut.
const EmptyResponseFeedback = "Student response was empty."

// EvaluationService grades one student response at a time and creates the
// evaluation record exactly once. All failure modes are typed so the caller
// can report a precise cause; no evaluation row is ever persisted on a
// failure path.
type EvaluationService interface {
	Evaluate(ctx context.Context, responseID uint) (dto.EvaluationResponse, error)
	// ExamResults is the grader's view of an exam: one entry per submitted
	// student, response ids included so individual answers can be sent for
	// evaluation. Restricted to the exam's creator and admins.
	ExamResults(ctx context.Context, actorID uint, actorRole string, examID uint) ([]dto.StudentExamResult, error)
}

// EvaluationConfig carries the orchestrator's knobs.
type EvaluationConfig struct {
	// Retry bounds the oracle transport calls. Zero value falls back to
	// oracle.DefaultRetryPolicy.
	Retry oracle.RetryPolicy
	// Now supplies evaluation timestamps; defaults to time.Now.
	Now func() time.Time
}

type evaluationService struct {
	exams       repository.ExamRepository
	responses   repository.ResponseRepository
	evaluations repository.EvaluationRepository
	transport   oracle.Transport
	retry       oracle.RetryPolicy
	publisher   *events.Publisher
	logger      zerolog.Logger
	tracer      trace.Tracer
	now         func() time.Time
}

// NewEvaluationService constructs an evaluation service. The transport may
// be nil, in which case every non-shortcut evaluation fails with
// ErrOracleUnavailable.
func NewEvaluationService(examRepo repository.ExamRepository, responseRepo repository.ResponseRepository, evaluationRepo repository.EvaluationRepository, transport oracle.Transport, publisher *events.Publisher, logger zerolog.Logger, cfg EvaluationConfig) EvaluationService {
	if cfg.Retry.MaxAttempts == 0 {
		cfg.Retry = oracle.DefaultRetryPolicy()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	return &evaluationService{
		exams:       examRepo,
		responses:   responseRepo,
		evaluations: evaluationRepo,
		transport:   transport,
		retry:       cfg.Retry,
		publisher:   publisher,
		logger:      logger.With().Str("component", "evaluation_service").Logger(),
		tracer:      otel.Tracer("github.com/noah-isme/exam-portal-api/internal/service/evaluation"),
		now:         cfg.Now,
	}
}

func (s *evaluationService) Evaluate(parent context.Context, responseID uint) (dto.EvaluationResponse, error) {
	ctx, span := s.tracer.Start(parent, "evaluation.evaluate", trace.WithAttributes(
		attribute.Int64("response_id", int64(responseID)),
	))
	defer span.End()

	response, err := s.responses.GetByID(ctx, responseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.EvaluationResponse{}, ErrResponseNotFound
		}
		return dto.EvaluationResponse{}, err
	}

	if response.Evaluation != nil {
		return dto.EvaluationResponse{}, ErrAlreadyEvaluated
	}

	question := response.Question
	maxMarks := float64(question.Marks)

	// Empty answers are graded without consulting the oracle.
	if strings.TrimSpace(response.AnswerText()) == "" {
		return s.persist(ctx, models.Evaluation{
			ResponseID:   responseID,
			MarksAwarded: 0,
			Feedback:     EmptyResponseFeedback,
			EvaluatedBy:  models.EvaluatedBySystemEmpty,
			EvaluatedAt:  s.now().UTC(),
		})
	}

	// Multiple choice is graded deterministically against the stored key.
	if question.Type == models.QuestionTypeMCQ {
		marks, feedback := 0.0, "Incorrect option selected."
		if strings.EqualFold(strings.TrimSpace(response.AnswerText()), strings.TrimSpace(question.CorrectAnswer)) {
			marks, feedback = maxMarks, "Correct option selected."
		}
		return s.persist(ctx, models.Evaluation{
			ResponseID:   responseID,
			MarksAwarded: marks,
			Feedback:     feedback,
			EvaluatedBy:  models.EvaluatedBySystemMCQ,
			EvaluatedAt:  s.now().UTC(),
		})
	}

	if s.transport == nil {
		return dto.EvaluationResponse{}, ErrOracleUnavailable
	}

	prompt := oracle.BuildPrompt(oracle.PromptQuestion{
		Text:      question.Text,
		Type:      question.Type,
		MaxMarks:  maxMarks,
		WordLimit: question.WordLimit,
	}, response.AnswerText())

	raw, err := s.retry.Do(ctx, func(attemptCtx context.Context) (string, error) {
		return s.transport.Complete(attemptCtx, prompt)
	})
	if err != nil {
		var blocked *oracle.ContentBlockedError
		switch {
		case errors.As(err, &blocked):
			s.logger.Warn().Uint("response_id", responseID).Str("reason", blocked.Reason).Msg("oracle blocked evaluation")
			return dto.EvaluationResponse{}, fmt.Errorf("%w: %s", ErrContentBlocked, blocked.Reason)
		case errors.Is(err, context.Canceled):
			return dto.EvaluationResponse{}, err
		default:
			s.logger.Error().Err(err).Uint("response_id", responseID).Msg("oracle unavailable after retries")
			return dto.EvaluationResponse{}, fmt.Errorf("%w: %v", ErrOracleUnavailable, err)
		}
	}

	marks, feedback, err := oracle.ParseEvaluation(raw, maxMarks)
	if err != nil {
		// Logged apart from availability failures: this is a prompt/output
		// contract violation, not a transient fault.
		s.logger.Error().Err(err).Uint("response_id", responseID).Msg("oracle output violated the grading contract")
		return dto.EvaluationResponse{}, fmt.Errorf("%w: %v", ErrMalformedOracleOutput, err)
	}

	return s.persist(ctx, models.Evaluation{
		ResponseID:   responseID,
		MarksAwarded: marks,
		Feedback:     feedback,
		EvaluatedBy:  models.EvaluatedByOraclePrefix + s.transport.Model(),
		EvaluatedAt:  s.now().UTC(),
	})
}

func (s *evaluationService) persist(ctx context.Context, evaluation models.Evaluation) (dto.EvaluationResponse, error) {
	if err := s.evaluations.Create(ctx, &evaluation); err != nil {
		// A concurrent evaluation won the race on the unique response_id
		// index; report it the same way as the up-front check.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return dto.EvaluationResponse{}, ErrAlreadyEvaluated
		}
		return dto.EvaluationResponse{}, err
	}

	s.publisher.EvaluationCompleted(events.EvaluationCompleted{
		ResponseID:   evaluation.ResponseID,
		EvaluationID: evaluation.ID,
		MarksAwarded: evaluation.MarksAwarded,
		EvaluatedBy:  evaluation.EvaluatedBy,
		EvaluatedAt:  evaluation.EvaluatedAt,
	})

	s.logger.Info().
		Uint("response_id", evaluation.ResponseID).
		Float64("marks_awarded", evaluation.MarksAwarded).
		Str("evaluated_by", evaluation.EvaluatedBy).
		Msg("evaluation recorded")

	return dto.NewEvaluationResponse(evaluation), nil
}

func (s *evaluationService) ExamResults(ctx context.Context, actorID uint, actorRole string, examID uint) ([]dto.StudentExamResult, error) {
	exam, err := s.exams.GetByID(ctx, examID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrExamNotFound
		}
		return nil, err
	}
	if actorRole != models.RoleAdmin && exam.CreatedBy != actorID {
		return nil, ErrForbidden
	}

	responses, err := s.responses.ListByExam(ctx, examID)
	if err != nil {
		return nil, err
	}

	results := make([]dto.StudentExamResult, 0)
	index := make(map[uint]int)
	for _, response := range responses {
		at, seen := index[response.StudentID]
		if !seen {
			at = len(results)
			index[response.StudentID] = at
			results = append(results, dto.StudentExamResult{
				StudentID:     response.StudentID,
				SubmittedAt:   response.SubmittedAt,
				OverallStatus: dto.ResultStatusDeclared,
			})
		}

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

		results[at].TotalMarksPossible += response.Question.Marks
		if evaluation := response.Evaluation; evaluation != nil {
			marks := evaluation.MarksAwarded
			evaluatedAt := evaluation.EvaluatedAt
			entry.MarksAwarded = &marks
			entry.Feedback = evaluation.Feedback
			entry.EvaluatedBy = evaluation.EvaluatedBy
			entry.EvaluatedAt = &evaluatedAt
			entry.Status = dto.ResultStatusEvaluated
			results[at].TotalMarksAwarded += marks
		} else {
			results[at].OverallStatus = dto.ResultStatusPending
		}

		results[at].Questions = append(results[at].Questions, entry)
	}

	return results, nil
}
