package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/exam-portal-api/internal/dto"
	"github.com/noah-isme/exam-portal-api/internal/events"
	"github.com/noah-isme/exam-portal-api/internal/examtime"
	"github.com/noah-isme/exam-portal-api/internal/models"
	"github.com/noah-isme/exam-portal-api/internal/repository"
)

// AdmissionService gates exam-taking per (student, exam): whether the
// student may fetch the exam content and whether a submission batch is still
// acceptable. Once any response row exists the exam is terminal for that
// student; there is no resume or partial save.
type AdmissionService interface {
	CanStart(ctx context.Context, studentID, examID uint) (dto.TakeExamResponse, error)
	Submit(ctx context.Context, studentID, examID uint, payload dto.ExamSubmissionRequest) (dto.SubmissionResultResponse, error)
}

// AdmissionConfig carries the timing knobs for admission decisions.
type AdmissionConfig struct {
	// GracePeriod extends the submission deadline past the nominal end.
	// Zero falls back to examtime.DefaultGracePeriod.
	GracePeriod time.Duration
	// Now supplies the reference instant; defaults to time.Now. Injected so
	// the window logic stays deterministic under test.
	Now func() time.Time
}

type admissionService struct {
	exams     repository.ExamRepository
	questions repository.QuestionRepository
	responses repository.ResponseRepository
	publisher *events.Publisher
	validator *validator.Validate
	logger    zerolog.Logger
	grace     time.Duration
	now       func() time.Time
}

// NewAdmissionService constructs an admission service.
func NewAdmissionService(examRepo repository.ExamRepository, questionRepo repository.QuestionRepository, responseRepo repository.ResponseRepository, publisher *events.Publisher, validate *validator.Validate, logger zerolog.Logger, cfg AdmissionConfig) AdmissionService {
	if cfg.GracePeriod <= 0 {
		cfg.GracePeriod = examtime.DefaultGracePeriod
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	return &admissionService{
		exams:     examRepo,
		questions: questionRepo,
		responses: responseRepo,
		publisher: publisher,
		validator: validate,
		logger:    logger.With().Str("component", "admission_service").Logger(),
		grace:     cfg.GracePeriod,
		now:       cfg.Now,
	}
}

func (s *admissionService) CanStart(ctx context.Context, studentID, examID uint) (dto.TakeExamResponse, error) {
	exam, err := s.exams.GetWithQuestions(ctx, examID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.TakeExamResponse{}, ErrExamNotFound
		}
		return dto.TakeExamResponse{}, err
	}

	if !exam.HasValidSchedule() {
		return dto.TakeExamResponse{}, ErrInvalidExamConfiguration
	}

	submitted, err := s.responses.HasSubmission(ctx, studentID, examID)
	if err != nil {
		return dto.TakeExamResponse{}, err
	}
	if submitted {
		return dto.TakeExamResponse{}, ErrAlreadySubmitted
	}

	now := s.now().UTC()
	status := examtime.ExamStatus(now, exam.ScheduledStart, exam.Duration())
	if status != examtime.StatusActive {
		return dto.TakeExamResponse{}, fmt.Errorf("%w: status %s", ErrExamNotActive, status)
	}

	questions := make([]dto.TakeQuestionResponse, 0, len(exam.Questions))
	for _, question := range exam.Questions {
		questions = append(questions, dto.NewTakeQuestionResponse(question))
	}

	remaining := examtime.Remaining(now, exam.ScheduledStart, exam.Duration())
	s.logger.Info().
		Uint("student_id", studentID).
		Uint("exam_id", examID).
		Dur("time_remaining", remaining).
		Msg("student admitted to exam")

	return dto.TakeExamResponse{
		ExamID:               exam.ID,
		Title:                exam.Title,
		ScheduledStart:       exam.ScheduledStart,
		DurationMinutes:      exam.DurationMinutes,
		TimeRemainingSeconds: int(remaining.Seconds()),
		Questions:            questions,
	}, nil
}

func (s *admissionService) Submit(ctx context.Context, studentID, examID uint, payload dto.ExamSubmissionRequest) (dto.SubmissionResultResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.SubmissionResultResponse{}, err
	}

	exam, err := s.exams.GetByID(ctx, examID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SubmissionResultResponse{}, ErrExamNotFound
		}
		return dto.SubmissionResultResponse{}, err
	}

	if !exam.HasValidSchedule() {
		return dto.SubmissionResultResponse{}, ErrInvalidExamConfiguration
	}

	submitted, err := s.responses.HasSubmission(ctx, studentID, examID)
	if err != nil {
		return dto.SubmissionResultResponse{}, err
	}
	if submitted {
		return dto.SubmissionResultResponse{}, ErrAlreadySubmitted
	}

	now := s.now().UTC()
	if !examtime.WithinSubmissionWindow(now, exam.ScheduledStart, exam.Duration(), s.grace) {
		return dto.SubmissionResultResponse{}, ErrDeadlinePassed
	}

	validIDs, err := s.questions.IDsByExam(ctx, examID)
	if err != nil {
		return dto.SubmissionResultResponse{}, err
	}

	// Every accepted answer shares one submittedAt: the batch is a single
	// submission event, not a sequence of per-answer events.
	accepted := filterAnswers(payload.Answers, validIDs)
	if len(accepted) == 0 {
		return dto.SubmissionResultResponse{}, ErrNoValidAnswers
	}

	batch := make([]models.StudentResponse, 0, len(accepted))
	for _, answer := range accepted {
		batch = append(batch, models.StudentResponse{
			StudentID:    studentID,
			ExamID:       examID,
			QuestionID:   answer.questionID,
			ResponseText: answer.text,
			SubmittedAt:  now,
		})
	}

	if err := s.responses.CreateBatch(ctx, batch); err != nil {
		// A concurrent submission won the race on the unique index.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return dto.SubmissionResultResponse{}, ErrAlreadySubmitted
		}
		return dto.SubmissionResultResponse{}, err
	}

	s.publisher.SubmissionAccepted(events.SubmissionAccepted{
		StudentID:    studentID,
		ExamID:       examID,
		AnswersSaved: len(batch),
		SubmittedAt:  now,
	})

	s.logger.Info().
		Uint("student_id", studentID).
		Uint("exam_id", examID).
		Int("answers_saved", len(batch)).
		Msg("exam submitted")

	return dto.SubmissionResultResponse{
		ExamID:         examID,
		AnswersSaved:   len(batch),
		AnswersDropped: len(payload.Answers) - len(batch),
		SubmittedAt:    now,
	}, nil
}

type acceptedAnswer struct {
	questionID uint
	text       *string
}

// filterAnswers applies the submission filtering policy: answers with a
// malformed question id or an id outside the exam are dropped, the first
// occurrence wins on duplicates within the batch, and blank text is kept as
// a valid skipped answer.
func filterAnswers(answers []dto.AnswerSubmission, validIDs map[uint]struct{}) []acceptedAnswer {
	accepted := make([]acceptedAnswer, 0, len(answers))
	seen := make(map[uint]struct{}, len(answers))

	for _, answer := range answers {
		questionID, ok := normalizeQuestionID(answer.QuestionID)
		if !ok {
			continue
		}
		if _, valid := validIDs[questionID]; !valid {
			continue
		}
		if _, dup := seen[questionID]; dup {
			continue
		}
		seen[questionID] = struct{}{}

		// Blank text is a valid skipped answer, stored verbatim.
		accepted = append(accepted, acceptedAnswer{questionID: questionID, text: answer.ResponseText})
	}

	return accepted
}

// normalizeQuestionID accepts the integer shapes a decoded JSON body can
// produce. Strings, fractions and non-positive values are not well-typed
// question identifiers.
func normalizeQuestionID(value interface{}) (uint, bool) {
	switch v := value.(type) {
	case float64:
		if v <= 0 || v != math.Trunc(v) {
			return 0, false
		}
		return uint(v), true
	case int:
		if v <= 0 {
			return 0, false
		}
		return uint(v), true
	case uint:
		if v == 0 {
			return 0, false
		}
		return v, true
	default:
		return 0, false
	}
}
