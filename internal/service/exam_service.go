package service

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/exam-portal-api/internal/dto"
	"github.com/noah-isme/exam-portal-api/internal/models"
	"github.com/noah-isme/exam-portal-api/internal/repository"
)

// ExamService covers the authoring surface: teachers manage their own
// exams, admins manage all of them.
type ExamService interface {
	Create(ctx context.Context, creatorID uint, payload dto.ExamCreateRequest) (dto.ExamResponse, error)
	Update(ctx context.Context, actorID uint, actorRole string, examID uint, payload dto.ExamUpdateRequest) (dto.ExamResponse, error)
	Delete(ctx context.Context, actorID uint, actorRole string, examID uint) error
	Get(ctx context.Context, examID uint) (dto.ExamResponse, []dto.QuestionResponse, error)
	ListForCreator(ctx context.Context, creatorID uint) ([]dto.ExamResponse, error)
	ListAll(ctx context.Context) ([]dto.ExamResponse, error)
}

type examService struct {
	exams     repository.ExamRepository
	validator *validator.Validate
	sanitizer *bluemonday.Policy
	logger    zerolog.Logger
}

// NewExamService constructs an exam authoring service.
func NewExamService(examRepo repository.ExamRepository, validate *validator.Validate, logger zerolog.Logger) ExamService {
	return &examService{
		exams:     examRepo,
		validator: validate,
		sanitizer: bluemonday.StrictPolicy(),
		logger:    logger.With().Str("component", "exam_service").Logger(),
	}
}

func (s *examService) Create(ctx context.Context, creatorID uint, payload dto.ExamCreateRequest) (dto.ExamResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.ExamResponse{}, err
	}

	exam := models.Exam{
		Title:           s.sanitizer.Sanitize(payload.Title),
		Description:     s.sanitizer.Sanitize(payload.Description),
		ScheduledStart:  payload.ScheduledStart.UTC(),
		DurationMinutes: payload.DurationMinutes,
		CreatedBy:       creatorID,
	}
	if !exam.HasValidSchedule() {
		return dto.ExamResponse{}, ErrInvalidExamConfiguration
	}

	if err := s.exams.Create(ctx, &exam); err != nil {
		return dto.ExamResponse{}, err
	}

	s.logger.Info().Uint("exam_id", exam.ID).Uint("created_by", creatorID).Msg("exam created")
	return dto.NewExamResponse(exam), nil
}

func (s *examService) Update(ctx context.Context, actorID uint, actorRole string, examID uint, payload dto.ExamUpdateRequest) (dto.ExamResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.ExamResponse{}, err
	}

	exam, err := s.ownedExam(ctx, actorID, actorRole, examID)
	if err != nil {
		return dto.ExamResponse{}, err
	}

	if payload.Title != nil {
		exam.Title = s.sanitizer.Sanitize(*payload.Title)
	}
	if payload.Description != nil {
		exam.Description = s.sanitizer.Sanitize(*payload.Description)
	}
	if payload.ScheduledStart != nil {
		exam.ScheduledStart = payload.ScheduledStart.UTC()
	}
	if payload.DurationMinutes != nil {
		exam.DurationMinutes = *payload.DurationMinutes
	}
	if !exam.HasValidSchedule() {
		return dto.ExamResponse{}, ErrInvalidExamConfiguration
	}

	if err := s.exams.Update(ctx, &exam); err != nil {
		return dto.ExamResponse{}, err
	}

	s.logger.Info().Uint("exam_id", exam.ID).Msg("exam updated")
	return dto.NewExamResponse(exam), nil
}

func (s *examService) Delete(ctx context.Context, actorID uint, actorRole string, examID uint) error {
	if _, err := s.ownedExam(ctx, actorID, actorRole, examID); err != nil {
		return err
	}

	if err := s.exams.Delete(ctx, examID); err != nil {
		return err
	}

	s.logger.Info().Uint("exam_id", examID).Msg("exam deleted")
	return nil
}

func (s *examService) Get(ctx context.Context, examID uint) (dto.ExamResponse, []dto.QuestionResponse, error) {
	exam, err := s.exams.GetWithQuestions(ctx, examID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ExamResponse{}, nil, ErrExamNotFound
		}
		return dto.ExamResponse{}, nil, err
	}

	questions := make([]dto.QuestionResponse, 0, len(exam.Questions))
	for _, question := range exam.Questions {
		questions = append(questions, dto.NewQuestionResponse(question))
	}

	return dto.NewExamResponse(exam), questions, nil
}

func (s *examService) ListForCreator(ctx context.Context, creatorID uint) ([]dto.ExamResponse, error) {
	exams, err := s.exams.ListByCreator(ctx, creatorID)
	if err != nil {
		return nil, err
	}
	return toExamResponses(exams), nil
}

func (s *examService) ListAll(ctx context.Context) ([]dto.ExamResponse, error) {
	exams, err := s.exams.List(ctx)
	if err != nil {
		return nil, err
	}
	return toExamResponses(exams), nil
}

// ownedExam loads the exam and enforces the authoring ownership rule:
// teachers may only touch their own exams, admins may touch any.
func (s *examService) ownedExam(ctx context.Context, actorID uint, actorRole string, examID uint) (models.Exam, error) {
	exam, err := s.exams.GetByID(ctx, examID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Exam{}, ErrExamNotFound
		}
		return models.Exam{}, err
	}

	if actorRole != models.RoleAdmin && exam.CreatedBy != actorID {
		return models.Exam{}, ErrForbidden
	}
	return exam, nil
}

func toExamResponses(exams []models.Exam) []dto.ExamResponse {
	responses := make([]dto.ExamResponse, 0, len(exams))
	for _, exam := range exams {
		responses = append(responses, dto.NewExamResponse(exam))
	}
	return responses
}
