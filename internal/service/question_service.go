package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/noah-isme/exam-portal-api/internal/dto"
	"github.com/noah-isme/exam-portal-api/internal/models"
	"github.com/noah-isme/exam-portal-api/internal/repository"
)

// QuestionService manages the questions of an exam. All writes go through
// the same ownership rule as the exam itself.
type QuestionService interface {
	Add(ctx context.Context, actorID uint, actorRole string, examID uint, payload dto.QuestionCreateRequest) (dto.QuestionResponse, error)
	Update(ctx context.Context, actorID uint, actorRole string, questionID uint, payload dto.QuestionUpdateRequest) (dto.QuestionResponse, error)
	Delete(ctx context.Context, actorID uint, actorRole string, questionID uint) error
	ListByExam(ctx context.Context, actorID uint, actorRole string, examID uint) ([]dto.QuestionResponse, error)
}

type questionService struct {
	exams     repository.ExamRepository
	questions repository.QuestionRepository
	validator *validator.Validate
	sanitizer *bluemonday.Policy
	logger    zerolog.Logger
}

// NewQuestionService constructs a question authoring service.
func NewQuestionService(examRepo repository.ExamRepository, questionRepo repository.QuestionRepository, validate *validator.Validate, logger zerolog.Logger) QuestionService {
	return &questionService{
		exams:     examRepo,
		questions: questionRepo,
		validator: validate,
		sanitizer: bluemonday.StrictPolicy(),
		logger:    logger.With().Str("component", "question_service").Logger(),
	}
}

func (s *questionService) Add(ctx context.Context, actorID uint, actorRole string, examID uint, payload dto.QuestionCreateRequest) (dto.QuestionResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.QuestionResponse{}, err
	}

	if err := s.authorizeExam(ctx, actorID, actorRole, examID); err != nil {
		return dto.QuestionResponse{}, err
	}

	question := models.Question{
		ExamID:        examID,
		Text:          s.sanitizer.Sanitize(payload.Text),
		Type:          payload.Type,
		Marks:         payload.Marks,
		Options:       optionsToJSONMap(payload.Options),
		CorrectAnswer: strings.TrimSpace(payload.CorrectAnswer),
		WordLimit:     payload.WordLimit,
	}

	if err := validateQuestionShape(question); err != nil {
		return dto.QuestionResponse{}, err
	}

	if err := s.questions.Create(ctx, &question); err != nil {
		return dto.QuestionResponse{}, err
	}

	s.logger.Info().Uint("exam_id", examID).Uint("question_id", question.ID).Str("type", question.Type).Msg("question added")
	return dto.NewQuestionResponse(question), nil
}

func (s *questionService) Update(ctx context.Context, actorID uint, actorRole string, questionID uint, payload dto.QuestionUpdateRequest) (dto.QuestionResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.QuestionResponse{}, err
	}

	question, err := s.questions.GetByID(ctx, questionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.QuestionResponse{}, ErrQuestionNotFound
		}
		return dto.QuestionResponse{}, err
	}

	if err := s.authorizeExam(ctx, actorID, actorRole, question.ExamID); err != nil {
		return dto.QuestionResponse{}, err
	}

	if payload.Text != nil {
		question.Text = s.sanitizer.Sanitize(*payload.Text)
	}
	if payload.Marks != nil {
		question.Marks = *payload.Marks
	}
	if payload.Options != nil {
		question.Options = optionsToJSONMap(payload.Options)
	}
	if payload.CorrectAnswer != nil {
		question.CorrectAnswer = strings.TrimSpace(*payload.CorrectAnswer)
	}
	if payload.WordLimit != nil {
		question.WordLimit = payload.WordLimit
	}

	if err := validateQuestionShape(question); err != nil {
		return dto.QuestionResponse{}, err
	}

	if err := s.questions.Update(ctx, &question); err != nil {
		return dto.QuestionResponse{}, err
	}

	s.logger.Info().Uint("question_id", question.ID).Msg("question updated")
	return dto.NewQuestionResponse(question), nil
}

func (s *questionService) Delete(ctx context.Context, actorID uint, actorRole string, questionID uint) error {
	question, err := s.questions.GetByID(ctx, questionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrQuestionNotFound
		}
		return err
	}

	if err := s.authorizeExam(ctx, actorID, actorRole, question.ExamID); err != nil {
		return err
	}

	if err := s.questions.Delete(ctx, questionID); err != nil {
		return err
	}

	s.logger.Info().Uint("question_id", questionID).Msg("question deleted")
	return nil
}

func (s *questionService) ListByExam(ctx context.Context, actorID uint, actorRole string, examID uint) ([]dto.QuestionResponse, error) {
	if err := s.authorizeExam(ctx, actorID, actorRole, examID); err != nil {
		return nil, err
	}

	questions, err := s.questions.ListByExam(ctx, examID)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.QuestionResponse, 0, len(questions))
	for _, question := range questions {
		responses = append(responses, dto.NewQuestionResponse(question))
	}
	return responses, nil
}

func (s *questionService) authorizeExam(ctx context.Context, actorID uint, actorRole string, examID uint) error {
	exam, err := s.exams.GetByID(ctx, examID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrExamNotFound
		}
		return err
	}

	if actorRole != models.RoleAdmin && exam.CreatedBy != actorID {
		return ErrForbidden
	}
	return nil
}

// validateQuestionShape enforces per-type field rules: MCQ needs at least
// two options and a correct answer naming one of them, free-text types must
// not carry options or a key, and a word limit only applies to free text.
func validateQuestionShape(question models.Question) error {
	switch question.Type {
	case models.QuestionTypeMCQ:
		if len(question.Options) < 2 {
			return fmt.Errorf("%w: mcq requires at least two options", ErrInvalidQuestionShape)
		}
		if question.CorrectAnswer == "" {
			return fmt.Errorf("%w: mcq requires a correct answer", ErrInvalidQuestionShape)
		}
		if _, ok := question.Options[question.CorrectAnswer]; !ok {
			return fmt.Errorf("%w: correct answer must name an option", ErrInvalidQuestionShape)
		}
		if question.WordLimit != nil {
			return fmt.Errorf("%w: word limit does not apply to mcq", ErrInvalidQuestionShape)
		}
	case models.QuestionTypeShortAnswer, models.QuestionTypeLongAnswer:
		if len(question.Options) > 0 || question.CorrectAnswer != "" {
			return fmt.Errorf("%w: options do not apply to free-text questions", ErrInvalidQuestionShape)
		}
	default:
		return fmt.Errorf("%w: unknown question type %q", ErrInvalidQuestionShape, question.Type)
	}
	return nil
}

func optionsToJSONMap(options map[string]string) datatypes.JSONMap {
	if len(options) == 0 {
		return nil
	}
	converted := make(datatypes.JSONMap, len(options))
	for key, value := range options {
		converted[key] = value
	}
	return converted
}
