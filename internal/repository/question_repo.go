package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/exam-portal-api/internal/models"
)

// QuestionRepository defines persistence operations for exam questions.
type QuestionRepository interface {
	Create(ctx context.Context, question *models.Question) error
	Update(ctx context.Context, question *models.Question) error
	Delete(ctx context.Context, id uint) error
	GetByID(ctx context.Context, id uint) (models.Question, error)
	ListByExam(ctx context.Context, examID uint) ([]models.Question, error)
	IDsByExam(ctx context.Context, examID uint) (map[uint]struct{}, error)
}

// NewQuestionRepository constructs a question repository.
func NewQuestionRepository(db *gorm.DB) QuestionRepository {
	return &questionRepository{db: db}
}

type questionRepository struct {
	db *gorm.DB
}

func (r *questionRepository) Create(ctx context.Context, question *models.Question) error {
	return r.db.WithContext(ctx).Create(question).Error
}

func (r *questionRepository) Update(ctx context.Context, question *models.Question) error {
	return r.db.WithContext(ctx).Save(question).Error
}

func (r *questionRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Question{}, id).Error
}

func (r *questionRepository) GetByID(ctx context.Context, id uint) (models.Question, error) {
	var question models.Question
	if err := r.db.WithContext(ctx).First(&question, id).Error; err != nil {
		return models.Question{}, err
	}
	return question, nil
}

func (r *questionRepository) ListByExam(ctx context.Context, examID uint) ([]models.Question, error) {
	var questions []models.Question
	err := r.db.WithContext(ctx).
		Where("exam_id = ?", examID).
		Order("id ASC").
		Find(&questions).Error
	if err != nil {
		return nil, err
	}
	return questions, nil
}

func (r *questionRepository) IDsByExam(ctx context.Context, examID uint) (map[uint]struct{}, error) {
	var ids []uint
	err := r.db.WithContext(ctx).
		Model(&models.Question{}).
		Where("exam_id = ?", examID).
		Pluck("id", &ids).Error
	if err != nil {
		return nil, err
	}

	set := make(map[uint]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set, nil
}
