package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/noah-isme/exam-portal-api/internal/models"
)

// ExamRepository defines persistence operations for exams.
type ExamRepository interface {
	Create(ctx context.Context, exam *models.Exam) error
	Update(ctx context.Context, exam *models.Exam) error
	Delete(ctx context.Context, id uint) error
	GetByID(ctx context.Context, id uint) (models.Exam, error)
	GetWithQuestions(ctx context.Context, id uint) (models.Exam, error)
	List(ctx context.Context) ([]models.Exam, error)
	ListByCreator(ctx context.Context, creatorID uint) ([]models.Exam, error)
	ListUpcoming(ctx context.Context, after time.Time, limit int) ([]models.Exam, error)
	Count(ctx context.Context) (int64, error)
}

// NewExamRepository constructs an exam repository.
func NewExamRepository(db *gorm.DB) ExamRepository {
	return &examRepository{db: db}
}

type examRepository struct {
	db *gorm.DB
}

func (r *examRepository) Create(ctx context.Context, exam *models.Exam) error {
	return r.db.WithContext(ctx).Create(exam).Error
}

func (r *examRepository) Update(ctx context.Context, exam *models.Exam) error {
	return r.db.WithContext(ctx).Save(exam).Error
}

func (r *examRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Exam{}, id).Error
}

func (r *examRepository) GetByID(ctx context.Context, id uint) (models.Exam, error) {
	var exam models.Exam
	if err := r.db.WithContext(ctx).First(&exam, id).Error; err != nil {
		return models.Exam{}, err
	}
	return exam, nil
}

func (r *examRepository) GetWithQuestions(ctx context.Context, id uint) (models.Exam, error) {
	var exam models.Exam
	err := r.db.WithContext(ctx).
		Preload("Questions", func(db *gorm.DB) *gorm.DB {
			return db.Order("questions.id ASC")
		}).
		First(&exam, id).Error
	if err != nil {
		return models.Exam{}, err
	}
	return exam, nil
}

func (r *examRepository) List(ctx context.Context) ([]models.Exam, error) {
	var exams []models.Exam
	if err := r.db.WithContext(ctx).Order("scheduled_start ASC").Find(&exams).Error; err != nil {
		return nil, err
	}
	return exams, nil
}

func (r *examRepository) ListByCreator(ctx context.Context, creatorID uint) ([]models.Exam, error) {
	var exams []models.Exam
	err := r.db.WithContext(ctx).
		Where("created_by = ?", creatorID).
		Order("scheduled_start ASC").
		Find(&exams).Error
	if err != nil {
		return nil, err
	}
	return exams, nil
}

func (r *examRepository) ListUpcoming(ctx context.Context, after time.Time, limit int) ([]models.Exam, error) {
	query := r.db.WithContext(ctx).
		Where("scheduled_start > ?", after.UTC()).
		Order("scheduled_start ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var exams []models.Exam
	if err := query.Find(&exams).Error; err != nil {
		return nil, err
	}
	return exams, nil
}

func (r *examRepository) Count(ctx context.Context) (int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&models.Exam{}).Count(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}
