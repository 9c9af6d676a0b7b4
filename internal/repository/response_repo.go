package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/exam-portal-api/internal/models"
)

// ResponseRepository defines persistence operations for student responses.
type ResponseRepository interface {
	// CreateBatch inserts a full submission in one transaction. The unique
	// index on (student_id, exam_id, question_id) makes a concurrent
	// duplicate submission fail with gorm.ErrDuplicatedKey.
	CreateBatch(ctx context.Context, responses []models.StudentResponse) error
	HasSubmission(ctx context.Context, studentID, examID uint) (bool, error)
	GetByID(ctx context.Context, id uint) (models.StudentResponse, error)
	ListByStudent(ctx context.Context, studentID uint) ([]models.StudentResponse, error)
	ListByExam(ctx context.Context, examID uint) ([]models.StudentResponse, error)
	SubmittedExamIDs(ctx context.Context, studentID uint) (map[uint]struct{}, error)
	CountDistinctExams(ctx context.Context, studentID uint) (int64, error)
	Count(ctx context.Context) (int64, error)
}

// NewResponseRepository constructs a student response repository.
func NewResponseRepository(db *gorm.DB) ResponseRepository {
	return &responseRepository{db: db}
}

type responseRepository struct {
	db *gorm.DB
}

func (r *responseRepository) CreateBatch(ctx context.Context, responses []models.StudentResponse) error {
	if len(responses) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(&responses).Error
	})
}

func (r *responseRepository) HasSubmission(ctx context.Context, studentID, examID uint) (bool, error) {
	var total int64
	err := r.db.WithContext(ctx).
		Model(&models.StudentResponse{}).
		Where("student_id = ? AND exam_id = ?", studentID, examID).
		Count(&total).Error
	if err != nil {
		return false, err
	}
	return total > 0, nil
}

func (r *responseRepository) GetByID(ctx context.Context, id uint) (models.StudentResponse, error) {
	var response models.StudentResponse
	err := r.db.WithContext(ctx).
		Preload("Question").
		Preload("Evaluation").
		First(&response, id).Error
	if err != nil {
		return models.StudentResponse{}, err
	}
	return response, nil
}

func (r *responseRepository) ListByStudent(ctx context.Context, studentID uint) ([]models.StudentResponse, error) {
	var responses []models.StudentResponse
	err := r.db.WithContext(ctx).
		Preload("Question").
		Preload("Evaluation").
		Where("student_id = ?", studentID).
		Order("exam_id DESC, question_id ASC").
		Find(&responses).Error
	if err != nil {
		return nil, err
	}
	return responses, nil
}

func (r *responseRepository) ListByExam(ctx context.Context, examID uint) ([]models.StudentResponse, error) {
	var responses []models.StudentResponse
	err := r.db.WithContext(ctx).
		Preload("Question").
		Preload("Evaluation").
		Where("exam_id = ?", examID).
		Order("student_id ASC, question_id ASC").
		Find(&responses).Error
	if err != nil {
		return nil, err
	}
	return responses, nil
}

func (r *responseRepository) SubmittedExamIDs(ctx context.Context, studentID uint) (map[uint]struct{}, error) {
	var ids []uint
	err := r.db.WithContext(ctx).
		Model(&models.StudentResponse{}).
		Where("student_id = ?", studentID).
		Distinct().
		Pluck("exam_id", &ids).Error
	if err != nil {
		return nil, err
	}

	set := make(map[uint]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set, nil
}

func (r *responseRepository) CountDistinctExams(ctx context.Context, studentID uint) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).
		Model(&models.StudentResponse{}).
		Where("student_id = ?", studentID).
		Distinct("exam_id").
		Count(&total).Error
	if err != nil {
		return 0, err
	}
	return total, nil
}

func (r *responseRepository) Count(ctx context.Context) (int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&models.StudentResponse{}).Count(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}
