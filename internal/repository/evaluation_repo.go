package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/noah-isme/exam-portal-api/internal/models"
)

// ResultRow flattens an evaluation with its response, question, exam and
// student for the admin results listing.
type ResultRow struct {
	EvaluationID  uint      `json:"evaluation_id"`
	ResponseID    uint      `json:"response_id"`
	StudentName   string    `json:"student_name"`
	StudentEmail  string    `json:"student_email"`
	ExamTitle     string    `json:"exam_title"`
	QuestionText  string    `json:"question_text"`
	MarksAwarded  float64   `json:"marks_awarded"`
	MarksPossible int       `json:"marks_possible"`
	EvaluatedBy   string    `json:"evaluated_by"`
	Feedback      string    `json:"feedback"`
	EvaluatedAt   time.Time `json:"evaluated_at"`
}

// EvaluationRepository defines persistence operations for evaluations.
type EvaluationRepository interface {
	// Create inserts the evaluation; the unique index on response_id makes a
	// concurrent duplicate fail with gorm.ErrDuplicatedKey.
	Create(ctx context.Context, evaluation *models.Evaluation) error
	ExistsForResponse(ctx context.Context, responseID uint) (bool, error)
	Count(ctx context.Context) (int64, error)
	ListResults(ctx context.Context, page, pageSize int) ([]ResultRow, int64, error)
}

// NewEvaluationRepository constructs an evaluation repository.
func NewEvaluationRepository(db *gorm.DB) EvaluationRepository {
	return &evaluationRepository{db: db}
}

type evaluationRepository struct {
	db *gorm.DB
}

func (r *evaluationRepository) Create(ctx context.Context, evaluation *models.Evaluation) error {
	return r.db.WithContext(ctx).Create(evaluation).Error
}

func (r *evaluationRepository) ExistsForResponse(ctx context.Context, responseID uint) (bool, error) {
	var total int64
	err := r.db.WithContext(ctx).
		Model(&models.Evaluation{}).
		Where("response_id = ?", responseID).
		Count(&total).Error
	if err != nil {
		return false, err
	}
	return total > 0, nil
}

func (r *evaluationRepository) Count(ctx context.Context) (int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&models.Evaluation{}).Count(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}

func (r *evaluationRepository) ListResults(ctx context.Context, page, pageSize int) ([]ResultRow, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}

	joined := func() *gorm.DB {
		return r.db.WithContext(ctx).
			Table("evaluations").
			Joins("JOIN student_responses ON student_responses.id = evaluations.response_id").
			Joins("JOIN questions ON questions.id = student_responses.question_id").
			Joins("JOIN exams ON exams.id = student_responses.exam_id").
			Joins("JOIN users ON users.id = student_responses.student_id")
	}

	var total int64
	if err := joined().Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []ResultRow
	err := joined().
		Select(`evaluations.id AS evaluation_id,
			evaluations.response_id,
			users.name AS student_name,
			users.email AS student_email,
			exams.title AS exam_title,
			questions.text AS question_text,
			evaluations.marks_awarded,
			questions.marks AS marks_possible,
			evaluations.evaluated_by,
			evaluations.feedback,
			evaluations.evaluated_at`).
		Order("evaluations.evaluated_at DESC").
		Limit(pageSize).
		Offset((page - 1) * pageSize).
		Scan(&rows).Error
	if err != nil {
		return nil, 0, err
	}

	return rows, total, nil
}
