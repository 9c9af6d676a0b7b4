package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/noah-isme/exam-portal-api/internal/models"
)

func setupExamTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Exam{},
		&models.Question{},
		&models.StudentResponse{},
		&models.Evaluation{},
	))
	return db
}

func seedExamWithQuestion(t *testing.T, db *gorm.DB) (models.Exam, models.Question, models.User) {
	t.Helper()

	student := models.User{Name: "Ada", Email: "ada@example.com", PasswordHash: "x", Role: models.RoleStudent, IsVerified: true}
	require.NoError(t, db.Create(&student).Error)

	exam := models.Exam{
		Title:           "Distributed Systems",
		ScheduledStart:  time.Date(2026, time.April, 1, 9, 0, 0, 0, time.UTC),
		DurationMinutes: 60,
		CreatedBy:       student.ID,
	}
	require.NoError(t, db.Create(&exam).Error)

	question := models.Question{ExamID: exam.ID, Text: "Explain quorum reads.", Type: models.QuestionTypeLongAnswer, Marks: 10}
	require.NoError(t, db.Create(&question).Error)

	return exam, question, student
}

func TestResponseRepositoryBatchAndDuplicateDetection(t *testing.T) {
	db := setupExamTestDB(t)
	repo := NewResponseRepository(db)
	exam, question, student := seedExamWithQuestion(t, db)

	answer := "A quorum read contacts a majority of replicas."
	submittedAt := exam.ScheduledStart.Add(30 * time.Minute)
	batch := []models.StudentResponse{{
		StudentID:    student.ID,
		ExamID:       exam.ID,
		QuestionID:   question.ID,
		ResponseText: &answer,
		SubmittedAt:  submittedAt,
	}}
	require.NoError(t, repo.CreateBatch(context.Background(), batch))

	has, err := repo.HasSubmission(context.Background(), student.ID, exam.ID)
	require.NoError(t, err)
	require.True(t, has)

	// A second batch for the same (student, exam, question) must hit the
	// unique index, not silently create a second submission.
	dup := []models.StudentResponse{{
		StudentID:   student.ID,
		ExamID:      exam.ID,
		QuestionID:  question.ID,
		SubmittedAt: submittedAt.Add(time.Second),
	}}
	err = repo.CreateBatch(context.Background(), dup)
	require.Error(t, err)
	require.True(t, errors.Is(err, gorm.ErrDuplicatedKey))
}

func TestResponseRepositoryBatchIsAtomic(t *testing.T) {
	db := setupExamTestDB(t)
	repo := NewResponseRepository(db)
	exam, question, student := seedExamWithQuestion(t, db)

	second := models.Question{ExamID: exam.ID, Text: "Define linearizability.", Type: models.QuestionTypeShortAnswer, Marks: 5}
	require.NoError(t, db.Create(&second).Error)

	existing := []models.StudentResponse{{
		StudentID:   student.ID,
		ExamID:      exam.ID,
		QuestionID:  question.ID,
		SubmittedAt: exam.ScheduledStart,
	}}
	require.NoError(t, repo.CreateBatch(context.Background(), existing))

	// One conflicting row must roll back the whole batch.
	batch := []models.StudentResponse{
		{StudentID: student.ID, ExamID: exam.ID, QuestionID: second.ID, SubmittedAt: exam.ScheduledStart},
		{StudentID: student.ID, ExamID: exam.ID, QuestionID: question.ID, SubmittedAt: exam.ScheduledStart},
	}
	require.Error(t, repo.CreateBatch(context.Background(), batch))

	var total int64
	require.NoError(t, db.Model(&models.StudentResponse{}).Count(&total).Error)
	require.Equal(t, int64(1), total)
}

func TestResponseRepositoryDistinctExamQueries(t *testing.T) {
	db := setupExamTestDB(t)
	repo := NewResponseRepository(db)
	exam, question, student := seedExamWithQuestion(t, db)

	other := models.Exam{Title: "Networks", ScheduledStart: exam.ScheduledStart.Add(24 * time.Hour), DurationMinutes: 45, CreatedBy: student.ID}
	require.NoError(t, db.Create(&other).Error)
	otherQuestion := models.Question{ExamID: other.ID, Text: "What is BGP?", Type: models.QuestionTypeShortAnswer, Marks: 5}
	require.NoError(t, db.Create(&otherQuestion).Error)

	require.NoError(t, repo.CreateBatch(context.Background(), []models.StudentResponse{
		{StudentID: student.ID, ExamID: exam.ID, QuestionID: question.ID, SubmittedAt: exam.ScheduledStart},
		{StudentID: student.ID, ExamID: other.ID, QuestionID: otherQuestion.ID, SubmittedAt: other.ScheduledStart},
	}))

	ids, err := repo.SubmittedExamIDs(context.Background(), student.ID)
	require.NoError(t, err)
	require.Len(t, ids, 2)
	require.Contains(t, ids, exam.ID)
	require.Contains(t, ids, other.ID)

	count, err := repo.CountDistinctExams(context.Background(), student.ID)
	require.NoError(t, err)
	require.Equal(t, int64(2), count)
}

func TestEvaluationRepositoryUniquePerResponse(t *testing.T) {
	db := setupExamTestDB(t)
	responses := NewResponseRepository(db)
	evaluations := NewEvaluationRepository(db)
	exam, question, student := seedExamWithQuestion(t, db)

	require.NoError(t, responses.CreateBatch(context.Background(), []models.StudentResponse{{
		StudentID:   student.ID,
		ExamID:      exam.ID,
		QuestionID:  question.ID,
		SubmittedAt: exam.ScheduledStart,
	}}))

	var stored models.StudentResponse
	require.NoError(t, db.First(&stored).Error)

	first := models.Evaluation{ResponseID: stored.ID, MarksAwarded: 7, Feedback: "Good.", EvaluatedBy: "oracle:gpt-4o-mini", EvaluatedAt: time.Now().UTC()}
	require.NoError(t, evaluations.Create(context.Background(), &first))

	exists, err := evaluations.ExistsForResponse(context.Background(), stored.ID)
	require.NoError(t, err)
	require.True(t, exists)

	second := models.Evaluation{ResponseID: stored.ID, MarksAwarded: 9, Feedback: "Re-graded.", EvaluatedBy: "oracle:gpt-4o-mini", EvaluatedAt: time.Now().UTC()}
	err = evaluations.Create(context.Background(), &second)
	require.Error(t, err)
	require.True(t, errors.Is(err, gorm.ErrDuplicatedKey))
}

func TestEvaluationRepositoryListResultsJoinsDetail(t *testing.T) {
	db := setupExamTestDB(t)
	responses := NewResponseRepository(db)
	evaluations := NewEvaluationRepository(db)
	exam, question, student := seedExamWithQuestion(t, db)

	answer := "Majority vote."
	require.NoError(t, responses.CreateBatch(context.Background(), []models.StudentResponse{{
		StudentID:    student.ID,
		ExamID:       exam.ID,
		QuestionID:   question.ID,
		ResponseText: &answer,
		SubmittedAt:  exam.ScheduledStart,
	}}))

	var stored models.StudentResponse
	require.NoError(t, db.First(&stored).Error)
	require.NoError(t, evaluations.Create(context.Background(), &models.Evaluation{
		ResponseID:   stored.ID,
		MarksAwarded: 6.5,
		Feedback:     "Correct but terse.",
		EvaluatedBy:  "oracle:gpt-4o-mini",
		EvaluatedAt:  time.Now().UTC(),
	}))

	rows, total, err := evaluations.ListResults(context.Background(), 1, 10)
	require.NoError(t, err)
	require.Equal(t, int64(1), total)
	require.Len(t, rows, 1)
	require.Equal(t, "Ada", rows[0].StudentName)
	require.Equal(t, "Distributed Systems", rows[0].ExamTitle)
	require.Equal(t, 10, rows[0].MarksPossible)
	require.InDelta(t, 6.5, rows[0].MarksAwarded, 0.0001)
}
