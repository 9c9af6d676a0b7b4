package service

import (
	"context"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/exam-portal-api/internal/dto"
	"github.com/noah-isme/exam-portal-api/internal/models"
)

type recordingExamRepo struct {
	examRepoStub
	created []models.Exam
	updated []models.Exam
	deleted []uint
}

func (s *recordingExamRepo) Create(ctx context.Context, exam *models.Exam) error {
	exam.ID = uint(len(s.created) + 1)
	s.created = append(s.created, *exam)
	return nil
}

func (s *recordingExamRepo) Update(ctx context.Context, exam *models.Exam) error {
	s.updated = append(s.updated, *exam)
	return nil
}

func (s *recordingExamRepo) Delete(ctx context.Context, id uint) error {
	s.deleted = append(s.deleted, id)
	return nil
}

func newExams(repo *recordingExamRepo) ExamService {
	return NewExamService(repo, validator.New(validator.WithRequiredStructEnabled()), zerolog.Nop())
}

func TestCreateExamSanitisesAndStoresUTC(t *testing.T) {
	repo := &recordingExamRepo{}
	svc := newExams(repo)

	offset := time.FixedZone("IST", 5*3600+1800)
	created, err := svc.Create(context.Background(), 3, dto.ExamCreateRequest{
		Title:           `Midterm <b>2026</b>`,
		Description:     "Covers units 1-4.",
		ScheduledStart:  time.Date(2026, time.May, 12, 14, 30, 0, 0, offset),
		DurationMinutes: 60,
	})
	require.NoError(t, err)
	require.NotContains(t, created.Title, "<b>")
	require.Contains(t, created.Title, "Midterm")
	require.Equal(t, time.UTC, created.ScheduledStart.Location())
	require.Equal(t, examStart, created.ScheduledStart)
	require.Equal(t, uint(3), created.CreatedBy)
}

func TestUpdateExamEnforcesOwnership(t *testing.T) {
	exam := sampleExam()
	exam.CreatedBy = 3
	repo := &recordingExamRepo{examRepoStub: examRepoStub{exam: exam}}
	svc := newExams(repo)

	title := "Renamed"
	_, err := svc.Update(context.Background(), 8, models.RoleTeacher, 1, dto.ExamUpdateRequest{Title: &title})
	require.ErrorIs(t, err, ErrForbidden)
	require.Empty(t, repo.updated)

	updated, err := svc.Update(context.Background(), 3, models.RoleTeacher, 1, dto.ExamUpdateRequest{Title: &title})
	require.NoError(t, err)
	require.Equal(t, "Renamed", updated.Title)

	// Admins bypass the ownership rule.
	_, err = svc.Update(context.Background(), 99, models.RoleAdmin, 1, dto.ExamUpdateRequest{Title: &title})
	require.NoError(t, err)
}

func TestUpdateExamRejectsBrokenSchedule(t *testing.T) {
	exam := sampleExam()
	exam.CreatedBy = 3
	repo := &recordingExamRepo{examRepoStub: examRepoStub{exam: exam}}
	svc := newExams(repo)

	var zero time.Time
	_, err := svc.Update(context.Background(), 3, models.RoleTeacher, 1, dto.ExamUpdateRequest{ScheduledStart: &zero})
	require.ErrorIs(t, err, ErrInvalidExamConfiguration)
	require.Empty(t, repo.updated)
}

func TestDeleteExamEnforcesOwnership(t *testing.T) {
	exam := sampleExam()
	exam.CreatedBy = 3
	repo := &recordingExamRepo{examRepoStub: examRepoStub{exam: exam}}
	svc := newExams(repo)

	require.ErrorIs(t, svc.Delete(context.Background(), 8, models.RoleTeacher, 1), ErrForbidden)
	require.NoError(t, svc.Delete(context.Background(), 3, models.RoleTeacher, 1))
	require.Equal(t, []uint{1}, repo.deleted)
}
