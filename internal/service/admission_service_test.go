package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/noah-isme/exam-portal-api/internal/dto"
	"github.com/noah-isme/exam-portal-api/internal/models"
)

var examStart = time.Date(2026, time.May, 12, 9, 0, 0, 0, time.UTC)

type examRepoStub struct {
	exam     models.Exam
	all      []models.Exam
	upcoming []models.Exam
	err      error
}

func (s *examRepoStub) Create(ctx context.Context, exam *models.Exam) error { return s.err }
func (s *examRepoStub) Update(ctx context.Context, exam *models.Exam) error { return s.err }
func (s *examRepoStub) Delete(ctx context.Context, id uint) error           { return s.err }

func (s *examRepoStub) GetByID(ctx context.Context, id uint) (models.Exam, error) {
	if s.err != nil {
		return models.Exam{}, s.err
	}
	if s.exam.ID == 0 {
		return models.Exam{}, gorm.ErrRecordNotFound
	}
	return s.exam, nil
}

func (s *examRepoStub) GetWithQuestions(ctx context.Context, id uint) (models.Exam, error) {
	return s.GetByID(ctx, id)
}

func (s *examRepoStub) List(ctx context.Context) ([]models.Exam, error) { return s.all, s.err }
func (s *examRepoStub) ListByCreator(ctx context.Context, creatorID uint) ([]models.Exam, error) {
	return nil, s.err
}
func (s *examRepoStub) ListUpcoming(ctx context.Context, after time.Time, limit int) ([]models.Exam, error) {
	return s.upcoming, s.err
}
func (s *examRepoStub) Count(ctx context.Context) (int64, error) { return 0, s.err }

type questionRepoStub struct {
	ids map[uint]struct{}
}

func (s *questionRepoStub) Create(ctx context.Context, question *models.Question) error {
	return errors.New("not implemented")
}
func (s *questionRepoStub) Update(ctx context.Context, question *models.Question) error {
	return errors.New("not implemented")
}
func (s *questionRepoStub) Delete(ctx context.Context, id uint) error {
	return errors.New("not implemented")
}
func (s *questionRepoStub) GetByID(ctx context.Context, id uint) (models.Question, error) {
	return models.Question{}, errors.New("not implemented")
}
func (s *questionRepoStub) ListByExam(ctx context.Context, examID uint) ([]models.Question, error) {
	return nil, errors.New("not implemented")
}
func (s *questionRepoStub) IDsByExam(ctx context.Context, examID uint) (map[uint]struct{}, error) {
	return s.ids, nil
}

type responseRepoStub struct {
	submitted    bool
	created      []models.StudentResponse
	createErr    error
	byStudent    []models.StudentResponse
	submittedIDs map[uint]struct{}
	distinct     int64
	getCalls     int
}

func (s *responseRepoStub) CreateBatch(ctx context.Context, responses []models.StudentResponse) error {
	if s.createErr != nil {
		return s.createErr
	}
	s.created = append([]models.StudentResponse(nil), responses...)
	return nil
}

func (s *responseRepoStub) HasSubmission(ctx context.Context, studentID, examID uint) (bool, error) {
	return s.submitted, nil
}

func (s *responseRepoStub) GetByID(ctx context.Context, id uint) (models.StudentResponse, error) {
	return models.StudentResponse{}, errors.New("not implemented")
}
func (s *responseRepoStub) ListByStudent(ctx context.Context, studentID uint) ([]models.StudentResponse, error) {
	return s.byStudent, nil
}
func (s *responseRepoStub) ListByExam(ctx context.Context, examID uint) ([]models.StudentResponse, error) {
	return nil, errors.New("not implemented")
}
func (s *responseRepoStub) SubmittedExamIDs(ctx context.Context, studentID uint) (map[uint]struct{}, error) {
	return s.submittedIDs, nil
}
func (s *responseRepoStub) CountDistinctExams(ctx context.Context, studentID uint) (int64, error) {
	s.getCalls++
	return s.distinct, nil
}
func (s *responseRepoStub) Count(ctx context.Context) (int64, error) {
	return 0, errors.New("not implemented")
}

func sampleExam() models.Exam {
	limit := 100
	return models.Exam{
		ID:              1,
		Title:           "Operating Systems",
		ScheduledStart:  examStart,
		DurationMinutes: 60,
		Questions: []models.Question{
			{ID: 11, ExamID: 1, Text: "Pick one.", Type: models.QuestionTypeMCQ, Marks: 2, Options: map[string]interface{}{"a": "Mutex", "b": "Spinlock"}, CorrectAnswer: "a"},
			{ID: 12, ExamID: 1, Text: "Explain paging.", Type: models.QuestionTypeLongAnswer, Marks: 10, WordLimit: &limit},
		},
	}
}

func newAdmission(exams *examRepoStub, responses *responseRepoStub, at time.Time) AdmissionService {
	return NewAdmissionService(
		exams,
		&questionRepoStub{ids: map[uint]struct{}{11: {}, 12: {}}},
		responses,
		nil,
		validator.New(validator.WithRequiredStructEnabled()),
		zerolog.Nop(),
		AdmissionConfig{GracePeriod: 30 * time.Second, Now: func() time.Time { return at }},
	)
}

func strPtr(s string) *string { return &s }

func TestCanStartDeniesBeforeAndAfterWindow(t *testing.T) {
	exams := &examRepoStub{exam: sampleExam()}

	svc := newAdmission(exams, &responseRepoStub{}, examStart.Add(-time.Second))
	_, err := svc.CanStart(context.Background(), 7, 1)
	require.ErrorIs(t, err, ErrExamNotActive)

	svc = newAdmission(exams, &responseRepoStub{}, examStart.Add(61*time.Minute))
	_, err = svc.CanStart(context.Background(), 7, 1)
	require.ErrorIs(t, err, ErrExamNotActive)
}

func TestCanStartAllowsDuringWindow(t *testing.T) {
	exams := &examRepoStub{exam: sampleExam()}
	svc := newAdmission(exams, &responseRepoStub{}, examStart.Add(30*time.Minute))

	resp, err := svc.CanStart(context.Background(), 7, 1)
	require.NoError(t, err)
	require.Equal(t, uint(1), resp.ExamID)
	require.Equal(t, 30*60, resp.TimeRemainingSeconds)
	require.Len(t, resp.Questions, 2)

	// MCQ exposes options, never the key; free text exposes the word limit.
	require.Equal(t, map[string]string{"a": "Mutex", "b": "Spinlock"}, resp.Questions[0].Options)
	require.Nil(t, resp.Questions[0].WordLimit)
	require.Nil(t, resp.Questions[1].Options)
	require.NotNil(t, resp.Questions[1].WordLimit)
}

func TestCanStartDeniesAfterSubmission(t *testing.T) {
	exams := &examRepoStub{exam: sampleExam()}
	svc := newAdmission(exams, &responseRepoStub{submitted: true}, examStart.Add(10*time.Minute))

	_, err := svc.CanStart(context.Background(), 7, 1)
	require.ErrorIs(t, err, ErrAlreadySubmitted)
}

func TestCanStartRejectsBrokenSchedule(t *testing.T) {
	broken := sampleExam()
	broken.DurationMinutes = 0
	svc := newAdmission(&examRepoStub{exam: broken}, &responseRepoStub{}, examStart)

	_, err := svc.CanStart(context.Background(), 7, 1)
	require.ErrorIs(t, err, ErrInvalidExamConfiguration)
}

func TestSubmitFiltersAnswersAndSharesTimestamp(t *testing.T) {
	exams := &examRepoStub{exam: sampleExam()}
	responses := &responseRepoStub{}
	now := examStart.Add(45 * time.Minute)
	svc := newAdmission(exams, responses, now)

	payload := dto.ExamSubmissionRequest{Answers: []dto.AnswerSubmission{
		{QuestionID: float64(11), ResponseText: strPtr("a")},
		{QuestionID: float64(11), ResponseText: strPtr("b")},  // duplicate, first wins
		{QuestionID: float64(99), ResponseText: strPtr("x")},  // not in this exam
		{QuestionID: "12", ResponseText: strPtr("paging...")}, // malformed id
		{QuestionID: float64(12), ResponseText: strPtr("")},   // blank is a valid skip
	}}

	result, err := svc.Submit(context.Background(), 7, 1, payload)
	require.NoError(t, err)
	require.Equal(t, 2, result.AnswersSaved)
	require.Equal(t, 3, result.AnswersDropped)
	require.Len(t, responses.created, 2)

	require.Equal(t, uint(11), responses.created[0].QuestionID)
	require.Equal(t, "a", *responses.created[0].ResponseText)
	require.Equal(t, uint(12), responses.created[1].QuestionID)
	require.Equal(t, "", *responses.created[1].ResponseText)

	for _, created := range responses.created {
		require.Equal(t, now, created.SubmittedAt, "all answers in a batch share one submission instant")
	}
}

func TestSubmitRejectsWhenNothingSurvivesFiltering(t *testing.T) {
	svc := newAdmission(&examRepoStub{exam: sampleExam()}, &responseRepoStub{}, examStart.Add(10*time.Minute))

	payload := dto.ExamSubmissionRequest{Answers: []dto.AnswerSubmission{
		{QuestionID: float64(99)},
		{QuestionID: "nope"},
		{QuestionID: float64(11.5)},
	}}

	_, err := svc.Submit(context.Background(), 7, 1, payload)
	require.ErrorIs(t, err, ErrNoValidAnswers)
}

func TestSubmitEnforcesDeadlineWithGrace(t *testing.T) {
	exams := &examRepoStub{exam: sampleExam()}
	payload := dto.ExamSubmissionRequest{Answers: []dto.AnswerSubmission{{QuestionID: float64(11), ResponseText: strPtr("a")}}}

	// 29s after the nominal end: inside the 30s grace window.
	responses := &responseRepoStub{}
	svc := newAdmission(exams, responses, examStart.Add(60*time.Minute+29*time.Second))
	_, err := svc.Submit(context.Background(), 7, 1, payload)
	require.NoError(t, err)
	require.Len(t, responses.created, 1)

	// 31s after the nominal end: past the grace edge.
	svc = newAdmission(exams, &responseRepoStub{}, examStart.Add(60*time.Minute+31*time.Second))
	_, err = svc.Submit(context.Background(), 7, 1, payload)
	require.ErrorIs(t, err, ErrDeadlinePassed)
}

func TestSubmitRejectsSecondSubmission(t *testing.T) {
	svc := newAdmission(&examRepoStub{exam: sampleExam()}, &responseRepoStub{submitted: true}, examStart.Add(10*time.Minute))

	payload := dto.ExamSubmissionRequest{Answers: []dto.AnswerSubmission{{QuestionID: float64(11), ResponseText: strPtr("a")}}}
	_, err := svc.Submit(context.Background(), 7, 1, payload)
	require.ErrorIs(t, err, ErrAlreadySubmitted)
}

func TestSubmitMapsStorageConflictToAlreadySubmitted(t *testing.T) {
	responses := &responseRepoStub{createErr: gorm.ErrDuplicatedKey}
	svc := newAdmission(&examRepoStub{exam: sampleExam()}, responses, examStart.Add(10*time.Minute))

	payload := dto.ExamSubmissionRequest{Answers: []dto.AnswerSubmission{{QuestionID: float64(11), ResponseText: strPtr("a")}}}
	_, err := svc.Submit(context.Background(), 7, 1, payload)
	require.ErrorIs(t, err, ErrAlreadySubmitted)
}

func TestSubmitUnknownExam(t *testing.T) {
	svc := newAdmission(&examRepoStub{}, &responseRepoStub{}, examStart)

	payload := dto.ExamSubmissionRequest{Answers: []dto.AnswerSubmission{{QuestionID: float64(11)}}}
	_, err := svc.Submit(context.Background(), 7, 1, payload)
	require.ErrorIs(t, err, ErrExamNotFound)
}
