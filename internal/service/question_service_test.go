package service

import (
	"context"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/exam-portal-api/internal/dto"
	"github.com/noah-isme/exam-portal-api/internal/models"
)

func newQuestions(exams *examRepoStub) QuestionService {
	return NewQuestionService(exams, &recordingQuestionRepo{}, validator.New(validator.WithRequiredStructEnabled()), zerolog.Nop())
}

type recordingQuestionRepo struct {
	questionRepoStub
	created []models.Question
}

func (s *recordingQuestionRepo) Create(ctx context.Context, question *models.Question) error {
	question.ID = uint(len(s.created) + 100)
	s.created = append(s.created, *question)
	return nil
}

func ownedExam() *examRepoStub {
	exam := sampleExam()
	exam.CreatedBy = 3
	return &examRepoStub{exam: exam}
}

func TestAddQuestionShapeRules(t *testing.T) {
	limit := 50

	cases := []struct {
		name    string
		payload dto.QuestionCreateRequest
		wantErr bool
	}{
		{
			name: "valid mcq",
			payload: dto.QuestionCreateRequest{
				Text: "Pick the scheduler.", Type: models.QuestionTypeMCQ, Marks: 2,
				Options: map[string]string{"a": "CFS", "b": "FIFO"}, CorrectAnswer: "a",
			},
		},
		{
			name: "mcq missing key",
			payload: dto.QuestionCreateRequest{
				Text: "Pick the scheduler.", Type: models.QuestionTypeMCQ, Marks: 2,
				Options: map[string]string{"a": "CFS", "b": "FIFO"},
			},
			wantErr: true,
		},
		{
			name: "mcq key names unknown option",
			payload: dto.QuestionCreateRequest{
				Text: "Pick the scheduler.", Type: models.QuestionTypeMCQ, Marks: 2,
				Options: map[string]string{"a": "CFS", "b": "FIFO"}, CorrectAnswer: "z",
			},
			wantErr: true,
		},
		{
			name: "mcq with word limit",
			payload: dto.QuestionCreateRequest{
				Text: "Pick the scheduler.", Type: models.QuestionTypeMCQ, Marks: 2,
				Options: map[string]string{"a": "CFS", "b": "FIFO"}, CorrectAnswer: "a", WordLimit: &limit,
			},
			wantErr: true,
		},
		{
			name: "valid long answer",
			payload: dto.QuestionCreateRequest{
				Text: "Explain demand paging.", Type: models.QuestionTypeLongAnswer, Marks: 10, WordLimit: &limit,
			},
		},
		{
			name: "free text with options",
			payload: dto.QuestionCreateRequest{
				Text: "Explain demand paging.", Type: models.QuestionTypeShortAnswer, Marks: 5,
				Options: map[string]string{"a": "CFS", "b": "FIFO"},
			},
			wantErr: true,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := newQuestions(ownedExam())
			_, err := svc.Add(context.Background(), 3, models.RoleTeacher, 1, tc.payload)
			if tc.wantErr {
				require.ErrorIs(t, err, ErrInvalidQuestionShape)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestAddQuestionOwnership(t *testing.T) {
	svc := newQuestions(ownedExam())

	payload := dto.QuestionCreateRequest{
		Text: "Explain demand paging.", Type: models.QuestionTypeLongAnswer, Marks: 10,
	}

	// Another teacher cannot touch the exam; an admin can.
	_, err := svc.Add(context.Background(), 8, models.RoleTeacher, 1, payload)
	require.ErrorIs(t, err, ErrForbidden)

	_, err = svc.Add(context.Background(), 8, models.RoleAdmin, 1, payload)
	require.NoError(t, err)
}

func TestAddQuestionStripsMarkup(t *testing.T) {
	exams := ownedExam()
	questions := &recordingQuestionRepo{}
	svc := NewQuestionService(exams, questions, validator.New(validator.WithRequiredStructEnabled()), zerolog.Nop())

	created, err := svc.Add(context.Background(), 3, models.RoleTeacher, 1, dto.QuestionCreateRequest{
		Text: `Explain <script>alert("paging")</script> demand paging.`, Type: models.QuestionTypeLongAnswer, Marks: 10,
	})
	require.NoError(t, err)
	require.NotContains(t, created.Text, "<script>")
	require.Contains(t, created.Text, "demand paging")
}
