package contract_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/exam-portal-api/internal/dto"
	"github.com/noah-isme/exam-portal-api/internal/handler"
	"github.com/noah-isme/exam-portal-api/internal/service"
)

type stubAdmission struct {
	take dto.TakeExamResponse
}

func (s stubAdmission) CanStart(context.Context, uint, uint) (dto.TakeExamResponse, error) {
	return s.take, nil
}

func (s stubAdmission) Submit(context.Context, uint, uint, dto.ExamSubmissionRequest) (dto.SubmissionResultResponse, error) {
	return dto.SubmissionResultResponse{}, nil
}

type stubStudent struct{}

func (stubStudent) AvailableExams(context.Context, uint) ([]dto.AvailableExamResponse, error) {
	return nil, nil
}
func (stubStudent) SubmittedExams(context.Context, uint) ([]dto.SubmittedExamResponse, error) {
	return nil, nil
}
func (stubStudent) MyResults(context.Context, uint) ([]dto.ExamResult, error) { return nil, nil }

// The student-facing exam payload is a public contract: options only for
// MCQ, never the correct answer, and a non-negative countdown.
func TestTakeExamContract(t *testing.T) {
	schemaPath, err := filepath.Abs(filepath.Join("..", "contracts", "take_exam.schema.json"))
	require.NoError(t, err)

	compiler := jsonschema.NewCompiler()
	schema, err := compiler.Compile("file://" + schemaPath)
	require.NoError(t, err)

	limit := 150
	take := dto.TakeExamResponse{
		ExamID:               1,
		Title:                "Operating Systems Midterm",
		ScheduledStart:       time.Date(2026, time.May, 12, 9, 0, 0, 0, time.UTC),
		DurationMinutes:      60,
		TimeRemainingSeconds: 1800,
		Questions: []dto.TakeQuestionResponse{
			{ID: 11, Text: "Pick the preemptive scheduler.", Type: "mcq", Marks: 2, Options: map[string]string{"a": "CFS", "b": "Batch"}},
			{ID: 12, Text: "Explain demand paging.", Type: "long_answer", Marks: 10, WordLimit: &limit},
		},
	}

	app := fiber.New()
	group := app.Group("/api/v1/student", func(c *fiber.Ctx) error {
		c.Locals("user_id", uint(7))
		c.Locals("user_role", "student")
		return c.Next()
	})
	handler.NewStudentExamHandler(stubAdmission{take: take}, stubStudent{}, zerolog.Nop()).Register(group)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/student/exams/1/take", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	resp.Body.Close()

	var payload interface{}
	require.NoError(t, json.Unmarshal(body, &payload))
	require.NoError(t, schema.Validate(payload))
}

var (
	_ service.AdmissionService = stubAdmission{}
	_ service.StudentService   = stubStudent{}
)
