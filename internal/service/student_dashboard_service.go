package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/noah-isme/exam-portal-api/internal/dto"
	"github.com/noah-isme/exam-portal-api/internal/repository"
)

const upcomingExamsLimit = 5

// StudentDashboardService produces the aggregated student dashboard.
type StudentDashboardService interface {
	GetDashboard(ctx context.Context, studentID uint) (dto.StudentDashboardResponse, error)
}

type studentDashboardService struct {
	exams     repository.ExamRepository
	responses repository.ResponseRepository
	cache     *redis.Client
	cacheTTL  time.Duration
	logger    zerolog.Logger
	now       func() time.Time
}

// NewStudentDashboardService builds the dashboard aggregator. cache may be
// nil, which disables caching entirely.
func NewStudentDashboardService(examRepo repository.ExamRepository, responseRepo repository.ResponseRepository, cache *redis.Client, ttl time.Duration, logger zerolog.Logger, now func() time.Time) StudentDashboardService {
	if now == nil {
		now = time.Now
	}
	return &studentDashboardService{
		exams:     examRepo,
		responses: responseRepo,
		cache:     cache,
		cacheTTL:  ttl,
		logger:    logger.With().Str("component", "student_dashboard_service").Logger(),
		now:       now,
	}
}

func (s *studentDashboardService) GetDashboard(ctx context.Context, studentID uint) (dto.StudentDashboardResponse, error) {
	cacheKey := fmt.Sprintf("dashboard:student:%d", studentID)

	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, cacheKey).Result(); err == nil {
			var response dto.StudentDashboardResponse
			if unmarshalErr := json.Unmarshal([]byte(cached), &response); unmarshalErr == nil {
				s.logger.Debug().Uint("student_id", studentID).Msg("dashboard cache hit")
				return response, nil
			}
		} else if err != redis.Nil {
			s.logger.Warn().Err(err).Msg("failed to read dashboard cache")
		}
	}

	completed, err := s.responses.CountDistinctExams(ctx, studentID)
	if err != nil {
		return dto.StudentDashboardResponse{}, err
	}

	upcoming, err := s.exams.ListUpcoming(ctx, s.now().UTC(), upcomingExamsLimit)
	if err != nil {
		return dto.StudentDashboardResponse{}, err
	}

	response := dto.StudentDashboardResponse{
		CompletedExamsCount: completed,
		UpcomingExams:       make([]dto.UpcomingExam, 0, len(upcoming)),
	}
	for _, exam := range upcoming {
		response.UpcomingExams = append(response.UpcomingExams, dto.UpcomingExam{
			ID:             exam.ID,
			Title:          exam.Title,
			ScheduledStart: exam.ScheduledStart,
		})
	}

	if s.cache != nil {
		payload, err := json.Marshal(response)
		if err == nil {
			if err := s.cache.Set(ctx, cacheKey, payload, s.cacheTTL).Err(); err != nil {
				s.logger.Warn().Err(err).Msg("failed to store dashboard cache")
			}
		}
	}

	return response, nil
}
