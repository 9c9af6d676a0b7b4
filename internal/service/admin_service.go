package service

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/exam-portal-api/internal/dto"
	"github.com/noah-isme/exam-portal-api/internal/models"
	"github.com/noah-isme/exam-portal-api/internal/repository"
)

// AdminService serves the admin surface: platform counters, account
// verification and the full results listing.
type AdminService interface {
	Stats(ctx context.Context) (dto.AdminStatsResponse, error)
	ListUsers(ctx context.Context, role string) ([]dto.UserResponse, error)
	VerifyUser(ctx context.Context, userID uint) (dto.UserResponse, error)
	ListResults(ctx context.Context, page, pageSize int) ([]repository.ResultRow, int64, error)
}

type adminService struct {
	users       repository.UserRepository
	exams       repository.ExamRepository
	responses   repository.ResponseRepository
	evaluations repository.EvaluationRepository
	logger      zerolog.Logger
}

// NewAdminService constructs an admin service.
func NewAdminService(userRepo repository.UserRepository, examRepo repository.ExamRepository, responseRepo repository.ResponseRepository, evaluationRepo repository.EvaluationRepository, logger zerolog.Logger) AdminService {
	return &adminService{
		users:       userRepo,
		exams:       examRepo,
		responses:   responseRepo,
		evaluations: evaluationRepo,
		logger:      logger.With().Str("component", "admin_service").Logger(),
	}
}

func (s *adminService) Stats(ctx context.Context) (dto.AdminStatsResponse, error) {
	var stats dto.AdminStatsResponse
	var err error

	if stats.TotalUsers, err = s.users.Count(ctx, ""); err != nil {
		return dto.AdminStatsResponse{}, err
	}
	if stats.TotalStudents, err = s.users.Count(ctx, models.RoleStudent); err != nil {
		return dto.AdminStatsResponse{}, err
	}
	if stats.TotalTeachers, err = s.users.Count(ctx, models.RoleTeacher); err != nil {
		return dto.AdminStatsResponse{}, err
	}
	if stats.TotalExams, err = s.exams.Count(ctx); err != nil {
		return dto.AdminStatsResponse{}, err
	}
	if stats.TotalResponses, err = s.responses.Count(ctx); err != nil {
		return dto.AdminStatsResponse{}, err
	}
	if stats.ResponsesEvaluated, err = s.evaluations.Count(ctx); err != nil {
		return dto.AdminStatsResponse{}, err
	}

	stats.PendingEvaluations = stats.TotalResponses - stats.ResponsesEvaluated
	return stats, nil
}

func (s *adminService) ListUsers(ctx context.Context, role string) ([]dto.UserResponse, error) {
	users, err := s.users.List(ctx, role)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.UserResponse, 0, len(users))
	for _, user := range users {
		responses = append(responses, dto.NewUserResponse(user))
	}
	return responses, nil
}

func (s *adminService) VerifyUser(ctx context.Context, userID uint) (dto.UserResponse, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.UserResponse{}, ErrUserNotFound
		}
		return dto.UserResponse{}, err
	}

	if !user.IsVerified {
		user.IsVerified = true
		if err := s.users.Update(ctx, &user); err != nil {
			return dto.UserResponse{}, err
		}
		s.logger.Info().Uint("user_id", user.ID).Str("role", user.Role).Msg("account verified")
	}

	return dto.NewUserResponse(user), nil
}

func (s *adminService) ListResults(ctx context.Context, page, pageSize int) ([]repository.ResultRow, int64, error) {
	return s.evaluations.ListResults(ctx, page, pageSize)
}
