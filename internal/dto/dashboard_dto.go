package dto

import "time"

// UpcomingExam is a compact listing entry for dashboards.
type UpcomingExam struct {
	ID             uint      `json:"id"`
	Title          string    `json:"title"`
	ScheduledStart time.Time `json:"scheduled_start"`
}

// StudentDashboardResponse summarises a student's activity.
type StudentDashboardResponse struct {
	CompletedExamsCount int64          `json:"completed_exams_count"`
	UpcomingExams       []UpcomingExam `json:"upcoming_exams"`
}

// AdminStatsResponse summarises platform-wide counters for the admin
// dashboard.
type AdminStatsResponse struct {
	TotalUsers         int64 `json:"total_users"`
	TotalStudents      int64 `json:"total_students"`
	TotalTeachers      int64 `json:"total_teachers"`
	TotalExams         int64 `json:"total_exams"`
	TotalResponses     int64 `json:"total_responses"`
	ResponsesEvaluated int64 `json:"responses_evaluated"`
	PendingEvaluations int64 `json:"pending_evaluations"`
}
