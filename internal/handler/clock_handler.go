package handler

import (
	"context"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/exam-portal-api/internal/examtime"
	"github.com/noah-isme/exam-portal-api/internal/repository"
)

// ClockHandler streams the live countdown for an active exam over a
// websocket so clients do not have to trust their local clock.
type ClockHandler struct {
	exams  repository.ExamRepository
	logger zerolog.Logger
	now    func() time.Time
	// tick controls the push interval; tests shorten it.
	tick time.Duration
}

// ClockMessage is one countdown frame.
type ClockMessage struct {
	ExamID           uint   `json:"exam_id"`
	Status           string `json:"status"`
	RemainingSeconds int    `json:"remaining_seconds"`
}

// NewClockHandler creates a new handler instance.
func NewClockHandler(exams repository.ExamRepository, logger zerolog.Logger) *ClockHandler {
	return &ClockHandler{
		exams:  exams,
		logger: logger.With().Str("component", "clock_handler").Logger(),
		now:    time.Now,
		tick:   time.Second,
	}
}

// Register binds the websocket clock route under the provided router group.
func (h *ClockHandler) Register(router fiber.Router) {
	router.Use("/ws/exams/:id/clock", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	router.Get("/ws/exams/:id/clock", websocket.New(h.handleConnection))
}

func (h *ClockHandler) handleConnection(conn *websocket.Conn) {
	defer conn.Close()

	examID, err := strconv.ParseUint(conn.Params("id"), 10, 64)
	if err != nil || examID == 0 {
		_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "invalid exam id"))
		return
	}

	exam, err := h.exams.GetByID(context.Background(), uint(examID))
	if err != nil || !exam.HasValidSchedule() {
		_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "exam unavailable"))
		return
	}

	h.logger.Info().Uint("exam_id", exam.ID).Msg("clock websocket connected")

	ticker := time.NewTicker(h.tick)
	defer ticker.Stop()

	for {
		now := h.now().UTC()
		status := examtime.ExamStatus(now, exam.ScheduledStart, exam.Duration())
		frame := ClockMessage{
			ExamID:           exam.ID,
			Status:           string(status),
			RemainingSeconds: int(examtime.Remaining(now, exam.ScheduledStart, exam.Duration()).Seconds()),
		}

		if err := conn.WriteJSON(frame); err != nil {
			return
		}
		if status == examtime.StatusExpired {
			_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "exam window closed"))
			return
		}

		<-ticker.C
	}
}
