// Package events publishes domain events to NATS so downstream consumers
// (notification fan-out, analytics) can react without coupling to the HTTP
// layer. Publishing is best effort: a broker outage never fails the request
// that triggered the event.
package events

import (
	"encoding/json"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
)

// Subjects carrying portal domain events.
const (
	SubjectSubmissionAccepted  = "examportal.submission.accepted"
	SubjectEvaluationCompleted = "examportal.evaluation.completed"
)

// SubmissionAccepted is emitted when a student's exam submission is stored.
type SubmissionAccepted struct {
	StudentID    uint      `json:"student_id"`
	ExamID       uint      `json:"exam_id"`
	AnswersSaved int       `json:"answers_saved"`
	SubmittedAt  time.Time `json:"submitted_at"`
}

// EvaluationCompleted is emitted when an evaluation record is created.
type EvaluationCompleted struct {
	ResponseID   uint      `json:"response_id"`
	EvaluationID uint      `json:"evaluation_id"`
	MarksAwarded float64   `json:"marks_awarded"`
	EvaluatedBy  string    `json:"evaluated_by"`
	EvaluatedAt  time.Time `json:"evaluated_at"`
}

// Publisher wraps a NATS connection. A nil connection disables publishing,
// which keeps single-node deployments and tests broker-free.
type Publisher struct {
	conn   *nats.Conn
	logger zerolog.Logger
}

// NewPublisher constructs an event publisher.
func NewPublisher(conn *nats.Conn, logger zerolog.Logger) *Publisher {
	return &Publisher{
		conn:   conn,
		logger: logger.With().Str("component", "events").Logger(),
	}
}

// SubmissionAccepted publishes a submission event.
func (p *Publisher) SubmissionAccepted(event SubmissionAccepted) {
	p.publish(SubjectSubmissionAccepted, event)
}

// EvaluationCompleted publishes an evaluation event.
func (p *Publisher) EvaluationCompleted(event EvaluationCompleted) {
	p.publish(SubjectEvaluationCompleted, event)
}

func (p *Publisher) publish(subject string, event interface{}) {
	if p == nil || p.conn == nil {
		return
	}

	payload, err := json.Marshal(event)
	if err != nil {
		p.logger.Error().Err(err).Str("subject", subject).Msg("failed to encode event")
		return
	}

	if err := p.conn.Publish(subject, payload); err != nil {
		p.logger.Error().Err(err).Str("subject", subject).Msg("failed to publish event")
	}
}
