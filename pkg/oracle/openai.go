package oracle

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var (
	oracleDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "examportal",
		Subsystem: "oracle",
		Name:      "request_duration_seconds",
		Help:      "Duration of oracle grading requests",
	}, []string{"model"})

	oracleFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "examportal",
		Subsystem: "oracle",
		Name:      "request_failures_total",
		Help:      "Number of failed oracle grading requests",
	}, []string{"model", "reason"})
)

// OpenAIConfig defines configuration options for the OpenAI-backed transport.
type OpenAIConfig struct {
	APIKey      string
	BaseURL     string
	Model       string
	MaxTokens   int
	Temperature float32
	Logger      zerolog.Logger
}

// OpenAITransport implements Transport against the OpenAI chat completion
// API (or any compatible endpoint via BaseURL).
type OpenAITransport struct {
	client *openai.Client
	cfg    OpenAIConfig
	tracer trace.Tracer
	logger zerolog.Logger
}

// NewOpenAITransport builds a transport using the provided configuration.
func NewOpenAITransport(cfg OpenAIConfig) (*OpenAITransport, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("oracle api key is required")
	}

	if cfg.Model == "" {
		cfg.Model = "gpt-4o-mini"
	}
	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = 400
	}

	logger := cfg.Logger
	if logger.GetLevel() == zerolog.Disabled {
		logger = zerolog.Nop()
	}

	config := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		config.BaseURL = cfg.BaseURL
	}

	return &OpenAITransport{
		client: openai.NewClientWithConfig(config),
		cfg:    cfg,
		tracer: otel.Tracer("github.com/noah-isme/exam-portal-api/pkg/oracle"),
		logger: logger,
	}, nil
}

// Model returns the chat model used for grading, for provenance tags.
func (t *OpenAITransport) Model() string {
	return t.cfg.Model
}

// Complete sends one grading prompt and returns the raw textual reply.
func (t *OpenAITransport) Complete(parent context.Context, prompt string) (string, error) {
	ctx, span := t.tracer.Start(parent, "oracle.complete", trace.WithAttributes(
		attribute.String("model", t.cfg.Model),
	))
	defer span.End()

	request := openai.ChatCompletionRequest{
		Model:       t.cfg.Model,
		MaxTokens:   t.cfg.MaxTokens,
		Temperature: t.cfg.Temperature,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
	}

	start := time.Now()
	resp, err := t.client.CreateChatCompletion(ctx, request)
	oracleDuration.WithLabelValues(t.cfg.Model).Observe(time.Since(start).Seconds())
	if err != nil {
		oracleFailures.WithLabelValues(t.cfg.Model, "transport").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", fmt.Errorf("oracle complete: %w", err)
	}

	if len(resp.Choices) == 0 {
		err := fmt.Errorf("no choices returned from oracle")
		oracleFailures.WithLabelValues(t.cfg.Model, "empty").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", err
	}

	choice := resp.Choices[0]
	if choice.FinishReason == openai.FinishReasonContentFilter {
		blocked := &ContentBlockedError{Reason: "content filter rejected the grading request"}
		oracleFailures.WithLabelValues(t.cfg.Model, "blocked").Inc()
		span.RecordError(blocked)
		span.SetStatus(codes.Error, blocked.Error())
		t.logger.Warn().Str("model", t.cfg.Model).Msg("oracle blocked grading request")
		return "", blocked
	}

	content := strings.TrimSpace(choice.Message.Content)
	if content == "" {
		err := fmt.Errorf("oracle returned an empty completion")
		oracleFailures.WithLabelValues(t.cfg.Model, "empty").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", err
	}

	return content, nil
}
