// Package oracle talks to the external AI scoring service that grades
// free-text exam answers. It owns prompt construction, response parsing and
// the retry policy; persistence and admission checks live with the caller.
package oracle

import (
	"context"
	"fmt"
)

// Transport sends one evaluation prompt and returns the raw textual reply.
// Implementations must honour ctx cancellation per call.
type Transport interface {
	Complete(ctx context.Context, prompt string) (string, error)
	Model() string
}

// PromptQuestion carries the question attributes the grading prompt needs.
type PromptQuestion struct {
	Text      string
	Type      string
	MaxMarks  float64
	WordLimit *int
}

// ContentBlockedError signals the oracle refused to grade the content for
// policy reasons. It is never retried.
type ContentBlockedError struct {
	Reason string
}

func (e *ContentBlockedError) Error() string {
	return fmt.Sprintf("oracle blocked content: %s", e.Reason)
}

// ParseError signals the oracle replied, but the reply did not satisfy the
// output contract (structure, types or score range).
type ParseError struct {
	Detail string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse oracle evaluation: %s", e.Detail)
}
