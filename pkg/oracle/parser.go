package oracle

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

const (
	marksLinePrefix    = "Marks:"
	feedbackLinePrefix = "Feedback:"
)

// ParseEvaluation turns the oracle's raw reply into a validated
// (score, feedback) pair. Strict JSON is attempted first; the line-oriented
// "Marks:/Feedback:" fallback only runs when the reply is not valid JSON at
// all. A score outside [0, maxMarks] is a hard failure on both paths;
// clamping would silently hide an oracle malfunction.
func ParseEvaluation(raw string, maxMarks float64) (float64, string, error) {
	cleaned := strings.TrimSpace(raw)
	if cleaned == "" {
		return 0, "", &ParseError{Detail: "oracle returned an empty response"}
	}

	cleaned = stripCodeFences(cleaned)

	var payload map[string]interface{}
	if err := json.Unmarshal([]byte(cleaned), &payload); err != nil {
		return parseStructuredText(cleaned, maxMarks)
	}

	marks, marksOK := payload["marks_awarded"].(float64)
	feedback, feedbackOK := payload["feedback"].(string)
	feedback = strings.TrimSpace(feedback)

	switch {
	case !marksOK:
		return 0, "", &ParseError{Detail: "JSON payload is missing a numeric 'marks_awarded'"}
	case !feedbackOK || feedback == "":
		return 0, "", &ParseError{Detail: "JSON payload is missing a non-empty 'feedback'"}
	case marks < 0 || marks > maxMarks:
		return 0, "", &ParseError{Detail: fmt.Sprintf("marks %g are outside the valid range [0, %g]", marks, maxMarks)}
	}

	return marks, feedback, nil
}

// parseStructuredText recovers a score and feedback from a plain-text reply
// of the form "Marks: <n>" followed by "Feedback: ..." and any subsequent
// non-empty lines.
func parseStructuredText(text string, maxMarks float64) (float64, string, error) {
	var (
		marks         float64
		marksFound    bool
		feedbackLines []string
		inFeedback    bool
	)

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		switch {
		case !marksFound && strings.HasPrefix(line, marksLinePrefix):
			value := strings.TrimSpace(strings.TrimPrefix(line, marksLinePrefix))
			parsed, err := strconv.ParseFloat(value, 64)
			if err != nil {
				continue // keep scanning for a parsable marks line
			}
			if parsed < 0 || parsed > maxMarks {
				return 0, "", &ParseError{Detail: fmt.Sprintf("marks %g are outside the valid range [0, %g]", parsed, maxMarks)}
			}
			marks = parsed
			marksFound = true
		case strings.HasPrefix(line, feedbackLinePrefix):
			feedbackLines = append(feedbackLines, strings.TrimSpace(strings.TrimPrefix(line, feedbackLinePrefix)))
			inFeedback = true
		case inFeedback:
			feedbackLines = append(feedbackLines, line)
		}
	}

	feedback := strings.TrimSpace(strings.Join(feedbackLines, "\n"))

	if !marksFound {
		return 0, "", &ParseError{Detail: fmt.Sprintf("no valid '%s' line within range [0, %g]", marksLinePrefix, maxMarks)}
	}
	if feedback == "" {
		return 0, "", &ParseError{Detail: fmt.Sprintf("no '%s' content found", feedbackLinePrefix)}
	}

	return marks, feedback, nil
}

func stripCodeFences(text string) string {
	if strings.HasPrefix(text, "```json") {
		text = strings.TrimPrefix(text, "```json")
	} else if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```")
	} else {
		return text
	}
	text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	return strings.TrimSpace(text)
}
