package oracle

import (
	"fmt"
	"strings"
)

// NoAnswerMarker is substituted for a blank answer so the prompt never
// contains an empty code fence. Blank answers are normally short-circuited
// before a prompt is ever built.
const NoAnswerMarker = "(No answer provided)"

// BuildPrompt assembles the grading request for one answer. The oracle is
// instructed to reply with nothing but a JSON object of the form
// {"marks_awarded": <number>, "feedback": "<string>"}.
func BuildPrompt(q PromptQuestion, answer string) string {
	parts := []string{
		"You are an AI assistant evaluating an exam answer.",
		fmt.Sprintf("Maximum Marks for this question: %g", q.MaxMarks),
		fmt.Sprintf("Question Type: %s", q.Type),
		fmt.Sprintf("Question: %s", q.Text),
	}

	if q.WordLimit != nil && *q.WordLimit > 0 {
		parts = append(parts, fmt.Sprintf("Suggested Word Limit: Approximately %d words.", *q.WordLimit))
	}

	if strings.TrimSpace(answer) == "" {
		answer = NoAnswerMarker
	}
	parts = append(parts, fmt.Sprintf("Student's Answer:\n```\n%s\n```", answer))

	criteria := strings.Builder{}
	criteria.WriteString("Evaluation Criteria:\n")
	criteria.WriteString("- Relevance & Accuracy: How well does the answer address the question? Is it factually correct?\n")
	criteria.WriteString("- Completeness: Does the answer cover the key aspects required by the question?\n")
	criteria.WriteString("- Coherence & Clarity: Is the answer well-organized, easy to understand, with proper grammar?")
	if q.WordLimit != nil && *q.WordLimit > 0 {
		criteria.WriteString(fmt.Sprintf("\n- Word Count: Consider if the answer is reasonably close to the ~%d word limit. Significant deviations might affect clarity or completeness.", *q.WordLimit))
	}
	parts = append(parts, criteria.String())

	parts = append(parts, "Output Format Instructions:\nProvide your evaluation ONLY in the following valid JSON format. Do not include any text before or after the JSON object:")
	parts = append(parts, fmt.Sprintf("```json\n{\n  \"marks_awarded\": <float number between 0.0 and %g>,\n  \"feedback\": \"<string containing constructive feedback (2-4 sentences) explaining the score, mentioning strengths and areas for improvement. Be specific.>\"\n}\n```", q.MaxMarks))
	parts = append(parts, fmt.Sprintf("IMPORTANT: Ensure 'marks_awarded' is a number from 0 to %g (inclusive), and 'feedback' is a non-empty string detailing the rationale.", q.MaxMarks))

	return strings.Join(parts, "\n\n")
}
