package oracle

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseEvaluationJSONRoundTrip(t *testing.T) {
	marks, feedback, err := ParseEvaluation(`{"marks_awarded": 8.5, "feedback": "Solid answer with good coverage."}`, 10)
	require.NoError(t, err)
	require.InDelta(t, 8.5, marks, 0.0001)
	require.Equal(t, "Solid answer with good coverage.", feedback)
}

func TestParseEvaluationStripsCodeFences(t *testing.T) {
	raw := "```json\n{\"marks_awarded\": 3, \"feedback\": \"Partially correct.\"}\n```"
	marks, feedback, err := ParseEvaluation(raw, 5)
	require.NoError(t, err)
	require.InDelta(t, 3.0, marks, 0.0001)
	require.Equal(t, "Partially correct.", feedback)

	raw = "```\n{\"marks_awarded\": 2, \"feedback\": \"Thin on detail.\"}\n```"
	marks, feedback, err = ParseEvaluation(raw, 5)
	require.NoError(t, err)
	require.InDelta(t, 2.0, marks, 0.0001)
	require.Equal(t, "Thin on detail.", feedback)
}

func TestParseEvaluationRejectsOutOfRangeJSON(t *testing.T) {
	var parseErr *ParseError

	_, _, err := ParseEvaluation(`{"marks_awarded": 10.1, "feedback": "Too generous."}`, 10)
	require.ErrorAs(t, err, &parseErr)

	_, _, err = ParseEvaluation(`{"marks_awarded": -0.1, "feedback": "Negative."}`, 10)
	require.ErrorAs(t, err, &parseErr)
}

func TestParseEvaluationRejectsMissingOrWrongTypes(t *testing.T) {
	var parseErr *ParseError

	_, _, err := ParseEvaluation(`{"feedback": "No score present."}`, 10)
	require.ErrorAs(t, err, &parseErr)

	_, _, err = ParseEvaluation(`{"marks_awarded": "seven", "feedback": "Score is a string."}`, 10)
	require.ErrorAs(t, err, &parseErr)

	_, _, err = ParseEvaluation(`{"marks_awarded": 7, "feedback": "   "}`, 10)
	require.ErrorAs(t, err, &parseErr)
}

func TestParseEvaluationFallbackRecoversStructuredText(t *testing.T) {
	marks, feedback, err := ParseEvaluation("Marks: 7.5\nFeedback: Good structure, minor factual gap.", 10)
	require.NoError(t, err)
	require.InDelta(t, 7.5, marks, 0.0001)
	require.Equal(t, "Good structure, minor factual gap.", feedback)
}

func TestParseEvaluationFallbackCollectsContinuationLines(t *testing.T) {
	raw := "Here is my assessment.\nMarks: 4\nFeedback: Covers the basics.\nMissing the second theorem.\n\nOverall acceptable."
	marks, feedback, err := ParseEvaluation(raw, 5)
	require.NoError(t, err)
	require.InDelta(t, 4.0, marks, 0.0001)
	require.Equal(t, "Covers the basics.\nMissing the second theorem.\nOverall acceptable.", feedback)
}

func TestParseEvaluationFallbackRejectsOutOfRange(t *testing.T) {
	var parseErr *ParseError

	_, _, err := ParseEvaluation("Marks: 10.1\nFeedback: Over the cap.", 10)
	require.ErrorAs(t, err, &parseErr)

	_, _, err = ParseEvaluation("Marks: -0.1\nFeedback: Below zero.", 10)
	require.ErrorAs(t, err, &parseErr)
}

func TestParseEvaluationFallbackRequiresBothMarkers(t *testing.T) {
	var parseErr *ParseError

	_, _, err := ParseEvaluation("Feedback: No marks line anywhere.", 10)
	require.ErrorAs(t, err, &parseErr)

	_, _, err = ParseEvaluation("Marks: 6", 10)
	require.ErrorAs(t, err, &parseErr)
}

func TestParseEvaluationRejectsEmptyResponse(t *testing.T) {
	var parseErr *ParseError
	_, _, err := ParseEvaluation("   \n ", 10)
	require.ErrorAs(t, err, &parseErr)
}
