package stats

import "emotional-diary/internal/models"

// MoodState is the qualitative label derived from an average score
type MoodState string

const (
	MoodPositive MoodState = "positive"
	MoodNeutral  MoodState = "neutral"
	MoodNegative MoodState = "negative"
)

// Classification thresholds, inclusive on both ends
const (
	PositiveThreshold = 7.0
	NegativeThreshold = 3.0
)

// Classify maps an average score to a mood state
func Classify(average float64) MoodState {
	switch {
	case average >= PositiveThreshold:
		return MoodPositive
	case average <= NegativeThreshold:
		return MoodNegative
	default:
		return MoodNeutral
	}
}

// MoodSummary is the classified state of a set of entries
type MoodSummary struct {
	State   MoodState `json:"state"`
	Average string    `json:"average"`
	Total   int       `json:"total"`
}

// Summarize classifies entries by their average score.
// No usable scores means neutral with a zero average, never negative.
func Summarize(entries []*models.DiaryEntry) MoodSummary {
	sum, n := sumScores(entries)
	if n == 0 {
		return MoodSummary{State: MoodNeutral, Average: "0.00", Total: len(entries)}
	}

	// classify the exact mean; rounding is for display only
	exact := exactMean(sum, n)
	return MoodSummary{
		State:   Classify(exact.InexactFloat64()),
		Average: exact.Round(2).StringFixed(2),
		Total:   len(entries),
	}
}
