package stats

import "emotional-diary/internal/models"

// InvalidDateBucket collects entries whose date could not be parsed
const InvalidDateBucket = "invalid-date"

// Distribution counts entries per day and per score
type Distribution struct {
	TotalEntries        int            `json:"totalEntries"`
	EntriesPerDay       map[string]int `json:"entriesPerDay"`
	EmotionDistribution map[int]int    `json:"emotionDistribution"`
}

// BuildDistribution tallies entries by normalized day and by score
func BuildDistribution(entries []*models.DiaryEntry) Distribution {
	d := Distribution{
		TotalEntries:        len(entries),
		EntriesPerDay:       make(map[string]int),
		EmotionDistribution: make(map[int]int),
	}

	for _, e := range entries {
		if e == nil {
			d.EntriesPerDay[InvalidDateBucket]++
			continue
		}

		day, ok := e.Date.Day()
		if !ok {
			day = InvalidDateBucket
		}
		d.EntriesPerDay[day]++

		if score, ok := e.Score(); ok {
			d.EmotionDistribution[score]++
		}
	}

	return d
}
