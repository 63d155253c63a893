package stats

import "emotional-diary/internal/models"

func intPtr(v int) *int { return &v }

func entryOn(score int, date string) *models.DiaryEntry {
	return &models.DiaryEntry{MoodScore: intPtr(score), Date: models.ParseEntryDate(date)}
}

func entryNoScore(date string) *models.DiaryEntry {
	return &models.DiaryEntry{Date: models.ParseEntryDate(date)}
}
