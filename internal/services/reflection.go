package services

import (
	"strings"

	"emotional-diary/internal/models"
)

// Reflection is the short message returned alongside a newly written entry
type Reflection struct {
	Analyzed bool   `json:"analyzed"`
	Message  string `json:"message"`
}

const (
	reflectionDefault   = "Thanks for sharing your day."
	reflectionGreatDay  = "Looks like you had a great day!"
	reflectionHardDay   = "It sounds like a hard day. I'm here for you."
	reflectionBreathing = " Remember to breathe deeply. Anxiety passes."
)

var anxietyWords = []string{"anxiety", "anxious", "ansiedad"}

// Reflect picks a message from the entry's score and description
func Reflect(entry *models.DiaryEntry) Reflection {
	message := reflectionDefault
	if score, ok := entry.Score(); ok {
		switch {
		case score >= 8:
			message = reflectionGreatDay
		case score <= 3:
			message = reflectionHardDay
		}
	}

	if entry != nil && entry.Description != nil {
		desc := strings.ToLower(*entry.Description)
		for _, word := range anxietyWords {
			if strings.Contains(desc, word) {
				message += reflectionBreathing
				break
			}
		}
	}

	return Reflection{Analyzed: true, Message: message}
}
