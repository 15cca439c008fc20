package company

import (
	"fmt"
	"strings"

	"github.com/pfrederiksen/tradeshow-events/internal/llm"
)

const (
	aiTemperature = 0.1
	aiMaxTokens   = 50
)

const systemPrompt = "You are a helpful assistant that extracts company names from trade show event information. " +
	"Look for the main organizing company or association. Be more aggressive in extracting company names - " +
	"many event names contain the company name. Respond with only the company name or 'Unknown' if you can't determine it."

const userPromptTemplate = `Extract the company or organizer name from this trade show event.

Event Information: %s

Examples:
- "American Academy of Family Physicians - AAFP FUTURE" → "American Academy of Family Physicians"
- "The Foodservice Conference - International Fresh Produce Association" → "International Fresh Produce Association"
- "Black Hat USA" → "Black Hat"
- "Louisiana Restaurant Association - LRA Showcase" → "Louisiana Restaurant Association"
- "RE+ Storage" → "RE+"
- "Abilities Expo - Houston" → "Abilities Expo"
- "The Foodservice Conference" → "International Fresh Produce Association" (from context)

Look for:
1. The main organizing company/association before any dash or hyphen
2. The company name that appears before "Conference", "Expo", "Show", "Event"
3. The primary organization hosting the event

Please provide ONLY the company/organizer name, nothing else. If you can't determine it, respond with 'Unknown'.`

var unknownAnswers = map[string]bool{
	"":                 true,
	"unknown":          true,
	"none":             true,
	"n/a":              true,
	"not found":        true,
	"cannot determine": true,
	"no company found": true,
}

// BuildPrompt renders the organizer question for one event summary line.
func BuildPrompt(summary string) llm.Prompt {
	return llm.Prompt{
		System:      systemPrompt,
		User:        fmt.Sprintf(userPromptTemplate, summary),
		Temperature: aiTemperature,
		MaxTokens:   aiMaxTokens,
	}
}

// NormalizeAnswer trims a model reply and maps "don't know" answers to "".
func NormalizeAnswer(answer string) string {
	answer = strings.TrimSpace(answer)
	if unknownAnswers[strings.ToLower(answer)] {
		return ""
	}
	return answer
}
