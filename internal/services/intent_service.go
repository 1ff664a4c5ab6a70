package services

import (
	"strings"

	"taskpilot/internal/models"
)

// ParsedIntent is the result of mapping free text to a task shape
type ParsedIntent struct {
	Verb     string              `json:"verb"`
	Matched  bool                `json:"matched"`
	Category models.TaskCategory `json:"category"`
	Priority models.TaskPriority `json:"priority"`
	TaskName string              `json:"taskName"`
}

// intentRule maps a verb keyword to the task shape it implies
type intentRule struct {
	verb     string
	category models.TaskCategory
	priority models.TaskPriority
}

// intentRules is the fixed verb table, checked in order. First containment
// match wins.
var intentRules = []intentRule{
	{"create", models.CategoryProductivity, models.TaskPriorityMedium},
	{"add", models.CategoryProductivity, models.TaskPriorityMedium},
	{"schedule", models.CategoryAutomation, models.TaskPriorityMedium},
	{"remind", models.CategoryAutomation, models.TaskPriorityHigh},
	{"send", models.CategoryCommunication, models.TaskPriorityHigh},
	{"email", models.CategoryCommunication, models.TaskPriorityHigh},
	{"call", models.CategoryCommunication, models.TaskPriorityCritical},
	{"analyze", models.CategoryAnalytics, models.TaskPriorityMedium},
	{"summarize", models.CategoryAnalytics, models.TaskPriorityMedium},
	{"organize", models.CategoryProductivity, models.TaskPriorityLow},
	{"track", models.CategoryAnalytics, models.TaskPriorityLow},
	{"automate", models.CategoryAutomation, models.TaskPriorityMedium},
	{"learn", models.CategoryLearning, models.TaskPriorityLow},
}

// IntentService parses natural language commands into task intents using
// keyword containment over the fixed verb table.
type IntentService struct{}

// NewIntentService creates a new intent service
func NewIntentService() *IntentService {
	return &IntentService{}
}

// Parse maps free text onto a task intent. Unmatched text yields a
// general/medium intent with Matched=false.
func (s *IntentService) Parse(text string) ParsedIntent {
	lowered := strings.ToLower(text)

	for _, rule := range intentRules {
		if strings.Contains(lowered, rule.verb) {
			return ParsedIntent{
				Verb:     rule.verb,
				Matched:  true,
				Category: rule.category,
				Priority: rule.priority,
				TaskName: taskNameFrom(text),
			}
		}
	}

	return ParsedIntent{
		Matched:  false,
		Category: models.CategoryGeneral,
		Priority: models.TaskPriorityMedium,
		TaskName: taskNameFrom(text),
	}
}

// Verbs returns the recognized verb list
func (s *IntentService) Verbs() []string {
	verbs := make([]string, len(intentRules))
	for i, rule := range intentRules {
		verbs[i] = rule.verb
	}
	return verbs
}

// taskNameFrom derives a short task name from the command text
func taskNameFrom(text string) string {
	trimmed := strings.TrimSpace(text)
	if len(trimmed) > 60 {
		return trimmed[:60]
	}
	return trimmed
}
