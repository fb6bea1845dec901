package service

import "strings"

// DefaultCompletionPhrases is the vocabulary scanned for when a reply
// contains no action. Deployment-specific lists can replace it entirely.
// The Portuguese entries cover models that answer in the task's language.
var DefaultCompletionPhrases = []string{
	"task completed",
	"task complete",
	"task is complete",
	"task finished",
	"completed",
	"finished",
	"done",
	"final result",
	"concluído",
	"completo",
	"finalizado",
	"completada",
	"terminada",
}

// CompletionDetector scans free-text replies for completion indicators,
// case-insensitive.
type CompletionDetector struct {
	phrases []string
}

func NewCompletionDetector(phrases []string) *CompletionDetector {
	if len(phrases) == 0 {
		phrases = DefaultCompletionPhrases
	}
	lowered := make([]string, len(phrases))
	for i, p := range phrases {
		lowered[i] = strings.ToLower(p)
	}
	return &CompletionDetector{phrases: lowered}
}

func (d *CompletionDetector) Detect(text string) bool {
	text = strings.ToLower(text)
	for _, p := range d.phrases {
		if strings.Contains(text, p) {
			return true
		}
	}
	return false
}
