// Package nlu turns free-form utterances into session commands and answers
// cooking questions. It ships a local keyword classifier, an
// OpenAI-compatible client, and an offline responder for when no model is
// configured.
package nlu

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/hammamikhairi/cookalong/internal/domain"
	"github.com/hammamikhairi/cookalong/internal/logger"
)

// Compile-time interface check.
var _ domain.Classifier = (*KeywordClassifier)(nil)

// KeywordClassifier matches utterances to commands using keywords and
// simple patterns. Anything it cannot place becomes an Ask.
type KeywordClassifier struct {
	log      *logger.Logger
	commands []patternRule
	loose    []patternRule
}

type patternRule struct {
	regex *regexp.Regexp
	build func() domain.Command
}

func navigate(a domain.NavAction) func() domain.Command {
	return func() domain.Command { return domain.Navigate{Action: a} }
}

func pause() domain.Command  { return domain.Pause{} }
func resume() domain.Command { return domain.Resume{} }

var errEmptyUtterance = fmt.Errorf("%w: empty utterance", domain.ErrValidation)

var (
	timerWord = regexp.MustCompile(`(?i)\btimers?\b`)

	durationPhrase = regexp.MustCompile(`(?i)\b\d+:\d{2}(?::\d{2})?\b|\bhalf an? (?:hour|minute)\b|` +
		`(?:\b(?:\d+(?:\.\d+)?|an?|one|two|three|four|five|six|seven|eight|nine|ten|eleven|twelve|fifteen|twenty|thirty|forty-five|forty|sixty)` +
		`\s*(?:hours?|hrs?|minutes?|mins?|seconds?|secs?)\b(?:\s+and\s+a\s+half)?(?:\s*,?\s*and\b)?\s*)+`)

	labelKeyword  = regexp.MustCompile(`(?i)\b(?:for|called|named)\b`)
	labelBefore   = regexp.MustCompile(`(?i)\b(?:an?|the|my)\s+([a-z][a-z'-]*(?:\s+[a-z][a-z'-]*)?)\s+timer\b`)
	labelArticle  = regexp.MustCompile(`(?i)^(?:the|my|a|an)\s+`)
	ignoredLabels = map[string]bool{"a": true, "me": true, "timer": true, "new": true, "quick": true}
)

// NewKeywordClassifier creates a keyword-based classifier.
func NewKeywordClassifier(log *logger.Logger) *KeywordClassifier {
	c := &KeywordClassifier{log: log.Named("keywords")}

	// Whole-utterance commands win even when phrased as a question.
	c.commands = []patternRule{
		{regexp.MustCompile(`(?i)^(next|next step|done|advance|move on|go on|what'?s next|ok next)\W*$`), navigate(domain.NavNext)},
		{regexp.MustCompile(`(?i)^(previous|previous step|back|go back|last step|step back)\W*$`), navigate(domain.NavPrevious)},
		{regexp.MustCompile(`(?i)^(repeat|repeat that|repeat step|again|say that again|come again|what\??)\W*$`), navigate(domain.NavRepeat)},
		{regexp.MustCompile(`(?i)^(pause|wait|hold on|hold|brb|stop|one sec(ond)?)\W*$`), pause},
		{regexp.MustCompile(`(?i)^(resume|continue|unpause|i'?m back|keep going|carry on)\W*$`), resume},
	}

	// Matched anywhere in a non-question utterance.
	c.loose = []patternRule{
		{regexp.MustCompile(`(?i)\b(pause|hold on)\b`), pause},
		{regexp.MustCompile(`(?i)\b(resume|continue|unpause)\b`), resume},
		{regexp.MustCompile(`(?i)\b(previous|go back)\b`), navigate(domain.NavPrevious)},
		{regexp.MustCompile(`(?i)\b(next)\b`), navigate(domain.NavNext)},
		{regexp.MustCompile(`(?i)\b(repeat|again)\b`), navigate(domain.NavRepeat)},
	}
	return c
}

// Classify converts an utterance into exactly one command.
func (c *KeywordClassifier) Classify(ctx context.Context, text string, _ domain.SessionView) (domain.Command, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil, errEmptyUtterance
	}
	c.log.Debug("classifying: %q", trimmed)

	if cmd, ok := parseTimer(trimmed); ok {
		c.log.Debug("matched set_timer: %+v", cmd)
		return cmd, nil
	}

	for _, rule := range c.commands {
		if rule.regex.MatchString(trimmed) {
			cmd := rule.build()
			c.log.Debug("matched %s", cmd.Kind())
			return cmd, nil
		}
	}

	if isQuestion(trimmed) {
		return domain.Ask{Text: trimmed}, nil
	}

	for _, rule := range c.loose {
		if rule.regex.MatchString(trimmed) {
			cmd := rule.build()
			c.log.Debug("loosely matched %s", cmd.Kind())
			return cmd, nil
		}
	}

	c.log.Debug("no match, forwarding as a question")
	return domain.Ask{Text: trimmed}, nil
}

// parseTimer recognises "set a timer for 5 minutes", "start a pasta timer
// for 8 minutes" or "timer for 1:30 for the eggs".
func parseTimer(text string) (domain.SetTimer, bool) {
	if !timerWord.MatchString(text) {
		return domain.SetTimer{}, false
	}
	loc := durationPhrase.FindStringIndex(text)
	if loc == nil {
		return domain.SetTimer{}, false
	}

	duration := strings.TrimSpace(text[loc[0]:loc[1]])
	duration = strings.TrimSpace(strings.TrimSuffix(strings.TrimSuffix(duration, "and"), ","))
	if _, err := domain.ParseSeconds(duration); err != nil {
		return domain.SetTimer{}, false
	}

	rest := strings.TrimSpace(text[:loc[0]] + " " + text[loc[1]:])
	label := labelAfterKeyword(rest)
	if label == "" {
		if m := labelBefore.FindStringSubmatch(rest); m != nil {
			label = m[1]
		}
	}
	if ignoredLabels[strings.ToLower(label)] {
		label = ""
	}
	return domain.SetTimer{Label: label, Duration: duration}, true
}

// labelAfterKeyword returns whatever follows the last "for", "called" or
// "named", minus a leading article.
func labelAfterKeyword(rest string) string {
	all := labelKeyword.FindAllStringIndex(rest, -1)
	if len(all) == 0 {
		return ""
	}
	tail := strings.TrimSpace(rest[all[len(all)-1][1]:])
	tail = labelArticle.ReplaceAllString(tail, "")
	return strings.TrimRight(tail, ".!, ")
}

// questionPrefixes are common English question starters.
var questionPrefixes = []string{
	"how", "what", "why", "when", "where", "who", "which",
	"can", "could", "should", "would", "will", "do", "does", "is", "are",
	"am i", "tell me", "explain",
}

// isQuestion returns true if the input looks like a question.
func isQuestion(s string) bool {
	if strings.HasSuffix(s, "?") {
		return true
	}
	lower := strings.ToLower(s)
	for _, prefix := range questionPrefixes {
		if strings.HasPrefix(lower, prefix+" ") || lower == prefix {
			return true
		}
	}
	return false
}
