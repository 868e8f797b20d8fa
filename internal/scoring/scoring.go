// Package scoring turns the three screening stages into a score breakdown
// and a severity band with a short explanation. Everything here is pure.
package scoring

import (
	"strings"
	"time"

	"github.com/SAP-F-2025/screening-service/internal/models"
)

// Rule awards one point when the normalized answer satisfies it.
type Rule struct {
	Question models.QuestionID
	// Equals is matched exactly; when empty, Contains is used instead.
	Equals   string
	Contains []string
}

func (r Rule) match(answer string) bool {
	if r.Equals != "" {
		return answer == r.Equals
	}
	for _, sub := range r.Contains {
		if strings.Contains(answer, sub) {
			return true
		}
	}
	return false
}

// AnswerKey holds the fixed expected answers for q2..q7. q1 is compared
// against the reference weekday supplied at scoring time.
var AnswerKey = []Rule{
	{Question: models.QuestionCountry, Equals: "казахстан"},
	{Question: models.QuestionArithmetic, Equals: "675"},
	{Question: models.QuestionSimilarity, Contains: []string{"фрукты", "круглые"}},
	{Question: models.QuestionRecall, Equals: "рим"},
	{Question: models.QuestionAbstraction, Contains: []string{"пес", "светило"}},
	{Question: models.QuestionSerialSeven, Equals: "189 178 167"},
}

var weekdays = [...]string{
	time.Sunday:    "воскресенье",
	time.Monday:    "понедельник",
	time.Tuesday:   "вторник",
	time.Wednesday: "среда",
	time.Thursday:  "четверг",
	time.Friday:    "пятница",
	time.Saturday:  "суббота",
}

// WeekdayName returns the lower-case Russian name of t's weekday.
func WeekdayName(t time.Time) string {
	return weekdays[t.Weekday()]
}

// ScoreOrientation awards one point per correctly answered question (0..7).
// Missing answers never match.
func ScoreOrientation(answers models.OrientationAnswers, referenceDay string) int {
	score := 0
	if v, ok := answers.Get(models.QuestionWeekday); ok && v != "" && v == models.NormalizeAnswer(referenceDay) {
		score++
	}
	for _, rule := range AnswerKey {
		v, ok := answers.Get(rule.Question)
		if !ok {
			continue
		}
		if rule.match(v) {
			score++
		}
	}
	return score
}

// ScoreClock credits the clock drawing for being uploaded at all. The image
// is not analysed.
func ScoreClock(uploaded bool) int {
	if uploaded {
		return 1
	}
	return 0
}

const (
	fullPairs       = 6
	fastMoveLimit   = 12
	steadyMoveLimit = 18
)

// ScoreMemory grades a finished memory game by move count (0..3).
func ScoreMemory(matchedPairs, moves int) int {
	if matchedPairs != fullPairs {
		return 0
	}
	switch {
	case moves <= fastMoveLimit:
		return 3
	case moves <= steadyMoveLimit:
		return 2
	default:
		return 1
	}
}
