package models

import (
	"strings"
	"time"
)

type QuestionID string

const (
	QuestionWeekday     QuestionID = "q1"
	QuestionCountry     QuestionID = "q2"
	QuestionArithmetic  QuestionID = "q3"
	QuestionSimilarity  QuestionID = "q4"
	QuestionRecall      QuestionID = "q5"
	QuestionAbstraction QuestionID = "q6"
	QuestionSerialSeven QuestionID = "q7"
)

// OrientationQuestions lists the step 1 questions in presentation order.
var OrientationQuestions = []QuestionID{
	QuestionWeekday,
	QuestionCountry,
	QuestionArithmetic,
	QuestionSimilarity,
	QuestionRecall,
	QuestionAbstraction,
	QuestionSerialSeven,
}

// IsOrientationQuestion reports whether id names one of the step 1 questions.
func IsOrientationQuestion(id string) bool {
	for _, q := range OrientationQuestions {
		if string(q) == id {
			return true
		}
	}
	return false
}

// OrientationAnswers maps a question id to its normalized free-text answer.
type OrientationAnswers map[QuestionID]string

// NormalizeAnswer lower-cases and trims a raw answer.
func NormalizeAnswer(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

// NewOrientationAnswers normalizes raw form values. Unknown keys are dropped.
func NewOrientationAnswers(raw map[string]string) OrientationAnswers {
	answers := make(OrientationAnswers, len(OrientationQuestions))
	for key, value := range raw {
		if !IsOrientationQuestion(key) {
			continue
		}
		answers[QuestionID(key)] = NormalizeAnswer(value)
	}
	return answers
}

// Get returns the answer for id; a missing answer reports ok=false.
func (a OrientationAnswers) Get(id QuestionID) (string, bool) {
	if a == nil {
		return "", false
	}
	v, ok := a[id]
	return v, ok
}

// Complete reports whether every orientation question has a non-empty answer.
func (a OrientationAnswers) Complete() bool {
	for _, q := range OrientationQuestions {
		if v, ok := a.Get(q); !ok || v == "" {
			return false
		}
	}
	return true
}

type SeverityLevel string

const (
	LevelNormal   SeverityLevel = "Норма"
	LevelModerate SeverityLevel = "Умеренное снижение"
	LevelSevere   SeverityLevel = "Выраженное снижение"
)

const (
	MaxOrientationScore = 7
	MaxClockScore       = 1
	MaxMemoryScore      = 3
	MaxTotalScore       = MaxOrientationScore + MaxClockScore + MaxMemoryScore
)

type ScoreBreakdown struct {
	MMSEScore   int `json:"mmse_score"`
	ClockScore  int `json:"clock_score"`
	MemoryScore int `json:"memory_score"`
	Moves       int `json:"moves"`
	Total       int `json:"total"`
	MaxTotal    int `json:"max_total"`
}

type Advice struct {
	Level   SeverityLevel `json:"level"`
	Reasons []string      `json:"reasons"`
	Next    string        `json:"next"`
}

// ReportDisclaimer closes every rendered report.
const ReportDisclaimer = "Тест является скрининговым и не заменяет консультацию специалиста."

type Report struct {
	SessionID   string         `json:"session_id"`
	Breakdown   ScoreBreakdown `json:"breakdown"`
	Advice      Advice         `json:"advice"`
	Commentary  []string       `json:"commentary,omitempty"`
	Disclaimer  string         `json:"disclaimer"`
	CompletedAt time.Time      `json:"completed_at"`
}

// ScanAnalysis is the classification returned by the scan analysis backend.
type ScanAnalysis struct {
	Stage         string             `json:"stage"`
	Description   string             `json:"description"`
	Label         string             `json:"label,omitempty"`
	Probability   float64            `json:"probability,omitempty"`
	Probabilities map[string]float64 `json:"probabilities,omitempty"`
}
