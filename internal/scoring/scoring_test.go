package scoring

import (
	"testing"
	"time"

	"github.com/SAP-F-2025/screening-service/internal/models"
	"github.com/stretchr/testify/assert"
)

func perfectAnswers(day string) models.OrientationAnswers {
	return models.NewOrientationAnswers(map[string]string{
		"q1": day,
		"q2": "казахстан",
		"q3": "675",
		"q4": "фрукты",
		"q5": "рим",
		"q6": "пес",
		"q7": "189 178 167",
	})
}

func TestWeekdayName(t *testing.T) {
	// 2026-10-16 is a Friday.
	day := time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, "пятница", WeekdayName(day))
	assert.Equal(t, "суббота", WeekdayName(day.AddDate(0, 0, 1)))
	assert.Equal(t, "воскресенье", WeekdayName(day.AddDate(0, 0, 2)))
}

func TestScoreOrientation(t *testing.T) {
	tests := []struct {
		name    string
		answers models.OrientationAnswers
		want    int
	}{
		{"all correct", perfectAnswers("среда"), 7},
		{"nil answers", nil, 0},
		{"empty answers", models.OrientationAnswers{}, 0},
		{
			name: "normalization of raw input",
			answers: models.NewOrientationAnswers(map[string]string{
				"q1": "  СРЕДА ",
				"q2": "Казахстан",
			}),
			want: 2,
		},
		{
			name: "substring questions",
			answers: models.NewOrientationAnswers(map[string]string{
				"q4": "это круглые предметы",
				"q6": "солнце это светило",
			}),
			want: 2,
		},
		{
			name: "equality questions do not accept substrings",
			answers: models.NewOrientationAnswers(map[string]string{
				"q2": "республика казахстан",
				"q3": "6750",
				"q5": "город рим",
				"q7": "189 178 167 160",
			}),
			want: 0,
		},
		{
			name:    "wrong weekday",
			answers: models.NewOrientationAnswers(map[string]string{"q1": "понедельник"}),
			want:    0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ScoreOrientation(tt.answers, "среда")
			assert.Equal(t, tt.want, got)
			assert.Equal(t, got, ScoreOrientation(tt.answers, "среда"), "same input, same output")
			assert.GreaterOrEqual(t, got, 0)
			assert.LessOrEqual(t, got, models.MaxOrientationScore)
		})
	}
}

func TestScoreOrientation_EmptyReferenceDayNeverMatchesEmptyAnswer(t *testing.T) {
	answers := models.OrientationAnswers{models.QuestionWeekday: ""}
	assert.Zero(t, ScoreOrientation(answers, ""))
}

func TestScoreClock(t *testing.T) {
	assert.Equal(t, 1, ScoreClock(true))
	assert.Equal(t, 0, ScoreClock(false))
}

func TestScoreMemory(t *testing.T) {
	assert.Equal(t, 3, ScoreMemory(6, 6))
	assert.Equal(t, 3, ScoreMemory(6, 12))
	assert.Equal(t, 2, ScoreMemory(6, 13))
	assert.Equal(t, 2, ScoreMemory(6, 18))
	assert.Equal(t, 1, ScoreMemory(6, 19))
	assert.Equal(t, 1, ScoreMemory(6, 60))

	for pairs := 0; pairs < 6; pairs++ {
		assert.Zero(t, ScoreMemory(pairs, 6), "pairs=%d", pairs)
	}

	prev := ScoreMemory(6, 0)
	for moves := 1; moves <= 30; moves++ {
		cur := ScoreMemory(6, moves)
		assert.LessOrEqual(t, cur, prev, "moves=%d", moves)
		prev = cur
	}
}

func TestLevel(t *testing.T) {
	assert.Equal(t, models.LevelSevere, Level(0))
	assert.Equal(t, models.LevelSevere, Level(4))
	assert.Equal(t, models.LevelModerate, Level(5))
	assert.Equal(t, models.LevelModerate, Level(7))
	assert.Equal(t, models.LevelNormal, Level(8))
	assert.Equal(t, models.LevelNormal, Level(11))
}

func TestDeriveAdvice_Reasons(t *testing.T) {
	a := DeriveAdvice(7, 1, 3, 10, 11)
	assert.Equal(t, []string{reasonOrientationGood, reasonClockDone, reasonMemoryGood}, a.Reasons)

	a = DeriveAdvice(4, 0, 2, 15, 6)
	assert.Equal(t, []string{reasonOrientationMinor, reasonClockFailed, reasonMemoryAverage}, a.Reasons)

	a = DeriveAdvice(3, 1, 1, 25, 5)
	assert.Equal(t, []string{reasonOrientationLow, reasonClockDone, reasonMemoryLow}, a.Reasons)

	// memory=3 with too many moves cannot happen through ScoreMemory but the
	// band still falls through to the average reason.
	a = DeriveAdvice(6, 1, 3, 13, 10)
	assert.Equal(t, reasonMemoryAverage, a.Reasons[2])
}

func TestDeriveAdvice_Next(t *testing.T) {
	assert.Equal(t, NextMaintain, DeriveAdvice(7, 1, 1, 20, 9).Next)
	assert.Equal(t, NextTrain, DeriveAdvice(6, 1, 1, 20, 8).Next)
	assert.Equal(t, NextTrain, DeriveAdvice(5, 1, 1, 20, 7).Next)
	assert.Equal(t, NextReferral, DeriveAdvice(5, 1, 0, 20, 6).Next)
}

func TestEvaluate_EndToEnd(t *testing.T) {
	today := WeekdayName(time.Now())
	b, a := Evaluate(Input{
		Answers:      perfectAnswers(today),
		ReferenceDay: today,
		ClockUpload:  true,
		MatchedPairs: 6,
		Moves:        10,
	})

	assert.Equal(t, models.ScoreBreakdown{
		MMSEScore:   7,
		ClockScore:  1,
		MemoryScore: 3,
		Moves:       10,
		Total:       11,
		MaxTotal:    11,
	}, b)
	assert.Equal(t, models.LevelNormal, a.Level)
	assert.Equal(t, NextMaintain, a.Next)
	assert.Len(t, a.Reasons, 3)
}

func TestEvaluate_UnfinishedGame(t *testing.T) {
	b, a := Evaluate(Input{
		Answers:      models.OrientationAnswers{},
		ReferenceDay: "среда",
		MatchedPairs: 4,
		Moves:        9,
	})
	assert.Zero(t, b.Total)
	assert.Equal(t, models.LevelSevere, a.Level)
	assert.Equal(t, NextReferral, a.Next)
}
