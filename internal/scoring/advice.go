package scoring

import "github.com/SAP-F-2025/screening-service/internal/models"

const (
	reasonOrientationGood  = "ориентация и базовые когнитивные навыки в пределах нормы по MMSE/MoCA"
	reasonOrientationMinor = "по MMSE/MoCA есть отдельные неточности (речь, счёт или абстракции)"
	reasonOrientationLow   = "низкие баллы по MMSE/MoCA (ориентация, счёт, абстракции требуют внимания)"

	reasonClockDone   = "задание «Часы» выполнено (основные исполнительные функции сохранены)"
	reasonClockFailed = "ошибки в задании «Часы» (планирование/практические навыки)"

	reasonMemoryGood    = "память и внимание хорошие (Memory: максимум баллов, мало ходов)"
	reasonMemoryAverage = "память/внимание средние (Memory в пределах нормы, но ходов больше среднего)"
	reasonMemoryLow     = "память/внимание снижены (сложно удерживать пары/много ходов)"

	NextMaintain = "Поддерживайте режим: когнитивные упражнения 10–15 мин/день (чтение, головоломки), умеренная физическая активность, сон 7–8 ч, контроль стресса."
	NextTrain    = "Рекомендуется тренировать внимание и счёт (короткие устные вычисления, игры на память) 3–4 раза в неделю и повторить тест через 2–4 недели."
	NextReferral = "Рекомендуется обратиться к неврологу/психиатру для очной оценки и исключения медицинских причин (анализы, МРТ, очные когнитивные шкалы)."
)

// Level maps a total score to its severity band.
func Level(total int) models.SeverityLevel {
	switch {
	case total <= 4:
		return models.LevelSevere
	case total <= 7:
		return models.LevelModerate
	default:
		return models.LevelNormal
	}
}

// DeriveAdvice explains a score: one reason per stage in fixed order and a
// single next-step recommendation.
func DeriveAdvice(mmse, clock, memory, moves, total int) models.Advice {
	reasons := make([]string, 0, 3)

	switch {
	case mmse >= 6:
		reasons = append(reasons, reasonOrientationGood)
	case mmse >= 4:
		reasons = append(reasons, reasonOrientationMinor)
	default:
		reasons = append(reasons, reasonOrientationLow)
	}

	if clock == 1 {
		reasons = append(reasons, reasonClockDone)
	} else {
		reasons = append(reasons, reasonClockFailed)
	}

	switch {
	case memory == 3 && moves <= fastMoveLimit:
		reasons = append(reasons, reasonMemoryGood)
	case memory >= 2:
		reasons = append(reasons, reasonMemoryAverage)
	default:
		reasons = append(reasons, reasonMemoryLow)
	}

	var next string
	switch {
	case total >= 9:
		next = NextMaintain
	case total >= 7:
		next = NextTrain
	default:
		next = NextReferral
	}

	return models.Advice{
		Level:   Level(total),
		Reasons: reasons,
		Next:    next,
	}
}

// Input gathers everything the screening produced.
type Input struct {
	Answers      models.OrientationAnswers
	ReferenceDay string
	ClockUpload  bool
	MatchedPairs int
	Moves        int
}

// Evaluate scores all stages and derives the advice for the total.
func Evaluate(in Input) (models.ScoreBreakdown, models.Advice) {
	b := models.ScoreBreakdown{
		MMSEScore:   ScoreOrientation(in.Answers, in.ReferenceDay),
		ClockScore:  ScoreClock(in.ClockUpload),
		MemoryScore: ScoreMemory(in.MatchedPairs, in.Moves),
		Moves:       in.Moves,
		MaxTotal:    models.MaxTotalScore,
	}
	b.Total = b.MMSEScore + b.ClockScore + b.MemoryScore

	return b, DeriveAdvice(b.MMSEScore, b.ClockScore, b.MemoryScore, b.Moves, b.Total)
}
