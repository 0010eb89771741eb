package engine

import "math"

// Judgement is the full outcome of scoring one day.
type Judgement struct {
	XPDelta       int    `json:"xp_delta"`
	Penalty       int    `json:"penalty"`
	NewXP         int    `json:"xp"`
	NewLevel      int    `json:"level"`
	NewStreak     int    `json:"streak"`
	NewDebt       int    `json:"debt"`
	NewDifficulty int    `json:"difficulty"`
	Verdict       string `json:"verdict"`
}

// DayInput carries the user's persistent state plus the day's completion counts.
type DayInput struct {
	CurrentXP         int
	CurrentStreak     int
	CurrentDebt       int
	CurrentDifficulty int
	Completed         int
	Missed            int
	ImpactsSum        float64
}

const (
	xpPerCompleted   = 20
	xpPerImpactPoint = 10
	xpPerDifficulty  = 5
	penaltyPerMiss   = 15
	streakBonusXP    = 5
	streakBonusAfter = 3
	xpPerLevel       = 250

	MinDifficulty = 1
	MaxDifficulty = 5
	MinLevel      = 1
	MaxLevel      = 10
)

// Verdict texts. Picked by a priority chain in JudgeDay; the branches are
// mutually exclusive and order matters.
const (
	VerdictNothing = "You executed nothing. That's self-deception. Penalty applied."
	VerdictHard    = "You executed hard. Keep going. Next level demands more."
	VerdictClean   = "You did the work. No excuses. No detours."
	VerdictAvoided = "You avoided the main goal. You pay now and later. Fix it."
	VerdictBailed  = "You did something — then you bailed on the rest. Not enough."
)

// Clamp bounds v to [lo, hi].
func Clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// LevelFromXP derives the level from total XP. Level up every 250 XP, cap 10.
func LevelFromXP(xp int) int {
	return Clamp(1+xp/xpPerLevel, MinLevel, MaxLevel)
}

// JudgeDay converts one day's completion record into the user's next state.
// It is deterministic and total: identical inputs always produce identical
// outputs and there is no failure path. Callers guarantee non-negative counts
// and a difficulty within [1,5].
func JudgeDay(in DayInput) Judgement {
	// Half ties round to even.
	baseXP := int(math.RoundToEven(float64(xpPerCompleted*in.Completed) + xpPerImpactPoint*in.ImpactsSum + float64(xpPerDifficulty*in.CurrentDifficulty)))
	penalty := penaltyPerMiss * in.Missed

	newStreak := 0
	if in.Missed == 0 && in.Completed > 0 {
		newStreak = in.CurrentStreak + 1
	}

	streakBonus := 0
	if newStreak >= streakBonusAfter {
		streakBonus = streakBonusXP
	}

	xpDelta := baseXP + streakBonus - penalty
	newXP := in.CurrentXP + xpDelta
	if newXP < 0 {
		newXP = 0
	}

	// Debt is a permanent record of misses; it never resets.
	newDebt := in.CurrentDebt + in.Missed

	// First matching branch wins; at most one raise per day.
	diff := in.CurrentDifficulty
	switch {
	case in.Missed >= 2:
		diff++
	case newStreak >= 5:
		diff++
	case in.Missed == 0 && in.Completed >= 4:
		diff++
	}
	newDifficulty := Clamp(diff, MinDifficulty, MaxDifficulty)

	var verdict string
	switch {
	case in.Completed == 0 && in.Missed > 0:
		verdict = VerdictNothing
	case in.Missed == 0 && in.Completed >= 4:
		verdict = VerdictHard
	case in.Missed == 0 && in.Completed > 0:
		verdict = VerdictClean
	case in.Missed >= 2:
		verdict = VerdictAvoided
	default:
		verdict = VerdictBailed
	}

	return Judgement{
		XPDelta:       xpDelta,
		Penalty:       penalty,
		NewXP:         newXP,
		NewLevel:      LevelFromXP(newXP),
		NewStreak:     newStreak,
		NewDebt:       newDebt,
		NewDifficulty: newDifficulty,
		Verdict:       verdict,
	}
}
