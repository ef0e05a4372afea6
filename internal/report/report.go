// Package report condenses simulated fight outcomes into the statistics shown
// to players.
package report

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/cory-johannsen/artifactsbot/internal/game/combat"
)

// Fight is one representative outcome picked for display.
type Fight struct {
	Turns            int
	RemainingHP      int
	HPLost           int
	WithHealingTurns int
}

// HealingToWin returns the healing the character would have needed and
// whether the fight would have been won with it before the turn cap.
func (f Fight) HealingToWin() (int, bool) {
	return -f.RemainingHP + 1, f.WithHealingTurns < combat.MaxTurns
}

// Summary aggregates a batch of fight outcomes.
type Summary struct {
	Total         int
	Wins          int
	Losses        int
	Deterministic bool

	// BestWin and WorstWin are nil when there were no wins.
	BestWin          *Fight
	WorstWin         *Fight
	AverageWinTurns  float64
	AverageWinHPLost float64

	// CompletedLosses are losses where the character died before the cap.
	CompletedLosses          int
	BestLoss                 *Fight
	WorstLoss                *Fight
	AverageLossTurns         float64
	AverageLossHealingTurns  float64
	AverageLossHealingNeeded float64
	IncompleteLosses         int
}

// WinRate returns wins as a percentage of all fights, or 0 for an empty batch.
func (s Summary) WinRate() float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.Wins) / float64(s.Total) * 100
}

// Summarize aggregates outcomes for a character with maxHP.
//
// Postcondition: Wins + CompletedLosses + IncompleteLosses == Total.
func Summarize(outcomes []combat.FightOutcome, maxHP int, deterministic bool) Summary {
	s := Summary{Total: len(outcomes), Deterministic: deterministic}

	var winTurns, winRemaining int
	var lossTurns, lossHealingTurns, lossRemaining int
	for _, o := range outcomes {
		f := Fight{
			Turns:            o.TurnsToResolve,
			RemainingHP:      o.RemainingHP,
			HPLost:           maxHP - o.RemainingHP,
			WithHealingTurns: o.TurnsToResolveWithInfiniteHealing,
		}
		switch {
		case o.Won:
			s.Wins++
			winTurns += f.Turns
			winRemaining += f.RemainingHP
			s.BestWin, s.WorstWin = track(s.BestWin, s.WorstWin, f)
		case o.Incomplete():
			s.Losses++
			s.IncompleteLosses++
		default:
			s.Losses++
			s.CompletedLosses++
			lossTurns += f.Turns
			lossHealingTurns += f.WithHealingTurns
			lossRemaining += f.RemainingHP
			s.BestLoss, s.WorstLoss = track(s.BestLoss, s.WorstLoss, f)
		}
	}

	if s.Wins > 0 {
		n := float64(s.Wins)
		s.AverageWinTurns = float64(winTurns) / n
		s.AverageWinHPLost = float64(maxHP) - float64(winRemaining)/n
	}
	if s.CompletedLosses > 0 {
		n := float64(s.CompletedLosses)
		s.AverageLossTurns = float64(lossTurns) / n
		s.AverageLossHealingTurns = float64(lossHealingTurns) / n
		s.AverageLossHealingNeeded = -float64(lossRemaining)/n + 1
	}
	return s
}

// track keeps the first fight seen with the highest and lowest remaining HP.
func track(best, worst *Fight, f Fight) (*Fight, *Fight) {
	if best == nil || f.RemainingHP > best.RemainingHP {
		b := f
		best = &b
	}
	if worst == nil || f.RemainingHP < worst.RemainingHP {
		w := f
		worst = &w
	}
	return best, worst
}

// Lines renders the summary as plain sentences, one per line.
func (s Summary) Lines() []string {
	var lines []string
	if s.Deterministic {
		verdict := "lost"
		if s.Wins > 0 {
			verdict = "won"
		}
		lines = append(lines, fmt.Sprintf("This fight is deterministic since neither fighter can block. The player %s the fight.", verdict))
	} else {
		lines = append(lines, fmt.Sprintf("Simulated %d fight%s. The player won %d and lost %d (%s%% win rate).",
			s.Total, plural(s.Total), s.Wins, s.Losses, percent(s.WinRate())))
	}

	if s.Wins > 0 {
		if s.Wins > 1 {
			lines = append(lines,
				fmt.Sprintf("Best Win: %d turn%s, lost %d health.", s.BestWin.Turns, plural(s.BestWin.Turns), s.BestWin.HPLost),
				fmt.Sprintf("Worst Win: %d turn%s, lost %d health.", s.WorstWin.Turns, plural(s.WorstWin.Turns), s.WorstWin.HPLost),
			)
		}
		lines = append(lines, fmt.Sprintf("Average Win: %.1f turns, lost %.1f health.", s.AverageWinTurns, s.AverageWinHPLost))
	}

	if s.CompletedLosses > 0 {
		if s.CompletedLosses > 1 {
			lines = append(lines, lossLine("Best Loss", *s.BestLoss), lossLine("Worst Loss", *s.WorstLoss))
		}
		var b strings.Builder
		fmt.Fprintf(&b, "Average Loss: %.1f turns", s.AverageLossTurns)
		if s.AverageLossHealingTurns < combat.MaxTurns {
			fmt.Fprintf(&b, " and would need %.1f healing to win in %.1f turns", s.AverageLossHealingNeeded, s.AverageLossHealingTurns)
		}
		b.WriteString(".")
		lines = append(lines, b.String())
	}
	if s.IncompleteLosses > 0 {
		lines = append(lines, fmt.Sprintf("%d fight%s lost due to reaching %d turns without a result.",
			s.IncompleteLosses, pluralVerb(s.IncompleteLosses), combat.MaxTurns))
	}
	return lines
}

// String joins Lines with newlines.
func (s Summary) String() string {
	return strings.Join(s.Lines(), "\n")
}

func lossLine(label string, f Fight) string {
	line := fmt.Sprintf("%s: %d turn%s", label, f.Turns, plural(f.Turns))
	if healing, ok := f.HealingToWin(); ok {
		line += fmt.Sprintf(", would need %d healing to win in %d turns", healing, f.WithHealingTurns)
	}
	return line + "."
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}

func pluralVerb(n int) string {
	if n == 1 {
		return " was"
	}
	return "s were"
}

// percent formats p with at most one decimal place.
func percent(p float64) string {
	return strings.TrimSuffix(strconv.FormatFloat(p, 'f', 1, 64), ".0")
}
