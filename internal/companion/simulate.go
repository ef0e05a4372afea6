package companion

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/cory-johannsen/artifactsbot/internal/game/catalog"
	"github.com/cory-johannsen/artifactsbot/internal/game/combat"
	"github.com/cory-johannsen/artifactsbot/internal/game/stats"
	"github.com/cory-johannsen/artifactsbot/internal/report"
)

// DefaultCharacterName labels simulations that are not tied to a real character.
const DefaultCharacterName = "Character"

// SimulateRequest describes a hypothetical loadout to fight a monster with.
type SimulateRequest struct {
	// Monster is a monster code or display name.
	Monster string
	// Items are item codes or display names.
	Items []string
	// Level is the character level. Zero selects the configured default.
	Level int
}

// SimulationResult is everything needed to render a simulation.
type SimulationResult struct {
	Stats         stats.CombatStats
	Monster       catalog.Monster
	ItemCodes     []string
	Level         int
	CharacterName string
	Outcomes      []combat.FightOutcome
	Deterministic bool
	Summary       report.Summary
}

// Simulate fights req.Monster with the given items at the given level.
//
// Postcondition: user errors (unknown names, bad level, impossible loadout)
// are returned as *ControlError.
func (s *Service) Simulate(ctx context.Context, req SimulateRequest) (SimulationResult, error) {
	if strings.TrimSpace(req.Monster) == "" {
		return SimulationResult{}, respond("Invalid `monster`.")
	}
	if len(req.Items) == 0 {
		return SimulationResult{}, respond("Invalid `items`.")
	}
	level := req.Level
	if level == 0 {
		level = s.cfg.DefaultLevel
	}
	if level < s.cfg.MinLevel || level > s.cfg.MaxLevel {
		return SimulationResult{}, respond("`level` must be between %d and %d.", s.cfg.MinLevel, s.cfg.MaxLevel)
	}

	monster, err := s.Monster(req.Monster)
	if err != nil {
		return SimulationResult{}, err
	}
	items := make([]catalog.Item, 0, len(req.Items))
	for _, name := range req.Items {
		it, err := s.Item(name)
		if err != nil {
			return SimulationResult{}, err
		}
		items = append(items, it)
	}
	worn, err := catalog.ValidateLoadout(items)
	if err != nil {
		var le *catalog.LoadoutError
		if errors.As(err, &le) {
			return SimulationResult{}, respond("%s.", sentence(le.Reason))
		}
		return SimulationResult{}, err
	}

	return s.run(ctx, worn, monster, level, DefaultCharacterName)
}

// SimulateCharacter fights monster with a real character's current equipment
// and level.
func (s *Service) SimulateCharacter(ctx context.Context, name, monster string) (SimulationResult, error) {
	if strings.TrimSpace(monster) == "" {
		return SimulationResult{}, respond("Invalid `monster`.")
	}
	m, err := s.Monster(monster)
	if err != nil {
		return SimulationResult{}, err
	}
	ch, err := s.Character(ctx, name)
	if err != nil {
		return SimulationResult{}, err
	}
	codes := ch.EquippedItemCodes()
	items := make([]catalog.Item, 0, len(codes))
	for _, code := range codes {
		it, err := s.Item(code)
		if err != nil {
			return SimulationResult{}, err
		}
		items = append(items, it)
	}
	return s.run(ctx, items, m, ch.Level, ch.Name)
}

func (s *Service) run(ctx context.Context, items []catalog.Item, monster catalog.Monster, level int, who string) (SimulationResult, error) {
	if err := ctx.Err(); err != nil {
		return SimulationResult{}, err
	}
	cs, err := stats.Aggregate(items, level)
	if err != nil {
		return SimulationResult{}, fmt.Errorf("aggregating stats: %w", err)
	}
	outcomes, deterministic, err := s.sim.Simulate(cs, monster.MonsterStats, s.cfg.Iterations)
	if err != nil {
		return SimulationResult{}, fmt.Errorf("simulating fight: %w", err)
	}

	codes := make([]string, len(items))
	for i, it := range items {
		codes[i] = it.Code
	}
	summary := report.Summarize(outcomes, cs.MaxHP, deterministic)
	s.logger.Info("fight simulated",
		zap.String("character", who),
		zap.String("monster", monster.Code),
		zap.Strings("items", codes),
		zap.Int("level", level),
		zap.Int("wins", summary.Wins),
		zap.Int("fights", summary.Total),
	)
	return SimulationResult{
		Stats:         cs,
		Monster:       monster,
		ItemCodes:     codes,
		Level:         level,
		CharacterName: who,
		Outcomes:      outcomes,
		Deterministic: deterministic,
		Summary:       summary,
	}, nil
}

// sentence upper-cases the first letter of s.
func sentence(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
