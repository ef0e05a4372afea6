// Package main simulates a fight against an offline catalog and prints the
// report. It needs no network access.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/cory-johannsen/artifactsbot/internal/command"
	"github.com/cory-johannsen/artifactsbot/internal/config"
	"github.com/cory-johannsen/artifactsbot/internal/game/catalog"
	"github.com/cory-johannsen/artifactsbot/internal/game/combat"
	"github.com/cory-johannsen/artifactsbot/internal/game/dice"
	"github.com/cory-johannsen/artifactsbot/internal/game/stats"
	"github.com/cory-johannsen/artifactsbot/internal/observability"
	"github.com/cory-johannsen/artifactsbot/internal/report"
)

func main() {
	catalogDir := flag.String("catalog", "content/catalog", "directory of catalog YAML files")
	monsterName := flag.String("monster", "", "monster code or name")
	itemList := flag.String("items", "", "comma-separated item codes or names")
	level := flag.Int("level", 40, "character level")
	iterations := flag.Int("iterations", 1000, "number of fights to simulate")
	seed := flag.Uint64("seed", 0, "seed for reproducible runs; 0 uses a crypto source")
	workers := flag.Int("workers", 1, "goroutines running fights; 0 means GOMAXPROCS")
	logLevel := flag.String("log-level", "warn", "log level")
	flag.Parse()

	logger, err := observability.NewLogger(config.LoggingConfig{Level: *logLevel, Format: "console"}, "simulate")
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	reg, err := catalog.LoadDir(*catalogDir)
	if err != nil {
		logger.Fatal("loading catalog", zap.Error(err))
	}

	monster, ok := reg.Monster(catalog.ToCodeFormat(*monsterName))
	if !ok {
		fail("Monster `%s` does not exist.", *monsterName)
	}
	names := command.List(*itemList)
	if len(names) == 0 {
		fail("Invalid `items`.")
	}
	items := make([]catalog.Item, 0, len(names))
	for _, n := range names {
		it, ok := reg.Item(catalog.ToCodeFormat(n))
		if !ok {
			fail("Item `%s` does not exist.", n)
		}
		items = append(items, it)
	}
	worn, err := catalog.ValidateLoadout(items)
	if err != nil {
		fail("%v", err)
	}

	cs, err := stats.Aggregate(worn, *level)
	if err != nil {
		fail("%v", err)
	}

	src := dice.NewCryptoSource()
	if *seed != 0 {
		src = dice.NewSeededSource(*seed)
	}
	sim := combat.NewSimulator(src, combat.WithWorkers(*workers), combat.WithLogger(logger))
	outcomes, deterministic, err := sim.Simulate(cs, monster.MonsterStats, *iterations)
	if err != nil {
		fail("%v", err)
	}

	fmt.Printf("%s (level %d) vs %s\n", strings.Join(codes(worn), ","), *level, monster.Name)
	fmt.Printf("Max HP %d, attack fire/earth/water/air %d/%d/%d/%d\n",
		cs.MaxHP, cs.FireAttack, cs.EarthAttack, cs.WaterAttack, cs.AirAttack)
	fmt.Println(report.Summarize(outcomes, cs.MaxHP, deterministic))
}

func codes(items []catalog.Item) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.Code
	}
	return out
}

func fail(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
