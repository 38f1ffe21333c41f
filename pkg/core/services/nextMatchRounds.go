package services

import (
	"fmt"
	"time"

	"github.com/teambition/rrule-go"

	"github.com/jakechorley/neighbourly/internal/config"
)

// NextMatchRounds returns up to n upcoming matching rounds from the configured schedule, starting at from.
// A schedule with COUNT or UNTIL may end before n rounds.
func NextMatchRounds(cfg *config.Config, from time.Time, n int) ([]time.Time, error) {
	if n < 1 {
		return nil, fmt.Errorf("round count must be at least 1, got %d", n)
	}

	rule, err := rrule.StrToRRule(cfg.MatchSchedule)
	if err != nil {
		return nil, fmt.Errorf("invalid rrule in matchSchedule: %w", err)
	}
	rule.DTStart(from)

	rounds := make([]time.Time, 0, n)
	next := rule.After(from, true)
	for !next.IsZero() && len(rounds) < n {
		rounds = append(rounds, next)
		next = rule.After(next, false)
	}

	return rounds, nil
}
