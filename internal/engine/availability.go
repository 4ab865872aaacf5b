package engine

import (
	"context"
	"fmt"
)

// SeriesHistory answers which champions were picked earlier in a series.
type SeriesHistory interface {
	GetUsedChampionsInSeries(ctx context.Context, sessionID string) ([]Champion, error)
}

// IsChampionAvailable reports whether championID may be banned or picked in
// s. A champion is unavailable once it is banned or picked in the current
// game, and, under fearless draft, once it was picked in an earlier game.
// Bans never count toward fearless exclusion.
func IsChampionAvailable(ctx context.Context, s Session, championID int, history SeriesHistory) (bool, error) {
	if usedThisGame(s, championID) {
		return false, nil
	}
	if !s.Config.IsFearlessDraft {
		return true, nil
	}
	used, err := usedInSeries(ctx, s, history)
	if err != nil {
		return false, err
	}
	return !containsChampion(used, championID), nil
}

// AvailableChampions filters the catalog down to what can still be selected
// in s, reading series history once.
func AvailableChampions(ctx context.Context, s Session, catalog ChampionCatalog, history SeriesHistory) ([]Champion, error) {
	all := catalog.Champions()
	var used []Champion
	if s.Config.IsFearlessDraft {
		var err error
		used, err = usedInSeries(ctx, s, history)
		if err != nil {
			return nil, err
		}
	}
	out := make([]Champion, 0, len(all))
	for _, c := range all {
		if usedThisGame(s, c.ID) || containsChampion(used, c.ID) {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

func usedThisGame(s Session, id int) bool {
	return containsChampion(s.Teams.Blue.Bans, id) ||
		containsChampion(s.Teams.Red.Bans, id) ||
		containsChampion(s.Teams.Blue.Picks, id) ||
		containsChampion(s.Teams.Red.Picks, id)
}

func usedInSeries(ctx context.Context, s Session, history SeriesHistory) ([]Champion, error) {
	if history == nil {
		return s.UsedChampions(), nil
	}
	used, err := history.GetUsedChampionsInSeries(ctx, s.ID)
	if err != nil {
		return nil, fmt.Errorf("load series history: %w", err)
	}
	return used, nil
}
