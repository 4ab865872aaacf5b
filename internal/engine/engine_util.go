package engine

import (
	"crypto/rand"
	"math/big"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
)

const defaultPatch = "14.24"

// DerivePhase maps the persisted lifecycle onto the visible phase.
func DerivePhase(status Status, turn int) Phase {
	switch status {
	case StatusConfig:
		return PhaseConfig
	case StatusLobby:
		return PhaseLobby
	case StatusCompleted:
		return PhaseCompleted
	}
	if step, ok := CurrentTurn(turn); ok {
		return step.Phase
	}
	return PhaseFinalization
}

func normalizeConfig(cfg Config) Config {
	if cfg.SeriesType.TotalGames() == 0 {
		cfg.SeriesType = SeriesBO1
	}
	cfg.TotalGames = cfg.SeriesType.TotalGames()
	if cfg.CurrentGame < 1 || cfg.CurrentGame > cfg.TotalGames {
		cfg.CurrentGame = 1
	}
	if cfg.PatchName == "" {
		cfg.PatchName = defaultPatch
	}
	cfg.BlueCoach = cloneCoach(cfg.BlueCoach)
	cfg.RedCoach = cloneCoach(cfg.RedCoach)
	return cfg
}

func newTeam(side Side, name, fallback, prefix string, coach *Coach, logo string) Team {
	if name == "" {
		name = fallback
	}
	if prefix == "" {
		prefix = defaultPrefix(name)
	}
	return Team{
		ID:            uuid.NewString(),
		Name:          name,
		Side:          side,
		Prefix:        prefix,
		Bans:          []Champion{},
		Picks:         []Champion{},
		Coach:         cloneCoach(coach),
		UsedChampions: []Champion{},
		Logo:          logo,
	}
}

// defaultPrefix turns "Blue Team" into "BLU".
func defaultPrefix(name string) string {
	s := strings.ReplaceAll(slug.Make(name), "-", "")
	if len(s) > 3 {
		s = s[:3]
	}
	return strings.ToUpper(s)
}

func generateJoinSecret() (string, error) {
	const charset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

	code := make([]byte, 6)
	for i := range code {
		num, err := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
		if err != nil {
			return "", err
		}
		code[i] = charset[num.Int64()]
	}
	return string(code), nil
}

func containsChampion(list []Champion, id int) bool {
	return slices.ContainsFunc(list, func(c Champion) bool { return c.ID == id })
}

func cloneTeam(t Team) Team {
	t.Bans = slices.Clone(t.Bans)
	t.Picks = slices.Clone(t.Picks)
	t.UsedChampions = slices.Clone(t.UsedChampions)
	t.Coach = cloneCoach(t.Coach)
	return t
}

func cloneCoach(c *Coach) *Coach {
	if c == nil {
		return nil
	}
	cp := *c
	return &cp
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	cp := *t
	return &cp
}

func ContainsEvent(events []Event, eventType EventType) bool {
	for _, event := range events {
		if event.Type == eventType {
			return true
		}
	}
	return false
}
