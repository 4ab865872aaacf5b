package gormstore

import (
	"time"

	"github.com/DoyleJ11/lol-draft-series/internal/engine"
)

// sessionRecord keeps the full session as a JSON document next to the
// columns the janitor filters on.
type sessionRecord struct {
	ID           string         `gorm:"primaryKey;size:64"`
	Kind         string         `gorm:"size:16"`
	Status       string         `gorm:"size:16;index"`
	CurrentGame  int
	Payload      engine.Session `gorm:"serializer:json;type:text"`
	CreatedAt    time.Time      `gorm:"index"`
	LastActivity time.Time      `gorm:"index"`
}

func (sessionRecord) TableName() string { return "draft_sessions" }

// usedChampionRecord is one fearless entry. The unique index makes inserts
// add-only.
type usedChampionRecord struct {
	ID         uint   `gorm:"primaryKey"`
	SessionID  string `gorm:"size:64;uniqueIndex:idx_series_champion"`
	Side       string `gorm:"size:8;uniqueIndex:idx_series_champion"`
	ChampionID int    `gorm:"uniqueIndex:idx_series_champion"`
	Key        string `gorm:"size:64"`
	Name       string `gorm:"size:128"`
	Image      string
	CreatedAt  time.Time
}

func (usedChampionRecord) TableName() string { return "series_champions" }

type gameResultRecord struct {
	ID          string            `gorm:"primaryKey;size:64"`
	SessionID   string            `gorm:"size:64;index"`
	GameNumber  int               `gorm:"index"`
	Payload     engine.GameResult `gorm:"serializer:json;type:text"`
	CompletedAt time.Time
}

func (gameResultRecord) TableName() string { return "game_results" }

func toSessionRecord(s engine.Session) sessionRecord {
	return sessionRecord{
		ID:           s.ID,
		Kind:         string(s.Kind),
		Status:       string(s.Status),
		CurrentGame:  s.Config.CurrentGame,
		Payload:      s,
		CreatedAt:    s.CreatedAt,
		LastActivity: s.LastActivity,
	}
}

func usedRecords(s engine.Session) []usedChampionRecord {
	var out []usedChampionRecord
	for _, side := range []engine.Side{engine.SideBlue, engine.SideRed} {
		for _, c := range s.Teams.Get(side).UsedChampions {
			out = append(out, toUsedRecord(s.ID, side, c))
		}
	}
	return out
}

func toUsedRecord(sessionID string, side engine.Side, c engine.Champion) usedChampionRecord {
	return usedChampionRecord{
		SessionID:  sessionID,
		Side:       string(side),
		ChampionID: c.ID,
		Key:        c.Key,
		Name:       c.Name,
		Image:      c.Image,
	}
}

func (r usedChampionRecord) champion() engine.Champion {
	return engine.Champion{ID: r.ChampionID, Key: r.Key, Name: r.Name, Image: r.Image}
}
