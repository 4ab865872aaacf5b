// Package gormstore persists sessions through gorm, on postgres in
// production and sqlite for local runs and tests.
package gormstore

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"github.com/DoyleJ11/lol-draft-series/internal/engine"
	"github.com/DoyleJ11/lol-draft-series/internal/store"
)

type Storage struct {
	db *gorm.DB
}

var _ store.Store = (*Storage)(nil)

// OpenPostgres connects with the pgx-backed postgres driver and migrates.
func OpenPostgres(dsn string) (*Storage, error) {
	return open(postgres.Open(dsn))
}

// OpenSQLite opens (or creates) a sqlite database and migrates.
// Use "file::memory:?cache=shared" for a throwaway database.
func OpenSQLite(dsn string) (*Storage, error) {
	return open(sqlite.Open(dsn))
}

func open(dialector gorm.Dialector) (*Storage, error) {
	db, err := gorm.Open(dialector, &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return New(db)
}

// New wraps an open connection, migrating the schema first.
func New(db *gorm.DB) (*Storage, error) {
	if err := db.AutoMigrate(&sessionRecord{}, &usedChampionRecord{}, &gameResultRecord{}); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Storage{db: db}, nil
}

func (s *Storage) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (s *Storage) GetSession(ctx context.Context, id string) (engine.Session, error) {
	return getSession(s.db.WithContext(ctx), id)
}

func getSession(db *gorm.DB, id string) (engine.Session, error) {
	var rec sessionRecord
	if err := db.First(&rec, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return engine.Session{}, engine.ErrSessionNotFound
		}
		return engine.Session{}, err
	}
	var used []usedChampionRecord
	if err := db.Where("session_id = ?", id).Order("id").Find(&used).Error; err != nil {
		return engine.Session{}, err
	}
	return overlay(rec.Payload, used), nil
}

// overlay merges the add-only used champion rows into the stored document.
func overlay(sess engine.Session, rows []usedChampionRecord) engine.Session {
	var blue, red []engine.Champion
	for _, r := range rows {
		switch engine.Side(r.Side) {
		case engine.SideBlue:
			blue = append(blue, r.champion())
		case engine.SideRed:
			red = append(red, r.champion())
		}
	}
	sess.Teams.Blue.UsedChampions = store.MergeUsed(sess.Teams.Blue.UsedChampions, blue)
	sess.Teams.Red.UsedChampions = store.MergeUsed(sess.Teams.Red.UsedChampions, red)
	return sess
}

func (s *Storage) SaveSession(ctx context.Context, sess engine.Session) (engine.Session, error) {
	var saved engine.Session
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		rec := toSessionRecord(sess)
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			UpdateAll: true,
		}).Create(&rec).Error; err != nil {
			return err
		}
		if rows := usedRecords(sess); len(rows) > 0 {
			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&rows).Error; err != nil {
				return err
			}
		}
		var err error
		saved, err = getSession(tx, sess.ID)
		return err
	})
	if err != nil {
		return engine.Session{}, fmt.Errorf("save session %s: %w", sess.ID, err)
	}
	return saved, nil
}

func (s *Storage) ListSessions(ctx context.Context) ([]engine.Session, error) {
	db := s.db.WithContext(ctx)
	var recs []sessionRecord
	if err := db.Order("created_at").Find(&recs).Error; err != nil {
		return nil, err
	}
	var rows []usedChampionRecord
	if err := db.Order("id").Find(&rows).Error; err != nil {
		return nil, err
	}
	bySession := make(map[string][]usedChampionRecord)
	for _, r := range rows {
		bySession[r.SessionID] = append(bySession[r.SessionID], r)
	}
	out := make([]engine.Session, 0, len(recs))
	for _, rec := range recs {
		out = append(out, overlay(rec.Payload, bySession[rec.ID]))
	}
	return out, nil
}

func (s *Storage) DeleteSession(ctx context.Context, id string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("session_id = ?", id).Delete(&usedChampionRecord{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&sessionRecord{}).Error
	})
}

func (s *Storage) GetUsedChampionsInSeries(ctx context.Context, sessionID string) ([]engine.Champion, error) {
	sess, err := s.GetSession(ctx, sessionID)
	if errors.Is(err, engine.ErrSessionNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return sess.UsedChampions(), nil
}

func (s *Storage) AddUsedChampion(ctx context.Context, sessionID string, side engine.Side, champion engine.Champion) error {
	if !side.Valid() {
		return engine.ErrInvalidSide
	}
	db := s.db.WithContext(ctx)
	var count int64
	if err := db.Model(&sessionRecord{}).Where("id = ?", sessionID).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return engine.ErrSessionNotFound
	}
	rec := toUsedRecord(sessionID, side, champion)
	return db.Clauses(clause.OnConflict{DoNothing: true}).Create(&rec).Error
}

func (s *Storage) RecordGameResult(ctx context.Context, result engine.GameResult) error {
	rec := gameResultRecord{
		ID:          result.ID,
		SessionID:   result.SessionID,
		GameNumber:  result.GameNumber,
		Payload:     result,
		CompletedAt: result.CompletedAt,
	}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		UpdateAll: true,
	}).Create(&rec).Error
}

func (s *Storage) ListGameResults(ctx context.Context, sessionID string) ([]engine.GameResult, error) {
	var recs []gameResultRecord
	if err := s.db.WithContext(ctx).Where("session_id = ?", sessionID).Order("game_number").Find(&recs).Error; err != nil {
		return nil, err
	}
	out := make([]engine.GameResult, 0, len(recs))
	for _, r := range recs {
		out = append(out, r.Payload)
	}
	return out, nil
}
