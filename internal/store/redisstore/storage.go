// Package redisstore keeps sessions in Redis as JSON documents, with fearless
// history in per-side hashes so concurrent additions never overwrite each
// other.
package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/DoyleJ11/lol-draft-series/internal/engine"
	"github.com/DoyleJ11/lol-draft-series/internal/store"
)

// Storage is a Redis-backed implementation of store.Store
type Storage struct {
	client *redis.Client
	cfg    Config
}

var _ store.Store = (*Storage)(nil)

func New(cfg Config) (*Storage, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return &Storage{client: client, cfg: cfg}, nil
}

// NewWithClient wraps an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config) *Storage {
	return &Storage{client: client, cfg: cfg}
}

func (s *Storage) Close() error {
	return s.client.Close()
}

func (s *Storage) GetSession(ctx context.Context, id string) (engine.Session, error) {
	pipe := s.client.Pipeline()
	get := pipe.Get(ctx, sessionKey(id))
	blue := pipe.HGetAll(ctx, usedKey(id, engine.SideBlue))
	red := pipe.HGetAll(ctx, usedKey(id, engine.SideRed))
	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		return engine.Session{}, err
	}

	data, err := get.Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return engine.Session{}, engine.ErrSessionNotFound
		}
		return engine.Session{}, err
	}
	var sess engine.Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return engine.Session{}, fmt.Errorf("decode session %s: %w", id, err)
	}

	blueUsed, err := decodeUsed(blue.Val())
	if err != nil {
		return engine.Session{}, err
	}
	redUsed, err := decodeUsed(red.Val())
	if err != nil {
		return engine.Session{}, err
	}
	sess.Teams.Blue.UsedChampions = store.MergeUsed(sess.Teams.Blue.UsedChampions, blueUsed)
	sess.Teams.Red.UsedChampions = store.MergeUsed(sess.Teams.Red.UsedChampions, redUsed)
	return sess, nil
}

// decodeUsed turns a used-champion hash into a list ordered by id.
func decodeUsed(fields map[string]string) ([]engine.Champion, error) {
	out := make([]engine.Champion, 0, len(fields))
	for _, raw := range fields {
		var c engine.Champion
		if err := json.Unmarshal([]byte(raw), &c); err != nil {
			return nil, fmt.Errorf("decode used champion: %w", err)
		}
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Storage) SaveSession(ctx context.Context, sess engine.Session) (engine.Session, error) {
	data, err := json.Marshal(sess)
	if err != nil {
		return engine.Session{}, err
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, sessionKey(sess.ID), data, s.cfg.SessionTTL)
	pipe.SAdd(ctx, sessionsIndexKey(), sess.ID)
	for _, side := range []engine.Side{engine.SideBlue, engine.SideRed} {
		key := usedKey(sess.ID, side)
		for _, c := range sess.Teams.Get(side).UsedChampions {
			raw, err := json.Marshal(c)
			if err != nil {
				return engine.Session{}, err
			}
			pipe.HSetNX(ctx, key, strconv.Itoa(c.ID), raw)
		}
		if s.cfg.SessionTTL > 0 {
			pipe.Expire(ctx, key, s.cfg.SessionTTL)
		}
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return engine.Session{}, fmt.Errorf("save session %s: %w", sess.ID, err)
	}
	return s.GetSession(ctx, sess.ID)
}

func (s *Storage) ListSessions(ctx context.Context) ([]engine.Session, error) {
	ids, err := s.client.SMembers(ctx, sessionsIndexKey()).Result()
	if err != nil {
		return nil, err
	}
	out := make([]engine.Session, 0, len(ids))
	var expired []any
	for _, id := range ids {
		sess, err := s.GetSession(ctx, id)
		if errors.Is(err, engine.ErrSessionNotFound) {
			expired = append(expired, id)
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, sess)
	}
	if len(expired) > 0 {
		if err := s.client.SRem(ctx, sessionsIndexKey(), expired...).Err(); err != nil {
			return nil, err
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *Storage) DeleteSession(ctx context.Context, id string) error {
	pipe := s.client.TxPipeline()
	pipe.Del(ctx, sessionKey(id), usedKey(id, engine.SideBlue), usedKey(id, engine.SideRed))
	pipe.SRem(ctx, sessionsIndexKey(), id)
	_, err := pipe.Exec(ctx)
	return err
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
	exists, err := s.client.Exists(ctx, sessionKey(sessionID)).Result()
	if err != nil {
		return err
	}
	if exists == 0 {
		return engine.ErrSessionNotFound
	}
	raw, err := json.Marshal(champion)
	if err != nil {
		return err
	}
	return s.client.HSetNX(ctx, usedKey(sessionID, side), strconv.Itoa(champion.ID), raw).Err()
}

func (s *Storage) RecordGameResult(ctx context.Context, result engine.GameResult) error {
	data, err := json.Marshal(result)
	if err != nil {
		return err
	}
	key := resultsKey(result.SessionID)
	pipe := s.client.TxPipeline()
	pipe.HSet(ctx, key, result.ID, data)
	if s.cfg.ResultTTL > 0 {
		pipe.Expire(ctx, key, s.cfg.ResultTTL)
	}
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) ListGameResults(ctx context.Context, sessionID string) ([]engine.GameResult, error) {
	fields, err := s.client.HGetAll(ctx, resultsKey(sessionID)).Result()
	if err != nil {
		return nil, err
	}
	out := make([]engine.GameResult, 0, len(fields))
	for _, raw := range fields {
		var r engine.GameResult
		if err := json.Unmarshal([]byte(raw), &r); err != nil {
			return nil, fmt.Errorf("decode game result: %w", err)
		}
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].GameNumber < out[j].GameNumber })
	return out, nil
}
