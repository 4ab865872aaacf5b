package engine

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DoyleJ11/lol-draft-series/internal/timer"
)

type stubHistory struct {
	used []Champion
	err  error
}

func (h stubHistory) GetUsedChampionsInSeries(context.Context, string) ([]Champion, error) {
	return h.used, h.err
}

func TestIsChampionAvailable(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine()
	s := startedSession(t, e, Config{IsFearlessDraft: true})
	s, _, err := e.BanChampion(ctx, s, 10, SideBlue)
	require.NoError(t, err)

	history := stubHistory{used: []Champion{{ID: 20}}}

	cases := []struct {
		name     string
		id       int
		fearless bool
		want     bool
	}{
		{name: "free", id: 30, fearless: true, want: true},
		{name: "banned this game", id: 10, fearless: true, want: false},
		{name: "picked earlier in series", id: 20, fearless: true, want: false},
		{name: "earlier pick without fearless", id: 20, fearless: false, want: true},
		{name: "banned this game without fearless", id: 10, fearless: false, want: false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := s.Clone()
			s.Config.IsFearlessDraft = tc.fearless
			got, err := IsChampionAvailable(ctx, s, tc.id, history)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestIsChampionAvailable_HistoryErrorPropagates(t *testing.T) {
	boom := errors.New("redis down")
	e := New(testCatalog{}, stubHistory{err: boom}, timer.Default())
	s := startedSession(t, e, Config{IsFearlessDraft: true})

	next, events, err := e.BanChampion(context.Background(), s, 5, SideBlue)
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.False(t, IsRejection(err))
	assert.Nil(t, events)
	assert.Equal(t, 0, next.TurnNumber)
}

func TestIsChampionAvailable_NilHistoryUsesSession(t *testing.T) {
	s := Session{Config: Config{IsFearlessDraft: true}}
	s.Teams.Red.UsedChampions = []Champion{{ID: 7}}

	ok, err := IsChampionAvailable(context.Background(), s, 7, nil)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestAvailableChampions(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine()
	s := startedSession(t, e, Config{IsFearlessDraft: true})
	s, _, err := e.BanChampion(ctx, s, 1, SideBlue)
	require.NoError(t, err)

	got, err := AvailableChampions(ctx, s, testCatalog{}, stubHistory{used: []Champion{{ID: 2}, {ID: 3}}})
	require.NoError(t, err)
	assert.Len(t, got, 27)
	for _, c := range got {
		assert.NotContains(t, []int{1, 2, 3}, c.ID)
	}

	_, err = AvailableChampions(ctx, s, testCatalog{}, stubHistory{err: errors.New("nope")})
	assert.Error(t, err)
}
