package janitor

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DoyleJ11/lol-draft-series/internal/engine"
	"github.com/DoyleJ11/lol-draft-series/internal/store/memory"
)

type fakeEvictor struct {
	removed []string
	// onRemove runs before Remove returns, standing in for a lobby that
	// persisted one last command while it was stopping.
	onRemove func(id string)
}

func (f *fakeEvictor) Remove(_ context.Context, id string) (bool, error) {
	f.removed = append(f.removed, id)
	if f.onRemove != nil {
		f.onRemove(id)
	}
	return true, nil
}

func seed(t *testing.T, st *memory.Storage, id string, status engine.Status, last time.Time) {
	t.Helper()
	_, err := st.SaveSession(context.Background(), engine.Session{
		ID:           id,
		Status:       status,
		CreatedAt:    last,
		LastActivity: last,
	})
	require.NoError(t, err)
}

func TestSweep_RemovesOnlyIdleUnstartedSessions(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	old := now.Add(-25 * time.Hour)
	fresh := now.Add(-time.Hour)

	st := memory.New()
	seed(t, st, "old-config", engine.StatusConfig, old)
	seed(t, st, "old-lobby", engine.StatusLobby, old)
	seed(t, st, "old-drafting", engine.StatusDrafting, old)
	seed(t, st, "old-completed", engine.StatusCompleted, old)
	seed(t, st, "fresh-config", engine.StatusConfig, fresh)

	ev := &fakeEvictor{}
	j := New(st, ev, 24*time.Hour, nil, WithClock(func() time.Time { return now }))

	n, err := j.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.ElementsMatch(t, []string{"old-config", "old-lobby"}, ev.removed)

	left, err := st.ListSessions(ctx)
	require.NoError(t, err)
	var ids []string
	for _, s := range left {
		ids = append(ids, s.ID)
	}
	assert.ElementsMatch(t, []string{"old-drafting", "old-completed", "fresh-config"}, ids)

	n, err = j.Sweep(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestSweep_KeepsSessionThatStartedDraftingMeanwhile(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	old := now.Add(-25 * time.Hour)

	st := memory.New()
	seed(t, st, "racing", engine.StatusLobby, old)
	seed(t, st, "idle", engine.StatusConfig, old)

	ev := &fakeEvictor{onRemove: func(id string) {
		if id == "racing" {
			seed(t, st, id, engine.StatusDrafting, now)
		}
	}}
	j := New(st, ev, 24*time.Hour, nil, WithClock(func() time.Time { return now }))

	n, err := j.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	racing, err := st.GetSession(ctx, "racing")
	require.NoError(t, err)
	assert.Equal(t, engine.StatusDrafting, racing.Status)

	_, err = st.GetSession(ctx, "idle")
	assert.ErrorIs(t, err, engine.ErrSessionNotFound)
}

func TestRun_StopsWithContext(t *testing.T) {
	j := New(memory.New(), nil, time.Hour, nil)
	ctx, cancel := context.WithCancel(context.Background())

	errc := make(chan error, 1)
	go func() { errc <- j.Run(ctx, time.Hour) }()
	cancel()

	select {
	case err := <-errc:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return")
	}
}
