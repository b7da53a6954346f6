package storage

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hammamikhairi/cookalong/internal/domain"
	"github.com/hammamikhairi/cookalong/internal/logger"
)

var epoch = time.Date(2026, 3, 14, 18, 0, 0, 0, time.UTC)

func testSession(t *testing.T, id string) *domain.Session {
	t.Helper()
	recipe := &domain.Recipe{
		ID:    "pancakes",
		Title: "Pancakes",
		Steps: []domain.Step{
			{Number: 1, Instruction: "Whisk the batter."},
			{Number: 2, Instruction: "Rest it for ten minutes."},
			{Number: 3, Instruction: "Fry."},
		},
	}
	s, err := domain.StartSession(id, recipe, epoch)
	require.NoError(t, err)
	return s
}

// storeFactories opens every store implementation against a fresh
// directory.
func storeFactories() map[string]func(t *testing.T) domain.SessionStore {
	log := logger.New(logger.LevelOff, nil)
	return map[string]func(t *testing.T) domain.SessionStore{
		"memory": func(t *testing.T) domain.SessionStore {
			return NewMemoryStore(log)
		},
		"badger": func(t *testing.T) domain.SessionStore {
			s, err := OpenBadger(t.TempDir(), log)
			require.NoError(t, err)
			t.Cleanup(func() { s.Close() })
			return s
		},
		"sqlite": func(t *testing.T) domain.SessionStore {
			s, err := OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "test.db"), log)
			require.NoError(t, err)
			t.Cleanup(func() { s.Close() })
			return s
		},
	}
}

func TestStoreCRUD(t *testing.T) {
	for name, open := range storeFactories() {
		t.Run(name, func(t *testing.T) {
			store := open(t)
			ctx := context.Background()

			sess := testSession(t, "sess-1")
			_, err := sess.AddTimer("rest", "10 minutes", epoch)
			require.NoError(t, err)
			_, err = sess.Navigate(domain.NavNext)
			require.NoError(t, err)
			sess.Pause()
			_, err = sess.AddNote("used oat milk", epoch)
			require.NoError(t, err)

			require.NoError(t, store.Save(ctx, sess))

			loaded, err := store.Load(ctx, "sess-1")
			require.NoError(t, err)
			assert.Equal(t, 2, loaded.CurrentStep)
			assert.True(t, loaded.Paused)
			require.Len(t, loaded.Timers, 1)
			tm := loaded.Timers["timer-1"]
			require.NotNil(t, tm)
			assert.True(t, tm.StartedAt.Equal(epoch))
			assert.Equal(t, 600, tm.SecondsRemaining(epoch))
			require.Len(t, loaded.Notes, 1)
			assert.Equal(t, "used oat milk", loaded.Notes[0].Text)

			_, err = store.Load(ctx, "nonexistent")
			assert.True(t, errors.Is(err, domain.ErrNotFound), "got %v", err)

			require.NoError(t, store.Delete(ctx, "sess-1"))
			_, err = store.Load(ctx, "sess-1")
			assert.True(t, errors.Is(err, domain.ErrNotFound))
			assert.True(t, errors.Is(store.Delete(ctx, "sess-1"), domain.ErrNotFound))
		})
	}
}

func TestStoreOverwriteAndList(t *testing.T) {
	for name, open := range storeFactories() {
		t.Run(name, func(t *testing.T) {
			store := open(t)
			ctx := context.Background()

			for i := 1; i <= 3; i++ {
				require.NoError(t, store.Save(ctx, testSession(t, fmt.Sprintf("sess-%d", i))))
			}

			sess := testSession(t, "sess-2")
			_, err := sess.JumpTo(3)
			require.NoError(t, err)
			require.NoError(t, store.Save(ctx, sess))

			all, err := store.List(ctx)
			require.NoError(t, err)
			require.Len(t, all, 3)

			steps := map[string]int{}
			for _, s := range all {
				steps[s.ID] = s.CurrentStep
			}
			assert.Equal(t, map[string]int{"sess-1": 1, "sess-2": 3, "sess-3": 1}, steps)
		})
	}
}

func TestStoreSnapshotIsolation(t *testing.T) {
	for name, open := range storeFactories() {
		t.Run(name, func(t *testing.T) {
			store := open(t)
			ctx := context.Background()

			sess := testSession(t, "sess-1")
			require.NoError(t, store.Save(ctx, sess))

			// Mutating the caller's copy must not leak into the store.
			sess.CurrentStep = 3
			sess.Recipe.Steps[0].Instruction = "changed"

			loaded, err := store.Load(ctx, "sess-1")
			require.NoError(t, err)
			assert.Equal(t, 1, loaded.CurrentStep)
			assert.Equal(t, "Whisk the batter.", loaded.Recipe.Steps[0].Instruction)
		})
	}
}

func TestBadgerReopen(t *testing.T) {
	log := logger.New(logger.LevelOff, nil)
	dir := t.TempDir()
	ctx := context.Background()

	store, err := OpenBadger(dir, log)
	require.NoError(t, err)
	sess := testSession(t, "sess-1")
	_, err = sess.AddTimer("eggs", "7 minutes", epoch)
	require.NoError(t, err)
	require.NoError(t, store.Save(ctx, sess))
	require.NoError(t, store.Close())

	store, err = OpenBadger(dir, log)
	require.NoError(t, err)
	defer store.Close()

	loaded, err := store.Load(ctx, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, 420, loaded.Timers["timer-1"].DurationSeconds)
	assert.NoError(t, store.RunGC())
}

func TestSQLiteReopen(t *testing.T) {
	log := logger.New(logger.LevelOff, nil)
	path := filepath.Join(t.TempDir(), "cookalong.db")
	ctx := context.Background()

	store, err := OpenSQLite(ctx, path, log)
	require.NoError(t, err)
	require.NoError(t, store.Save(ctx, testSession(t, "sess-1")))
	require.NoError(t, store.Close())

	store, err = OpenSQLite(ctx, path, log)
	require.NoError(t, err)
	defer store.Close()

	all, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "Pancakes", all[0].Recipe.Title)
}

func TestDecodeRejectsCorruptSnapshots(t *testing.T) {
	inputs := map[string]string{
		"not json":      `{`,
		"wrong version": `{"version":99,"session":{"id":"x"}}`,
		"no session":    `{"version":1}`,
		"bad cursor":    `{"version":1,"session":{"id":"x","current_step":5,"recipe":{"title":"t","steps":[{"instruction":"a"}]}}}`,
	}
	for name, in := range inputs {
		t.Run(name, func(t *testing.T) {
			_, err := Decode([]byte(in))
			assert.Error(t, err)
		})
	}
}

func TestOpenUnknownKind(t *testing.T) {
	_, err := Open(context.Background(), "postgres", t.TempDir(), logger.New(logger.LevelOff, nil))
	assert.Error(t, err)
}
