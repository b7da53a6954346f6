package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/hammamikhairi/cookalong/internal/domain"
	"github.com/hammamikhairi/cookalong/internal/logger"
	"github.com/hammamikhairi/cookalong/internal/storage"
)

var epoch = time.Date(2026, 3, 14, 18, 0, 0, 0, time.UTC)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock { return &fakeClock{t: epoch} }

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

// flakyStore fails every Save while broken is set.
type flakyStore struct {
	domain.SessionStore
	broken atomic.Bool
	saves  atomic.Int32
}

var errDiskFull = errors.New("disk full")

func (f *flakyStore) Save(ctx context.Context, s *domain.Session) error {
	f.saves.Add(1)
	if f.broken.Load() {
		return errDiskFull
	}
	return f.SessionStore.Save(ctx, s)
}

type fakeResponder struct {
	mu        sync.Mutex
	questions []string
	steps     []int
}

func (r *fakeResponder) Answer(_ context.Context, q string, state domain.SessionView) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.questions = append(r.questions, q)
	r.steps = append(r.steps, state.CurrentStep)
	return "  Roll it until you can see your hand through it.  ", nil
}

func pastaRecipe() *domain.Recipe {
	return &domain.Recipe{
		ID:    "pasta",
		Title: "Fresh Pasta",
		Ingredients: map[string][]string{
			"dough": {"300g flour", "3 eggs"},
		},
		Tools: []string{"rolling pin"},
		Steps: []domain.Step{
			{Number: 1, Instruction: "Make a well with the flour."},
			{Number: 2, Instruction: "Crack the eggs into the well and mix."},
			{Number: 3, Instruction: "Knead for ten minutes."},
			{Number: 4, Instruction: "Roll out thinly."},
		},
	}
}

type harness struct {
	m     *Manager
	store *flakyStore
	clock *fakeClock
	resp  *fakeResponder
}

func setupManager(t *testing.T) (*harness, context.Context) {
	t.Helper()
	log := logger.New(logger.LevelOff, nil)
	h := &harness{
		store: &flakyStore{SessionStore: storage.NewMemoryStore(log)},
		clock: newFakeClock(),
		resp:  &fakeResponder{},
	}
	m, err := Open(context.Background(), h.store, log,
		WithClock(h.clock.Now),
		WithResponder(h.resp),
	)
	require.NoError(t, err)
	h.m = m
	return h, context.Background()
}

func sequentialIDs() func() string {
	var n atomic.Int32
	return func() string { return fmt.Sprintf("sess-%d", n.Add(1)) }
}
