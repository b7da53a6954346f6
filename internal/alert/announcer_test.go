package alert

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hammamikhairi/cookalong/internal/domain"
	"github.com/hammamikhairi/cookalong/internal/engine"
	"github.com/hammamikhairi/cookalong/internal/logger"
	"github.com/hammamikhairi/cookalong/internal/storage"
)

// mockNotifier collects notifications for testing.
type mockNotifier struct {
	mu       sync.Mutex
	messages []string
	urgent   []string
}

func (m *mockNotifier) Notify(_ context.Context, msg string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = append(m.messages, msg)
	return nil
}

func (m *mockNotifier) NotifyUrgent(_ context.Context, msg string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.urgent = append(m.urgent, msg)
	return nil
}

func (m *mockNotifier) urgentMessages() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.urgent...)
}

func (m *mockNotifier) normalMessages() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.messages...)
}

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

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

func soupRecipe() *domain.Recipe {
	return &domain.Recipe{
		Title: "Tomato Soup",
		Steps: []domain.Step{
			{Number: 1, Instruction: "Sweat the onions."},
			{Number: 2, Instruction: "Simmer the tomatoes."},
		},
	}
}

type fixture struct {
	store    domain.SessionStore
	clock    *fakeClock
	manager  *engine.Manager
	notifier *mockNotifier
	log      *logger.Logger
}

func setup(t *testing.T, store domain.SessionStore, clock *fakeClock) *fixture {
	t.Helper()
	log := logger.New(logger.LevelOff, nil)
	if store == nil {
		store = storage.NewMemoryStore(log)
	}
	if clock == nil {
		clock = &fakeClock{t: time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)}
	}
	m, err := engine.Open(context.Background(), store, log, engine.WithClock(clock.Now))
	require.NoError(t, err)
	return &fixture{store: store, clock: clock, manager: m, notifier: &mockNotifier{}, log: log}
}

func TestAnnouncerNotifiesOncePerCompletedTimer(t *testing.T) {
	ctx := context.Background()
	f := setup(t, nil, nil)

	s, err := f.manager.Create(ctx, soupRecipe())
	require.NoError(t, err)
	_, err = f.manager.AddTimer(ctx, s.ID, "onions", "2 minutes")
	require.NoError(t, err)
	_, err = f.manager.AddTimer(ctx, s.ID, "tomatoes", "10 minutes")
	require.NoError(t, err)

	a := New(f.manager, f.notifier, f.log)
	a.Prime(ctx)

	assert.Equal(t, 0, a.Check(ctx))

	f.clock.Advance(2 * time.Minute)
	assert.Equal(t, 1, a.Check(ctx))
	assert.Equal(t, 0, a.Check(ctx), "completed timers are announced once")
	assert.Equal(t, []string{"onions is done! (Tomato Soup)"}, f.notifier.urgentMessages())

	// The completion was written down through the manager.
	stored, err := f.store.Load(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TimerCompleted, stored.Timers["timer-1"].Status)
	assert.Equal(t, domain.TimerRunning, stored.Timers["timer-2"].Status)
}

func TestAnnouncerSkipsPausedAndCancelledTimers(t *testing.T) {
	ctx := context.Background()
	f := setup(t, nil, nil)

	s, err := f.manager.Create(ctx, soupRecipe())
	require.NoError(t, err)
	paused, err := f.manager.AddTimer(ctx, s.ID, "stock", "1 minute")
	require.NoError(t, err)
	cancelled, err := f.manager.AddTimer(ctx, s.ID, "croutons", "1 minute")
	require.NoError(t, err)

	_, err = f.manager.PauseTimer(ctx, s.ID, paused.ID)
	require.NoError(t, err)
	_, err = f.manager.CancelTimer(ctx, s.ID, cancelled.ID)
	require.NoError(t, err)

	a := New(f.manager, f.notifier, f.log)
	a.Prime(ctx)

	f.clock.Advance(10 * time.Minute)
	assert.Equal(t, 0, a.Check(ctx))
	assert.Empty(t, f.notifier.urgentMessages())
}

func TestAnnouncerAnnouncesTimersSettledElsewhere(t *testing.T) {
	ctx := context.Background()
	f := setup(t, nil, nil)

	s, err := f.manager.Create(ctx, soupRecipe())
	require.NoError(t, err)
	_, err = f.manager.AddTimer(ctx, s.ID, "onions", "30 seconds")
	require.NoError(t, err)

	a := New(f.manager, f.notifier, f.log)
	a.Prime(ctx)

	// Another mutation records the completion before the announcer looks.
	f.clock.Advance(time.Minute)
	_, err = f.manager.Step(ctx, s.ID, domain.NavNext)
	require.NoError(t, err)

	assert.Equal(t, 1, a.Check(ctx))
	assert.Equal(t, []string{"onions is done! (Tomato Soup)"}, f.notifier.urgentMessages())
}

func TestAnnouncerPrimeSkipsCompletionsFromBeforeRestart(t *testing.T) {
	ctx := context.Background()
	log := logger.New(logger.LevelOff, nil)
	store := storage.NewMemoryStore(log)
	clock := &fakeClock{t: time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)}

	f := setup(t, store, clock)
	s, err := f.manager.Create(ctx, soupRecipe())
	require.NoError(t, err)
	_, err = f.manager.AddTimer(ctx, s.ID, "onions", "1 minute")
	require.NoError(t, err)

	first := New(f.manager, f.notifier, log)
	first.Prime(ctx)
	clock.Advance(2 * time.Minute)
	require.Equal(t, 1, first.Check(ctx))

	// Same store, new process.
	restarted := setup(t, store, clock)
	second := New(restarted.manager, restarted.notifier, log)
	second.Prime(ctx)
	assert.Equal(t, 0, second.Check(ctx))
	assert.Empty(t, restarted.notifier.urgentMessages())
}

func TestAnnouncerAlmostDoneWarning(t *testing.T) {
	ctx := context.Background()
	f := setup(t, nil, nil)

	s, err := f.manager.Create(ctx, soupRecipe())
	require.NoError(t, err)
	_, err = f.manager.AddTimer(ctx, s.ID, "tomatoes", "5 minutes")
	require.NoError(t, err)
	_, err = f.manager.AddTimer(ctx, s.ID, "garlic", "20 seconds")
	require.NoError(t, err)

	a := New(f.manager, f.notifier, f.log, WithAlmostDone(30*time.Second))
	a.Prime(ctx)

	a.Check(ctx)
	assert.Empty(t, f.notifier.normalMessages(), "timers shorter than the threshold never warn")

	f.clock.Advance(4*time.Minute + 40*time.Second)
	a.Check(ctx)
	a.Check(ctx)
	assert.Equal(t, []string{"tomatoes is almost done: 20 seconds left."}, f.notifier.normalMessages())
}

func TestAnnouncerForgetsDeletedSessions(t *testing.T) {
	ctx := context.Background()
	f := setup(t, nil, nil)

	s, err := f.manager.Create(ctx, soupRecipe())
	require.NoError(t, err)
	_, err = f.manager.AddTimer(ctx, s.ID, "onions", "1 minute")
	require.NoError(t, err)

	a := New(f.manager, f.notifier, f.log)
	a.Prime(ctx)
	f.clock.Advance(time.Minute)
	require.Equal(t, 1, a.Check(ctx))
	require.Len(t, a.done, 1)

	require.NoError(t, f.manager.Delete(ctx, s.ID))
	a.Check(ctx)
	assert.Empty(t, a.done)
}

func TestAnnouncerRunStopsOnCancel(t *testing.T) {
	f := setup(t, nil, nil)
	a := New(f.manager, f.notifier, f.log, WithInterval(10*time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- a.Run(ctx) }()

	time.Sleep(30 * time.Millisecond)
	cancel()

	select {
	case err := <-errc:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("announcer did not stop")
	}
}

func TestConsoleNotifierWritesLines(t *testing.T) {
	var buf bytes.Buffer
	n := NewConsoleNotifier(&buf, logger.New(logger.LevelOff, nil))

	require.NoError(t, n.Notify(context.Background(), "almost there"))
	require.NoError(t, n.NotifyUrgent(context.Background(), "pasta is done!"))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "almost there")
	assert.Contains(t, lines[1], "pasta is done!")
}
