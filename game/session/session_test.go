package session

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/wricardo/memory-match-game/game/engine"
	"github.com/wricardo/memory-match-game/game/leaderboard"
)

// fakeTimer fires only when the test says so.
type fakeTimer struct {
	d      time.Duration
	f      func()
	repeat bool

	mu      sync.Mutex
	stopped bool
}

func (t *fakeTimer) Stop() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	was := !t.stopped
	t.stopped = true
	return was
}

func (t *fakeTimer) active() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return !t.stopped
}

// fire runs the callback unless the timer was stopped.
func (t *fakeTimer) fire() bool {
	t.mu.Lock()
	if t.stopped {
		t.mu.Unlock()
		return false
	}
	if !t.repeat {
		t.stopped = true
	}
	t.mu.Unlock()
	t.f()
	return true
}

type fakeScheduler struct {
	mu     sync.Mutex
	timers []*fakeTimer
}

func newFakeScheduler() *fakeScheduler {
	return &fakeScheduler{}
}

func (s *fakeScheduler) AfterFunc(d time.Duration, f func()) Timer {
	return s.add(&fakeTimer{d: d, f: f})
}

func (s *fakeScheduler) Every(d time.Duration, f func()) Timer {
	return s.add(&fakeTimer{d: d, f: f, repeat: true})
}

func (s *fakeScheduler) add(t *fakeTimer) *fakeTimer {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.timers = append(s.timers, t)
	return t
}

// last returns the most recently scheduled ticker (repeat) or one-shot timer.
func (s *fakeScheduler) last(repeat bool) *fakeTimer {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := len(s.timers) - 1; i >= 0; i-- {
		if s.timers[i].repeat == repeat {
			return s.timers[i]
		}
	}
	return nil
}

type publishCall struct {
	sessionID string
	state     *engine.GameState
	signals   []engine.Signal
}

type mockNotifier struct {
	mu    sync.Mutex
	calls []publishCall
}

func (n *mockNotifier) Publish(sessionID string, state *engine.GameState, signals []engine.Signal) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls = append(n.calls, publishCall{sessionID, state, signals})
}

func (n *mockNotifier) last() publishCall {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.calls) == 0 {
		return publishCall{}
	}
	return n.calls[len(n.calls)-1]
}

func (n *mockNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.calls)
}

type mockRecorder struct {
	RecordFunc func(ctx context.Context, entry leaderboard.Entry) leaderboard.Ledger
}

func (m *mockRecorder) Record(ctx context.Context, entry leaderboard.Entry) leaderboard.Ledger {
	if m.RecordFunc != nil {
		return m.RecordFunc(ctx, entry)
	}
	return leaderboard.Ledger{entry}
}

type sessionFixture struct {
	session   *Session
	scheduler *fakeScheduler
	notifier  *mockNotifier
	recorded  chan leaderboard.Entry
}

func newFixture(t *testing.T) *sessionFixture {
	t.Helper()
	f := &sessionFixture{
		scheduler: newFakeScheduler(),
		notifier:  &mockNotifier{},
		recorded:  make(chan leaderboard.Entry, 4),
	}
	recorder := &mockRecorder{
		RecordFunc: func(ctx context.Context, e leaderboard.Entry) leaderboard.Ledger {
			f.recorded <- e
			return leaderboard.Ledger{e}
		},
	}
	manager := NewManager(Options{
		Scheduler: f.scheduler,
		Notifier:  f.notifier,
		Recorder:  recorder,
	})
	t.Cleanup(manager.Close)

	sess, err := manager.Create("fixture", createTestConfig())
	if err != nil {
		t.Fatalf("Failed to create session: %v", err)
	}
	f.session = sess
	return f
}

func (f *sessionFixture) state(t *testing.T) *engine.GameState {
	t.Helper()
	state, err := f.session.State(context.Background())
	if err != nil {
		t.Fatalf("State failed: %v", err)
	}
	return state
}

func (f *sessionFixture) start(t *testing.T) *engine.GameState {
	t.Helper()
	tr, err := f.session.Start(context.Background())
	if err != nil || !tr.Applied {
		t.Fatalf("Start failed: applied=%v err=%v", tr.Applied, err)
	}
	return f.state(t)
}

// mismatchedPair returns two cards with different images and one card
// that belongs to neither.
func mismatchedPair(state *engine.GameState) (a, b, other int) {
	a = 0
	for i, c := range state.Cards {
		if c.ImageID != state.Cards[a].ImageID {
			b = i
			break
		}
	}
	for i := range state.Cards {
		if i != a && i != b {
			return a, b, i
		}
	}
	return a, b, -1
}

func TestSession_Countdown(t *testing.T) {
	f := newFixture(t)
	f.start(t)

	ticker := f.scheduler.last(true)
	if ticker == nil || !ticker.active() {
		t.Fatal("Expected an active ticker after start")
	}
	if ticker.d != time.Second {
		t.Errorf("Expected one second ticks, got %v", ticker.d)
	}

	ticker.fire()
	ticker.fire()

	if got := f.state(t).TimeRemaining; got != 3 {
		t.Errorf("Expected 3 seconds left, got %d", got)
	}
}

func TestSession_LossStopsTimer(t *testing.T) {
	f := newFixture(t)
	f.start(t)
	ticker := f.scheduler.last(true)

	for i := 0; i < 5; i++ {
		ticker.fire()
	}

	state := f.state(t)
	if state.Phase != engine.PhaseLost || state.TimeRemaining != 0 {
		t.Fatalf("Expected lost at zero, got %s at %d", state.Phase, state.TimeRemaining)
	}
	if ticker.active() {
		t.Error("Expected ticker to stop on loss")
	}

	found := false
	for _, sig := range f.notifier.last().signals {
		if sig == engine.SignalLoss {
			found = true
		}
	}
	if !found {
		t.Errorf("Expected loss signal, got %v", f.notifier.last().signals)
	}

	// A tick already in flight when the timer stopped changes nothing
	published := f.notifier.count()
	ticker.f()
	after := f.state(t)
	if after.TimeRemaining != 0 || after.Phase != engine.PhaseLost {
		t.Errorf("Late tick changed the session: %+v", after)
	}
	if f.notifier.count() != published {
		t.Error("Late tick should not be published")
	}
}

func TestSession_MismatchResolution(t *testing.T) {
	f := newFixture(t)
	state := f.start(t)
	ctx := context.Background()
	a, b, other := mismatchedPair(state)

	f.session.Flip(ctx, a)
	tr, err := f.session.Flip(ctx, b)
	if err != nil {
		t.Fatal(err)
	}
	if !tr.HasSignal(engine.SignalWrongPair) {
		t.Fatalf("Expected wrong_pair, got %v", tr.Signals)
	}

	state = f.state(t)
	if !state.Cards[a].IsFlipped || !state.Cards[b].IsFlipped || len(state.Flipped) != 2 {
		t.Fatalf("Expected both cards face up: %+v", state)
	}
	if state.Phase != engine.PhasePlaying {
		t.Errorf("Expected playing, got %s", state.Phase)
	}

	if tr, _ := f.session.Flip(ctx, other); tr.Applied {
		t.Error("Flip during resolution should be ignored")
	}

	resolver := f.scheduler.last(false)
	if resolver == nil || resolver.d != time.Second {
		t.Fatalf("Expected a one second resolution timer, got %+v", resolver)
	}
	resolver.fire()

	state = f.state(t)
	if state.Cards[a].IsFlipped || state.Cards[b].IsFlipped || len(state.Flipped) != 0 || state.Resolving {
		t.Errorf("Expected both cards face down again: %+v", state)
	}
}

func TestSession_ResetCancelsTimers(t *testing.T) {
	f := newFixture(t)
	state := f.start(t)
	ctx := context.Background()
	a, b, _ := mismatchedPair(state)

	f.session.Flip(ctx, a)
	f.session.Flip(ctx, b)
	ticker := f.scheduler.last(true)
	resolver := f.scheduler.last(false)

	tr, err := f.session.Reset(ctx)
	if err != nil || !tr.Applied {
		t.Fatalf("Reset failed: %v", err)
	}
	if ticker.active() || resolver.active() {
		t.Error("Expected reset to stop both timers")
	}

	before := f.state(t)
	ticker.f()
	resolver.f()
	after := f.state(t)

	if after.Phase != engine.PhaseStart || after.Generation != before.Generation || len(after.Cards) != 0 {
		t.Errorf("Stale events changed the session: %+v", after)
	}
}

func TestSession_WinRecordsResult(t *testing.T) {
	f := newFixture(t)
	state := f.start(t)
	ctx := context.Background()
	ticker := f.scheduler.last(true)

	ticker.fire()
	ticker.fire()

	byImage := map[int][]int{}
	for i, c := range state.Cards {
		byImage[c.ImageID] = append(byImage[c.ImageID], i)
	}
	var last engine.Transition
	for _, ids := range byImage {
		f.session.Flip(ctx, ids[0])
		last, _ = f.session.Flip(ctx, ids[1])
	}

	if !last.HasSignal(engine.SignalWin) || !last.HasSignal(engine.SignalCelebrate) {
		t.Fatalf("Expected win and celebrate, got %v", last.Signals)
	}
	if f.state(t).Phase != engine.PhaseAwaitingName {
		t.Fatalf("Expected awaiting_name")
	}
	if ticker.active() {
		t.Error("Expected ticker to stop on win")
	}

	if tr, _ := f.session.SubmitName(ctx, "  "); tr.Applied {
		t.Error("Blank name should be ignored")
	}
	tr, err := f.session.SubmitName(ctx, "Ana")
	if err != nil || !tr.Applied {
		t.Fatalf("SubmitName failed: %v", err)
	}

	select {
	case e := <-f.recorded:
		want := leaderboard.Entry{Name: "Ana", ElapsedSeconds: 2, Moves: 2}
		if e != want {
			t.Errorf("Expected %+v, got %+v", want, e)
		}
	default:
		t.Fatal("Expected a recorded result")
	}
	if f.state(t).Phase != engine.PhaseWon {
		t.Error("Expected won phase")
	}
}

func TestSession_PublishesMaskedSnapshots(t *testing.T) {
	f := newFixture(t)
	f.start(t)

	call := f.notifier.last()
	if call.sessionID != "fixture" {
		t.Errorf("Expected session id fixture, got %q", call.sessionID)
	}
	if call.state == nil || len(call.state.Cards) != 4 {
		t.Fatalf("Expected a snapshot with 4 cards, got %+v", call.state)
	}
	for _, c := range call.state.Cards {
		if c.ImageID != -1 || c.Image != "" {
			t.Errorf("Face-down card leaked its image: %+v", c)
		}
	}

	// Ignored commands are not published
	n := f.notifier.count()
	f.session.Flip(context.Background(), 99)
	if f.notifier.count() != n {
		t.Error("Ignored flip should not be published")
	}
}

func TestSession_CommandContext(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := f.session.Start(ctx); err == nil {
		// The loop may win the race with the cancelled context; the result
		// must then be a normal start.
		if f.state(t).Phase != engine.PhasePlaying {
			t.Error("Expected either an error or a started game")
		}
	}

	f.session.Close()
	f.session.Close()
	if _, err := f.session.Flip(context.Background(), 0); err != ErrSessionClosed {
		t.Errorf("Expected ErrSessionClosed, got %v", err)
	}
	if _, err := f.session.State(context.Background()); err != ErrSessionClosed {
		t.Errorf("Expected ErrSessionClosed, got %v", err)
	}
}

func TestClockScheduler(t *testing.T) {
	var sched Scheduler = ClockScheduler{}

	t.Run("every", func(t *testing.T) {
		var n atomic.Int32
		timer := sched.Every(5*time.Millisecond, func() { n.Add(1) })
		deadline := time.Now().Add(2 * time.Second)
		for n.Load() < 2 && time.Now().Before(deadline) {
			time.Sleep(time.Millisecond)
		}
		if !timer.Stop() {
			t.Error("Expected first Stop to report an active timer")
		}
		if timer.Stop() {
			t.Error("Expected second Stop to report a stopped timer")
		}
		if n.Load() < 2 {
			t.Errorf("Expected at least 2 runs, got %d", n.Load())
		}
	})

	t.Run("after func", func(t *testing.T) {
		fired := make(chan struct{})
		sched.AfterFunc(time.Millisecond, func() { close(fired) })
		select {
		case <-fired:
		case <-time.After(2 * time.Second):
			t.Fatal("AfterFunc did not fire")
		}

		var ran atomic.Bool
		timer := sched.AfterFunc(time.Hour, func() { ran.Store(true) })
		if !timer.Stop() || ran.Load() {
			t.Error("Expected a pending timer to stop without running")
		}
	})
}
