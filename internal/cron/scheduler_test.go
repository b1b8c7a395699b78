package cron

import (
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"
)

func newTestScheduler(t *testing.T, now time.Time) *Scheduler {
	t.Helper()
	s := NewScheduler(time.UTC, zap.NewNop())
	s.now = func() time.Time { return now }
	return s
}

var testNow = time.Date(2024, time.July, 1, 4, 0, 0, 0, time.UTC) // Monday

func TestAddReplacesExistingID(t *testing.T) {
	s := newTestScheduler(t, testNow)

	s.Add("job", At(testNow.Add(1*time.Hour)), func() {})
	s.Add("job", At(testNow.Add(2*time.Hour)), func() {})

	ids := s.Jobs()
	if len(ids) != 1 || ids[0] != "job" {
		t.Fatalf("expected exactly one job, got %v", ids)
	}

	// NextFire must reflect the replacement binding, not the original.
	_, at, ok := s.NextFire()
	if !ok || !at.Equal(testNow.Add(2*time.Hour)) {
		t.Errorf("expected next fire at +2h, got %v (ok=%v)", at, ok)
	}
}

func TestRemoveAllWithExceptions(t *testing.T) {
	s := newTestScheduler(t, testNow)

	s.Add(JobDailyReload, Daily(4, 0), func() {})
	s.Add(JobHealthCheck, Every(5*time.Minute), func() {})
	s.Add("ipay9", At(testNow.Add(time.Hour)), func() {})
	s.Add("bybid9", At(testNow.Add(2*time.Hour)), func() {})

	s.RemoveAll(JobDailyReload, JobHealthCheck)

	ids := s.Jobs()
	want := []string{JobDailyReload, JobHealthCheck}
	if len(ids) != 2 || ids[0] != want[0] || ids[1] != want[1] {
		t.Errorf("expected %v, got %v", want, ids)
	}
}

func TestRemoveAllNoExceptionsClearsEverything(t *testing.T) {
	s := newTestScheduler(t, testNow)

	s.Add(JobDailyReload, Daily(4, 0), func() {})
	s.Add("x", At(testNow.Add(time.Hour)), func() {})

	s.RemoveAll()
	if ids := s.Jobs(); len(ids) != 0 {
		t.Errorf("expected empty job set, got %v", ids)
	}
}

func TestNextFire(t *testing.T) {
	t.Run("empty set returns none", func(t *testing.T) {
		s := newTestScheduler(t, testNow)
		if _, _, ok := s.NextFire(); ok {
			t.Error("expected no next fire on empty set")
		}
	})

	t.Run("picks the soonest future fire", func(t *testing.T) {
		s := newTestScheduler(t, testNow)
		s.Add("later", At(testNow.Add(3*time.Hour)), func() {})
		s.Add("sooner", At(testNow.Add(1*time.Hour)), func() {})

		id, at, ok := s.NextFire()
		if !ok || id != "sooner" || !at.Equal(testNow.Add(1*time.Hour)) {
			t.Errorf("expected sooner at +1h, got %s at %v (ok=%v)", id, at, ok)
		}
	})

	t.Run("skips exhausted one-shots", func(t *testing.T) {
		s := newTestScheduler(t, testNow)
		s.Add("past", At(testNow.Add(-time.Hour)), func() {})
		if _, _, ok := s.NextFire(); ok {
			t.Error("expected no next fire when the only one-shot is past")
		}
	})

	t.Run("recurring jobs always have a next fire", func(t *testing.T) {
		s := newTestScheduler(t, testNow)
		s.Add(JobDailyReload, Daily(4, 0), func() {})

		id, at, ok := s.NextFire()
		if !ok || id != JobDailyReload {
			t.Fatalf("expected daily_reload, got %s (ok=%v)", id, ok)
		}
		// now is exactly 04:00, so "strictly after now" means tomorrow.
		if !at.Equal(testNow.AddDate(0, 0, 1)) {
			t.Errorf("expected tomorrow 04:00, got %v", at)
		}
	})
}

func TestOneShotFiresOnce(t *testing.T) {
	s := NewScheduler(time.UTC, zap.NewNop())

	var mu sync.Mutex
	fired := 0
	s.Add("once", At(time.Now().Add(100*time.Millisecond)), func() {
		mu.Lock()
		fired++
		mu.Unlock()
	})

	s.Start()
	defer func() { <-s.Stop().Done() }()

	deadline := time.After(3 * time.Second)
	for {
		mu.Lock()
		n := fired
		mu.Unlock()
		if n > 0 {
			break
		}
		select {
		case <-deadline:
			t.Fatal("one-shot job never fired")
		case <-time.After(20 * time.Millisecond):
		}
	}

	// Give it room to mis-fire again.
	time.Sleep(300 * time.Millisecond)
	mu.Lock()
	defer mu.Unlock()
	if fired != 1 {
		t.Errorf("expected exactly one fire, got %d", fired)
	}
}

func TestPanickingJobDoesNotHaltScheduler(t *testing.T) {
	s := NewScheduler(time.UTC, zap.NewNop())

	ok := make(chan struct{}, 1)
	s.Add("bad", At(time.Now().Add(50*time.Millisecond)), func() {
		panic("boom")
	})
	s.Add("good", At(time.Now().Add(150*time.Millisecond)), func() {
		select {
		case ok <- struct{}{}:
		default:
		}
	})

	s.Start()
	defer func() { <-s.Stop().Done() }()

	select {
	case <-ok:
	case <-time.After(3 * time.Second):
		t.Fatal("job after panicking job never fired")
	}
}

func TestTriggers(t *testing.T) {
	t.Run("Daily rolls to tomorrow when past", func(t *testing.T) {
		now := time.Date(2024, time.July, 1, 10, 0, 0, 0, time.UTC)
		next := Daily(4, 0).Next(now)
		if next.Day() != 2 || next.Hour() != 4 {
			t.Errorf("expected tomorrow 04:00, got %v", next)
		}
	})

	t.Run("Daily fires later today when ahead", func(t *testing.T) {
		now := time.Date(2024, time.July, 1, 2, 0, 0, 0, time.UTC)
		next := Daily(4, 0).Next(now)
		if next.Day() != 1 || next.Hour() != 4 {
			t.Errorf("expected today 04:00, got %v", next)
		}
	})

	t.Run("At is exhausted after its moment", func(t *testing.T) {
		at := time.Date(2024, time.July, 1, 8, 0, 0, 0, time.UTC)
		trig := At(at)
		if got := trig.Next(at.Add(-time.Minute)); !got.Equal(at) {
			t.Errorf("expected %v, got %v", at, got)
		}
		if got := trig.Next(at); !got.IsZero() {
			t.Errorf("expected zero after fire time, got %v", got)
		}
	})
}
