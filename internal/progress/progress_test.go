package progress

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/exploremaroc/companion/internal/keyval"
)

const user = "u1"

func TestIncrementScans(t *testing.T) {
	ctx := context.Background()
	s := NewService(keyval.NewMemStore(), nil)

	for want := 1; want <= 3; want++ {
		got, err := s.IncrementScans(ctx, user)
		if err != nil {
			t.Fatalf("increment: %v", err)
		}
		if got != want {
			t.Fatalf("count = %d, want %d", got, want)
		}
	}

	c, err := s.Counters(ctx, user)
	if err != nil {
		t.Fatalf("counters: %v", err)
	}
	if c.RecognitionCount != 3 {
		t.Errorf("persisted count = %d, want 3", c.RecognitionCount)
	}
}

func TestCountersAreScopedPerUser(t *testing.T) {
	ctx := context.Background()
	s := NewService(keyval.NewMemStore(), nil)

	if _, err := s.IncrementScans(ctx, "alice"); err != nil {
		t.Fatalf("increment: %v", err)
	}
	c, err := s.Counters(ctx, "bob")
	if err != nil {
		t.Fatalf("counters: %v", err)
	}
	if c.RecognitionCount != 0 {
		t.Errorf("bob's count = %d, want 0", c.RecognitionCount)
	}
}

func TestCheckUnlocksFirstScan(t *testing.T) {
	ctx := context.Background()

	var notified []Achievement
	s := NewService(keyval.NewMemStore(), func(_ string, a Achievement) {
		notified = append(notified, a)
	})

	if _, err := s.IncrementScans(ctx, user); err != nil {
		t.Fatalf("increment: %v", err)
	}

	newly, err := s.Check(ctx, user)
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if len(newly) != 1 || newly[0].ID != "first_scan" {
		t.Fatalf("newly = %v, want [first_scan]", newly)
	}
	if len(notified) != 1 || notified[0].ID != "first_scan" {
		t.Fatalf("notified = %v, want one first_scan event", notified)
	}

	_, total, err := s.Evaluate(ctx, user)
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if total != 10 {
		t.Errorf("total points = %d, want 10", total)
	}

	// A second check must not re-fire the same achievement.
	newly, err = s.Check(ctx, user)
	if err != nil {
		t.Fatalf("second check: %v", err)
	}
	if len(newly) != 0 {
		t.Errorf("second check unlocked %v, want none", newly)
	}
	if len(notified) != 1 {
		t.Errorf("notified %d times, want exactly once", len(notified))
	}
}

func TestUnlockIsMonotonic(t *testing.T) {
	ctx := context.Background()
	s := NewService(keyval.NewMemStore(), nil)

	// Unlock night_mode, then switch the theme back.
	if err := s.SetTheme(ctx, user, "dark"); err != nil {
		t.Fatalf("set theme: %v", err)
	}
	if _, err := s.Check(ctx, user); err != nil {
		t.Fatalf("check: %v", err)
	}
	if err := s.SetTheme(ctx, user, "light"); err != nil {
		t.Fatalf("set theme back: %v", err)
	}

	achievements, total, err := s.Evaluate(ctx, user)
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	for _, a := range achievements {
		if a.ID == "night_mode" && !a.Unlocked {
			t.Error("night_mode lost its unlocked state")
		}
	}
	if total != 5 {
		t.Errorf("total points = %d, want 5", total)
	}
}

func TestVisitAchievements(t *testing.T) {
	ctx := context.Background()
	s := NewService(keyval.NewMemStore(), nil)

	if err := s.MarkVisited(ctx, user, "bahia-palace"); err != nil {
		t.Fatalf("mark visited: %v", err)
	}
	// Idempotent re-visit.
	if err := s.MarkVisited(ctx, user, "bahia-palace"); err != nil {
		t.Fatalf("re-visit: %v", err)
	}

	newly, err := s.Check(ctx, user)
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if len(newly) != 1 || newly[0].ID != "visit_marrakech" {
		t.Fatalf("newly = %v, want [visit_marrakech]", newly)
	}

	if err := s.MarkVisited(ctx, user, "hassan-tower"); err != nil {
		t.Fatalf("mark visited: %v", err)
	}
	newly, err = s.Check(ctx, user)
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if len(newly) != 1 || newly[0].ID != "visit_rabat" {
		t.Fatalf("newly = %v, want [visit_rabat]", newly)
	}
}

func TestPointsMatchPersistedSet(t *testing.T) {
	ctx := context.Background()
	s := NewService(keyval.NewMemStore(), nil)

	for i := 0; i < 5; i++ {
		if _, err := s.IncrementScans(ctx, user); err != nil {
			t.Fatalf("increment: %v", err)
		}
	}
	if err := s.SetTheme(ctx, user, "dark"); err != nil {
		t.Fatalf("set theme: %v", err)
	}
	if _, err := s.Check(ctx, user); err != nil {
		t.Fatalf("check: %v", err)
	}

	achievements, total, err := s.Evaluate(ctx, user)
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}

	sum := 0
	for _, a := range achievements {
		if a.Unlocked {
			sum += a.Points
		}
	}
	if total != sum {
		t.Errorf("total = %d, recomputed sum = %d", total, sum)
	}
	// first_scan + five_scans + night_mode.
	if total != 10+25+5 {
		t.Errorf("total = %d, want 40", total)
	}
}

// slowStore widens the read-check window so overlapping checks actually
// overlap instead of winning the race by accident.
type slowStore struct {
	keyval.Store
	delay time.Duration
}

func (s slowStore) Get(ctx context.Context, key string) (string, error) {
	time.Sleep(s.delay)
	return s.Store.Get(ctx, key)
}

func TestConcurrentChecksNotifyOnce(t *testing.T) {
	ctx := context.Background()

	var mu sync.Mutex
	fired := map[string]int{}
	notify := func(_ string, a Achievement) {
		mu.Lock()
		fired[a.ID]++
		mu.Unlock()
	}

	s := NewService(slowStore{Store: keyval.NewMemStore(), delay: 5 * time.Millisecond}, notify)
	if _, err := s.IncrementScans(ctx, user); err != nil {
		t.Fatalf("increment: %v", err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := s.Check(ctx, user); err != nil {
				t.Errorf("check: %v", err)
			}
		}()
	}
	wg.Wait()

	if n := fired["first_scan"]; n != 1 {
		t.Fatalf("first_scan notified %d times, want exactly 1", n)
	}
}

func TestConcurrentVisitsAllPersist(t *testing.T) {
	ctx := context.Background()
	s := NewService(slowStore{Store: keyval.NewMemStore(), delay: 5 * time.Millisecond}, nil)

	ids := []string{"jemaa-el-fna", "bahia-palace", "hassan-tower"}
	var wg sync.WaitGroup
	for _, id := range ids {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			if err := s.MarkVisited(ctx, user, id); err != nil {
				t.Errorf("mark visited %s: %v", id, err)
			}
		}(id)
	}
	wg.Wait()

	c, err := s.Counters(ctx, user)
	if err != nil {
		t.Fatalf("counters: %v", err)
	}
	for _, id := range ids {
		if !c.VisitedLocations[id] {
			t.Errorf("visit %s lost", id)
		}
	}
}
