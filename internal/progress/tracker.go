package progress

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Tracker periodically re-runs achievement checks for users with a live
// event subscription, mirroring the SPA's interval-based re-evaluation.
// Register marks a user active (and checks immediately, the "on mount"
// pass); Deregister drops them when their last subscription closes.
type Tracker struct {
	service  *Service
	logger   *slog.Logger
	interval time.Duration

	mu     sync.Mutex
	active map[string]int // userID -> subscription count
}

func NewTracker(service *Service, logger *slog.Logger, interval time.Duration) *Tracker {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	return &Tracker{
		service:  service,
		logger:   logger,
		interval: interval,
		active:   make(map[string]int),
	}
}

func (t *Tracker) Register(ctx context.Context, userID string) {
	t.mu.Lock()
	t.active[userID]++
	t.mu.Unlock()

	if _, err := t.service.Check(ctx, userID); err != nil {
		t.logger.Error("achievement check failed", "user_id", userID, "error", err)
	}
}

func (t *Tracker) Deregister(userID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.active[userID] <= 1 {
		delete(t.active, userID)
		return
	}
	t.active[userID]--
}

// Run ticks until ctx is cancelled. The ticker is stopped on return, so
// shutdown leaves no background work behind.
func (t *Tracker) Run(ctx context.Context) error {
	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			for _, userID := range t.activeUsers() {
				if _, err := t.service.Check(ctx, userID); err != nil {
					if ctx.Err() != nil {
						return nil
					}
					t.logger.Error("achievement check failed", "user_id", userID, "error", err)
				}
			}
		}
	}
}

func (t *Tracker) activeUsers() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	users := make([]string, 0, len(t.active))
	for id := range t.active {
		users = append(users, id)
	}
	return users
}
