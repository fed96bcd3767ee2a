package progress

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"sync"

	"github.com/exploremaroc/companion/internal/keyval"
)

// Storage key names, scoped per user as "<userID>:<name>". They mirror the
// browser-storage keys of the companion SPA.
const (
	keyRecognitionCount     = "recognitionCount"
	keyVisitedLocations     = "visitedLocations"
	keyUnlockedAchievements = "unlockedAchievements"
	keyTheme                = "theme"
)

// Notifier receives exactly one call per newly unlocked achievement.
type Notifier func(userID string, a Achievement)

// Service reads and mutates per-user progress state in the keyval store.
type Service struct {
	kv     keyval.Store
	notify Notifier

	mu    sync.Mutex
	users map[string]*sync.Mutex
}

func NewService(kv keyval.Store, notify Notifier) *Service {
	if notify == nil {
		notify = func(string, Achievement) {}
	}
	return &Service{kv: kv, notify: notify, users: map[string]*sync.Mutex{}}
}

func userKey(userID, name string) string { return userID + ":" + name }

// userLock returns the mutex serializing read-modify-write cycles on a
// single user's keys. Scan completion, the liveness tracker and the visit
// and theme handlers can all check the same user at once; without this a
// pair of overlapping checks would both see an achievement as locked and
// notify it twice.
func (s *Service) userLock(userID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l := s.users[userID]
	if l == nil {
		l = &sync.Mutex{}
		s.users[userID] = l
	}
	return l
}

// Counters loads the persisted counters for userID. Absent keys read as
// zero values; malformed stored values are an error.
func (s *Service) Counters(ctx context.Context, userID string) (Counters, error) {
	c := Counters{VisitedLocations: map[string]bool{}}

	raw, err := s.kv.Get(ctx, userKey(userID, keyRecognitionCount))
	switch {
	case errors.Is(err, keyval.ErrNotFound):
	case err != nil:
		return c, err
	default:
		n, err := strconv.Atoi(raw)
		if err != nil {
			return c, fmt.Errorf("parsing recognition count: %w", err)
		}
		c.RecognitionCount = n
	}

	visited, err := s.stringSet(ctx, userKey(userID, keyVisitedLocations))
	if err != nil {
		return c, err
	}
	c.VisitedLocations = visited

	theme, err := s.kv.Get(ctx, userKey(userID, keyTheme))
	if err != nil && !errors.Is(err, keyval.ErrNotFound) {
		return c, err
	}
	c.ThemeIsDark = theme == "dark"

	return c, nil
}

// IncrementScans bumps the recognition counter and returns the new value.
func (s *Service) IncrementScans(ctx context.Context, userID string) (int, error) {
	l := s.userLock(userID)
	l.Lock()
	defer l.Unlock()

	key := userKey(userID, keyRecognitionCount)

	count := 0
	raw, err := s.kv.Get(ctx, key)
	if err == nil {
		if count, err = strconv.Atoi(raw); err != nil {
			return 0, fmt.Errorf("parsing recognition count: %w", err)
		}
	} else if !errors.Is(err, keyval.ErrNotFound) {
		return 0, err
	}

	count++
	if err := s.kv.Set(ctx, key, strconv.Itoa(count)); err != nil {
		return 0, err
	}
	return count, nil
}

// MarkVisited appends locationID to the user's visited set.
func (s *Service) MarkVisited(ctx context.Context, userID, locationID string) error {
	l := s.userLock(userID)
	l.Lock()
	defer l.Unlock()

	key := userKey(userID, keyVisitedLocations)
	visited, err := s.stringSet(ctx, key)
	if err != nil {
		return err
	}
	if visited[locationID] {
		return nil
	}
	visited[locationID] = true
	return s.putStringSet(ctx, key, visited)
}

func (s *Service) Theme(ctx context.Context, userID string) (string, error) {
	theme, err := s.kv.Get(ctx, userKey(userID, keyTheme))
	if errors.Is(err, keyval.ErrNotFound) {
		return "light", nil
	}
	return theme, err
}

func (s *Service) SetTheme(ctx context.Context, userID, theme string) error {
	if theme != "dark" && theme != "light" {
		return fmt.Errorf("invalid theme %q", theme)
	}
	return s.kv.Set(ctx, userKey(userID, keyTheme), theme)
}

// Evaluate returns the full achievement list with unlocked flags plus the
// total points over unlocked achievements. Read-only: no unlock side
// effects, no notifications.
func (s *Service) Evaluate(ctx context.Context, userID string) ([]Achievement, int, error) {
	counters, err := s.Counters(ctx, userID)
	if err != nil {
		return nil, 0, err
	}
	unlockedIDs, err := s.stringSet(ctx, userKey(userID, keyUnlockedAchievements))
	if err != nil {
		return nil, 0, err
	}

	achievements := evaluate(counters, unlockedIDs)
	total := 0
	for _, a := range achievements {
		if a.Unlocked {
			total += a.Points
		}
	}
	return achievements, total, nil
}

// Check finds achievements whose predicate just became true, persists them
// into the unlocked set, and notifies once per id. Returns the newly
// unlocked achievements.
func (s *Service) Check(ctx context.Context, userID string) ([]Achievement, error) {
	l := s.userLock(userID)
	l.Lock()
	defer l.Unlock()

	counters, err := s.Counters(ctx, userID)
	if err != nil {
		return nil, err
	}

	key := userKey(userID, keyUnlockedAchievements)
	unlockedIDs, err := s.stringSet(ctx, key)
	if err != nil {
		return nil, err
	}

	var newly []Achievement
	for _, def := range definitions {
		if unlockedIDs[def.ID] || !def.predicate(counters) {
			continue
		}
		unlockedIDs[def.ID] = true
		a := def.Achievement
		a.Unlocked = true
		newly = append(newly, a)
	}
	if len(newly) == 0 {
		return nil, nil
	}

	// Persist before notifying so a redelivered check never re-fires.
	if err := s.putStringSet(ctx, key, unlockedIDs); err != nil {
		return nil, err
	}
	for _, a := range newly {
		s.notify(userID, a)
	}
	return newly, nil
}

func (s *Service) stringSet(ctx context.Context, key string) (map[string]bool, error) {
	raw, err := s.kv.Get(ctx, key)
	if errors.Is(err, keyval.ErrNotFound) {
		return map[string]bool{}, nil
	}
	if err != nil {
		return nil, err
	}

	var ids []string
	if err := json.Unmarshal([]byte(raw), &ids); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", key, err)
	}
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set, nil
}

func (s *Service) putStringSet(ctx context.Context, key string, set map[string]bool) error {
	ids := make([]string, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	data, err := json.Marshal(ids)
	if err != nil {
		return err
	}
	return s.kv.Set(ctx, key, string(data))
}
