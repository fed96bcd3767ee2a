// Package recognition simulates the camera landmark-recognition pipeline.
// There is no vision model behind it: a capture runs through timed stages
// and resolves to a random catalog location with a fabricated confidence.
package recognition

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"time"

	"github.com/exploremaroc/companion/internal/catalog"
)

// ErrNoImage is returned immediately when Recognize is given an empty
// image reference. No stages run and no updates are emitted.
var ErrNoImage = errors.New("no image provided")

type Stage string

const (
	StageAnalyzing Stage = "analyzing"
	StageMatching  Stage = "matching"
	StageComplete  Stage = "complete"
)

// Update is a progress snapshot emitted while a recognition run advances:
// the current stage, the displayed confidence, and (from the matching stage
// on) the tentatively matched location.
type Update struct {
	Stage      Stage  `json:"stage"`
	Confidence int    `json:"confidence"`
	LocationID string `json:"locationId,omitempty"`
}

// Result is the outcome of a completed run. LocationID always references
// an existing catalog location and Confidence is in [70, 95].
type Result struct {
	LocationID string `json:"locationId"`
	Confidence int    `json:"confidence"`
	Timestamp  string `json:"timestamp"`
}

const (
	analyzeDelay  = 1000 * time.Millisecond
	rampSteps     = 20
	rampStepDelay = 100 * time.Millisecond
	completeDelay = 500 * time.Millisecond
)

// Simulator runs the staged pseudo-analysis. Safe for concurrent use; each
// Recognize call is an independent run.
type Simulator struct {
	catalog *catalog.Catalog

	mu  sync.Mutex
	rng *rand.Rand

	sleep func(ctx context.Context, d time.Duration) error
	now   func() time.Time
}

type Option func(*Simulator)

// WithRand sets the random source for location and confidence selection.
// Used by tests for reproducible outcomes.
func WithRand(rng *rand.Rand) Option {
	return func(s *Simulator) { s.rng = rng }
}

// WithSleep replaces the real delay between stages. Tests inject an instant
// sleep that records the requested durations.
func WithSleep(sleep func(ctx context.Context, d time.Duration) error) Option {
	return func(s *Simulator) { s.sleep = sleep }
}

// WithNow sets the timestamp source.
func WithNow(now func() time.Time) Option {
	return func(s *Simulator) { s.now = now }
}

func NewSimulator(c *catalog.Catalog, opts ...Option) *Simulator {
	s := &Simulator{
		catalog: c,
		rng:     rand.New(rand.NewSource(time.Now().UnixNano())),
		sleep:   sleepCtx,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func (s *Simulator) intn(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.Intn(n)
}

// Recognize runs the staged pipeline for imageRef. observe (optional)
// receives an Update on every stage transition and ramp step. Once ctx is
// cancelled no further updates are emitted and the only possible return is
// ctx's error; a cancelled run never yields a Result.
func (s *Simulator) Recognize(ctx context.Context, imageRef string, observe func(Update)) (Result, error) {
	if imageRef == "" {
		return Result{}, ErrNoImage
	}
	if observe == nil {
		observe = func(Update) {}
	}
	// Liveness guard: once ctx is done nothing may be emitted, even if a
	// transition raced with the cancellation.
	emit := func(u Update) {
		if ctx.Err() == nil {
			observe(u)
		}
	}

	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	emit(Update{Stage: StageAnalyzing})
	if err := s.sleep(ctx, analyzeDelay); err != nil {
		return Result{}, err
	}

	// The entirety of the "recognition": a uniform pick over the location
	// collection. The image bytes are never inspected.
	locations := s.catalog.Locations()
	matched := locations[s.intn(len(locations))]
	target := 70 + s.intn(26)

	for i := 1; i <= rampSteps; i++ {
		shown := min(target, target*i/rampSteps)
		emit(Update{Stage: StageMatching, Confidence: shown, LocationID: matched.ID})
		if err := s.sleep(ctx, rampStepDelay); err != nil {
			return Result{}, err
		}
	}

	emit(Update{Stage: StageComplete, Confidence: target, LocationID: matched.ID})
	if err := s.sleep(ctx, completeDelay); err != nil {
		return Result{}, err
	}

	return Result{
		LocationID: matched.ID,
		Confidence: target,
		Timestamp:  s.now().UTC().Format(time.RFC3339),
	}, nil
}
