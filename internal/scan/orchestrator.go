// Package scan owns the capture-to-result flow: it runs the recognition
// simulator, bumps the persisted counters, decides whether a milestone
// celebration is due, and produces the redirect to the results view.
package scan

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"net/url"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/exploremaroc/companion/internal/catalog"
	"github.com/exploremaroc/companion/internal/progress"
	"github.com/exploremaroc/companion/internal/recognition"
)

var (
	ErrNotFound     = errors.New("scan not found")
	ErrScanInFlight = errors.New("a scan is already in progress")
)

type State string

const (
	StateIdle       State = "idle"
	StateCapturing  State = "capturing"
	StateProcessing State = "processing"
	StateComplete   State = "complete"
	StateError      State = "error"
)

// Event is published to the user's event stream as the scan advances.
type Event struct {
	Type        string `json:"type"`
	ScanID      string `json:"scanId,omitempty"`
	Stage       string `json:"stage,omitempty"`
	Confidence  int    `json:"confidence,omitempty"`
	LocationID  string `json:"locationId,omitempty"`
	Count       int    `json:"count,omitempty"`
	RedirectURL string `json:"redirectUrl,omitempty"`
	Error       string `json:"error,omitempty"`
}

// Snapshot is the polling view of a scan session.
type Snapshot struct {
	ID          string `json:"id"`
	State       State  `json:"state"`
	Stage       string `json:"stage,omitempty"`
	Confidence  int    `json:"confidence"`
	LocationID  string `json:"locationId,omitempty"`
	Celebrating bool   `json:"celebrating"`
	RedirectURL string `json:"redirectUrl,omitempty"`
	Error       string `json:"error,omitempty"`
}

// Publisher fans an event out to the user's subscribers.
type Publisher func(userID string, event Event)

const (
	celebrationPause = 2000 * time.Millisecond
	completePause    = 800 * time.Millisecond
)

type session struct {
	mu     sync.Mutex
	id     string
	userID string

	state       State
	imageRef    string
	stage       recognition.Stage
	confidence  int
	locationID  string
	celebrating bool
	redirectURL string
	errMsg      string

	cancel context.CancelFunc
}

func (s *session) snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		ID:          s.id,
		State:       s.state,
		Stage:       string(s.stage),
		Confidence:  s.confidence,
		LocationID:  s.locationID,
		Celebrating: s.celebrating,
		RedirectURL: s.redirectURL,
		Error:       s.errMsg,
	}
}

func (s *session) inFlight() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state == StateCapturing || s.state == StateProcessing
}

// Orchestrator drives scan sessions. One scan per user may be in flight;
// a second capture while one is processing is rejected, not queued.
type Orchestrator struct {
	sim      *recognition.Simulator
	progress *progress.Service
	catalog  *catalog.Catalog
	logger   *slog.Logger
	publish  Publisher

	sleep  func(ctx context.Context, d time.Duration) error
	pauses struct{ celebration, complete time.Duration }

	rngMu sync.Mutex
	rng   *rand.Rand

	// baseCtx bounds background scan work; cancelled on shutdown.
	baseCtx context.Context

	mu     sync.Mutex
	byID   map[string]*session
	byUser map[string]*session
}

type Option func(*Orchestrator)

// WithPauses overrides the celebration and completion pauses.
func WithPauses(celebration, complete time.Duration) Option {
	return func(o *Orchestrator) {
		o.pauses.celebration = celebration
		o.pauses.complete = complete
	}
}

func WithSleep(sleep func(ctx context.Context, d time.Duration) error) Option {
	return func(o *Orchestrator) { o.sleep = sleep }
}

func WithRand(rng *rand.Rand) Option {
	return func(o *Orchestrator) { o.rng = rng }
}

func NewOrchestrator(baseCtx context.Context, sim *recognition.Simulator, svc *progress.Service, c *catalog.Catalog, logger *slog.Logger, publish Publisher, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		sim:      sim,
		progress: svc,
		catalog:  c,
		logger:   logger,
		publish:  publish,
		sleep: func(ctx context.Context, d time.Duration) error {
			t := time.NewTimer(d)
			defer t.Stop()
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-t.C:
				return nil
			}
		},
		rng:     rand.New(rand.NewSource(time.Now().UnixNano())),
		baseCtx: baseCtx,
		byID:    make(map[string]*session),
		byUser:  make(map[string]*session),
	}
	o.pauses.celebration = celebrationPause
	o.pauses.complete = completePause
	if o.publish == nil {
		o.publish = func(string, Event) {}
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

func (o *Orchestrator) intn(n int) int {
	o.rngMu.Lock()
	defer o.rngMu.Unlock()
	return o.rng.Intn(n)
}

// register creates and indexes a session, enforcing one in-flight scan per
// user. The session starts in state capturing.
func (o *Orchestrator) register(userID, imageRef string) (*session, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if existing := o.byUser[userID]; existing != nil {
		if existing.inFlight() {
			return nil, ErrScanInFlight
		}
		// A finished scan the user never reset is superseded by the new one.
		delete(o.byID, existing.id)
	}

	sess := &session{
		id:       uuid.NewString(),
		userID:   userID,
		state:    StateCapturing,
		imageRef: imageRef,
	}
	o.byID[sess.id] = sess
	o.byUser[userID] = sess
	return sess, nil
}

// Start begins a recognition run for a captured image. The pipeline runs in
// the background, bounded by the orchestrator's base context; progress is
// published to the user's event stream and visible through Get.
func (o *Orchestrator) Start(userID, imageRef string) (Snapshot, error) {
	if imageRef == "" {
		return Snapshot{}, recognition.ErrNoImage
	}

	sess, err := o.register(userID, imageRef)
	if err != nil {
		return Snapshot{}, err
	}

	runCtx, cancel := context.WithCancel(o.baseCtx)
	sess.mu.Lock()
	sess.cancel = cancel
	sess.state = StateProcessing
	sess.mu.Unlock()

	go o.run(runCtx, sess)

	return sess.snapshot(), nil
}

func (o *Orchestrator) run(ctx context.Context, sess *session) {
	observe := func(u recognition.Update) {
		sess.mu.Lock()
		sess.stage = u.Stage
		sess.confidence = u.Confidence
		sess.locationID = u.LocationID
		sess.mu.Unlock()
		o.publish(sess.userID, Event{
			Type:       "scan_progress",
			ScanID:     sess.id,
			Stage:      string(u.Stage),
			Confidence: u.Confidence,
			LocationID: u.LocationID,
		})
	}

	result, err := o.sim.Recognize(ctx, sess.imageRef, observe)
	if err != nil {
		if ctx.Err() != nil {
			// Torn down mid-flight: no state mutation, no events.
			return
		}
		o.fail(sess, err)
		return
	}

	o.finish(ctx, sess, result.LocationID, result.Confidence)
}

func (o *Orchestrator) fail(sess *session, err error) {
	sess.mu.Lock()
	sess.state = StateError
	sess.errMsg = err.Error()
	sess.mu.Unlock()
	o.publish(sess.userID, Event{Type: "scan_error", ScanID: sess.id, Error: err.Error()})
}

// finish performs the complete-stage side effects in fixed order:
// increment the counter, branch on the post-increment count, pause,
// then set the redirect. Milestone detection depends on this ordering.
func (o *Orchestrator) finish(ctx context.Context, sess *session, locationID string, confidence int) {
	count, err := o.progress.IncrementScans(ctx, sess.userID)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		o.fail(sess, fmt.Errorf("recording scan: %w", err))
		return
	}

	pause := o.pauses.complete
	if count == 1 || count%5 == 0 {
		pause = o.pauses.celebration
		sess.mu.Lock()
		sess.celebrating = true
		sess.mu.Unlock()
		o.publish(sess.userID, Event{Type: "milestone", ScanID: sess.id, Count: count})
	}

	if err := o.sleep(ctx, pause); err != nil {
		return
	}

	redirect := "/results?" + url.Values{
		"locationId": {locationID},
		"confidence": {fmt.Sprint(confidence)},
	}.Encode()

	sess.mu.Lock()
	sess.state = StateComplete
	sess.stage = recognition.StageComplete
	sess.locationID = locationID
	sess.confidence = confidence
	sess.celebrating = false
	sess.redirectURL = redirect
	sess.mu.Unlock()

	o.publish(sess.userID, Event{
		Type:        "scan_complete",
		ScanID:      sess.id,
		LocationID:  locationID,
		Confidence:  confidence,
		RedirectURL: redirect,
	})

	if _, err := o.progress.Check(ctx, sess.userID); err != nil && ctx.Err() == nil {
		o.logger.Error("achievement check failed", "user_id", sess.userID, "error", err)
	}
}

// Select is the desktop fallback: the user picks a location directly and a
// result is synthesized with confidence in [85, 94], skipping the camera
// stages. The complete-stage side effects are identical to a real scan.
func (o *Orchestrator) Select(userID, locationID string) (Snapshot, error) {
	if _, ok := o.catalog.Location(locationID); !ok {
		return Snapshot{}, ErrNotFound
	}

	sess, err := o.register(userID, "")
	if err != nil {
		return Snapshot{}, err
	}

	runCtx, cancel := context.WithCancel(o.baseCtx)
	sess.mu.Lock()
	sess.cancel = cancel
	sess.state = StateProcessing
	sess.locationID = locationID
	sess.mu.Unlock()

	confidence := 85 + o.intn(10)
	go o.finish(runCtx, sess, locationID, confidence)

	return sess.snapshot(), nil
}

// Get returns a snapshot of the scan session, or ErrNotFound.
func (o *Orchestrator) Get(scanID string) (Snapshot, error) {
	o.mu.Lock()
	sess := o.byID[scanID]
	o.mu.Unlock()
	if sess == nil {
		return Snapshot{}, ErrNotFound
	}
	return sess.snapshot(), nil
}

// Reset tears a session down, cancelling its pipeline if one is still
// running. The returned snapshot is the session's final idle state; the
// scan id stops resolving afterwards.
func (o *Orchestrator) Reset(scanID string) (Snapshot, error) {
	o.mu.Lock()
	sess := o.byID[scanID]
	if sess != nil {
		delete(o.byID, scanID)
		if o.byUser[sess.userID] == sess {
			delete(o.byUser, sess.userID)
		}
	}
	o.mu.Unlock()
	if sess == nil {
		return Snapshot{}, ErrNotFound
	}

	sess.mu.Lock()
	if sess.cancel != nil {
		sess.cancel()
	}
	sess.state = StateIdle
	sess.imageRef = ""
	sess.stage = ""
	sess.confidence = 0
	sess.locationID = ""
	sess.celebrating = false
	sess.redirectURL = ""
	sess.errMsg = ""
	sess.mu.Unlock()

	o.publish(sess.userID, Event{Type: "scan_reset", ScanID: sess.id})
	return sess.snapshot(), nil
}
