package timer

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/bubbel/internal/domain/models"
)

var (
	// ErrSessionRunning is returned when a session of the same kind is already running.
	ErrSessionRunning = errors.New("session already running")
	// ErrNoActiveSession is returned when stopping a kind that is idle.
	ErrNoActiveSession = errors.New("no active session")
	// ErrUntimedKind is returned for record types that cannot be timed.
	ErrUntimedKind = errors.New("record type cannot be timed")
)

// Recorder persists the record built when a session stops.
type Recorder interface {
	AddRecord(ctx context.Context, rec models.BabyRecord) (models.BabyRecord, error)
}

// Registry keeps the running sessions of every client in process memory.
type Registry struct {
	recorder Recorder
	logger   *zap.Logger
	now      func() time.Time

	mu      sync.RWMutex
	clients map[string]*clientTimers
}

type clientTimers struct {
	mu     sync.Mutex
	active map[models.RecordType]models.ActiveSession
	// released is set once the entry left the registry; holders must look it up again.
	released bool
}

// NewRegistry creates an empty registry.
func NewRegistry(recorder Recorder, logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{
		recorder: recorder,
		logger:   logger,
		now:      time.Now,
		clients:  make(map[string]*clientTimers),
	}
}

// acquire returns the client's entry, created on demand, with its lock held.
func (r *Registry) acquire(clientID string) *clientTimers {
	for {
		r.mu.Lock()
		c, ok := r.clients[clientID]
		if !ok {
			c = &clientTimers{active: make(map[models.RecordType]models.ActiveSession)}
			r.clients[clientID] = c
		}
		r.mu.Unlock()

		c.mu.Lock()
		if !c.released {
			return c
		}
		c.mu.Unlock()
	}
}

// lookup returns the client's entry with its lock held, or false when the client has no sessions.
func (r *Registry) lookup(clientID string) (*clientTimers, bool) {
	r.mu.RLock()
	c, ok := r.clients[clientID]
	r.mu.RUnlock()
	if !ok {
		return nil, false
	}

	c.mu.Lock()
	if c.released {
		c.mu.Unlock()
		return nil, false
	}
	return c, true
}

// release drops an entry without sessions. c.mu must be held.
func (r *Registry) release(clientID string, c *clientTimers) {
	if len(c.active) > 0 {
		return
	}
	r.mu.Lock()
	if r.clients[clientID] == c {
		delete(r.clients, clientID)
	}
	r.mu.Unlock()
	c.released = true
}

// Start begins a session. A second start of the same kind keeps the running session.
func (r *Registry) Start(clientID string, kind models.RecordType, meta models.SessionMetadata) (models.ActiveSession, error) {
	if !kind.Timed() {
		return models.ActiveSession{}, fmt.Errorf("%w: %s", ErrUntimedKind, kind)
	}

	c := r.acquire(clientID)
	defer c.mu.Unlock()

	if running, ok := c.active[kind]; ok {
		return running, ErrSessionRunning
	}

	session := models.ActiveSession{
		Kind:       kind,
		StartTime:  r.now(),
		BreastSide: meta.BreastSide,
		Note:       meta.Note,
	}
	c.active[kind] = session

	r.logger.Info("session started", zap.String("client", clientID), zap.String("kind", string(kind)))
	return session, nil
}

// Stop submits the running session as a record. The session stays running if the submit fails.
func (r *Registry) Stop(ctx context.Context, clientID string, kind models.RecordType) (models.BabyRecord, error) {
	if !kind.Timed() {
		return models.BabyRecord{}, fmt.Errorf("%w: %s", ErrUntimedKind, kind)
	}

	c, ok := r.lookup(clientID)
	if !ok {
		return models.BabyRecord{}, ErrNoActiveSession
	}
	defer c.mu.Unlock()

	session, ok := c.active[kind]
	if !ok {
		return models.BabyRecord{}, ErrNoActiveSession
	}

	rec := buildRecord(session, r.now())
	saved, err := r.recorder.AddRecord(ctx, rec)
	if err != nil {
		return models.BabyRecord{}, fmt.Errorf("submit %s session: %w", kind, err)
	}

	delete(c.active, kind)
	r.release(clientID, c)
	r.logger.Info("session stopped",
		zap.String("client", clientID),
		zap.String("kind", string(kind)),
		zap.String("id", saved.ID))
	return saved, nil
}

// Cancel discards a running session without recording it.
func (r *Registry) Cancel(clientID string, kind models.RecordType) error {
	c, ok := r.lookup(clientID)
	if !ok {
		return ErrNoActiveSession
	}
	defer c.mu.Unlock()

	if _, ok := c.active[kind]; !ok {
		return ErrNoActiveSession
	}
	delete(c.active, kind)
	r.release(clientID, c)
	return nil
}

// Active lists the client's running sessions ordered by kind.
func (r *Registry) Active(clientID string) []models.ActiveSession {
	r.mu.RLock()
	c, ok := r.clients[clientID]
	r.mu.RUnlock()
	if !ok {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	sessions := make([]models.ActiveSession, 0, len(c.active))
	for _, s := range c.active {
		sessions = append(sessions, s)
	}
	sort.Slice(sessions, func(i, j int) bool { return sessions[i].Kind < sessions[j].Kind })
	return sessions
}

// Elapsed returns how long the session has been running.
func (r *Registry) Elapsed(session models.ActiveSession) time.Duration {
	return r.now().Sub(session.StartTime)
}

func buildRecord(session models.ActiveSession, end time.Time) models.BabyRecord {
	rec := models.BabyRecord{
		Type:      session.Kind,
		StartTime: session.StartTime,
		EndTime:   &end,
		Note:      session.Note,
	}

	switch session.Kind {
	case models.RecordSleep:
		rec.Amount = roundMinutes(end.Sub(session.StartTime))
	case models.RecordFeeding:
		rec.FeedingKind = models.FeedingBreast
		rec.BreastSide = session.BreastSide
	}
	return rec
}

// roundMinutes rounds half up: 1m30s is 2, 1m24s is 1.
func roundMinutes(d time.Duration) float64 {
	if d < 0 {
		return 0
	}
	return math.Floor(d.Minutes() + 0.5)
}
