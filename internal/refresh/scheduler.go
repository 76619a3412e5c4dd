// Package refresh runs the periodic listings refresh and holds the shared
// market snapshot, with pub/sub for interested views.
package refresh

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"coinwatch/internal/domain"
)

// Lister fetches the current top listings. Implemented by market.Client.
type Lister interface {
	Listings(ctx context.Context, limit, start int, convert string) ([]domain.AssetQuote, error)
}

// State is one published view of the refresh loop. Snapshot is a copy owned
// by the receiver; the scheduler never mutates a published slice.
type State struct {
	Snapshot    []domain.AssetQuote
	Loading     bool
	LastErr     error
	LastUpdated time.Time // zero until the first successful refresh
}

// Scheduler polls the lister on a fixed cadence and keeps the last good
// snapshot. A failed cycle keeps the previous snapshot and records the error;
// the next cycle retries on the normal cadence, never earlier.
type Scheduler struct {
	lister   Lister
	limit    int
	convert  string
	interval time.Duration
	log      *slog.Logger

	mu          sync.RWMutex
	snapshot    []domain.AssetQuote
	loading     bool
	lastErr     error
	lastUpdated time.Time

	subsMu    sync.Mutex
	nextSubID int
	subs      map[int]chan State

	refreshCh chan struct{}
	stopOnce  sync.Once
	stopCh    chan struct{}
	doneCh    chan struct{}
}

// NewScheduler creates a scheduler that fetches the top limit listings in
// convert currency every interval.
func NewScheduler(lister Lister, limit int, convert string, interval time.Duration, log *slog.Logger) *Scheduler {
	return &Scheduler{
		lister:    lister,
		limit:     limit,
		convert:   convert,
		interval:  interval,
		log:       log,
		subs:      make(map[int]chan State),
		refreshCh: make(chan struct{}, 1),
		stopCh:    make(chan struct{}),
		doneCh:    make(chan struct{}),
	}
}

// Start launches the refresh loop. The first cycle runs immediately. The loop
// exits when ctx is cancelled or Stop is called.
func (s *Scheduler) Start(ctx context.Context) {
	go s.run(ctx)
}

// Stop terminates the loop and waits for the in-flight cycle to finish.
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() { close(s.stopCh) })
	<-s.doneCh
}

// RefreshNow requests an immediate refresh cycle. If a cycle is already
// running or queued, the request collapses into it.
func (s *Scheduler) RefreshNow() {
	select {
	case s.refreshCh <- struct{}{}:
	default:
	}
}

// State returns a copy of the current refresh state.
func (s *Scheduler) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return State{
		Snapshot:    copyQuotes(s.snapshot),
		Loading:     s.loading,
		LastErr:     s.lastErr,
		LastUpdated: s.lastUpdated,
	}
}

// Subscribe creates a subscription channel for state updates. Slow
// subscribers miss intermediate states but can always call State.
func (s *Scheduler) Subscribe(bufSize int) (id int, ch <-chan State) {
	s.subsMu.Lock()
	defer s.subsMu.Unlock()
	id = s.nextSubID
	s.nextSubID++
	c := make(chan State, bufSize)
	s.subs[id] = c
	return id, c
}

// Unsubscribe removes a subscription and closes its channel.
func (s *Scheduler) Unsubscribe(id int) {
	s.subsMu.Lock()
	defer s.subsMu.Unlock()
	if ch, ok := s.subs[id]; ok {
		close(ch)
		delete(s.subs, id)
	}
}

func (s *Scheduler) run(ctx context.Context) {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.refreshOnce(ctx)
	for {
		// Requests that arrived while the last cycle ran are already
		// satisfied by it. Drain them so they don't trigger a
		// back-to-back fetch.
		s.drainPending(ticker)

		select {
		case <-ctx.Done():
			return
		case <-s.stopCh:
			return
		case <-ticker.C:
			s.refreshOnce(ctx)
		case <-s.refreshCh:
			s.refreshOnce(ctx)
		}
	}
}

func (s *Scheduler) drainPending(ticker *time.Ticker) {
	for {
		select {
		case <-s.refreshCh:
		case <-ticker.C:
		default:
			return
		}
	}
}

// refreshOnce runs one fetch cycle: publish loading, fetch, publish result.
func (s *Scheduler) refreshOnce(ctx context.Context) {
	s.mu.Lock()
	s.loading = true
	s.mu.Unlock()
	s.publish()

	start := time.Now()
	quotes, err := s.lister.Listings(ctx, s.limit, 1, s.convert)

	s.mu.Lock()
	s.loading = false
	if err != nil {
		// Keep the previous snapshot; it stays on screen until a cycle
		// succeeds again.
		s.lastErr = err
	} else {
		s.snapshot = quotes
		s.lastErr = nil
		s.lastUpdated = time.Now()
	}
	s.mu.Unlock()
	s.publish()

	if err != nil {
		s.log.Warn("refresh failed", "error", err, "elapsed", time.Since(start))
	} else {
		s.log.Debug("refresh ok", "assets", len(quotes), "elapsed", time.Since(start))
	}
}

// publish sends the current state to all subscribers (non-blocking send).
func (s *Scheduler) publish() {
	st := s.State()
	s.subsMu.Lock()
	for _, ch := range s.subs {
		select {
		case ch <- st:
		default:
			// Slow subscriber, drop update.
		}
	}
	s.subsMu.Unlock()
}

func copyQuotes(in []domain.AssetQuote) []domain.AssetQuote {
	out := make([]domain.AssetQuote, len(in))
	copy(out, in)
	return out
}
