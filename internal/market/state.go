package market

import (
	"sync"
	"time"

	"github.com/rickgao/cryptoverse/internal/model"
)

// Phase is the aggregator's position in its state machine.
type Phase string

const (
	PhaseIdle       Phase = "idle"
	PhaseLoading    Phase = "loading"
	PhaseReady      Phase = "ready"
	PhaseReadyStale Phase = "ready_stale" // At least one field kept its previous value
	PhaseError      Phase = "error"
)

// State is what consumers see.
type State struct {
	Snapshot  model.MarketSnapshot `json:"snapshot"`
	Phase     Phase                `json:"phase"`
	Loading   bool                 `json:"loading"`
	Err       string               `json:"error,omitempty"`
	UpdatedAt time.Time            `json:"updated_at"`
}

// aggregatorState holds the mutable state behind an Aggregator.
type aggregatorState struct {
	mu sync.Mutex

	snap      model.MarketSnapshot
	phase     Phase // Phase of the last applied poll
	err       string
	updatedAt time.Time

	started       bool
	stopped       bool
	firstPending  bool
	manualPending int

	subs   map[int]chan State
	nextID int
}

func newState() *aggregatorState {
	return &aggregatorState{
		phase: PhaseIdle,
		subs:  make(map[int]chan State),
	}
}

// apply merges one settled poll. It reports false if the aggregator was
// stopped before the result arrived.
func (s *aggregatorState) apply(res *pollResult, now time.Time) (bool, Phase) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return false, s.phase
	}

	stale := false
	if res.coinsErr == nil && len(res.coins) > 0 {
		s.snap.TopCoins = res.coins
	} else {
		stale = true
	}
	if res.globalErr == nil && !res.global.IsEmpty() {
		s.snap.Global = res.global
	} else {
		stale = true
	}
	if res.trendingErr == nil && len(res.trending) > 0 {
		s.snap.TrendingCoins = res.trending
	} else {
		stale = true
	}

	switch {
	case res.allFailed():
		s.phase = PhaseError
		s.err = ErrFetchFailed.Error()
	case stale:
		s.phase = PhaseReadyStale
		s.err = ""
	default:
		s.phase = PhaseReady
		s.err = ""
	}

	s.firstPending = false
	s.updatedAt = now
	s.publishLocked()
	return true, s.phase
}

func (s *aggregatorState) snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stateLocked()
}

func (s *aggregatorState) stateLocked() State {
	loading := s.firstPending || s.manualPending > 0
	phase := s.phase
	if loading {
		phase = PhaseLoading
	}
	return State{
		Snapshot:  s.snap.Clone(),
		Phase:     phase,
		Loading:   loading,
		Err:       s.err,
		UpdatedAt: s.updatedAt,
	}
}

func (s *aggregatorState) subscribe() (<-chan State, func()) {
	ch := make(chan State, 1)

	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = ch
	s.mu.Unlock()

	return ch, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if c, ok := s.subs[id]; ok {
			delete(s.subs, id)
			close(c)
		}
	}
}

// publishLocked sends the current state to every subscriber without blocking.
// If a subscriber has not read the previous state, it is replaced.
func (s *aggregatorState) publishLocked() {
	if len(s.subs) == 0 {
		return
	}
	st := s.stateLocked()
	for _, ch := range s.subs {
		select {
		case ch <- st:
		default:
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- st:
			default:
			}
		}
	}
}
