package poller

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Func is a scheduled callback. ctx is cancelled when the Scheduler closes.
type Func func(ctx context.Context)

// Token identifies a registration. The zero Token is inactive.
type Token struct {
	s  *Scheduler
	id uint64
}

// Cancel stops the registration. Safe to call more than once.
func (t Token) Cancel() {
	if t.s != nil {
		t.s.cancelID(t.id)
	}
}

// Active reports whether the registration can still fire.
func (t Token) Active() bool {
	if t.s == nil {
		return false
	}
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	_, ok := t.s.regs[t.id]
	return ok
}

// Scheduler owns a set of timers that are disposed together.
type Scheduler struct {
	logger *slog.Logger

	mu     sync.Mutex
	regs   map[uint64]chan struct{}
	nextID uint64
	closed bool

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a Scheduler whose callbacks receive a context derived from ctx.
func New(ctx context.Context, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Scheduler{
		logger: logger,
		regs:   make(map[uint64]chan struct{}),
	}
	s.ctx, s.cancel = context.WithCancel(ctx)
	return s
}

// Every runs fn every d, first after one interval.
func (s *Scheduler) Every(d time.Duration, fn Func) Token {
	return s.register(d, true, false, fn)
}

// EveryNow runs fn immediately and then every d.
func (s *Scheduler) EveryNow(d time.Duration, fn Func) Token {
	return s.register(d, true, true, fn)
}

// After runs fn once after d.
func (s *Scheduler) After(d time.Duration, fn Func) Token {
	return s.register(d, false, false, fn)
}

// Active returns the number of live registrations.
func (s *Scheduler) Active() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.regs)
}

// Close cancels every registration and waits for running callbacks to return.
// Later calls only wait.
func (s *Scheduler) Close(ctx context.Context) error {
	s.mu.Lock()
	if !s.closed {
		s.closed = true
		for id, stop := range s.regs {
			close(stop)
			delete(s.regs, id)
		}
		s.cancel()
	}
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Scheduler) register(d time.Duration, repeat, immediate bool, fn Func) Token {
	if repeat && d <= 0 {
		s.logger.Error("invalid schedule interval", "interval", d)
		return Token{}
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		s.logger.Debug("schedule after close ignored")
		return Token{}
	}
	s.nextID++
	id := s.nextID
	stop := make(chan struct{})
	s.regs[id] = stop
	s.wg.Add(1)
	s.mu.Unlock()

	if repeat {
		go s.runEvery(d, immediate, stop, fn)
	} else {
		go s.runAfter(id, d, stop, fn)
	}

	return Token{s: s, id: id}
}

// runEvery is the loop for one interval registration.
func (s *Scheduler) runEvery(d time.Duration, immediate bool, stop <-chan struct{}, fn Func) {
	defer s.wg.Done()

	if immediate {
		s.fire(stop, fn)
	}

	ticker := time.NewTicker(d)
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			return
		case <-stop:
			return
		case <-ticker.C:
			s.fire(stop, fn)
		}
	}
}

// runAfter waits for one timeout registration.
func (s *Scheduler) runAfter(id uint64, d time.Duration, stop <-chan struct{}, fn Func) {
	defer s.wg.Done()

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-s.ctx.Done():
		return
	case <-stop:
		return
	case <-timer.C:
	}

	s.mu.Lock()
	_, live := s.regs[id]
	delete(s.regs, id)
	s.mu.Unlock()

	if live {
		s.fire(stop, fn)
	}
}

// fire runs fn unless the registration was cancelled since the timer fired.
func (s *Scheduler) fire(stop <-chan struct{}, fn Func) {
	select {
	case <-stop:
		return
	case <-s.ctx.Done():
		return
	default:
	}

	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("scheduled callback panic recovered", "panic", r)
		}
	}()

	fn(s.ctx)
}

func (s *Scheduler) cancelID(id uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if stop, ok := s.regs[id]; ok {
		close(stop)
		delete(s.regs, id)
	}
}
