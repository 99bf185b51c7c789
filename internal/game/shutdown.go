package game

import "sync"

// Shutdown collects teardown steps and runs them once, newest first, on the
// goroutine that calls Run. GL and glfw calls must stay on the main thread, so
// a signal only asks the frame loop to stop through the request hook.
type Shutdown struct {
	mu       sync.Mutex
	steps    []func()
	request  func()
	started  bool
	finished chan struct{}
}

// NewShutdown returns an empty teardown stack.
func NewShutdown() *Shutdown {
	return &Shutdown{finished: make(chan struct{})}
}

// Defer pushes a teardown step.
func (s *Shutdown) Defer(fn func()) {
	s.mu.Lock()
	s.steps = append(s.steps, fn)
	s.mu.Unlock()
}

// OnInterrupt sets the hook Interrupt uses to stop the frame loop.
func (s *Shutdown) OnInterrupt(fn func()) {
	s.mu.Lock()
	s.request = fn
	s.mu.Unlock()
}

// Interrupt is safe to call from any goroutine. It fires the request hook
// unless teardown has begun, then waits for Run to finish. Without a hook
// there is no loop to stop and it returns at once.
func (s *Shutdown) Interrupt() {
	s.mu.Lock()
	started, request := s.started, s.request
	if !started && request != nil {
		request()
	}
	s.mu.Unlock()
	if !started && request == nil {
		return
	}
	<-s.finished
}

// Run executes the steps in reverse order. Later calls are no-ops.
func (s *Shutdown) Run() {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return
	}
	s.started = true
	steps := s.steps
	s.steps = nil
	s.mu.Unlock()

	for i := len(steps) - 1; i >= 0; i-- {
		steps[i]()
	}
	close(s.finished)
}
