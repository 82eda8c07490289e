package memdoc

import (
	"fmt"
	"sync"

	"github.com/mj1618/docbind/internal/platform"
)

type job struct {
	fn    platform.DocFunc
	scope *platform.Scope
	cb    func(any, error)
	done  chan struct{}
}

// Sandbox runs document functions one at a time on a single goroutine, the
// way the host runtime executes plugin commands.
type Sandbox struct {
	doc   *Document
	jobs  chan job
	quit  chan struct{}
	once  sync.Once
	wg    sync.WaitGroup
	calls int
	mu    sync.Mutex
}

// NewSandbox starts the execution goroutine for doc.
func NewSandbox(doc *Document) *Sandbox {
	s := &Sandbox{
		doc:  doc,
		jobs: make(chan job),
		quit: make(chan struct{}),
	}
	s.wg.Add(1)
	go s.loop()
	return s
}

func (s *Sandbox) loop() {
	defer s.wg.Done()
	for {
		select {
		case j := <-s.jobs:
			v, err := s.exec(j.fn, j.scope)
			j.cb(v, err)
			if j.done != nil {
				close(j.done)
			}
		case <-s.quit:
			return
		}
	}
}

func (s *Sandbox) exec(fn platform.DocFunc, scope *platform.Scope) (v any, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("sandbox: %v", p)
		}
	}()
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
	return fn(s.doc, scope)
}

// CallCommand implements platform.Sandbox. Synchronous calls return after the
// callback has fired; asynchronous calls return once the job is queued.
// After Close the callback receives ErrClosed.
func (s *Sandbox) CallCommand(fn platform.DocFunc, opts platform.CallOptions, callback func(any, error)) {
	j := job{fn: fn, scope: opts.Scope, cb: callback}
	if !opts.Async {
		j.done = make(chan struct{})
	}
	select {
	case s.jobs <- j:
	case <-s.quit:
		callback(nil, ErrClosed)
		return
	}
	if j.done != nil {
		<-j.done
	}
}

// Calls returns how many functions have executed.
func (s *Sandbox) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

// Document returns the document the sandbox executes against.
func (s *Sandbox) Document() *Document { return s.doc }

// Close stops the execution goroutine.
func (s *Sandbox) Close() {
	s.once.Do(func() {
		close(s.quit)
		s.wg.Wait()
	})
}
