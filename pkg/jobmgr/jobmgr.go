// Package jobmgr runs named long-lived jobs under a shared parent context,
// tracks which are running and reports their lifecycle.
//
//	jm := jobmgr.NewManager(ctx, func(msg string) { log.Println("[INFO] job", msg) })
//	_ = jm.StartAsync("liveness", func(ctx context.Context) error {
//	    return liveness.Run(ctx, ":8080")
//	})
//	...
//	jm.StopAll()
//	jm.Wait()
package jobmgr

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Job is a running unit of work.
type Job struct {
	Name   string
	Cancel context.CancelFunc
}

// StatusReporter receives lifecycle events such as
//
//	running:liveness
//	error:discord:failed to open session
//	done:liveness
type StatusReporter func(string)

// Failure is a job that returned an error.
type Failure struct {
	Name string
	Err  error
}

func (f Failure) Error() string { return fmt.Sprintf("job %s: %v", f.Name, f.Err) }
func (f Failure) Unwrap() error { return f.Err }

// Manager is safe for concurrent use.
type Manager struct {
	parent   context.Context
	mu       sync.Mutex
	jobs     map[string]*Job
	wg       sync.WaitGroup
	failures chan Failure
	Reporter StatusReporter
}

// NewManager creates a Manager whose jobs stop when parent is cancelled.
// reporter may be nil.
func NewManager(parent context.Context, reporter StatusReporter) *Manager {
	return &Manager{
		parent:   parent,
		jobs:     make(map[string]*Job),
		failures: make(chan Failure, 8),
		Reporter: reporter,
	}
}

// StartSync runs a job in the calling goroutine.
func (m *Manager) StartSync(name string, runner func(ctx context.Context) error) error {
	ctx, cancel := context.WithCancel(m.parent)
	defer cancel()
	if err := runner(ctx); err != nil {
		return Failure{Name: name, Err: err}
	}
	return nil
}

// StartAsync runs a job in its own goroutine. Starting a name that is
// already running is an error. Jobs are forgotten once they return.
func (m *Manager) StartAsync(name string, runner func(ctx context.Context) error) error {
	m.mu.Lock()
	if _, exists := m.jobs[name]; exists {
		m.mu.Unlock()
		return fmt.Errorf("job '%s' is already running", name)
	}
	ctx, cancel := context.WithCancel(m.parent)
	job := &Job{Name: name, Cancel: cancel}
	m.jobs[name] = job
	m.wg.Add(1)
	m.mu.Unlock()

	go func() {
		defer m.wg.Done()
		defer cancel()
		m.report("running:" + name)

		err := runner(ctx)
		switch {
		case err != nil && !errors.Is(err, context.Canceled):
			m.report("error:" + name + ":" + err.Error())
			select {
			case m.failures <- Failure{Name: name, Err: err}:
			default:
			}
		default:
			m.report("done:" + name)
		}

		m.mu.Lock()
		if m.jobs[name] == job {
			delete(m.jobs, name)
		}
		m.mu.Unlock()
	}()

	return nil
}

// Failures delivers jobs that ended with an error. Excess failures are
// dropped once the buffer is full.
func (m *Manager) Failures() <-chan Failure { return m.failures }

// Stop cancels a running job by name.
func (m *Manager) Stop(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	job, ok := m.jobs[name]
	if !ok {
		return fmt.Errorf("job '%s' not running", name)
	}
	job.Cancel()
	delete(m.jobs, name)
	return nil
}

// StopAll cancels every running job.
func (m *Manager) StopAll() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for name, job := range m.jobs {
		job.Cancel()
		delete(m.jobs, name)
	}
}

// Wait blocks until every started job has returned.
func (m *Manager) Wait() { m.wg.Wait() }

// List returns the running job names, sorted.
func (m *Manager) List() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]string, 0, len(m.jobs))
	for k := range m.jobs {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Status is a human-readable summary, e.g. "Running jobs: discord, liveness".
func (m *Manager) Status() string {
	active := m.List()
	if len(active) == 0 {
		return "No jobs are running."
	}
	return fmt.Sprintf("Running jobs: %s", strings.Join(active, ", "))
}

func (m *Manager) report(s string) {
	if m.Reporter != nil {
		m.Reporter(s)
	}
}
