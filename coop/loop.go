package coop

import "runtime"

// Poller lets an idle Loop sleep until some stream may have become
// ready instead of spinning through blocked tasks.
type Poller interface {
	Wait() error
}

// Task is one cooperatively scheduled activity. Task methods may only
// be called from inside the function the task was spawned with.
type Task struct {
	resume  chan struct{}
	yielded chan struct{}
	blocked bool
	done    bool
	err     error
}

// Yield hands control back to the loop; the task stays runnable and is
// resumed on the next round.
func (t *Task) Yield() {
	t.blocked = false
	t.yielded <- struct{}{}
	<-t.resume
}

// Block hands control back to the loop marking the task as waiting for
// I/O. When every task is blocked the loop consults its Poller before
// the next round. Level-style readiness keeps this honest: a resumed
// task that still cannot progress simply blocks again.
func (t *Task) Block() {
	t.blocked = true
	t.yielded <- struct{}{}
	<-t.resume
}

// Err returns the task function's result once the task has finished,
// nil before that.
func (t *Task) Err() error {
	if !t.done {
		return nil
	}
	return t.err
}

// Done reports whether the task function has returned.
func (t *Task) Done() bool {
	return t.done
}

// Loop is a single-threaded cooperative scheduler. The zero value is
// ready to use; Poller is optional.
type Loop struct {
	Poller Poller

	tasks   []*Task
	pending []*Task
}

// NewLoop returns an empty loop.
func NewLoop() *Loop {
	return &Loop{}
}

// Spawn registers fn as a new task. The function starts running on the
// next scheduling round; spawning from inside a running task is safe
// since the loop itself is parked while any task runs.
func (l *Loop) Spawn(fn func(*Task) error) *Task {
	t := &Task{
		resume:  make(chan struct{}),
		yielded: make(chan struct{}),
	}
	go func() {
		<-t.resume
		t.err = fn(t)
		t.done = true
		t.yielded <- struct{}{}
	}()
	l.pending = append(l.pending, t)
	return t
}

// Run steps every task round-robin until all of them have finished.
// Within one task, operations complete in the order they were issued;
// across tasks the only guarantee is that exactly one runs at a time.
func (l *Loop) Run() {
	for {
		l.tasks = append(l.tasks, l.pending...)
		l.pending = l.pending[:0]
		if len(l.tasks) == 0 {
			return
		}

		idle := true
		live := l.tasks[:0]
		for _, t := range l.tasks {
			t.resume <- struct{}{}
			<-t.yielded
			if t.done {
				continue
			}
			if !t.blocked {
				idle = false
			}
			live = append(live, t)
		}
		l.tasks = live

		if idle && len(l.tasks) > 0 && len(l.pending) == 0 {
			if l.Poller != nil {
				l.Poller.Wait()
			} else {
				// No readiness source; give other goroutines (tests
				// feeding pipes, the network poller) a chance.
				runtime.Gosched()
			}
			for _, t := range l.tasks {
				t.blocked = false
			}
		}
	}
}
