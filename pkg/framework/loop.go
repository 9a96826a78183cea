package framework

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/golang/glog"
)

// Loop is a cooperative, non-preemptive scheduler. Once per iteration
// it runs every registered controller in phase order. Controllers own
// their state exclusively; the only cross-goroutine seam is PostLine,
// which hands inbound lines to the next iteration.
type Loop struct {
	Interval time.Duration

	phases  [phaseCount][]Controller
	runners []Runnable

	lock    sync.Mutex
	pending [][]byte

	wakeUpCh chan struct{}
}

// LoopAdder provides specific logic to add components to a loop.
type LoopAdder interface {
	AddToLoop(*Loop)
}

// DefaultInterval keeps the iteration period small relative to the
// drive ramp interval and the link watchdog timeout.
const DefaultInterval = time.Millisecond

// NewLoop creates a Loop.
func NewLoop() *Loop {
	return &Loop{
		Interval: DefaultInterval,
		wakeUpCh: make(chan struct{}, 1),
	}
}

// Add adds LoopAdders.
func (l *Loop) Add(adders ...LoopAdder) *Loop {
	for _, adder := range adders {
		adder.AddToLoop(l)
	}
	return l
}

// At registers controllers to run in the given phase.
func (l *Loop) At(phase Phase, ctls ...Controller) *Loop {
	l.phases[phase] = append(l.phases[phase], ctls...)
	return l
}

// AddRunnable adds background runners started alongside the loop.
func (l *Loop) AddRunnable(runnables ...Runnable) *Loop {
	l.runners = append(l.runners, runnables...)
	return l
}

// PostLine implements LinePoster. The line is retained, so callers
// reusing a buffer must pass a copy.
func (l *Loop) PostLine(line []byte) {
	l.lock.Lock()
	l.pending = append(l.pending, line)
	l.lock.Unlock()
	l.TriggerNext()
}

// TriggerNext schedules the next iteration to run immediately.
func (l *Loop) TriggerNext() {
	select {
	case l.wakeUpCh <- struct{}{}:
	default:
	}
}

// Run implements Runnable.
func (l *Loop) Run(ctx context.Context) error {
	if l.wakeUpCh == nil {
		l.wakeUpCh = make(chan struct{}, 1)
	}

	runner := NewRunnerWith(ctx)
	runner.Go(l.runners...)
	defer runner.Wait()

	interval := l.Interval
	if interval == 0 {
		interval = DefaultInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			l.runIteration(ctx)
		case <-l.wakeUpCh:
			l.runIteration(ctx)
		}
	}
}

// RunOrFail is intended to be used in main to simply run the loop.
func (l *Loop) RunOrFail() {
	if err := l.Run(context.TODO()); err != nil && err != context.Canceled {
		log.Fatalln(err)
	}
}

func (l *Loop) runIteration(ctx context.Context) {
	iter := &iteration{ctx: ctx, time: time.Now()}
	l.lock.Lock()
	iter.lines, l.pending = l.pending, nil
	l.lock.Unlock()
	for p := Phase(0); p < phaseCount; p++ {
		for _, ctl := range l.phases[p] {
			if err := ctl.Control(iter); err != nil {
				glog.Errorf("controller error: %v", err)
			}
		}
	}
}

type iteration struct {
	ctx   context.Context
	time  time.Time
	lines [][]byte
}

func (t *iteration) Context() context.Context {
	return t.ctx
}

func (t *iteration) Time() time.Time {
	return t.time
}

func (t *iteration) TakeLines() [][]byte {
	lines := t.lines
	t.lines = nil
	return lines
}
