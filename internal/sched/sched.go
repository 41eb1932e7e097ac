// Package sched implements Argon's M:N scheduler (spec.md §4.7): a
// bounded pool of OS threads cooperatively sharing a bounded set of
// virtual cores, each wrapping a local fiber queue, with work-stealing
// and a global fallback queue.
package sched

import (
	"context"
	"math/rand"
	"runtime"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/argonlang/argon-rt/fiber"
	"github.com/argonlang/argon-rt/internal/eval"
	"github.com/argonlang/argon-rt/internal/rtlog"
	"github.com/argonlang/argon-rt/value"
)

// Config mirrors spec.md §4.7's startup configuration.
type Config struct {
	MaxVCores  int // default: hardware concurrency, else 2
	MaxOST     int64
	FiberStackSize int
	FiberPoolCap   int
}

func DefaultConfig() Config {
	vc := runtime.NumCPU()
	if vc < 1 {
		vc = 2
	}
	return Config{MaxVCores: vc, MaxOST: 4096, FiberStackSize: 64 * 1024, FiberPoolCap: 256}
}

// kScheduleTickBeforeCheck is how many local-queue iterations an OS
// thread runs before checking the global queue for fairness
// (spec.md §4.7's "e.g. 61").
const kScheduleTickBeforeCheck = 61

// VCore is a virtual core: a local fiber queue an OS thread wires
// itself to while running.
type VCore struct {
	id    int
	Local *fiber.Queue
}

// Scheduler owns the VCore pool, the global queue, and OS-thread
// lifecycle (spec.md §4.7).
type Scheduler struct {
	cfg Config

	global *fiber.Queue

	mu      sync.Mutex
	idleVC  []*VCore
	activeVC []*VCore
	allVC    []*VCore

	ostSem *semaphore.Weighted
	ostTotal atomic.Int64

	spinning atomic.Int64
	busyVC   atomic.Int64

	wake    chan struct{}
	fiberPool chan *fiber.Fiber
	tick      atomic.Int64

	group  *errgroup.Group
	gctx   context.Context
	cancel context.CancelFunc
}

// New constructs a scheduler with cfg.MaxVCores virtual cores, all
// initially idle.
func New(cfg Config) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	g, gctx := errgroup.WithContext(ctx)
	s := &Scheduler{
		cfg:    cfg,
		global: fiber.NewQueue(0),
		ostSem: semaphore.NewWeighted(maxOSTOrDefault(cfg)),
		wake:   make(chan struct{}, cfg.MaxVCores),
		fiberPool: make(chan *fiber.Fiber, cfg.FiberPoolCap),
		group:  g,
		gctx:   gctx,
		cancel: cancel,
	}
	for i := 0; i < cfg.MaxVCores; i++ {
		vc := &VCore{id: i, Local: fiber.NewQueue(0)}
		s.idleVC = append(s.idleVC, vc)
		s.allVC = append(s.allVC, vc)
	}
	return s
}

func maxOSTOrDefault(c Config) int64 {
	if c.MaxOST <= 0 {
		return 4096
	}
	return c.MaxOST
}

// Spawn enqueues fb on the global queue, posts a wake signal for a
// parked OS thread, and starts a new OS thread whenever the total is
// under MaxOST, whether or not a parked thread exists.
func (s *Scheduler) Spawn(fb *fiber.Fiber) {
	s.global.Enqueue(fb)
	select {
	case s.wake <- struct{}{}:
	default:
	}
	s.maybeStartThread()
}

// EvalAsync is Spawn with a future attached, returning it so the
// caller can FutureWait or FutureAWait (spec.md §4.7).
func (s *Scheduler) EvalAsync(fb *fiber.Fiber) *value.Future {
	fut := value.NewFuture()
	fb.Future = fut
	s.Spawn(fb)
	return fut
}

func (s *Scheduler) maybeStartThread() {
	if !s.ostSem.TryAcquire(1) {
		return
	}
	s.ostTotal.Add(1)
	s.group.Go(func() error {
		defer s.ostSem.Release(1)
		defer s.ostTotal.Add(-1)
		s.runOSThread()
		return nil
	})
}

// Shutdown signals every OS thread to stop and waits (bounded by ctx)
// for them to exit. A fiber spawned afterwards is queued but never run.
func (s *Scheduler) Shutdown(ctx context.Context) error {
	s.cancel()
	done := make(chan error, 1)
	go func() { done <- s.group.Wait() }()
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// runOSThread is the lifecycle loop of one OS thread (spec.md §4.7).
func (s *Scheduler) runOSThread() {
	log := rtlog.Scheduler()
	var owned *VCore

	for {
		select {
		case <-s.gctx.Done():
			if owned != nil {
				s.releaseVCore(owned)
			}
			return
		default:
		}

		if owned == nil {
			owned = s.acquireVCore()
			if owned == nil {
				select {
				case <-s.wake:
					continue
				case <-s.gctx.Done():
					return
				}
			}
		}

		fb := s.popWork(owned)
		if fb == nil {
			s.releaseVCore(owned)
			owned = nil
			continue
		}

		log.WithField("fiber", fb.ID).Debug("running fiber")
		fb.Status = fiber.Running
		outcome, result, err := eval.Run(fb)
		switch outcome {
		case eval.Suspended:
			fb.Status = fiber.Suspended
			owned.Local.InsertHead(fb)
		default:
			if outcome == eval.Panicked {
				fb.Status = fiber.Blocked
				if fb.Future != nil {
					fb.Future.Fulfill(value.Err(value.ErrorFromGo(err)))
				}
			} else {
				fb.Status = fiber.Runnable
				if fb.Future != nil {
					fb.Future.Fulfill(value.Ok(result))
				}
			}
			s.returnToPool(fb)
		}
	}
}

func (s *Scheduler) acquireVCore() *VCore {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.idleVC) == 0 {
		return nil
	}
	vc := s.idleVC[len(s.idleVC)-1]
	s.idleVC = s.idleVC[:len(s.idleVC)-1]
	s.activeVC = append(s.activeVC, vc)
	s.busyVC.Add(1)
	return vc
}

func (s *Scheduler) releaseVCore(vc *VCore) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, a := range s.activeVC {
		if a == vc {
			s.activeVC = append(s.activeVC[:i], s.activeVC[i+1:]...)
			break
		}
	}
	s.idleVC = append(s.idleVC, vc)
	s.busyVC.Add(-1)
}

// popWork implements the main-loop polling order of spec.md §4.7: a
// fairness check of the global queue every kScheduleTickBeforeCheck
// calls, otherwise the local queue, then the global queue, then a
// random-VCore steal bounded by the spinning-thread cap.
func (s *Scheduler) popWork(vc *VCore) *fiber.Fiber {
	if s.tick.Add(1)%kScheduleTickBeforeCheck == 0 {
		if fb := s.global.Dequeue(); fb != nil {
			return fb
		}
	}
	if fb := vc.Local.Dequeue(); fb != nil {
		return fb
	}
	if fb := s.global.Dequeue(); fb != nil {
		return fb
	}
	return s.tryStealOnce(vc)
}

func (s *Scheduler) tryStealOnce(vc *VCore) *fiber.Fiber {
	if s.spinning.Load()+1 > s.busyVC.Load() {
		return nil
	}
	s.spinning.Add(1)
	defer s.spinning.Add(-1)

	s.mu.Lock()
	candidates := append([]*VCore{}, s.allVC...)
	s.mu.Unlock()
	if len(candidates) < 2 {
		return nil
	}
	target := candidates[rand.Intn(len(candidates))]
	if target == vc {
		return nil
	}
	return vc.Local.StealDequeue(2, target.Local)
}

func (s *Scheduler) returnToPool(fb *fiber.Fiber) {
	select {
	case s.fiberPool <- fb:
	default:
	}
}

// TotalOSThreads reports the current number of live OS threads, for
// introspection/tests.
func (s *Scheduler) TotalOSThreads() int64 { return s.ostTotal.Load() }
