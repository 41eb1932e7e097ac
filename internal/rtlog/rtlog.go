// Package rtlog centralizes the runtime's diagnostic logging.
//
// The core never logs user-visible errors: panics and Error objects
// are values that propagate through the evaluator and surface to the
// embedding host. What gets logged here is scheduler and GC activity
// useful to someone debugging the runtime itself, at Debug/Trace
// level only.
package rtlog

import (
	"os"
	"sync"

	"github.com/sirupsen/logrus"
)

var (
	once sync.Once
	base *logrus.Logger
)

func logger() *logrus.Logger {
	once.Do(func() {
		base = logrus.New()
		base.SetOutput(os.Stderr)
		base.SetLevel(logrus.WarnLevel)
		if os.Getenv("ARGON_RT_TRACE") != "" {
			base.SetLevel(logrus.TraceLevel)
		} else if os.Getenv("ARGON_RT_DEBUG") != "" {
			base.SetLevel(logrus.DebugLevel)
		}
	})
	return base
}

// SetLevel overrides the configured log level; primarily for tests and
// for hosts embedding the runtime that want verbose scheduler traces.
func SetLevel(level string) error {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return err
	}
	logger().SetLevel(lvl)
	return nil
}

// Scheduler returns a logger entry scoped to the scheduler subsystem.
func Scheduler() *logrus.Entry { return logger().WithField("component", "scheduler") }

// GC returns a logger entry scoped to the cycle collector.
func GC() *logrus.Entry { return logger().WithField("component", "gc") }

// Fiber returns a logger entry scoped to fiber lifecycle events.
func Fiber() *logrus.Entry { return logger().WithField("component", "fiber") }

// Eval returns a logger entry scoped to the bytecode evaluator.
func Eval() *logrus.Entry { return logger().WithField("component", "eval") }
