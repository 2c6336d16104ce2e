// MIT License
//
// Copyright (c) 2022-2026 Kett Labs
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

package scheduler

import (
	"time"

	"github.com/kettlab/sidekick/log"
	"github.com/kettlab/sidekick/sidecar"
)

// Option is the interface that applies a configuration option to the
// scheduler.
type Option interface {
	// Apply sets the Option value of a config.
	Apply(scheduler *Scheduler)
}

// enforce compilation error
var _ Option = OptionFunc(nil)

// OptionFunc implements the Option interface.
type OptionFunc func(scheduler *Scheduler)

// Apply applies the options to the scheduler
func (f OptionFunc) Apply(scheduler *Scheduler) {
	f(scheduler)
}

// WithLogger sets the logger
func WithLogger(logger log.Logger) Option {
	return OptionFunc(func(scheduler *Scheduler) {
		scheduler.logger = logger
	})
}

// WithConfigTargets adds configuration sync targets next to the settings
// context.
func WithConfigTargets(targets ...sidecar.Syncable) Option {
	return OptionFunc(func(scheduler *Scheduler) {
		scheduler.configTargets = append(scheduler.configTargets, targets...)
	})
}

// WithSecretTargets attaches secret sync targets. Without any the secret
// sync step is skipped.
func WithSecretTargets(targets ...sidecar.Syncable) Option {
	return OptionFunc(func(scheduler *Scheduler) {
		scheduler.secretTargets = append(scheduler.secretTargets, targets...)
	})
}

// WithWorkflowRuntime attaches a workflow runtime started on every round.
func WithWorkflowRuntime(runtime WorkflowRuntime) Option {
	return OptionFunc(func(scheduler *Scheduler) {
		scheduler.runtime = runtime
	})
}

// WithWarmup overrides the delay before the first sync round.
func WithWarmup(warmup time.Duration) Option {
	return OptionFunc(func(scheduler *Scheduler) {
		scheduler.warmup = warmup
	})
}

// WithSettleDelay overrides the pause between the bootstrap and the first
// fetch round.
func WithSettleDelay(settle time.Duration) Option {
	return OptionFunc(func(scheduler *Scheduler) {
		scheduler.settle = settle
	})
}

// WithStopTimeout bounds how long Stop waits for an in-flight round.
func WithStopTimeout(timeout time.Duration) Option {
	return OptionFunc(func(scheduler *Scheduler) {
		scheduler.stopTimeout = timeout
	})
}
