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

// Package scheduler drives the periodic store synchronization of a service:
// a one-time bootstrap of capability discovery and registration, then
// jittered rounds refreshing configurations and secrets.
package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/reugn/go-quartz/job"
	quartzlogger "github.com/reugn/go-quartz/logger"
	"github.com/reugn/go-quartz/quartz"
	"go.uber.org/atomic"

	"github.com/kettlab/sidekick/config"
	"github.com/kettlab/sidekick/log"
	"github.com/kettlab/sidekick/sidecar"
)

const (
	defaultWarmup      = 3 * time.Second
	defaultSettle      = 1500 * time.Millisecond
	defaultStopTimeout = 30 * time.Second
	syncJobKey         = "store-sync"
)

// Coordinator is the slice of the sidecar client the scheduler drives.
type Coordinator interface {
	// Discover resolves the sidecar component names onto the settings.
	Discover(ctx context.Context) error
	// Register persists the service registration record.
	Register(ctx context.Context) error
	// SyncConfigurations refreshes the targets from the configuration store.
	SyncConfigurations(ctx context.Context, targets ...sidecar.Syncable) error
	// SyncSecrets refreshes the targets from the secret store.
	SyncSecrets(ctx context.Context, targets ...sidecar.Syncable) error
}

// enforce compilation error
var _ Coordinator = (*sidecar.Client)(nil)

// WorkflowRuntime is started once per sync round when one is attached. A
// runtime that is already running treats Start as a no-op.
type WorkflowRuntime interface {
	Start(ctx context.Context) error
}

// Scheduler runs the periodic synchronization loop of a service.
type Scheduler struct {
	mu sync.Mutex

	settings    *config.Settings
	coordinator Coordinator

	configTargets []sidecar.Syncable
	secretTargets []sidecar.Syncable
	runtime       WorkflowRuntime

	logger          log.Logger
	quartzScheduler quartz.Scheduler
	started         *atomic.Bool
	bootstrapped    *atomic.Bool

	warmup      time.Duration
	settle      time.Duration
	stopTimeout time.Duration
}

// New creates a sync scheduler for the given settings context. The settings
// themselves are the default configuration sync target; attach further
// targets with the options.
func New(settings *config.Settings, coordinator Coordinator, opts ...Option) *Scheduler {
	quartzScheduler, _ := quartz.NewStdScheduler(quartz.WithLogger(quartzlogger.NewSimpleLogger(nil, quartzlogger.LevelOff)))

	scheduler := &Scheduler{
		settings:        settings,
		coordinator:     coordinator,
		configTargets:   []sidecar.Syncable{settings},
		logger:          log.DefaultLogger,
		quartzScheduler: quartzScheduler,
		started:         atomic.NewBool(false),
		bootstrapped:    atomic.NewBool(false),
		warmup:          defaultWarmup,
		settle:          defaultSettle,
		stopTimeout:     defaultStopTimeout,
	}

	for _, opt := range opts {
		opt.Apply(scheduler)
	}
	return scheduler
}

// Start schedules the sync loop and starts the underlying scheduler. The
// first round fires after the warmup delay, every later round after a delay
// drawn from [0.9*MaxSyncInterval, MaxSyncInterval].
func (x *Scheduler) Start(ctx context.Context) error {
	x.mu.Lock()
	defer x.mu.Unlock()

	x.logger.Info("starting store sync scheduler...")
	syncJob := job.NewFunctionJob[bool](func(ctx context.Context) (bool, error) {
		x.runRound(ctx)
		return true, nil
	})
	detail := quartz.NewJobDetail(syncJob, quartz.NewJobKey(syncJobKey))
	trigger := newJitterTrigger(x.warmup, x.settings.MaxSyncInterval)
	if err := x.quartzScheduler.ScheduleJob(detail, trigger); err != nil {
		return err
	}

	x.quartzScheduler.Start(ctx)
	x.started.Store(x.quartzScheduler.IsStarted())
	x.logger.Info("store sync scheduler started")
	return nil
}

// Stop cancels the sync loop and waits for an in-flight round to finish,
// bounded by the stop timeout. A scheduler that never started is a no-op.
func (x *Scheduler) Stop(ctx context.Context) {
	if !x.started.Load() {
		return
	}

	x.logger.Info("stopping store sync scheduler...")
	x.mu.Lock()
	defer x.mu.Unlock()
	_ = x.quartzScheduler.Clear()
	x.quartzScheduler.Stop()
	x.started.Store(x.quartzScheduler.IsStarted())

	ctx, cancel := context.WithTimeout(ctx, x.stopTimeout)
	defer cancel()
	x.quartzScheduler.Wait(ctx)
	x.logger.Info("store sync scheduler stopped")
}

// Started returns true when the scheduler is running.
func (x *Scheduler) Started() bool {
	return x.started.Load()
}

// runRound executes one synchronization round. The first successful round is
// preceded by capability discovery and service registration. Failures are
// logged and leave the loop running; the next round retries.
func (x *Scheduler) runRound(ctx context.Context) {
	if !x.bootstrapped.Load() {
		if err := x.coordinator.Discover(ctx); err != nil {
			x.logger.Errorf("capability discovery failed: %v", err)
			return
		}
		if err := x.coordinator.Register(ctx); err != nil {
			// the service keeps serving unregistered, peers just cannot
			// address it yet
			x.logger.Warnf("service registration failed: %v", err)
		}
		x.bootstrapped.Store(true)

		// let the registration settle before the first fetch round
		select {
		case <-time.After(x.settle):
		case <-ctx.Done():
			return
		}
	}

	if err := x.coordinator.SyncConfigurations(ctx, x.configTargets...); err != nil {
		x.logger.Errorf("configuration sync failed: %v", err)
	}
	if len(x.secretTargets) > 0 {
		if err := x.coordinator.SyncSecrets(ctx, x.secretTargets...); err != nil {
			x.logger.Errorf("secret sync failed: %v", err)
		}
	}
	if x.runtime != nil {
		if err := x.runtime.Start(ctx); err != nil {
			x.logger.Errorf("workflow runtime failed to start: %v", err)
		} else {
			x.logger.Debug("workflow runtime running")
		}
	}
}
