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
	"fmt"
	"math/rand/v2"
	"time"

	"go.uber.org/atomic"
)

// jitterTrigger fires once after the warmup delay and then repeatedly after a
// delay drawn uniformly from [0.9*maxInterval, maxInterval]. The jitter keeps
// a fleet of services from hitting their stores in lockstep.
type jitterTrigger struct {
	warmup      time.Duration
	maxInterval time.Duration
	fired       *atomic.Bool
}

func newJitterTrigger(warmup, maxInterval time.Duration) *jitterTrigger {
	return &jitterTrigger{
		warmup:      warmup,
		maxInterval: maxInterval,
		fired:       atomic.NewBool(false),
	}
}

// NextFireTime returns the next fire time in nanoseconds relative to prev.
func (t *jitterTrigger) NextFireTime(prev int64) (int64, error) {
	if t.fired.CompareAndSwap(false, true) {
		return prev + t.warmup.Nanoseconds(), nil
	}
	lower := t.maxInterval.Nanoseconds() * 9 / 10
	upper := t.maxInterval.Nanoseconds()
	delay := lower
	if upper > lower {
		delay += rand.Int64N(upper - lower + 1)
	}
	return prev + delay, nil
}

// Description returns the description of the trigger.
func (t *jitterTrigger) Description() string {
	return fmt.Sprintf("jitterTrigger(warmup=%s, maxInterval=%s)", t.warmup, t.maxInterval)
}
