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

// Package resiliency provides an explicit retry combinator with exponential
// backoff and error-based retry classification.
package resiliency

import (
	"context"
	"errors"
	"math"
	"time"
)

// Policy retries a failing operation with exponential backoff. The operation
// is attempted at most MaxAttempts times; attempt n sleeps
// BaseDelay * BackoffFactor^(n-1) before retrying.
type Policy struct {
	// MaxAttempts caps the total number of attempts, first call included.
	MaxAttempts int
	// BaseDelay is the delay before the second attempt.
	BaseDelay time.Duration
	// BackoffFactor multiplies the delay after every failed attempt.
	BackoffFactor float64
	// Retryable lists the errors worth retrying. Errors outside the set end
	// the run immediately. An empty set treats every error as retryable.
	Retryable []error
}

// NewPolicy creates a retry policy with the given attempt cap, initial delay
// and backoff factor. The retryable error set restricts which failures are
// retried; leave it empty to retry all of them.
func NewPolicy(maxAttempts int, baseDelay time.Duration, backoffFactor float64, retryable ...error) *Policy {
	return &Policy{
		MaxAttempts:   maxAttempts,
		BaseDelay:     baseDelay,
		BackoffFactor: backoffFactor,
		Retryable:     retryable,
	}
}

// Run executes the operation under the retry policy. It returns nil as soon
// as an attempt succeeds, the last error once the attempts are exhausted, the
// first non-retryable error immediately, or the context error when the
// context ends during a backoff sleep.
func (p *Policy) Run(ctx context.Context, op func(ctx context.Context) error) error {
	var err error
	for attempt := 1; attempt <= p.MaxAttempts; attempt++ {
		if err = op(ctx); err == nil {
			return nil
		}
		if !p.retryable(err) {
			return err
		}
		if attempt == p.MaxAttempts {
			break
		}
		delay := time.Duration(float64(p.BaseDelay) * math.Pow(p.BackoffFactor, float64(attempt-1)))
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return err
}

func (p *Policy) retryable(err error) bool {
	if len(p.Retryable) == 0 {
		return true
	}
	for _, candidate := range p.Retryable {
		if errors.Is(err, candidate) {
			return true
		}
	}
	return false
}
