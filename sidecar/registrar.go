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

package sidecar

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/flowchartsman/retry"
)

const (
	registrationAttempts = 5
	registrationInterval = time.Second
)

// Record is the registration record a service persists in the shared state
// store so peers can discover its broker and topic.
type Record struct {
	AppName     string `json:"app_name"`
	ConfigStore string `json:"configstore"`
	SecretStore string `json:"secretstore"`
	StateStore  string `json:"statestore"`
	PubSub      string `json:"pubsub"`
	Topic       string `json:"topic"`
	DeadLetter  string `json:"deadletter"`
	Crypto      string `json:"crypto"`
}

// metadataKey derives the state store key holding a service's registration
// record.
func metadataKey(service string) string {
	return "__metadata__" + service
}

// Register persists the service's registration record in the shared state
// store so peers can address it. The write is guarded with first-write
// concurrency against the record's current version tag and retried at a
// fixed interval; losing the race re-reads the tag before the next attempt.
// Registration is idempotent. Exhausting the attempts fails with
// ErrRegistrationFailed.
func (x *Client) Register(ctx context.Context) error {
	if x.settings.StateStore == "" {
		return fmt.Errorf("%w: no state store discovered", ErrRegistrationFailed)
	}

	record := Record{
		AppName:     x.settings.Name,
		ConfigStore: x.settings.ConfigStore,
		SecretStore: x.settings.SecretStore,
		StateStore:  x.settings.StateStore,
		PubSub:      x.settings.PubSub,
		Topic:       x.settings.Topic,
		DeadLetter:  x.settings.DeadLetter,
		Crypto:      x.settings.Crypto,
	}

	key := metadataKey(x.settings.Name)
	retrier := retry.NewRetrier(registrationAttempts, registrationInterval, registrationInterval)
	err := retrier.RunContext(ctx, func(ctx context.Context) error {
		// SaveState re-reads the version tag on every attempt, so a lost
		// race is recoverable on the next one
		return x.SaveState(ctx, key, record,
			WithConcurrency(FirstWrite),
			WithConsistency(Strong))
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRegistrationFailed, err)
	}

	x.logger.Infof("service [%s] registered under key [%s]", x.settings.Name, key)
	return nil
}

// Bootstrap runs capability discovery and, in register mode, persists the
// service registration record.
func (x *Client) Bootstrap(ctx context.Context, register bool) error {
	if err := x.Discover(ctx); err != nil {
		return err
	}
	if !register {
		return nil
	}
	return x.Register(ctx)
}

// PeerMetadata reads the registration record of the given peer service from
// the shared state store.
func (x *Client) PeerMetadata(ctx context.Context, service string) (*Record, error) {
	entry, err := x.GetState(ctx, metadataKey(service))
	if err != nil {
		return nil, err
	}
	record := new(Record)
	if err := json.Unmarshal(entry.Value, record); err != nil {
		return nil, fmt.Errorf("failed to decode registration record of [%s]: %w", service, err)
	}
	return record, nil
}
