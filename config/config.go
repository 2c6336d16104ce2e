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

// Package config holds the per-service settings context. The context is built
// once at startup and passed explicitly to the coordination client and the
// sync scheduler; there is no package-level mutable state.
package config

import (
	"strconv"
	"time"

	"github.com/kettlab/sidekick/internal/validation"
	"github.com/kettlab/sidekick/log"
)

const (
	// DefaultMaxSyncInterval is the default upper bound of the randomized
	// periodic sync interval.
	DefaultMaxSyncInterval = 12 * time.Hour
	// MinSyncInterval is the smallest accepted sync interval upper bound.
	MinSyncInterval = time.Hour

	defaultSidecarHost     = "localhost"
	defaultSidecarHTTPPort = 3500
	defaultHealthTimeout   = time.Minute
)

// Settings is the per-service application settings context. Once the service
// is serving, the sync scheduler is its only writer; request-handling code
// treats it as read-only.
type Settings struct {
	// Name is the service name. It namespaces all non-global remote keys.
	Name        string
	Version     string
	Description string
	APIRoot     string

	Environment Environment
	Debug       bool
	LogLevel    log.Level

	// MaxSyncInterval is the upper bound of the randomized store sync interval.
	MaxSyncInterval time.Duration

	SidecarHost     string
	SidecarHTTPPort int
	HealthTimeout   time.Duration

	// Component names resolved by capability discovery. Empty means the
	// component is not provisioned.
	ConfigStore string
	SecretStore string
	// SecretName optionally names a single multi-key secret holding all
	// secret values; when empty each key is looked up as its own secret.
	SecretName string
	StateStore string
	PubSub     string
	Topic      string
	DeadLetter string
	Crypto     string

	// ConfigSubscriptionID holds the active configuration change
	// subscription, when one was registered.
	ConfigSubscriptionID string

	fields *FieldSet
}

// New creates a settings context for the given service name and version and
// builds its syncable field table. Options are applied in declaration order.
func New(name, version string, opts ...Option) (*Settings, error) {
	settings := &Settings{
		Name:            name,
		Version:         version,
		Environment:     Development,
		Debug:           Development.Debug(),
		LogLevel:        Development.LogLevel(),
		MaxSyncInterval: DefaultMaxSyncInterval,
		SidecarHost:     defaultSidecarHost,
		SidecarHTTPPort: defaultSidecarHTTPPort,
		HealthTimeout:   defaultHealthTimeout,
	}

	for _, opt := range opts {
		opt.Apply(settings)
	}

	settings.fields = NewFieldSet(name,
		Field{Name: "debug", Alias: "DEBUG", Sync: true, Assign: func(value string) {
			if parsed, ok := parseBool(value); ok {
				settings.Debug = parsed
			}
		}},
		Field{Name: "log_level", Alias: "LOG_LEVEL", Assign: func(value string) {
			if level, ok := log.ParseLevel(value); ok {
				settings.LogLevel = level
			}
		}},
		Field{Name: "health_timeout", Alias: "HEALTH_TIMEOUT", Global: true, Sync: true, Assign: func(value string) {
			if seconds, err := strconv.Atoi(value); err == nil && seconds > 0 {
				settings.HealthTimeout = time.Duration(seconds) * time.Second
			}
		}},
	)

	if err := settings.Validate(); err != nil {
		return nil, err
	}
	return settings, nil
}

// Validate checks whether the settings context is usable.
func (s *Settings) Validate() error {
	return validation.New(validation.FailFast()).
		AddValidator(validation.NewEmptyStringValidator("Name", s.Name)).
		AddValidator(validation.NewEmptyStringValidator("Version", s.Version)).
		AddAssertion(s.MaxSyncInterval >= MinSyncInterval, "MaxSyncInterval must be at least one hour").
		AddAssertion(s.SidecarHTTPPort > 0, "SidecarHTTPPort must be positive").
		Validate()
}

// SyncKeys returns the remote keys of the settings fields that take part in
// periodic store synchronization, in declaration order.
func (s *Settings) SyncKeys() []string {
	return s.fields.SyncKeys()
}

// Apply writes fetched remote values onto the matching settings fields.
// Keys absent from values leave the local value untouched.
func (s *Settings) Apply(values map[string]string) {
	s.fields.Apply(values)
}

// Fields exposes the syncable field table.
func (s *Settings) Fields() *FieldSet {
	return s.fields
}
