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

package config

import (
	"time"

	"github.com/kettlab/sidekick/log"
)

// Option is the interface that applies a configuration option.
type Option interface {
	// Apply sets the Option value of the settings.
	Apply(settings *Settings)
}

var _ Option = OptionFunc(nil)

// OptionFunc implements the Option interface.
type OptionFunc func(settings *Settings)

// Apply applies the settings option
func (f OptionFunc) Apply(settings *Settings) {
	f(settings)
}

// WithDescription sets the service description.
func WithDescription(description string) Option {
	return OptionFunc(func(settings *Settings) {
		settings.Description = description
	})
}

// WithAPIRoot sets the root path the service is mounted under.
func WithAPIRoot(apiRoot string) Option {
	return OptionFunc(func(settings *Settings) {
		settings.APIRoot = apiRoot
	})
}

// WithEnvironment sets the deployment environment and resets the debug flag
// and log level to the environment defaults. Combine with WithDebug or
// WithLogLevel after this option to override those defaults.
func WithEnvironment(environment Environment) Option {
	return OptionFunc(func(settings *Settings) {
		settings.Environment = environment
		settings.Debug = environment.Debug()
		settings.LogLevel = environment.LogLevel()
	})
}

// WithDebug sets the debugging flag.
func WithDebug(debug bool) Option {
	return OptionFunc(func(settings *Settings) {
		settings.Debug = debug
	})
}

// WithLogLevel sets the log level.
func WithLogLevel(level log.Level) Option {
	return OptionFunc(func(settings *Settings) {
		settings.LogLevel = level
	})
}

// WithMaxSyncInterval sets the upper bound of the randomized sync interval.
func WithMaxSyncInterval(interval time.Duration) Option {
	return OptionFunc(func(settings *Settings) {
		settings.MaxSyncInterval = interval
	})
}

// WithSidecar sets the sidecar host and HTTP port.
func WithSidecar(host string, httpPort int) Option {
	return OptionFunc(func(settings *Settings) {
		settings.SidecarHost = host
		settings.SidecarHTTPPort = httpPort
	})
}

// WithSecretName sets the name of the multi-key secret holding all secret
// values.
func WithSecretName(secretName string) Option {
	return OptionFunc(func(settings *Settings) {
		settings.SecretName = secretName
	})
}
