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
	"strings"

	"github.com/kettlab/sidekick/log"
)

// Environment identifies the deployment environment of a service.
type Environment string

const (
	// Development is the default environment.
	Development Environment = "DEVELOPMENT"
	// Staging identifies a pre-production deployment.
	Staging Environment = "STAGING"
	// Production identifies a production deployment.
	Production Environment = "PRODUCTION"
)

// ParseEnvironment resolves an environment name case-insensitively.
// Unknown names resolve to Development.
func ParseEnvironment(raw string) Environment {
	switch Environment(strings.ToUpper(strings.TrimSpace(raw))) {
	case Staging:
		return Staging
	case Production:
		return Production
	default:
		return Development
	}
}

// Debug returns the default debugging flag of the environment.
func (e Environment) Debug() bool {
	return e != Production
}

// LogLevel returns the default log level of the environment.
func (e Environment) LogLevel() log.Level {
	if e == Production {
		return log.InfoLevel
	}
	return log.DebugLevel
}
