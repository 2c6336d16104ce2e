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

	"github.com/spf13/viper"

	"github.com/kettlab/sidekick/log"
)

// Environment variable names bound by FromEnv.
const (
	envNamespace       = "NAMESPACE"
	envDebug           = "DEBUG"
	envLogLevel        = "LOG_LEVEL"
	envMaxSyncInterval = "MAX_STORE_SYNC_INTERVAL"
	envSidecarHost     = "SIDECAR_HOST"
	envSidecarHTTPPort = "SIDECAR_HTTP_PORT"
	envHealthTimeout   = "HEALTH_TIMEOUT"
	envSecretName      = "SECRETSTORE_SECRET_NAME"
	envAPIRoot         = "API_ROOT"
)

// FromEnv overrides settings from environment variables. NAMESPACE selects
// the deployment environment whose defaults seed the debug flag and log
// level; the remaining variables override individual values. Durations are
// given in seconds.
func FromEnv() Option {
	return OptionFunc(func(settings *Settings) {
		v := viper.New()
		for _, key := range []string{
			envNamespace, envDebug, envLogLevel, envMaxSyncInterval,
			envSidecarHost, envSidecarHTTPPort, envHealthTimeout,
			envSecretName, envAPIRoot,
		} {
			_ = v.BindEnv(key)
		}

		environment := ParseEnvironment(v.GetString(envNamespace))
		if environment != settings.Environment {
			settings.Environment = environment
			settings.Debug = environment.Debug()
			settings.LogLevel = environment.LogLevel()
		}

		v.SetDefault(envDebug, settings.Debug)
		v.SetDefault(envLogLevel, settings.LogLevel.String())
		v.SetDefault(envMaxSyncInterval, int(settings.MaxSyncInterval/time.Second))
		v.SetDefault(envSidecarHost, settings.SidecarHost)
		v.SetDefault(envSidecarHTTPPort, settings.SidecarHTTPPort)
		v.SetDefault(envHealthTimeout, int(settings.HealthTimeout/time.Second))
		v.SetDefault(envSecretName, settings.SecretName)
		v.SetDefault(envAPIRoot, settings.APIRoot)

		settings.Debug = v.GetBool(envDebug)
		if level, ok := log.ParseLevel(v.GetString(envLogLevel)); ok {
			settings.LogLevel = level
		}
		settings.MaxSyncInterval = time.Duration(v.GetInt(envMaxSyncInterval)) * time.Second
		settings.SidecarHost = v.GetString(envSidecarHost)
		settings.SidecarHTTPPort = v.GetInt(envSidecarHTTPPort)
		settings.HealthTimeout = time.Duration(v.GetInt(envHealthTimeout)) * time.Second
		settings.SecretName = v.GetString(envSecretName)
		settings.APIRoot = v.GetString(envAPIRoot)
	})
}
