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

import "github.com/spf13/viper"

// Environment variable names bound by NewSecrets.
const (
	envAPIToken   = "SIDECAR_API_TOKEN"
	envDBUser     = "DB_USER"
	envDBPassword = "DB_PASSWORD"
)

// Secrets is the per-service secret settings context. Secrets are loaded from
// the environment at startup and refreshed from the discovered secret store by
// the sync scheduler.
type Secrets struct {
	// APIToken authenticates calls against the sidecar. Never synced.
	APIToken string

	// DBUser and DBPassword are shared credentials synced from the secret
	// store under global keys.
	DBUser     string
	DBPassword string

	fields *FieldSet
}

// NewSecrets creates the secret settings context for the given owning service
// name, seeded from the environment.
func NewSecrets(owner string) *Secrets {
	v := viper.New()
	for _, key := range []string{envAPIToken, envDBUser, envDBPassword} {
		_ = v.BindEnv(key)
	}

	secrets := &Secrets{
		APIToken:   v.GetString(envAPIToken),
		DBUser:     v.GetString(envDBUser),
		DBPassword: v.GetString(envDBPassword),
	}

	secrets.fields = NewFieldSet(owner,
		Field{Name: "db_user", Alias: envDBUser, Global: true, Sync: true, Assign: func(value string) {
			secrets.DBUser = value
		}},
		Field{Name: "db_password", Alias: envDBPassword, Global: true, Sync: true, Assign: func(value string) {
			secrets.DBPassword = value
		}},
	)

	return secrets
}

// SyncKeys returns the remote keys of the secret fields eligible for
// synchronization, in declaration order.
func (s *Secrets) SyncKeys() []string {
	return s.fields.SyncKeys()
}

// Apply writes fetched secret values onto the matching fields. Keys absent
// from values leave the local value untouched.
func (s *Secrets) Apply(values map[string]string) {
	s.fields.Apply(values)
}

// Fields exposes the syncable field table.
func (s *Secrets) Fields() *FieldSet {
	return s.fields
}
