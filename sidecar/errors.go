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

import "errors"

var (
	// ErrSidecarUnreachable is returned when the sidecar cannot be reached
	// over the network. It is worth retrying.
	ErrSidecarUnreachable = errors.New("sidecar is unreachable")

	// ErrMalformedMetadata is returned when the sidecar metadata endpoint
	// answers with a payload missing the required shape. Retrying will not
	// help.
	ErrMalformedMetadata = errors.New("sidecar returned malformed metadata")

	// ErrStateConflict is returned when a state write loses an optimistic
	// concurrency race. The caller must re-read before writing again.
	ErrStateConflict = errors.New("state write rejected due to a version conflict")

	// ErrStateEntryNotFound is returned when the requested state key holds
	// no value.
	ErrStateEntryNotFound = errors.New("state entry not found")

	// ErrStoreUnavailable is returned when a store component answers an
	// unexpected status.
	ErrStoreUnavailable = errors.New("store is unavailable")

	// ErrRegistrationFailed is returned when the service record could not be
	// persisted after all registration attempts.
	ErrRegistrationFailed = errors.New("service registration failed")

	// ErrTopicUnresolved is returned by Publish when neither an explicit
	// target nor a discovered default topic resolves the destination.
	ErrTopicUnresolved = errors.New("no publish topic could be resolved")

	// ErrConfigStoreNotConfigured is returned when a configuration operation
	// runs before capability discovery found a configuration store.
	ErrConfigStoreNotConfigured = errors.New("no configuration store is configured")

	// ErrSecretStoreNotConfigured is returned when a secret operation runs
	// before capability discovery found a secret store.
	ErrSecretStoreNotConfigured = errors.New("no secret store is configured")

	// ErrStateStoreNotConfigured is returned when a state operation runs
	// before capability discovery found a state store.
	ErrStateStoreNotConfigured = errors.New("no state store is configured")

	// ErrPubSubNotConfigured is returned when Publish runs before capability
	// discovery found a pubsub broker.
	ErrPubSubNotConfigured = errors.New("no pubsub broker is configured")

	// ErrCryptoNotConfigured is returned when an encryption operation runs
	// before capability discovery found a crypto component.
	ErrCryptoNotConfigured = errors.New("no crypto component is configured")
)
