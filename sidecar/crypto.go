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
	"bytes"
	"context"
	"fmt"
	"io"
	stdhttp "net/http"
)

const (
	keyNameHeader       = "dapr-key-name"
	keyWrapAlgoHeader   = "dapr-key-wrap-algorithm"
	defaultKeyWrapAlgo  = "RSA"
	contentTypeOctetStr = "application/octet-stream"
)

// Encrypt encrypts the plaintext with the named key of the discovered crypto
// component.
func (x *Client) Encrypt(ctx context.Context, plaintext []byte, keyName string) ([]byte, error) {
	return x.transformCrypto(ctx, "encrypt", plaintext, keyName)
}

// Decrypt decrypts a ciphertext produced by Encrypt.
func (x *Client) Decrypt(ctx context.Context, ciphertext []byte, keyName string) ([]byte, error) {
	return x.transformCrypto(ctx, "decrypt", ciphertext, keyName)
}

func (x *Client) transformCrypto(ctx context.Context, operation string, data []byte, keyName string) ([]byte, error) {
	if x.settings.Crypto == "" {
		return nil, ErrCryptoNotConfigured
	}

	path := fmt.Sprintf("/v1.0/crypto/%s/%s", x.settings.Crypto, operation)
	req, err := stdhttp.NewRequestWithContext(ctx, stdhttp.MethodPut, x.url(path), bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", contentTypeOctetStr)
	req.Header.Set(keyNameHeader, keyName)
	req.Header.Set(keyWrapAlgoHeader, defaultKeyWrapAlgo)

	resp, err := x.do(req)
	if err != nil {
		return nil, err
	}
	defer discard(resp)

	if resp.StatusCode != stdhttp.StatusOK {
		return nil, fmt.Errorf("crypto component [%s] answered status %d on %s", x.settings.Crypto, resp.StatusCode, operation)
	}
	return io.ReadAll(resp.Body)
}
