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

// Package validation checks settings fields before a client is built from them.
package validation

import (
	"errors"
	"fmt"
	"strings"

	"go.uber.org/multierr"
)

// Validator reports whether a single field or condition holds.
type Validator interface {
	Validate() error
}

// Chain runs a sequence of validators and folds their violations into one error.
// By default every validator runs; FailFast stops at the first violation.
type Chain struct {
	failFast   bool
	validators []Validator
}

// ChainOption configures a Chain at creation time.
type ChainOption func(*Chain)

// FailFast makes the chain return the first violation instead of collecting all of them.
func FailFast() ChainOption {
	return func(c *Chain) { c.failFast = true }
}

// New creates a validation chain.
func New(opts ...ChainOption) *Chain {
	chain := new(Chain)
	for _, opt := range opts {
		opt(chain)
	}
	return chain
}

// AddValidator appends a validator to the chain.
func (c *Chain) AddValidator(v Validator) *Chain {
	c.validators = append(c.validators, v)
	return c
}

// AddAssertion appends a condition that must hold, failing with the given message.
func (c *Chain) AddAssertion(holds bool, message string) *Chain {
	return c.AddValidator(assertion{holds: holds, message: message})
}

// Validate runs the chain and returns the accumulated violations, if any.
func (c *Chain) Validate() error {
	var violations error
	for _, v := range c.validators {
		if err := v.Validate(); err != nil {
			if c.failFast {
				return err
			}
			violations = multierr.Append(violations, err)
		}
	}
	return violations
}

type assertion struct {
	holds   bool
	message string
}

func (v assertion) Validate() error {
	if !v.holds {
		return errors.New(v.message)
	}
	return nil
}

type emptyStringValidator struct {
	fieldName  string
	fieldValue string
}

// NewEmptyStringValidator creates a validator that fails when the given field is blank.
func NewEmptyStringValidator(fieldName, fieldValue string) Validator {
	return emptyStringValidator{fieldName: fieldName, fieldValue: fieldValue}
}

func (v emptyStringValidator) Validate() error {
	if strings.TrimSpace(v.fieldValue) == "" {
		return fmt.Errorf("the [%s] is required", v.fieldName)
	}
	return nil
}
