/*
 * Copyright (C) 2025 Gaia-X dataspace community
 *
 * This program is free software: you can redistribute it and/or modify
 * it under the terms of the GNU General Public License as published by
 * the Free Software Foundation, either version 3 of the License, or
 * (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU General Public License
 * along with this program.  If not, see <https://www.gnu.org/licenses/>.
 *
 */

package core

import (
	"fmt"

	"github.com/go-errors/errors"
)

// ClientError indicates a caller-correctable problem: a malformed input,
// a remote document that could not be fetched or parsed, a fingerprint or
// tamper check that failed, or an operation requested in the wrong state.
type ClientError struct {
	Err error
}

func (e ClientError) Error() string {
	return e.Err.Error()
}

func (e ClientError) Unwrap() error {
	return e.Err
}

// NewClientError creates a new ClientError with a formatted message.
func NewClientError(format string, args ...interface{}) error {
	return ClientError{Err: fmt.Errorf(format, args...)}
}

// IsClientError returns true if the given error is (or wraps) a ClientError.
func IsClientError(err error) bool {
	var target ClientError
	return errors.As(err, &target)
}

// AuthenticationError indicates that a cryptographic identity check failed:
// a signature did not verify, or a proof was attributed to the wrong party.
type AuthenticationError struct {
	Err error
}

func (e AuthenticationError) Error() string {
	return e.Err.Error()
}

func (e AuthenticationError) Unwrap() error {
	return e.Err
}

// NewAuthenticationError creates a new AuthenticationError with a formatted message.
func NewAuthenticationError(format string, args ...interface{}) error {
	return AuthenticationError{Err: fmt.Errorf(format, args...)}
}

// IsAuthenticationError returns true if the given error is (or wraps) an AuthenticationError.
func IsAuthenticationError(err error) bool {
	var target AuthenticationError
	return errors.As(err, &target)
}

// AuthorizationError indicates a missing or invalid bearer proof.
type AuthorizationError struct {
	Err error
}

func (e AuthorizationError) Error() string {
	return e.Err.Error()
}

func (e AuthorizationError) Unwrap() error {
	return e.Err
}

// NewAuthorizationError creates a new AuthorizationError with a formatted message.
func NewAuthorizationError(format string, args ...interface{}) error {
	return AuthorizationError{Err: fmt.Errorf(format, args...)}
}

// IsAuthorizationError returns true if the given error is (or wraps) an AuthorizationError.
func IsAuthorizationError(err error) bool {
	var target AuthorizationError
	return errors.As(err, &target)
}

// NotFoundError indicates that no matching contract or resource exists.
type NotFoundError struct {
	Err error
}

func (e NotFoundError) Error() string {
	return e.Err.Error()
}

func (e NotFoundError) Unwrap() error {
	return e.Err
}

// NewNotFoundError creates a new NotFoundError with a formatted message.
func NewNotFoundError(format string, args ...interface{}) error {
	return NotFoundError{Err: fmt.Errorf(format, args...)}
}

// IsNotFoundError returns true if the given error is (or wraps) a NotFoundError.
func IsNotFoundError(err error) bool {
	var target NotFoundError
	return errors.As(err, &target)
}

type wrappedError struct {
	err   error
	cause error
}

func (w wrappedError) Error() string {
	// Use Sprintf to avoid nil dereferences, when someone accidentally passes a nil err or cause.
	return fmt.Sprintf("%s", w.err) + ": " + fmt.Sprintf("%s", w.cause)
}

func (w wrappedError) Is(other error) bool {
	return errors.Is(w.err, other)
}

func (w wrappedError) Unwrap() error {
	return w.cause
}

// WrapError returns an error that wraps a cause. In contrary to fmt.Errorf, errors.Is can be used on both the outer error and cause.
func WrapError(err error, cause error) error {
	return wrappedError{
		err:   err,
		cause: cause,
	}
}
