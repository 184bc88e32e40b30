// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package pipeline

// Result folds the outcome of a pipeline run into a single value:
// either a value or the error that prevented producing it.
type Result[T any] struct {
	value T
	err   error
}

// Ok wraps a successful value.
func Ok[T any](value T) Result[T] {
	return Result[T]{value: value}
}

// Fail wraps an error.
func Fail[T any](err error) Result[T] {
	return Result[T]{err: err}
}

// Value returns the wrapped value and whether the result is a success.
func (r Result[T]) Value() (T, bool) {
	return r.value, r.err == nil
}

// Err returns the wrapped error, nil on success.
func (r Result[T]) Err() error {
	return r.err
}

// IsOk reports whether the result is a success.
func (r Result[T]) IsOk() bool {
	return r.err == nil
}
