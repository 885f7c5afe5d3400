// Package result implements the two-track Success/Failure type that every
// pipeline stage communicates through. Native panics are caught in exactly
// one place (FromComputation); nothing above that boundary inspects a raw
// error or recovers from a panic.
package result

import "fmt"

// Code is a closed set of failure categories. Callers switch on Code, never
// on error string content.
type Code string

const (
	AuthenticationError  Code = "AUTHENTICATION_ERROR"
	ExternalServiceError Code = "EXTERNAL_SERVICE_ERROR"
	TechnicalError       Code = "TECHNICAL_ERROR"
	DatabaseError        Code = "DATABASE_ERROR"
	ValidationError      Code = "VALIDATION_ERROR"
	ConfigurationError   Code = "CONFIGURATION_ERROR"
	TimeoutError         Code = "TIMEOUT_ERROR"
)

// Failure carries a typed error code, a human message, and an optional
// details string (e.g. the wrapped underlying error text).
type Failure struct {
	Code    Code
	Message string
	Details string
}

func (f *Failure) Error() string {
	if f.Details == "" {
		return fmt.Sprintf("%s: %s", f.Code, f.Message)
	}
	return fmt.Sprintf("%s: %s: %s", f.Code, f.Message, f.Details)
}

// Result is a Success(value) or Failure(err), never both.
type Result[T any] struct {
	value T
	err   *Failure
}

func Success[T any](v T) Result[T] {
	return Result[T]{value: v}
}

func Fail[T any](code Code, message string) Result[T] {
	return Result[T]{err: &Failure{Code: code, Message: message}}
}

func FailWithDetails[T any](code Code, message, details string) Result[T] {
	return Result[T]{err: &Failure{Code: code, Message: message, Details: details}}
}

func (r Result[T]) IsSuccess() bool { return r.err == nil }
func (r Result[T]) IsFailure() bool { return r.err != nil }

// Value returns the success value, or the zero value on a Failure. Callers
// must check IsSuccess first, or reach the value only through Map/FlatMap.
func (r Result[T]) Value() T { return r.value }

func (r Result[T]) Failure() *Failure { return r.err }

// Map transforms a Success value; a Failure passes through untouched.
func Map[T, U any](r Result[T], f func(T) U) Result[U] {
	if r.err != nil {
		return Result[U]{err: r.err}
	}
	return Success(f(r.value))
}

// FlatMap chains a Result-returning function; a Failure short-circuits the
// chain without invoking f. This is the railway operator the orchestrator
// is built from.
func FlatMap[T, U any](r Result[T], f func(T) Result[U]) Result[U] {
	if r.err != nil {
		return Result[U]{err: r.err}
	}
	return f(r.value)
}

// FromComputation runs thunk and converts any returned error, or any
// recovered panic, into a Failure tagged with code. This is the only place
// in the system where a native panic is caught.
func FromComputation[T any](code Code, message string, thunk func() (T, error)) (res Result[T]) {
	defer func() {
		if rec := recover(); rec != nil {
			res = FailWithDetails[T](code, message, fmt.Sprintf("panic: %v", rec))
		}
	}()

	v, err := thunk()
	if err != nil {
		return FailWithDetails[T](code, message, err.Error())
	}
	return Success(v)
}
