package api

import (
	"github.com/brizzai/dishom-client/internal/requester"
)

// Result is the typed outcome of one endpoint: exactly one of Data and Err is set
type Result[T any] struct {
	Data *T
	Err  *requester.Error
}

// OK reports whether the call succeeded
func (r Result[T]) OK() bool {
	return r.Err == nil
}

func decode[T any](outcome requester.Outcome) Result[T] {
	if outcome.Error != nil {
		return Result[T]{Err: outcome.Error}
	}

	var v T
	if err := outcome.Data.Decode(&v); err != nil {
		return Result[T]{Err: requester.NetworkError(err)}
	}
	return Result[T]{Data: &v}
}

func fail[T any](err *requester.Error) Result[T] {
	return Result[T]{Err: err}
}
