package mr

import (
	"errors"
	"fmt"
)

var ErrClosed = errors.New("mr: context closed")

// UserFunctionError reports an error returned, or a panic raised, by
// a map or combine function.  Pairs holds the pair(s) it was applied
// to.
type UserFunctionError struct {
	Op    string
	Shard int
	Pairs []string
	Err   error
}

func (e *UserFunctionError) Error() string {
	return fmt.Sprintf("%v shard %d %v: %v", e.Op, e.Shard, e.Pairs, e.Err)
}

func (e *UserFunctionError) Unwrap() error {
	return e.Err
}
