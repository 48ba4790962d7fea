package inter

import (
	"errors"
	"fmt"
	"math/big"
)

// Input supplies values to Read instructions. Next returns an error
// wrapping ErrInputExhausted when no value is left.
type Input interface {
	Next() (*big.Int, error)
}

// Queue is an Input over values known before the run starts.
type Queue struct {
	values []*big.Int
}

func NewQueue(values ...*big.Int) *Queue {
	q := &Queue{}
	for _, v := range values {
		q.Push(v)
	}
	return q
}

// ParseQueue builds a Queue from decimal arguments.
func ParseQueue(args []string) (*Queue, error) {
	q := &Queue{values: make([]*big.Int, 0, len(args))}
	for _, arg := range args {
		v, err := ParseValue(arg)
		if err != nil {
			return nil, err
		}
		q.values = append(q.values, v)
	}
	return q, nil
}

// ParseValue parses a non-negative decimal integer of any size.
func ParseValue(s string) (*big.Int, error) {
	if s == "" {
		return nil, fmt.Errorf("%q: %w", s, ErrBadValue)
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return nil, fmt.Errorf("%q: %w", s, ErrBadValue)
		}
	}
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, fmt.Errorf("%q: %w", s, ErrBadValue)
	}
	return v, nil
}

// Push appends a copy of v to the queue.
func (q *Queue) Push(v *big.Int) {
	q.values = append(q.values, new(big.Int).Set(v))
}

func (q *Queue) Len() int {
	return len(q.values)
}

func (q *Queue) Next() (*big.Int, error) {
	if len(q.values) == 0 {
		return nil, ErrInputExhausted
	}
	v := q.values[0]
	q.values[0] = nil
	q.values = q.values[1:]
	return v, nil
}

type fallback struct {
	primary   Input
	secondary Input
}

// Fallback reads from primary until it is exhausted, then from secondary.
func Fallback(primary, secondary Input) Input {
	return &fallback{primary: primary, secondary: secondary}
}

func (f *fallback) Next() (*big.Int, error) {
	v, err := f.primary.Next()
	if errors.Is(err, ErrInputExhausted) {
		return f.secondary.Next()
	}
	return v, err
}
