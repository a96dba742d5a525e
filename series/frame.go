package series

import (
	"errors"
	"fmt"
	"slices"
	"time"
)

var (
	ErrColumnLength = errors.New("column length does not match frame length")
	ErrColumnExists = errors.New("column already exists")
)

type ColumnKind int

const (
	KindTime ColumnKind = iota
	KindFloat
	KindBool
	KindString
)

func (k ColumnKind) String() string {
	switch k {
	case KindTime:
		return "time"
	case KindFloat:
		return "float"
	case KindBool:
		return "bool"
	case KindString:
		return "string"
	}
	return "unknown"
}

// Frame is a typed column store where every column has the same number of rows
type Frame struct {
	n       int
	order   []string
	kinds   map[string]ColumnKind
	times   map[string][]time.Time
	floats  map[string][]float64
	bools   map[string][]bool
	strings map[string][]string
}

func NewFrame() *Frame {
	return &Frame{
		kinds:   make(map[string]ColumnKind),
		times:   make(map[string][]time.Time),
		floats:  make(map[string][]float64),
		bools:   make(map[string][]bool),
		strings: make(map[string][]string),
	}
}

func (f *Frame) register(name string, kind ColumnKind, n int) error {
	if _, exists := f.kinds[name]; exists {
		return fmt.Errorf("column %q, %w", name, ErrColumnExists)
	}
	if len(f.order) > 0 && n != f.n {
		return fmt.Errorf("column %q has %d rows but frame has %d, %w", name, n, f.n, ErrColumnLength)
	}
	f.n = n
	f.order = append(f.order, name)
	f.kinds[name] = kind
	return nil
}

func (f *Frame) AddTimes(name string, vals []time.Time) error {
	if err := f.register(name, KindTime, len(vals)); err != nil {
		return err
	}
	f.times[name] = vals
	return nil
}

func (f *Frame) AddFloats(name string, vals []float64) error {
	if err := f.register(name, KindFloat, len(vals)); err != nil {
		return err
	}
	f.floats[name] = vals
	return nil
}

func (f *Frame) AddBools(name string, vals []bool) error {
	if err := f.register(name, KindBool, len(vals)); err != nil {
		return err
	}
	f.bools[name] = vals
	return nil
}

func (f *Frame) AddStrings(name string, vals []string) error {
	if err := f.register(name, KindString, len(vals)); err != nil {
		return err
	}
	f.strings[name] = vals
	return nil
}

// Len returns the number of rows
func (f *Frame) Len() int {
	if f == nil {
		return 0
	}
	return f.n
}

// Columns returns the column names in insertion order
func (f *Frame) Columns() []string {
	if f == nil {
		return nil
	}
	return slices.Clone(f.order)
}

func (f *Frame) Kind(name string) (ColumnKind, bool) {
	if f == nil {
		return 0, false
	}
	k, exists := f.kinds[name]
	return k, exists
}

func (f *Frame) Times(name string) ([]time.Time, bool) {
	vals, exists := f.times[name]
	return vals, exists
}

func (f *Frame) Floats(name string) ([]float64, bool) {
	vals, exists := f.floats[name]
	return vals, exists
}

func (f *Frame) Bools(name string) ([]bool, bool) {
	vals, exists := f.bools[name]
	return vals, exists
}

func (f *Frame) Strings(name string) ([]string, bool) {
	vals, exists := f.strings[name]
	return vals, exists
}

// Numeric returns a float or bool column as floats with bools mapped to 0/1
func (f *Frame) Numeric(name string) ([]float64, bool) {
	kind, exists := f.Kind(name)
	if !exists {
		return nil, false
	}
	switch kind {
	case KindFloat:
		return f.floats[name], true
	case KindBool:
		bools := f.bools[name]
		res := make([]float64, len(bools))
		for i, b := range bools {
			if b {
				res[i] = 1
			}
		}
		return res, true
	}
	return nil, false
}

// Take returns a new frame with only the given row indices, in order
func (f *Frame) Take(idx []int) *Frame {
	next := NewFrame()
	for _, name := range f.order {
		switch f.kinds[name] {
		case KindTime:
			vals := make([]time.Time, len(idx))
			for i, j := range idx {
				vals[i] = f.times[name][j]
			}
			next.AddTimes(name, vals)
		case KindFloat:
			vals := make([]float64, len(idx))
			for i, j := range idx {
				vals[i] = f.floats[name][j]
			}
			next.AddFloats(name, vals)
		case KindBool:
			vals := make([]bool, len(idx))
			for i, j := range idx {
				vals[i] = f.bools[name][j]
			}
			next.AddBools(name, vals)
		case KindString:
			vals := make([]string, len(idx))
			for i, j := range idx {
				vals[i] = f.strings[name][j]
			}
			next.AddStrings(name, vals)
		}
	}
	if len(f.order) == 0 {
		next.n = 0
	}
	return next
}
