// Package table implements a small typed column store: an ordered set of
// named columns, each one a float64, string or time.Time array of the same
// length. Missing numeric cells are NaN.
package table

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// Kind is the element type of a column.
type Kind int

const (
	Float Kind = iota
	String
	Time
)

func (k Kind) String() string {
	switch k {
	case Float:
		return "float"
	case String:
		return "string"
	case Time:
		return "time"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

var (
	// ErrLengthMismatch is returned when a column does not match the row count.
	ErrLengthMismatch = errors.New("column length does not match table rows")

	// ErrDuplicateColumn is returned when a column name is already taken.
	ErrDuplicateColumn = errors.New("duplicate column")
)

type column struct {
	name    string
	kind    Kind
	floats  []float64
	strings []string
	times   []time.Time
}

func (c *column) len() int {
	switch c.kind {
	case Float:
		return len(c.floats)
	case String:
		return len(c.strings)
	default:
		return len(c.times)
	}
}

// Table is an immutable-after-construction set of typed columns.
// The zero value is an empty table with no rows and no columns.
type Table struct {
	rows    int
	order   []string
	columns map[string]*column
}

// New creates an empty table with the given row count.
func New(rows int) *Table {
	return &Table{rows: rows, columns: make(map[string]*column)}
}

// Len returns the number of rows.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return t.rows
}

// Empty reports whether the table has no rows.
func (t *Table) Empty() bool { return t.Len() == 0 }

// Columns returns column names in insertion order.
func (t *Table) Columns() []string {
	if t == nil {
		return nil
	}
	out := make([]string, len(t.order))
	copy(out, t.order)
	return out
}

// Has reports whether a column exists.
func (t *Table) Has(name string) bool {
	if t == nil {
		return false
	}
	_, ok := t.columns[name]
	return ok
}

// Kind returns the kind of a column.
func (t *Table) Kind(name string) (Kind, bool) {
	if t == nil {
		return 0, false
	}
	c, ok := t.columns[name]
	if !ok {
		return 0, false
	}
	return c.kind, true
}

// Floats returns a numeric column. The slice is shared; callers must not modify it.
func (t *Table) Floats(name string) ([]float64, bool) {
	c, ok := t.get(name, Float)
	if !ok {
		return nil, false
	}
	return c.floats, true
}

// Strings returns a string column.
func (t *Table) Strings(name string) ([]string, bool) {
	c, ok := t.get(name, String)
	if !ok {
		return nil, false
	}
	return c.strings, true
}

// Times returns a time column.
func (t *Table) Times(name string) ([]time.Time, bool) {
	c, ok := t.get(name, Time)
	if !ok {
		return nil, false
	}
	return c.times, true
}

func (t *Table) get(name string, kind Kind) (*column, bool) {
	if t == nil {
		return nil, false
	}
	c, ok := t.columns[name]
	if !ok || c.kind != kind {
		return nil, false
	}
	return c, true
}

// AddFloats appends a numeric column.
func (t *Table) AddFloats(name string, values []float64) error {
	return t.add(&column{name: name, kind: Float, floats: values})
}

// AddStrings appends a string column.
func (t *Table) AddStrings(name string, values []string) error {
	return t.add(&column{name: name, kind: String, strings: values})
}

// AddTimes appends a time column.
func (t *Table) AddTimes(name string, values []time.Time) error {
	return t.add(&column{name: name, kind: Time, times: values})
}

// SetConstant adds or replaces a string column holding value on every row.
func (t *Table) SetConstant(name, value string) {
	values := make([]string, t.rows)
	for i := range values {
		values[i] = value
	}
	if t.columns == nil {
		t.columns = make(map[string]*column)
	}
	if _, ok := t.columns[name]; !ok {
		t.order = append(t.order, name)
	}
	t.columns[name] = &column{name: name, kind: String, strings: values}
}

func (t *Table) add(c *column) error {
	if t.columns == nil {
		t.columns = make(map[string]*column)
	}
	if _, ok := t.columns[c.name]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateColumn, c.name)
	}
	if n := c.len(); n != t.rows {
		return fmt.Errorf("%w: %s has %d values, table has %d rows", ErrLengthMismatch, c.name, n, t.rows)
	}
	t.order = append(t.order, c.name)
	t.columns[c.name] = c
	return nil
}

// Take returns a table holding rows idx of t, in that order.
func (t *Table) Take(idx []int) *Table {
	if t == nil {
		return nil
	}
	out := New(len(idx))
	for _, name := range t.order {
		src := t.columns[name]
		c := &column{name: name, kind: src.kind}
		switch src.kind {
		case Float:
			c.floats = make([]float64, len(idx))
			for i, r := range idx {
				c.floats[i] = src.floats[r]
			}
		case String:
			c.strings = make([]string, len(idx))
			for i, r := range idx {
				c.strings[i] = src.strings[r]
			}
		case Time:
			c.times = make([]time.Time, len(idx))
			for i, r := range idx {
				c.times[i] = src.times[r]
			}
		}
		out.order = append(out.order, name)
		out.columns[name] = c
	}
	return out
}

// Concat returns the relational union of tables: all rows of every input, in
// order, over the union of their columns. A column missing from one input is
// filled with NaN, "" or the zero time for that input's rows. A name used with
// different kinds is demoted to a string column.
func Concat(tables ...*Table) *Table {
	var (
		order []string
		kinds = make(map[string]Kind)
		rows  int
	)
	for _, in := range tables {
		if in == nil {
			continue
		}
		rows += in.rows
		for _, name := range in.order {
			k := in.columns[name].kind
			prev, seen := kinds[name]
			if !seen {
				order = append(order, name)
				kinds[name] = k
			} else if prev != k {
				kinds[name] = String
			}
		}
	}

	out := New(rows)
	for _, name := range order {
		c := &column{name: name, kind: kinds[name]}
		for _, in := range tables {
			if in == nil {
				continue
			}
			c.extend(in.columns[name], in.rows)
		}
		out.order = append(out.order, name)
		out.columns[name] = c
	}
	return out
}

func (c *column) extend(src *column, rows int) {
	switch c.kind {
	case Float:
		if src == nil {
			for i := 0; i < rows; i++ {
				c.floats = append(c.floats, math.NaN())
			}
			return
		}
		c.floats = append(c.floats, src.floats...)
	case Time:
		if src == nil {
			c.times = append(c.times, make([]time.Time, rows)...)
			return
		}
		c.times = append(c.times, src.times...)
	case String:
		if src == nil {
			c.strings = append(c.strings, make([]string, rows)...)
			return
		}
		for i := 0; i < rows; i++ {
			c.strings = append(c.strings, src.cell(i))
		}
	}
}

// cell renders row i as text.
func (c *column) cell(i int) string {
	switch c.kind {
	case Float:
		if math.IsNaN(c.floats[i]) {
			return ""
		}
		return fmt.Sprint(c.floats[i])
	case Time:
		if c.times[i].IsZero() {
			return ""
		}
		return c.times[i].Format(time.RFC3339)
	default:
		return c.strings[i]
	}
}

// Cell returns row i of a column as text; missing values render as "".
func (t *Table) Cell(name string, i int) string {
	if t == nil || i < 0 || i >= t.rows {
		return ""
	}
	c, ok := t.columns[name]
	if !ok {
		return ""
	}
	return c.cell(i)
}
