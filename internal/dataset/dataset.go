package dataset

import (
	"fmt"
	"math"
	"sort"
	"time"
)

// Column is one named numeric indicator aligned to the dataset years.
type Column struct {
	Key     string
	Label   string
	LabelKo string
	Unit    string
	Group   Group
	Values  []float64
	// Imputed marks cells filled by the missing-value policy.
	Imputed []bool
}

// Title returns the label for the locale ("ko" or anything else for English).
func (c Column) Title(locale string) string {
	if locale == "ko" && c.LabelKo != "" {
		return c.LabelKo
	}
	if c.Label != "" {
		return c.Label
	}
	return c.Key
}

// Dataset is the cleaned year-indexed table. It is immutable after
// construction; accessors return copies.
type Dataset struct {
	years []int
	cols  []Column
	index map[string]int

	loadID   string
	loadedAt time.Time
	sources  []string
	warnings []string
}

// New validates and assembles a dataset. Years must be strictly increasing,
// every column must match the year count and hold finite values.
func New(years []int, cols []Column) (*Dataset, error) {
	if len(years) == 0 {
		return nil, ErrNoRows
	}
	if !sort.IntsAreSorted(years) {
		return nil, fmt.Errorf("years not sorted")
	}
	for i := 1; i < len(years); i++ {
		if years[i] == years[i-1] {
			return nil, fmt.Errorf("%w: %d", ErrDuplicateYear, years[i])
		}
	}
	d := &Dataset{
		years: append([]int(nil), years...),
		index: make(map[string]int, len(cols)),
	}
	for _, c := range cols {
		if c.Key == "" {
			return nil, fmt.Errorf("column without key")
		}
		if _, dup := d.index[c.Key]; dup {
			return nil, fmt.Errorf("duplicate column %q", c.Key)
		}
		if len(c.Values) != len(years) {
			return nil, fmt.Errorf("column %q has %d values for %d years", c.Key, len(c.Values), len(years))
		}
		for i, v := range c.Values {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, fmt.Errorf("column %q: non-finite value for %d", c.Key, years[i])
			}
		}
		if s, ok := Lookup(c.Key); ok {
			if c.Label == "" {
				c.Label = s.Label
			}
			if c.LabelKo == "" {
				c.LabelKo = s.LabelKo
			}
			if c.Unit == "" {
				c.Unit = s.Unit
			}
			if c.Group == "" {
				c.Group = s.Group
			}
		}
		if c.Group == "" {
			c.Group = GroupOther
		}
		c.Values = append([]float64(nil), c.Values...)
		if len(c.Imputed) != len(years) {
			c.Imputed = make([]bool, len(years))
		} else {
			c.Imputed = append([]bool(nil), c.Imputed...)
		}
		d.index[c.Key] = len(d.cols)
		d.cols = append(d.cols, c)
	}
	return d, nil
}

// WithLoadInfo returns a copy of d carrying load metadata.
func (d *Dataset) WithLoadInfo(id string, at time.Time, sources, warnings []string) *Dataset {
	out := *d
	out.loadID, out.loadedAt = id, at
	out.sources = append([]string(nil), sources...)
	out.warnings = append([]string(nil), warnings...)
	return &out
}

// LoadID identifies the load that produced the dataset.
func (d *Dataset) LoadID() string { return d.loadID }

func (d *Dataset) LoadedAt() time.Time { return d.loadedAt }

// Sources returns the source file names in precedence order.
func (d *Dataset) Sources() []string { return append([]string(nil), d.sources...) }

// Warnings returns the cleaning warnings collected during the load.
func (d *Dataset) Warnings() []string { return append([]string(nil), d.warnings...) }

// Len returns the number of years (rows).
func (d *Dataset) Len() int { return len(d.years) }

// Years returns the row keys in ascending order.
func (d *Dataset) Years() []int { return append([]int(nil), d.years...) }

// YearsFloat returns the years as float64, convenient for regressions and charts.
func (d *Dataset) YearsFloat() []float64 {
	out := make([]float64, len(d.years))
	for i, y := range d.years {
		out[i] = float64(y)
	}
	return out
}

// Keys returns the column keys in display order.
func (d *Dataset) Keys() []string {
	out := make([]string, len(d.cols))
	for i, c := range d.cols {
		out[i] = c.Key
	}
	return out
}

// Has reports whether the column exists.
func (d *Dataset) Has(key string) bool {
	_, ok := d.index[key]
	return ok
}

// Column returns a copy of the named column.
func (d *Dataset) Column(key string) (Column, bool) {
	i, ok := d.index[key]
	if !ok {
		return Column{}, false
	}
	c := d.cols[i]
	c.Values = append([]float64(nil), c.Values...)
	c.Imputed = append([]bool(nil), c.Imputed...)
	return c, true
}

// Values returns a copy of the column values, or nil when absent.
func (d *Dataset) Values(key string) []float64 {
	i, ok := d.index[key]
	if !ok {
		return nil
	}
	return append([]float64(nil), d.cols[i].Values...)
}

// KeysInGroup returns the column keys of one group in display order.
func (d *Dataset) KeysInGroup(g Group) []string {
	var out []string
	for _, c := range d.cols {
		if c.Group == g {
			out = append(out, c.Key)
		}
	}
	return out
}

// Title returns the localized label of a column, falling back to its key.
func (d *Dataset) Title(key, locale string) string {
	if c, ok := d.Column(key); ok {
		return c.Title(locale)
	}
	return key
}

// ImputedCount returns how many cells of the column were imputed.
func (d *Dataset) ImputedCount(key string) int {
	i, ok := d.index[key]
	if !ok {
		return 0
	}
	n := 0
	for _, b := range d.cols[i].Imputed {
		if b {
			n++
		}
	}
	return n
}
