package dataset

import (
	"fmt"
	"math"
	"path/filepath"
	"time"

	"github.com/KaramelBytes/agridash/internal/parser"
	"github.com/google/uuid"
)

// Options controls how raw sources are loaded.
type Options struct {
	// Dir is the base directory for relative source paths.
	Dir string
	// Sources lists CSV/TSV/XLSX files joined on year, in precedence order.
	Sources []string
	// StartYear and EndYear bound the year range (inclusive).
	StartYear int
	EndYear   int
	// Required columns must be present after cleaning.
	Required []string
}

// DefaultOptions returns the layout shipped in the data directory.
func DefaultOptions() Options {
	return Options{
		Dir:       "data",
		Sources:   []string{"agriculture.csv", "climate.csv"},
		StartYear: 2016,
		EndYear:   2022,
		Required:  DefaultRequired(),
	}
}

type colAcc struct {
	key     string
	unit    string
	source  string
	values  map[int]float64
	numCnt  int
	txtCnt  int
	badCnt  int
	example string
}

// Load parses, aligns and cleans the configured sources. Every failure is a
// *LoadError.
func Load(opt Options) (*Dataset, error) {
	if len(opt.Sources) == 0 {
		return nil, &LoadError{Err: ErrNoSources}
	}
	if opt.EndYear < opt.StartYear {
		return nil, &LoadError{Err: fmt.Errorf("invalid year range %d-%d", opt.StartYear, opt.EndYear)}
	}

	var warnings []string
	warnf := func(format string, args ...any) {
		warnings = append(warnings, fmt.Sprintf(format, args...))
	}
	accs := map[string]*colAcc{}
	var order []string
	seenYears := map[int]bool{}
	var sources []string

	for _, src := range opt.Sources {
		path := src
		if !filepath.IsAbs(path) && opt.Dir != "" {
			path = filepath.Join(opt.Dir, src)
		}
		tbl, err := parser.ParseFile(path)
		if err != nil {
			return nil, &LoadError{Path: path, Err: err}
		}
		sources = append(sources, tbl.Name)

		keys := make([]string, len(tbl.Header))
		yi := -1
		for i, h := range tbl.Header {
			key, unit := NormalizeHeader(h)
			if key == "" {
				continue
			}
			if key == Year {
				if yi < 0 {
					yi = i
				}
				continue
			}
			if prev, ok := accs[key]; ok {
				if prev.source == tbl.Name {
					warnf("%s: duplicate column %q ignored", tbl.Name, h)
				} else {
					warnf("%s: column %q already provided by %s; ignored", tbl.Name, key, prev.source)
				}
				continue
			}
			keys[i] = key
			accs[key] = &colAcc{key: key, unit: unit, source: tbl.Name, values: map[int]float64{}}
			order = append(order, key)
		}
		if yi < 0 {
			return nil, &LoadError{Path: path, Err: ErrNoYearColumn}
		}

		inFile := map[int]bool{}
		dropped := 0
		for r, rec := range tbl.Records {
			y, ok := parseYear(rec[yi])
			if !ok {
				return nil, &LoadError{Path: path, Err: fmt.Errorf("row %d: %w %q", r+2, ErrInvalidYear, rec[yi])}
			}
			if inFile[y] {
				return nil, &LoadError{Path: path, Err: fmt.Errorf("%w %d", ErrDuplicateYear, y)}
			}
			inFile[y] = true
			if y < opt.StartYear || y > opt.EndYear {
				dropped++
				continue
			}
			seenYears[y] = true
			for j, key := range keys {
				if key == "" {
					continue
				}
				acc := accs[key]
				cell := rec[j]
				v, ok := parseNumeric(cell)
				switch {
				case ok:
					acc.numCnt++
				case isMissingToken(cell):
				default:
					acc.txtCnt++
					if acc.example == "" {
						acc.example = cell
					}
				}
				acc.values[y] = v
			}
		}
		if dropped > 0 {
			warnf("%s: %d row(s) outside %d-%d dropped", tbl.Name, dropped, opt.StartYear, opt.EndYear)
		}
	}
	if len(seenYears) == 0 {
		return nil, &LoadError{Err: ErrNoRows}
	}

	years := make([]int, 0, opt.EndYear-opt.StartYear+1)
	for y := opt.StartYear; y <= opt.EndYear; y++ {
		years = append(years, y)
		if !seenYears[y] {
			warnf("year %d absent from every source; values interpolated", y)
		}
	}

	cols := make([]Column, 0, len(order))
	byKey := map[string]Column{}
	for _, key := range order {
		acc := accs[key]
		if acc.numCnt == 0 {
			if acc.txtCnt > 0 {
				warnf("column %q is not numeric (e.g. %q); ignored", key, acc.example)
			} else {
				warnf("column %q has no observed values; ignored", key)
			}
			continue
		}
		if acc.txtCnt > 0 {
			warnf("column %q: %d unparseable cell(s) treated as missing (e.g. %q)", key, acc.txtCnt, acc.example)
		}
		raw := make([]float64, len(years))
		for i, y := range years {
			v, ok := acc.values[y]
			if !ok {
				v = math.NaN()
			}
			raw[i] = v
		}
		vals, imputed, observed := interpolate(raw)
		if observed < len(years) {
			warnf("column %q: %d of %d value(s) imputed", key, len(years)-observed, len(years))
		}
		c := Column{Key: key, Unit: acc.unit, Values: vals, Imputed: imputed}
		byKey[key] = c
		cols = append(cols, c)
	}

	if _, ok := byKey[CultivatedArea]; !ok {
		paddy, okP := byKey[PaddyArea]
		upland, okU := byKey[UplandArea]
		if okP && okU {
			c := Column{Key: CultivatedArea, Values: make([]float64, len(years)), Imputed: make([]bool, len(years))}
			for i := range years {
				c.Values[i] = paddy.Values[i] + upland.Values[i]
				c.Imputed[i] = paddy.Imputed[i] || upland.Imputed[i]
			}
			byKey[CultivatedArea] = c
			cols = append(cols, c)
		}
	}

	for _, req := range opt.Required {
		if _, ok := byKey[req]; !ok {
			return nil, &LoadError{Err: fmt.Errorf("%w: %s", ErrMissingColumn, req)}
		}
	}

	ds, err := New(years, orderColumns(cols))
	if err != nil {
		return nil, &LoadError{Err: err}
	}
	return ds.WithLoadInfo(uuid.NewString(), time.Now(), sources, warnings), nil
}

// orderColumns puts known indicators first in declaration order, then the rest
// in source order.
func orderColumns(cols []Column) []Column {
	out := make([]Column, 0, len(cols))
	used := make([]bool, len(cols))
	for _, s := range known {
		for i, c := range cols {
			if !used[i] && c.Key == s.Key {
				out = append(out, c)
				used[i] = true
			}
		}
	}
	for i, c := range cols {
		if !used[i] {
			out = append(out, c)
		}
	}
	return out
}
