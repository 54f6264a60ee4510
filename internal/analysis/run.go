package analysis

import (
	"fmt"

	"github.com/KaramelBytes/agridash/internal/dataset"
)

// Analyzer produces the result for one selection.
type Analyzer func(ds *dataset.Dataset, opt Options) Result

// analyzers is indexed by Selection so every option has exactly one entry.
var analyzers = [numSelections]Analyzer{
	Overview:              AnalyzeOverview,
	Climate:               AnalyzeClimate,
	AgricultureStructure:  AnalyzeStructure,
	CorrelationRegression: AnalyzeCorrelationRegression,
	TimeSeries:            AnalyzeTimeSeries,
	MLModels:              AnalyzeModels,
}

// Run dispatches sel to its analyzer. A panic inside an analyzer is
// returned as *Error instead of crashing the caller.
func Run(sel Selection, ds *dataset.Dataset, opt Options) (res Result, err error) {
	if !sel.Valid() {
		return Result{}, fmt.Errorf("%w: %d", ErrUnknownSelection, int(sel))
	}
	if ds == nil {
		return Result{}, &Error{Selection: sel, Err: ErrNoDataset}
	}
	defer func() {
		if r := recover(); r != nil {
			res = Result{}
			err = &Error{Selection: sel, Err: fmt.Errorf("panic: %v", r)}
		}
	}()
	res = analyzers[sel](ds, opt)
	res.Selection = sel
	if res.Title == "" {
		res.Title = sel.Label(opt.Locale)
	}
	return res, nil
}
