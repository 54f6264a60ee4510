package analysis

import "github.com/KaramelBytes/agridash/internal/dataset"

// Options controls analyzer behavior.
type Options struct {
	// Locale selects label language: "ko" or "en".
	Locale string
	// Target is the agricultural outcome for regressions and models.
	Target string
	// Predictors are the climate indicators for the regression analyzer.
	Predictors []string
	// ModelFeatures are the inputs of the ML models.
	ModelFeatures []string
	// TimeSeriesColumns are decomposed by the time series analyzer.
	TimeSeriesColumns []string
	// TrendWindow is the centered moving-average window (odd).
	TrendWindow int
	// ForecastHorizon is the number of years extrapolated.
	ForecastHorizon int
	// MinResidualDF caps regression predictors at n-1-MinResidualDF.
	MinResidualDF int
	// MaxCondition flags fits whose standardized design is ill-conditioned.
	MaxCondition float64
	RidgeAlpha   float64
	TreeMaxDepth int
	TreeMinLeaf  int
	KNNK         int
	// SampleRows is the number of years shown in the overview sample.
	SampleRows int
	// OutlierThreshold is the robust |z| (MAD) above which a value is flagged.
	OutlierThreshold float64
}

// DefaultOptions returns reasonable defaults for the yearly dataset.
func DefaultOptions() Options {
	return Options{
		Locale: "ko",
		Target: dataset.RiceProduction,
		Predictors: []string{
			dataset.AvgTemperature, dataset.Precipitation, dataset.PM10, dataset.PM25, dataset.O3,
		},
		ModelFeatures: []string{
			dataset.AvgTemperature, dataset.Precipitation, dataset.PM10, dataset.PM25, dataset.O3,
			dataset.FarmHouseholds, dataset.CultivatedArea,
		},
		TimeSeriesColumns: []string{
			dataset.RiceProduction, dataset.PotatoProduction, dataset.FarmHouseholds, dataset.AvgTemperature,
		},
		TrendWindow:      3,
		ForecastHorizon:  3,
		MinResidualDF:    2,
		MaxCondition:     1e3,
		RidgeAlpha:       1.0,
		TreeMaxDepth:     2,
		TreeMinLeaf:      2,
		KNNK:             3,
		SampleRows:       5,
		OutlierThreshold: 3.5,
	}
}

func (o Options) ko() bool { return o.Locale == "ko" }

// tr picks the Korean or English text for the configured locale.
func (o Options) tr(en, ko string) string {
	if o.ko() {
		return ko
	}
	return en
}
