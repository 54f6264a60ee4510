package dataset

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const agricultureCSV = `year,farm_households (households),paddy_area (ha),upland_area (ha),rice_production (t),potato_production (t)
2016,6523,5874,3021,"29,870",6120
2017,6448,5790,2995,"28,410",5980
2018,6390,5712,2968,"27,950",
2019,6312,5650,2940,"28,730",5710
2020,6245,5581,2910,"25,640",5530
2021,6180,5520,2884,"27,120",5620
2022,6102,5463,2851,"26,480",5390
`

const climateCSV = `year,avg_temperature (°C),precipitation (mm),pm10 (µg/m³),pm25 (µg/m³),o3 (ppm),station
2015,13.5,1180.2,49,26,0.030,Gangneung
2016,13.9,1412.5,44,24,0.031,Gangneung
2017,13.6,1104.3,41,22,0.032,Gangneung
2018,13.7,1653.9,38,21,0.031,Gangneung
2019,14.3,1298.0,37,20,0.033,Gangneung
2020,13.8,1874.6,31,17,0.032,Gangneung
2021,14.2,1368.2,33,18,0.033,Gangneung
2022,13.9,1490.7,30,16,0.034,Gangneung
`

func writeSources(t *testing.T, files map[string]string) Options {
	t.Helper()
	dir := t.TempDir()
	var names []string
	for name, body := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	for _, name := range []string{"agriculture.csv", "climate.csv"} {
		if _, ok := files[name]; ok {
			names = append(names, name)
		}
	}
	opt := DefaultOptions()
	opt.Dir = dir
	opt.Sources = names
	return opt
}

func TestLoadAlignsAndImputes(t *testing.T) {
	opt := writeSources(t, map[string]string{"agriculture.csv": agricultureCSV, "climate.csv": climateCSV})

	ds, err := Load(opt)
	require.NoError(t, err)

	assert.Equal(t, []int{2016, 2017, 2018, 2019, 2020, 2021, 2022}, ds.Years())
	for _, key := range ds.Keys() {
		vals := ds.Values(key)
		require.Len(t, vals, 7, key)
	}
	assert.Equal(t, 29870.0, ds.Values(RiceProduction)[0])

	potato, ok := ds.Column(PotatoProduction)
	require.True(t, ok)
	assert.InDelta(t, 5845.0, potato.Values[2], 1e-9)
	assert.True(t, potato.Imputed[2])
	assert.Equal(t, 1, ds.ImputedCount(PotatoProduction))
	assert.Equal(t, "t", potato.Unit)

	area := ds.Values(CultivatedArea)
	assert.Equal(t, 5874.0+3021.0, area[0])

	temp, _ := ds.Column(AvgTemperature)
	assert.Equal(t, "°C", temp.Unit)
	assert.Equal(t, GroupClimate, temp.Group)

	assert.False(t, ds.Has("station"))
	assert.NotEmpty(t, ds.LoadID())
	assert.False(t, ds.LoadedAt().IsZero())
	assert.Equal(t, []string{"agriculture.csv", "climate.csv"}, ds.Sources())

	joined := strings.Join(ds.Warnings(), "\n")
	assert.Contains(t, joined, "climate.csv: 1 row(s) outside 2016-2022 dropped")
	assert.Contains(t, joined, `column "potato_production": 1 of 7 value(s) imputed`)
	assert.Contains(t, joined, `column "station" is not numeric`)
}

func TestLoadKoreanHeaders(t *testing.T) {
	agri := "연도,농가수,경지면적,쌀 생산량,감자 생산량\n" +
		"2016년,6523,8895,29870,6120\n" +
		"2017년,6448,8785,28410,5980\n"
	clim := "연도,평균기온,강수량,미세먼지,초미세먼지,오존\n" +
		"2016,13.9,1412.5,44,24,0.031\n" +
		"2017,13.6,1104.3,41,22,0.032\n"
	opt := writeSources(t, map[string]string{"agriculture.csv": agri, "climate.csv": clim})
	opt.EndYear = 2017

	ds, err := Load(opt)
	require.NoError(t, err)
	assert.Equal(t, 2, ds.Len())
	assert.Equal(t, []float64{8895, 8785}, ds.Values(CultivatedArea))
	assert.Equal(t, "쌀 생산량", ds.Title(RiceProduction, "ko"))
	assert.Equal(t, "Rice production", ds.Title(RiceProduction, "en"))
}

func TestLoadMaterializesMissingYear(t *testing.T) {
	agri := strings.Replace(agricultureCSV, "2019,6312,5650,2940,\"28,730\",5710\n", "", 1)
	clim := strings.Replace(climateCSV, "2019,14.3,1298.0,37,20,0.033,Gangneung\n", "", 1)
	opt := writeSources(t, map[string]string{"agriculture.csv": agri, "climate.csv": clim})

	ds, err := Load(opt)
	require.NoError(t, err)
	require.Equal(t, 7, ds.Len())
	hh, _ := ds.Column(FarmHouseholds)
	assert.True(t, hh.Imputed[3])
	assert.InDelta(t, (6390.0+6245.0)/2, hh.Values[3], 1e-9)
	assert.Contains(t, strings.Join(ds.Warnings(), "\n"), "year 2019 absent from every source")
}

func TestLoadFailures(t *testing.T) {
	tests := []struct {
		name  string
		files map[string]string
		want  error
	}{
		{
			name:  "duplicate year",
			files: map[string]string{"agriculture.csv": agricultureCSV + "2022,1,1,1,1,1\n", "climate.csv": climateCSV},
			want:  ErrDuplicateYear,
		},
		{
			name:  "missing year column",
			files: map[string]string{"agriculture.csv": "season,rice\nspring,1\n", "climate.csv": climateCSV},
			want:  ErrNoYearColumn,
		},
		{
			name:  "invalid year",
			files: map[string]string{"agriculture.csv": "year,rice\ntwenty,1\n", "climate.csv": climateCSV},
			want:  ErrInvalidYear,
		},
		{
			name:  "required column missing",
			files: map[string]string{"agriculture.csv": agricultureCSV, "climate.csv": "year,avg_temperature\n2016,13.9\n"},
			want:  ErrMissingColumn,
		},
		{
			name:  "no rows in range",
			files: map[string]string{"agriculture.csv": "year,rice\n1990,1\n", "climate.csv": "year,pm10\n1991,40\n"},
			want:  ErrNoRows,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opt := writeSources(t, tt.files)
			ds, err := Load(opt)
			assert.Nil(t, ds)
			var le *LoadError
			require.ErrorAs(t, err, &le)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestLoadMissingAndCorruptFiles(t *testing.T) {
	opt := writeSources(t, map[string]string{"agriculture.csv": agricultureCSV})
	opt.Sources = []string{"agriculture.csv", "climate.csv"}
	_, err := Load(opt)
	var le *LoadError
	require.ErrorAs(t, err, &le)
	assert.True(t, errors.Is(err, os.ErrNotExist), "err = %v", err)
	assert.Equal(t, filepath.Join(opt.Dir, "climate.csv"), le.Path)

	opt = writeSources(t, map[string]string{"agriculture.csv": "year,a\n2016,1,2\n\"unterminated", "climate.csv": climateCSV})
	_, err = Load(opt)
	require.ErrorAs(t, err, &le)

	opt.Sources = nil
	_, err = Load(opt)
	assert.ErrorIs(t, err, ErrNoSources)
}

func TestDatasetAccessorsReturnCopies(t *testing.T) {
	ds, err := New([]int{2016, 2017}, []Column{{Key: RiceProduction, Values: []float64{1, 2}}})
	require.NoError(t, err)

	vals := ds.Values(RiceProduction)
	vals[0] = 99
	years := ds.Years()
	years[0] = 1900
	col, _ := ds.Column(RiceProduction)
	col.Values[1] = 42

	assert.Equal(t, []float64{1, 2}, ds.Values(RiceProduction))
	assert.Equal(t, []int{2016, 2017}, ds.Years())
	assert.Equal(t, "t", col.Unit)
}

func TestLoadInfoIsReadOnly(t *testing.T) {
	base, err := New([]int{2016, 2017}, []Column{{Key: RiceProduction, Values: []float64{1, 2}}})
	require.NoError(t, err)
	at := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	sources := []string{"agriculture.csv"}
	ds := base.WithLoadInfo("load-1", at, sources, []string{"w1"})
	sources[0] = "changed.csv"

	assert.Empty(t, base.LoadID())
	assert.Equal(t, "load-1", ds.LoadID())
	assert.Equal(t, at, ds.LoadedAt())
	got := ds.Sources()
	got[0] = "mutated.csv"
	w := ds.Warnings()
	w[0] = "mutated"
	assert.Equal(t, []string{"agriculture.csv"}, ds.Sources())
	assert.Equal(t, []string{"w1"}, ds.Warnings())
	assert.Equal(t, []float64{1, 2}, ds.Values(RiceProduction))
}

func TestNewRejectsBrokenInvariants(t *testing.T) {
	_, err := New([]int{2016, 2016}, nil)
	assert.ErrorIs(t, err, ErrDuplicateYear)

	_, err = New([]int{2017, 2016}, nil)
	assert.Error(t, err)

	_, err = New([]int{2016}, []Column{{Key: "a", Values: []float64{1, 2}}})
	assert.Error(t, err)

	nan := []float64{0}
	nan[0] = nan[0] / nan[0]
	_, err = New([]int{2016}, []Column{{Key: "a", Values: nan}})
	assert.Error(t, err)
}

func TestCacheLoadsOnce(t *testing.T) {
	var calls atomic.Int32
	c := NewCacheWith(Options{}, func(Options) (*Dataset, error) {
		calls.Add(1)
		return New([]int{2016}, []Column{{Key: "a", Values: []float64{1}}})
	})
	first, err := c.Get()
	require.NoError(t, err)
	second, err := c.Get()
	require.NoError(t, err)
	assert.Same(t, first, second)
	assert.Equal(t, int32(1), calls.Load())
}

func TestCacheKeepsFailure(t *testing.T) {
	var calls atomic.Int32
	boom := &LoadError{Path: "x.csv", Err: ErrNoRows}
	c := NewCacheWith(Options{}, func(Options) (*Dataset, error) {
		calls.Add(1)
		return nil, boom
	})
	_, err := c.Get()
	assert.ErrorIs(t, err, ErrNoRows)
	_, err = c.Get()
	assert.ErrorIs(t, err, ErrNoRows)
	assert.Equal(t, int32(1), calls.Load())
}
