package dataset

import "strings"

// Group classifies indicators for the analyzers.
type Group string

const (
	GroupAgriculture Group = "agriculture"
	GroupClimate     Group = "climate"
	GroupAirQuality  Group = "air_quality"
	GroupOther       Group = "other"
)

// Column keys of the declared indicators.
const (
	Year             = "year"
	FarmHouseholds   = "farm_households"
	PaddyArea        = "paddy_area"
	UplandArea       = "upland_area"
	CultivatedArea   = "cultivated_area"
	RiceProduction   = "rice_production"
	PotatoProduction = "potato_production"
	AvgTemperature   = "avg_temperature"
	Precipitation    = "precipitation"
	PM10             = "pm10"
	PM25             = "pm25"
	O3               = "o3"
)

// Spec describes a known indicator.
type Spec struct {
	Key     string
	Label   string
	LabelKo string
	Unit    string
	Group   Group
	Aliases []string
}

var known = []Spec{
	{FarmHouseholds, "Farm households", "농가 수", "households", GroupAgriculture, []string{"farm_household_count", "households", "농가수", "농가_수"}},
	{PaddyArea, "Paddy area", "논 면적", "ha", GroupAgriculture, []string{"paddy", "논", "논_면적", "논면적"}},
	{UplandArea, "Upland area", "밭 면적", "ha", GroupAgriculture, []string{"upland", "field_area", "밭", "밭_면적", "밭면적"}},
	{CultivatedArea, "Cultivated area", "경지 면적", "ha", GroupAgriculture, []string{"total_cultivated_area", "cultivated", "경지면적", "경지_면적"}},
	{RiceProduction, "Rice production", "쌀 생산량", "t", GroupAgriculture, []string{"rice", "쌀", "쌀_생산량", "쌀생산량"}},
	{PotatoProduction, "Potato production", "감자 생산량", "t", GroupAgriculture, []string{"potato", "감자", "감자_생산량", "감자생산량"}},
	{AvgTemperature, "Mean temperature", "평균 기온", "°C", GroupClimate, []string{"temperature", "mean_temperature", "avg_temp", "평균기온", "평균_기온"}},
	{Precipitation, "Precipitation", "강수량", "mm", GroupClimate, []string{"rainfall", "precip", "강수량"}},
	{PM10, "PM10", "미세먼지(PM10)", "µg/m³", GroupAirQuality, []string{"미세먼지"}},
	{PM25, "PM2.5", "초미세먼지(PM2.5)", "µg/m³", GroupAirQuality, []string{"pm2.5", "pm2_5", "초미세먼지"}},
	{O3, "O3", "오존", "ppm", GroupAirQuality, []string{"ozone", "오존"}},
}

var yearAliases = []string{"연도", "년도", "yr"}

var aliasIndex = func() map[string]string {
	m := map[string]string{Year: Year}
	for _, a := range yearAliases {
		m[normalizeKey(a)] = Year
	}
	for _, s := range known {
		m[s.Key] = s.Key
		for _, a := range s.Aliases {
			m[normalizeKey(a)] = s.Key
		}
	}
	return m
}()

// Known returns the declared indicators in display order.
func Known() []Spec {
	out := make([]Spec, len(known))
	copy(out, known)
	return out
}

// Lookup returns the spec for a column key.
func Lookup(key string) (Spec, bool) {
	for _, s := range known {
		if s.Key == key {
			return s, true
		}
	}
	return Spec{}, false
}

// DefaultRequired lists the columns every loaded dataset must carry.
func DefaultRequired() []string {
	return []string{
		FarmHouseholds, CultivatedArea, RiceProduction, PotatoProduction,
		AvgTemperature, Precipitation, PM10, PM25, O3,
	}
}

func normalizeKey(s string) string {
	k := strings.ToLower(strings.TrimSpace(s))
	k = strings.NewReplacer(" ", "_", "-", "_").Replace(k)
	for strings.Contains(k, "__") {
		k = strings.ReplaceAll(k, "__", "_")
	}
	return strings.Trim(k, "_")
}

// NormalizeHeader maps a raw header to a column key and the unit found in it.
func NormalizeHeader(h string) (key, unit string) {
	clean, unit := splitUnits(h)
	k := normalizeKey(clean)
	if canon, ok := aliasIndex[k]; ok {
		return canon, unit
	}
	return strings.ReplaceAll(k, ".", "_"), unit
}
