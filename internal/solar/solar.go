// Package solar provides the fixed vocabulary of the solar potential analysis:
// the closed set of measured countries, their backing station files, and the
// irradiance metric codes with their descriptions.
package solar

import (
	"fmt"
	"strings"
)

// =============================================================================
// Countries
// =============================================================================

// Country identifies one of the measured countries.
type Country int

const (
	Benin Country = iota
	SierraLeone
	Togo

	numCountries
)

// countryNames and sourceFiles are indexed by Country. Adding a country
// without extending both arrays is a compile error.
var countryNames = [numCountries]string{
	Benin:       "Benin",
	SierraLeone: "SierraLeone",
	Togo:        "Togo",
}

var sourceFiles = [numCountries]string{
	Benin:       "benin-malanville.csv",
	SierraLeone: "sierraleone-bumbuna.csv",
	Togo:        "togo-dapaong_qc.csv",
}

// Countries returns every known country in display order.
func Countries() []Country {
	out := make([]Country, 0, numCountries)
	for c := Country(0); c < numCountries; c++ {
		out = append(out, c)
	}
	return out
}

// CountryNames returns the identifiers accepted by ParseCountry.
func CountryNames() []string {
	return append([]string(nil), countryNames[:]...)
}

// ParseCountry resolves an identifier to a Country. Matching is exact.
func ParseCountry(name string) (Country, bool) {
	for c, n := range countryNames {
		if n == name {
			return Country(c), true
		}
	}
	return 0, false
}

// Valid reports whether c is inside the closed country set.
func (c Country) Valid() bool {
	return c >= 0 && c < numCountries
}

func (c Country) String() string {
	if !c.Valid() {
		return fmt.Sprintf("Country(%d)", int(c))
	}
	return countryNames[c]
}

// SourceFile returns the station file name backing c, relative to the data dir.
func (c Country) SourceFile() string {
	if !c.Valid() {
		return ""
	}
	return sourceFiles[c]
}

// =============================================================================
// Metrics
// =============================================================================

// Metric is an irradiance column code.
type Metric string

const (
	GHI Metric = "GHI" // Global Horizontal Irradiance
	DNI Metric = "DNI" // Direct Normal Irradiance
	DHI Metric = "DHI" // Diffuse Horizontal Irradiance
)

// Metrics is the metric set every station file carries.
var Metrics = []Metric{GHI, DNI, DHI}

// NoDescription is returned by Describe for codes outside the metric set.
const NoDescription = "No description available."

var descriptions = map[Metric]string{
	GHI: "Global Horizontal Irradiance - Total solar radiation received on a horizontal surface",
	DNI: "Direct Normal Irradiance - Solar radiation received directly from the sun",
	DHI: "Diffuse Horizontal Irradiance - Solar radiation scattered by the atmosphere",
}

// Describe returns the human-readable description of a metric code.
func Describe(metric string) string {
	if d, ok := descriptions[Metric(metric)]; ok {
		return d
	}
	return NoDescription
}

// ParseMetric accepts a metric code case-insensitively.
func ParseMetric(code string) (Metric, bool) {
	m := Metric(strings.ToUpper(strings.TrimSpace(code)))
	_, ok := descriptions[m]
	return m, ok
}

// Unit is the display unit of every irradiance metric.
const Unit = "W/m²"

// Column names shared by every loaded table.
const (
	ColumnCountry   = "Country"
	ColumnRegion    = "Region"
	ColumnTimestamp = "timestamp"
)
