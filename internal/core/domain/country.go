package domain

import (
	"strings"
	"unicode/utf8"
)

// CountryCode is a canonical origin label: a key of the country→region table
// or Unknown. Full names and ISO-style codes are distinct codes ("United
// States" and "US" are never merged).
type CountryCode string

// Unknown is the sentinel for labels that could not be resolved.
const Unknown CountryCode = "Unknown"

// Region groups countries for the rollup.
type Region string

const (
	RegionNorthAmerica Region = "North America"
	RegionSouthAmerica Region = "South America"
	RegionEurope       Region = "Europe"
	RegionAsia         Region = "Asia"
	RegionOceania      Region = "Oceania"
	RegionAfrica       Region = "Africa"
	RegionUnknown      Region = "Unknown"
)

var countryToRegion = map[CountryCode]Region{
	"United States": RegionNorthAmerica,
	"Canada":        RegionNorthAmerica,
	"Mexico":        RegionNorthAmerica,
	"US":            RegionNorthAmerica,
	"CA":            RegionNorthAmerica,
	"MX":            RegionNorthAmerica,

	"United Kingdom": RegionEurope,
	"Ireland":        RegionEurope,
	"Germany":        RegionEurope,
	"France":         RegionEurope,
	"Spain":          RegionEurope,
	"Italy":          RegionEurope,
	"Netherlands":    RegionEurope,
	"Sweden":         RegionEurope,
	"Norway":         RegionEurope,
	"Finland":        RegionEurope,
	"Denmark":        RegionEurope,
	"Poland":         RegionEurope,
	"Portugal":       RegionEurope,
	"Russia":         RegionEurope,
	"GB":             RegionEurope,
	"IE":             RegionEurope,
	"DE":             RegionEurope,
	"FR":             RegionEurope,
	"ES":             RegionEurope,
	"IT":             RegionEurope,
	"NL":             RegionEurope,
	"SE":             RegionEurope,
	"NO":             RegionEurope,
	"FI":             RegionEurope,
	"DK":             RegionEurope,
	"PL":             RegionEurope,
	"PT":             RegionEurope,
	"RU":             RegionEurope,

	"Japan":       RegionAsia,
	"South Korea": RegionAsia,
	"China":       RegionAsia,
	"India":       RegionAsia,
	"JP":          RegionAsia,
	"KR":          RegionAsia,
	"CN":          RegionAsia,
	"IN":          RegionAsia,

	"Australia":   RegionOceania,
	"New Zealand": RegionOceania,
	"AU":          RegionOceania,
	"NZ":          RegionOceania,

	"Brazil":    RegionSouthAmerica,
	"Argentina": RegionSouthAmerica,
	"Chile":     RegionSouthAmerica,
	"Colombia":  RegionSouthAmerica,
	"BR":        RegionSouthAmerica,
	"AR":        RegionSouthAmerica,
	"CL":        RegionSouthAmerica,
	"CO":        RegionSouthAmerica,

	"South Africa": RegionAfrica,
	"Nigeria":      RegionAfrica,
	"Egypt":        RegionAfrica,
	"ZA":           RegionAfrica,
	"NG":           RegionAfrica,
	"EG":           RegionAfrica,
}

// Geographic lookups often answer with a metropolitan area instead of a
// country.
var cityToCountry = map[string]CountryCode{
	"Ottawa":      "CA",
	"Montréal":    "CA",
	"Montreal":    "CA",
	"Toronto":     "CA",
	"Vancouver":   "CA",
	"New York":    "US",
	"Los Angeles": "US",
	"London":      "GB",
	"Paris":       "FR",
	"Tokyo":       "JP",
}

// Normalize maps a raw geographic label (city, country name or two-letter
// code) to a CountryCode. Empty input and anything outside the region table
// yield Unknown.
func Normalize(raw string) CountryCode {
	label := strings.TrimSpace(raw)
	if label == "" {
		return Unknown
	}

	if code, ok := cityToCountry[label]; ok {
		label = string(code)
	}

	if utf8.RuneCountInString(label) == 2 {
		label = strings.ToUpper(label)
	}

	if _, ok := countryToRegion[CountryCode(label)]; ok {
		return CountryCode(label)
	}
	return Unknown
}

// RegionOf returns the region for a canonical code. Unknown and any code
// outside the table report false.
func RegionOf(code CountryCode) (Region, bool) {
	region, ok := countryToRegion[code]
	return region, ok
}
