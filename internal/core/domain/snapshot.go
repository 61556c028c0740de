package domain

import (
	"sort"
	"strings"
	"time"
)

// PassportSnapshot is the aggregated country/region summary for one artist
// set at one point in time. It is not mutated after construction.
type PassportSnapshot struct {
	ID                string            `json:"id"`
	UserID            string            `json:"user_id"`
	CreatedAt         time.Time         `json:"created_at"`
	CountryCounts     CountryCounts     `json:"country_counts"`
	RegionPercentages RegionPercentages `json:"region_percentages"`
	TotalArtists      int               `json:"total_artists"`
	ArtistsByCountry  ArtistsByCountry  `json:"artists_by_country"`
	Note              string            `json:"note,omitempty"`
}

// ArtistsByCountry lists the artists attributed to each country.
type ArtistsByCountry map[CountryCode][]string

// Add appends name under country. Call Sort once all names are in.
func (a ArtistsByCountry) Add(country CountryCode, name string) {
	a[country] = append(a[country], name)
}

// Sort deduplicates each list and orders it case-insensitively. Names equal
// ignoring case keep their byte order.
func (a ArtistsByCountry) Sort() {
	for country, names := range a {
		seen := make(map[string]struct{}, len(names))
		unique := make([]string, 0, len(names))
		for _, n := range names {
			if _, dup := seen[n]; dup {
				continue
			}
			seen[n] = struct{}{}
			unique = append(unique, n)
		}
		sort.Strings(unique)
		sort.SliceStable(unique, func(i, j int) bool {
			return strings.ToLower(unique[i]) < strings.ToLower(unique[j])
		})
		a[country] = unique
	}
}

// PassportSummary is the persisted form of a passport computed from stored
// artist origins.
type PassportSummary struct {
	ID                string            `json:"id"`
	UserID            string            `json:"user_id"`
	CreatedAt         time.Time         `json:"created_at"`
	CountryCounts     CountryCounts     `json:"country_counts"`
	RegionPercentages RegionPercentages `json:"region_percentages"`
	TotalArtists      int               `json:"total_artists"`
}
