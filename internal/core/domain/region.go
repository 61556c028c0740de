package domain

import (
	"bytes"

	"github.com/goccy/go-json"
)

// CountryCount is one entry of CountryCounts.
type CountryCount struct {
	Country CountryCode
	Count   int
}

// CountryCounts tallies artists per CountryCode, remembering the order in
// which countries were first added. The zero value is ready to use.
type CountryCounts struct {
	order  []CountryCode
	counts map[CountryCode]int
}

// Add increments country by n. Non-positive n is ignored so counts never go
// negative.
func (c *CountryCounts) Add(country CountryCode, n int) {
	if n <= 0 {
		return
	}
	if c.counts == nil {
		c.counts = make(map[CountryCode]int)
	}
	if _, ok := c.counts[country]; !ok {
		c.order = append(c.order, country)
	}
	c.counts[country] += n
}

// Count returns the tally for country.
func (c CountryCounts) Count(country CountryCode) int {
	return c.counts[country]
}

// Len is the number of distinct countries.
func (c CountryCounts) Len() int {
	return len(c.order)
}

// Total sums every tally.
func (c CountryCounts) Total() int {
	total := 0
	for _, country := range c.order {
		total += c.counts[country]
	}
	return total
}

// Entries returns the tallies in insertion order.
func (c CountryCounts) Entries() []CountryCount {
	out := make([]CountryCount, 0, len(c.order))
	for _, country := range c.order {
		out = append(out, CountryCount{Country: country, Count: c.counts[country]})
	}
	return out
}

// Map returns an unordered copy.
func (c CountryCounts) Map() map[CountryCode]int {
	out := make(map[CountryCode]int, len(c.order))
	for _, country := range c.order {
		out[country] = c.counts[country]
	}
	return out
}

// MarshalJSON writes an object whose keys keep insertion order.
func (c CountryCounts) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, country := range c.order {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := writeMember(&buf, string(country), c.counts[country]); err != nil {
			return nil, err
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// RegionShare is one entry of RegionPercentages.
type RegionShare struct {
	Region   Region
	Fraction float64
}

// RegionPercentages maps regions to their share of the total, in the order
// regions were first encountered during the rollup.
type RegionPercentages struct {
	shares []RegionShare
}

// NewRegionPercentages builds a mapping from already computed shares. Used
// when loading persisted summaries.
func NewRegionPercentages(shares []RegionShare) RegionPercentages {
	return RegionPercentages{shares: append([]RegionShare(nil), shares...)}
}

// Len is the number of represented regions.
func (r RegionPercentages) Len() int {
	return len(r.shares)
}

// Fraction returns the share for region.
func (r RegionPercentages) Fraction(region Region) (float64, bool) {
	for _, s := range r.shares {
		if s.Region == region {
			return s.Fraction, true
		}
	}
	return 0, false
}

// Entries returns the shares in order.
func (r RegionPercentages) Entries() []RegionShare {
	return append([]RegionShare(nil), r.shares...)
}

// Sum adds every fraction; 1.0 for any non-empty rollup.
func (r RegionPercentages) Sum() float64 {
	sum := 0.0
	for _, s := range r.shares {
		sum += s.Fraction
	}
	return sum
}

// MarshalJSON writes an object whose keys keep rollup order.
func (r RegionPercentages) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, s := range r.shares {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := writeMember(&buf, string(s.Region), s.Fraction); err != nil {
			return nil, err
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Rollup converts per-country counts into per-region fractions. Countries
// missing from the region table (Unknown included) land in RegionUnknown.
// A zero total yields an empty mapping.
func Rollup(counts CountryCounts) RegionPercentages {
	total := counts.Total()
	if total == 0 {
		return RegionPercentages{}
	}

	var order []Region
	regionCounts := make(map[Region]int)
	for _, entry := range counts.Entries() {
		region, ok := RegionOf(entry.Country)
		if !ok {
			region = RegionUnknown
		}
		if _, seen := regionCounts[region]; !seen {
			order = append(order, region)
		}
		regionCounts[region] += entry.Count
	}

	shares := make([]RegionShare, 0, len(order))
	for _, region := range order {
		if regionCounts[region] == 0 {
			continue
		}
		shares = append(shares, RegionShare{
			Region:   region,
			Fraction: float64(regionCounts[region]) / float64(total),
		})
	}
	return RegionPercentages{shares: shares}
}

func writeMember(buf *bytes.Buffer, key string, value any) error {
	k, err := json.Marshal(key)
	if err != nil {
		return err
	}
	v, err := json.Marshal(value)
	if err != nil {
		return err
	}
	buf.Write(k)
	buf.WriteByte(':')
	buf.Write(v)
	return nil
}
