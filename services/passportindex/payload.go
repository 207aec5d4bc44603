package passportindex

import (
	"bytes"
	"encoding/json"
	"sort"
	"strconv"
	"strings"

	"github.com/ngshiheng/passportindexdb/models"
)

// CountryPayload is one entry of the /countries listing
type CountryPayload struct {
	Code   string     `json:"code"`
	Name   string     `json:"country"`
	Region *string    `json:"region"`
	Data   YearlyData `json:"data"`
}

// UnmarshalJSON never rejects an entry: a field of the wrong type decodes to
// its zero value (nil for Region) so one bad record cannot fail the listing.
// Entries left without a code are dropped by the caller.
func (c *CountryPayload) UnmarshalJSON(b []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		*c = CountryPayload{}
		return nil
	}

	out := CountryPayload{
		Code: strings.TrimSpace(lenientString(raw["code"])),
		Name: strings.TrimSpace(lenientString(raw["country"])),
		Data: YearlyData{},
	}
	if region := strings.TrimSpace(lenientString(raw["region"])); region != "" {
		out.Region = &region
	}
	if data, ok := raw["data"]; ok {
		if err := json.Unmarshal(data, &out.Data); err != nil {
			out.Data = YearlyData{}
		}
	}
	*c = out
	return nil
}

// lenientString reads a JSON string; anything else is empty
func lenientString(raw json.RawMessage) string {
	var s string
	if len(raw) == 0 || json.Unmarshal(raw, &s) != nil {
		return ""
	}
	return s
}

// Observation is the ranking of a country for one year. Either field may be absent.
type Observation struct {
	Rank          *int
	VisaFreeCount *int
}

func (o *Observation) UnmarshalJSON(b []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		// Not an object: nothing usable, keep both fields null
		*o = Observation{}
		return nil
	}
	*o = Observation{
		Rank:          lenientInt(raw["rank"]),
		VisaFreeCount: lenientInt(raw["visa_free_count"]),
	}
	return nil
}

// lenientInt reads a JSON number or numeric string; anything else is null
func lenientInt(raw json.RawMessage) *int {
	if len(raw) == 0 {
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil
		}
		n = json.Number(strings.TrimSpace(s))
	}
	if i, err := strconv.Atoi(n.String()); err == nil {
		return &i
	}
	if f, err := n.Float64(); err == nil && f == float64(int(f)) {
		i := int(f)
		return &i
	}
	return nil
}

// YearlyData maps a year to its observation. The API sends [] instead of {}
// for countries without rankings; both decode to an empty map. Keys that are
// not years are dropped.
type YearlyData map[int]Observation

func (y *YearlyData) UnmarshalJSON(b []byte) error {
	trimmed := bytes.TrimSpace(b)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		*y = YearlyData{}
		return nil
	}

	var raw map[string]Observation
	if err := json.Unmarshal(trimmed, &raw); err != nil {
		return err
	}

	out := make(YearlyData, len(raw))
	for key, obs := range raw {
		year, err := strconv.Atoi(strings.TrimSpace(key))
		if err != nil || year <= 0 {
			continue
		}
		out[year] = obs
	}
	*y = out
	return nil
}

// Years returns the observed years in ascending order
func (y YearlyData) Years() []int {
	years := make([]int, 0, len(y))
	for year := range y {
		years = append(years, year)
	}
	sort.Ints(years)
	return years
}

// Destination is a country listed under a requirement category
type Destination struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// Requirements maps a requirement category to its destinations. The identity
// fields echoed by the visa-single endpoint ("code", "country") are removed
// while decoding, as is any value that is not a list of destinations.
type Requirements map[string][]Destination

func (r *Requirements) UnmarshalJSON(b []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}

	out := make(Requirements, len(raw))
	for key, value := range raw {
		if models.IsReservedKey(key) {
			continue
		}
		var destinations []Destination
		if err := json.Unmarshal(value, &destinations); err != nil {
			continue
		}
		kept := destinations[:0]
		for _, d := range destinations {
			d.Code = strings.TrimSpace(d.Code)
			if d.Code == "" {
				continue
			}
			kept = append(kept, d)
		}
		out[key] = kept
	}
	*r = out
	return nil
}

// Categories returns the category names in sorted order, reserved keys excluded
func (r Requirements) Categories() []string {
	categories := make([]string, 0, len(r))
	for category := range r {
		if models.IsReservedKey(category) {
			continue
		}
		categories = append(categories, category)
	}
	sort.Strings(categories)
	return categories
}

// DestinationCount is the number of destinations across all categories
func (r Requirements) DestinationCount() int {
	total := 0
	for _, category := range r.Categories() {
		total += len(r[category])
	}
	return total
}
