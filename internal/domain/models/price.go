package models

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

const (
	// DefaultPriceLimit is the page size used when a query does not set one.
	DefaultPriceLimit = 500
)

// PriceQuery describes one request against the AGMARKNET daily price resource.
//
// Filter fields are opaque, case-sensitive matching strings. They are trimmed
// before use and a blank value means "no filter on this field".
//
// From and To are optional inclusive bounds in YYYY-MM-DD form.
//
// PriceQuery is a value type: pass it by value and derive variants with the
// With* helpers instead of mutating a shared instance.
type PriceQuery struct {
	Commodity string
	State     string
	District  string
	Market    string
	Variety   string
	Grade     string

	From string
	To   string

	Limit  int
	Offset int
}

// FilterField is one upstream filter name paired with its value.
type FilterField struct {
	Name  string
	Value string
}

// Filters returns the non-blank filter fields in the fixed upstream order:
// commodity, state, district, market, variety, grade. Values are trimmed.
func (q PriceQuery) Filters() []FilterField {
	all := []FilterField{
		{Name: "commodity", Value: q.Commodity},
		{Name: "state", Value: q.State},
		{Name: "district", Value: q.District},
		{Name: "market", Value: q.Market},
		{Name: "variety", Value: q.Variety},
		{Name: "grade", Value: q.Grade},
	}
	out := make([]FilterField, 0, len(all))
	for _, f := range all {
		if v := strings.TrimSpace(f.Value); v != "" {
			out = append(out, FilterField{Name: f.Name, Value: v})
		}
	}
	return out
}

// WithDefaults returns a copy of q with Limit and Offset defaulted
// (Limit 500 when not positive, Offset 0 when negative).
func (q PriceQuery) WithDefaults() PriceQuery {
	if q.Limit <= 0 {
		q.Limit = DefaultPriceLimit
	}
	if q.Offset < 0 {
		q.Offset = 0
	}
	q.From = strings.TrimSpace(q.From)
	q.To = strings.TrimSpace(q.To)
	return q
}

// HasRange reports whether either date bound is set.
func (q PriceQuery) HasRange() bool {
	return strings.TrimSpace(q.From) != "" || strings.TrimSpace(q.To) != ""
}

// PriceRecord is one row of the upstream "records" array.
//
// Only arrival_date and modal_price are interpreted; every other field is kept
// as decoded so it can be re-emitted untouched.
//
// swagger:model PriceRecord
type PriceRecord map[string]any

// ArrivalDate returns the raw arrival_date value (DD/MM/YYYY upstream).
func (r PriceRecord) ArrivalDate() string {
	switch v := r["arrival_date"].(type) {
	case string:
		return v
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}

// ModalPrice parses modal_price as a number.
//
// Parsing fails open: a missing, empty, unparseable or non-finite value yields 0.
func (r PriceRecord) ModalPrice() float64 {
	var f float64
	switch v := r["modal_price"].(type) {
	case float64:
		f = v
	case json.Number:
		parsed, err := v.Float64()
		if err != nil {
			return 0
		}
		f = parsed
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return 0
		}
		parsed, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0
		}
		f = parsed
	case int:
		f = float64(v)
	case int64:
		f = float64(v)
	default:
		return 0
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

// PricePoint is one (date, average modal price) observation.
//
// swagger:model PricePoint
type PricePoint struct {
	Date     string  `json:"date" example:"2024-03-01"`
	ModalAvg float64 `json:"modal_avg" example:"2150.5"`
}
