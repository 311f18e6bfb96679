package stats

import (
	"net/url"
	"sort"
	"strconv"
	"time"
)

// DateLayout is the wire format of report dates
const DateLayout = "20060102"

// Range selects the period and search engines a report covers. Zero dates
// and an empty HashIDs slice are left to the API defaults.
type Range struct {
	From    time.Time
	To      time.Time
	HashIDs []string
}

func (r Range) validate() error {
	if !r.From.IsZero() && !r.To.IsZero() && r.To.Before(r.From) {
		return ErrInvalidRange
	}
	return nil
}

func (r Range) values() url.Values {
	v := url.Values{}
	if !r.From.IsZero() {
		v.Set("from", r.From.Format(DateLayout))
	}
	if !r.To.IsZero() {
		v.Set("to", r.To.Format(DateLayout))
	}
	for _, id := range r.HashIDs {
		if id != "" {
			v.Add("hashid[]", id)
		}
	}
	return v
}

// BannersOptions filters the banners report
type BannersOptions struct {
	Range
	BannerID string
	TZ       string
	Format   Format
}

// TimelineOptions filters the checkouts, clicks, clicks by query and inits reports
type TimelineOptions struct {
	Range
	Device   Device
	TZ       string
	Interval string
	Format   Format
}

// DeviceOptions filters the click searches and init locations reports
type DeviceOptions struct {
	Range
	Device Device
	TZ     string
	Format Format
}

// ClicksTopOptions filters the top clicks report
type ClicksTopOptions struct {
	Range
	Query    string
	Device   Device
	TZ       string
	Interval string
	Format   Format
}

// CustomResultsOptions filters the custom results report
type CustomResultsOptions struct {
	Range
	CustomResultID string
	TZ             string
	Format         Format
}

// FacetsOptions filters the facets reports
type FacetsOptions struct {
	Range
	TZ     string
	Format Format
}

// RedirectsOptions filters the redirects report
type RedirectsOptions struct {
	Range
	RedirectID string
	TZ         string
	Format     Format
}

// SearchesOptions filters the searches report
type SearchesOptions struct {
	Range
	Device    Device
	QueryName string
	Source    Source
	// TotalHits keeps searches with this many results; zero disables the filter.
	TotalHits int
	TZ        string
	Interval  string
	Format    Format
}

// SearchesTopOptions filters the top searches report
type SearchesTopOptions struct {
	Range
	Device    Device
	QueryName string
	// Exclude drops searches whose field equals the value.
	Exclude   map[string]string
	TotalHits int
	TZ        string
	Interval  string
	Format    Format
}

// UsageOptions filters the usage report
type UsageOptions struct {
	Range
	Type   UsageType
	Format Format
}

// params accumulates wire parameters, skipping zero values.
type params struct {
	url.Values
}

func newParams(r Range) params {
	return params{r.values()}
}

func (p params) str(key, value string) params {
	if value != "" {
		p.Set(key, value)
	}
	return p
}

func (p params) positive(key string, value int) params {
	if value > 0 {
		p.Set(key, strconv.Itoa(value))
	}
	return p
}

func (p params) exclude(fields map[string]string) params {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		p.Set("exclude["+k+"]", fields[k])
	}
	return p
}

func (o BannersOptions) values() url.Values {
	return newParams(o.Range).
		str("id", o.BannerID).
		str("tz", o.TZ).
		str("format", string(o.Format)).Values
}

func (o TimelineOptions) values() url.Values {
	return newParams(o.Range).
		str("device", string(o.Device)).
		str("tz", o.TZ).
		str("interval", o.Interval).
		str("format", string(o.Format)).Values
}

func (o DeviceOptions) values() url.Values {
	return newParams(o.Range).
		str("device", string(o.Device)).
		str("tz", o.TZ).
		str("format", string(o.Format)).Values
}

func (o ClicksTopOptions) values() url.Values {
	return newParams(o.Range).
		str("query", o.Query).
		str("device", string(o.Device)).
		str("tz", o.TZ).
		str("interval", o.Interval).
		str("format", string(o.Format)).Values
}

func (o CustomResultsOptions) values() url.Values {
	return newParams(o.Range).
		str("id", o.CustomResultID).
		str("tz", o.TZ).
		str("format", string(o.Format)).Values
}

func (o FacetsOptions) values() url.Values {
	return newParams(o.Range).
		str("tz", o.TZ).
		str("format", string(o.Format)).Values
}

func (o RedirectsOptions) values() url.Values {
	return newParams(o.Range).
		str("id", o.RedirectID).
		str("tz", o.TZ).
		str("format", string(o.Format)).Values
}

func (o SearchesOptions) values() url.Values {
	return newParams(o.Range).
		str("device", string(o.Device)).
		str("query_name", o.QueryName).
		str("source", string(o.Source)).
		positive("total_hits", o.TotalHits).
		str("tz", o.TZ).
		str("interval", o.Interval).
		str("format", string(o.Format)).Values
}

func (o SearchesTopOptions) values() url.Values {
	return newParams(o.Range).
		str("device", string(o.Device)).
		str("query_name", o.QueryName).
		exclude(o.Exclude).
		positive("total_hits", o.TotalHits).
		str("tz", o.TZ).
		str("interval", o.Interval).
		str("format", string(o.Format)).Values
}

func (o UsageOptions) values() url.Values {
	return newParams(o.Range).
		str("type", string(o.Type)).
		str("format", string(o.Format)).Values
}
