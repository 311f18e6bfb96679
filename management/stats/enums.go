package stats

import "fmt"

// Format selects the response encoding of a report
type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
)

// Device filters a report by the visitor's device
type Device string

const (
	DeviceDesktop Device = "desktop"
	DeviceMobile  Device = "mobile"
)

// Source filters searches by how they were entered
type Source string

const (
	SourceVoice      Source = "voice"
	SourceText       Source = "text"
	SourceSuggestion Source = "suggestion"
)

// UsageType selects the counters returned by the usage report
type UsageType string

const (
	UsageAPI      UsageType = "api_counters"
	UsageParser   UsageType = "parser_counters"
	UsageQuery    UsageType = "query_counters"
	UsageRequests UsageType = "requests_counters"
	UsageSearch   UsageType = "search_counters"
)

// ParseFormat parses a format name
func ParseFormat(s string) (Format, error) {
	switch f := Format(s); f {
	case FormatJSON, FormatCSV:
		return f, nil
	}
	return "", fmt.Errorf("%w: format %q", ErrInvalidValue, s)
}

// ParseDevice parses a device name
func ParseDevice(s string) (Device, error) {
	switch d := Device(s); d {
	case DeviceDesktop, DeviceMobile:
		return d, nil
	}
	return "", fmt.Errorf("%w: device %q", ErrInvalidValue, s)
}

// ParseSource parses a search source name
func ParseSource(s string) (Source, error) {
	switch src := Source(s); src {
	case SourceVoice, SourceText, SourceSuggestion:
		return src, nil
	}
	return "", fmt.Errorf("%w: source %q", ErrInvalidValue, s)
}

// ParseUsageType parses a usage type. Both the wire name ("api_counters")
// and its short form ("api") are accepted.
func ParseUsageType(s string) (UsageType, error) {
	switch t := UsageType(s); t {
	case UsageAPI, UsageParser, UsageQuery, UsageRequests, UsageSearch:
		return t, nil
	}
	switch t := UsageType(s + "_counters"); t {
	case UsageAPI, UsageParser, UsageQuery, UsageRequests, UsageSearch:
		return t, nil
	}
	return "", fmt.Errorf("%w: usage type %q", ErrInvalidValue, s)
}
