package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/s0up4200/godoof/management/stats"
)

var dateLayouts = []string{"2006-01-02", stats.DateLayout}

// parseDate accepts YYYY-MM-DD or YYYYMMDD; empty means unset.
func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q (want YYYY-MM-DD)", s)
}

func buildRange(from, to string, hashids []string) (stats.Range, error) {
	var r stats.Range
	var err error
	if r.From, err = parseDate(from); err != nil {
		return r, err
	}
	if r.To, err = parseDate(to); err != nil {
		return r, err
	}
	r.HashIDs = hashids
	return r, nil
}

// writeJSON pretty prints v.
func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// writeReport prints a report, indenting JSON bodies.
func writeReport(w io.Writer, report *stats.Report) error {
	if report.Format == stats.FormatCSV {
		_, err := w.Write(report.Data)
		return err
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, report.Data, "", "  "); err != nil {
		_, err = w.Write(report.Data)
		return err
	}
	buf.WriteByte('\n')
	_, err := buf.WriteTo(w)
	return err
}
