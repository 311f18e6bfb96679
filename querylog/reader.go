package querylog

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"

	json "github.com/goccy/go-json"
)

// Format is the encoding of a query log stream
type Format int

const (
	FormatCSV Format = iota
	FormatNDJSON
	FormatJSONArray
)

func (f Format) String() string {
	switch f {
	case FormatNDJSON:
		return "ndjson"
	case FormatJSONArray:
		return "json"
	default:
		return "csv"
	}
}

// headerPeekSize bounds how much of a CSV header line is inspected when
// detecting the delimiter.
const headerPeekSize = 64 << 10

// Reader decodes query log records from a stream. The encoding is detected
// from the first non-blank byte: '{' for newline-delimited JSON, '[' for a
// JSON array, anything else for CSV with a header row.
type Reader struct {
	format Format
	csv    *csv.Reader
	header []string
	json   *json.Decoder
	line   int
	err    error
}

// NewReader creates a Reader over r.
func NewReader(r io.Reader) *Reader {
	br := bufio.NewReaderSize(r, headerPeekSize)
	rd := &Reader{}

	first, err := peekNonSpace(br)
	if err != nil {
		rd.err = err
		return rd
	}

	switch first {
	case '{':
		rd.format = FormatNDJSON
		rd.json = json.NewDecoder(br)
	case '[':
		rd.format = FormatJSONArray
		rd.json = json.NewDecoder(br)
		if _, err := rd.json.Token(); err != nil {
			rd.err = &ParseError{Line: 0, Err: err}
		}
	default:
		rd.format = FormatCSV
		rd.csv = csv.NewReader(br)
		rd.csv.Comma = detectDelimiter(br)
		rd.csv.FieldsPerRecord = -1
		rd.csv.ReuseRecord = true
	}
	return rd
}

// Format returns the detected encoding.
func (r *Reader) Format() Format {
	return r.format
}

// Line returns the number of records read so far.
func (r *Reader) Line() int {
	return r.line
}

// Next returns the next record, or io.EOF at the end of the stream.
func (r *Reader) Next() (Record, error) {
	if r.err != nil {
		return nil, r.err
	}

	var rec Record
	var err error
	switch r.format {
	case FormatCSV:
		rec, err = r.nextCSV()
	case FormatJSONArray:
		if !r.json.More() {
			err = io.EOF
			break
		}
		rec, err = r.nextJSON()
	default:
		rec, err = r.nextJSON()
	}

	if err != nil {
		r.err = err
		return nil, err
	}
	r.line++
	return rec, nil
}

func (r *Reader) nextCSV() (Record, error) {
	if r.header == nil {
		header, err := r.csv.Read()
		if err != nil {
			return nil, err
		}
		r.header = append([]string(nil), header...)
	}

	fields, err := r.csv.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.EOF
		}
		return nil, &ParseError{Line: r.line + 1, Err: err}
	}

	rec := make(Record, len(r.header))
	for i, name := range r.header {
		if i < len(fields) {
			rec[name] = parseValue(fields[i])
		}
	}
	return rec, nil
}

func (r *Reader) nextJSON() (Record, error) {
	var rec Record
	if err := r.json.Decode(&rec); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.EOF
		}
		return nil, &ParseError{Line: r.line + 1, Err: err}
	}
	if rec == nil {
		return nil, &ParseError{Line: r.line + 1, Err: fmt.Errorf("record is not an object")}
	}
	return rec, nil
}

func peekNonSpace(br *bufio.Reader) (byte, error) {
	for {
		b, err := br.Peek(1)
		if err != nil {
			return 0, err
		}
		switch b[0] {
		case ' ', '\t', '\r', '\n':
			if _, err := br.ReadByte(); err != nil {
				return 0, err
			}
		default:
			return b[0], nil
		}
	}
}

// detectDelimiter picks the CSV delimiter from the header line. The line is
// peeked in full, growing the look-ahead up to the buffer size, since slow
// readers may have delivered only part of it.
func detectDelimiter(br *bufio.Reader) rune {
	var head []byte
	for n := max(br.Buffered(), 1); ; n = min(2*n, br.Size()) {
		b, err := br.Peek(n)
		head = b
		if i := bytes.IndexByte(b, '\n'); i >= 0 {
			head = b[:i]
			break
		}
		if err != nil || n == br.Size() {
			break
		}
	}

	delim, best := ',', bytes.Count(head, []byte{','})
	for _, d := range []rune{';', '\t'} {
		if n := bytes.Count(head, []byte{byte(d)}); n > best {
			delim, best = d, n
		}
	}
	return delim
}
