package querylog

import (
	"context"
	"errors"
	"io"
)

// ScanResult summarizes a pass over a query log.
type ScanResult struct {
	Scanned int
	Matched int
	Skipped int
	// FirstError is the evaluation failure of the first skipped record.
	FirstError *EvaluationError
}

// ScanFunc receives each matching record. Returning ErrStop ends the scan
// without an error.
type ScanFunc func(Record) error

// ErrStop stops a scan early.
var ErrStop = errors.New("stop scan")

// Scan reads every record from r and calls fn for those matching f. A nil
// filter matches everything. Records the filter cannot evaluate are counted
// as skipped; the first failure is kept in the result.
func Scan(ctx context.Context, r *Reader, f *Filter, fn ScanFunc) (ScanResult, error) {
	var res ScanResult
	for {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		rec, err := r.Next()
		if errors.Is(err, io.EOF) {
			return res, nil
		}
		if err != nil {
			return res, err
		}
		res.Scanned++

		if f != nil {
			ok, err := f.Eval(rec)
			if err != nil {
				res.Skipped++
				if res.FirstError == nil {
					res.FirstError = &EvaluationError{
						Expression: f.Expression(),
						Line:       res.Scanned,
						Err:        err,
					}
				}
				continue
			}
			if !ok {
				continue
			}
		}
		res.Matched++

		if err := fn(rec); err != nil {
			if errors.Is(err, ErrStop) {
				return res, nil
			}
			return res, err
		}
	}
}

// Collect returns up to limit matching records. A limit of zero or less
// returns all of them.
func Collect(ctx context.Context, r *Reader, f *Filter, limit int) ([]Record, ScanResult, error) {
	var out []Record
	res, err := Scan(ctx, r, f, func(rec Record) error {
		out = append(out, rec)
		if limit > 0 && len(out) >= limit {
			return ErrStop
		}
		return nil
	})
	return out, res, err
}
