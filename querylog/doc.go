// Package querylog reads Doofinder query log exports and filters their
// records with expr expressions.
//
// # Usage
//
//	rd := querylog.NewReader(body)
//	f, err := querylog.Compile(`query contains "shoe" and results == 0`)
//	if err != nil {
//		return err
//	}
//	res, err := querylog.Scan(ctx, rd, f, func(rec querylog.Record) error {
//		fmt.Println(rec.String("query"))
//		return nil
//	})
//
// Record columns are exposed as variables. The helpers icontains, lower,
// upper, parseDate, daysAgo, daysSince and has are available along with
// the whole record as Record.
package querylog
