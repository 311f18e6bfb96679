// Package stats provides the statistics endpoints of the Doofinder management API.
//
// Each report takes an options struct whose fields are renamed into the wire
// parameters: From and To become "from" and "to" (formatted as YYYYMMDD),
// HashIDs becomes repeated "hashid[]", ID fields become "id" and Exclude
// entries become "exclude[field]". Zero values are omitted.
//
// # Usage
//
//	mgmt, err := management.NewClient(management.WithZone("eu1"), management.WithToken(token))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	client := stats.NewClient(mgmt)
//
//	report, err := client.Searches(ctx, stats.SearchesOptions{
//	    Range:  stats.Range{From: from, To: to, HashIDs: []string{hashid}},
//	    Device: stats.DeviceMobile,
//	})
//
//	var totals map[string]any
//	err = report.Decode(&totals)
package stats
