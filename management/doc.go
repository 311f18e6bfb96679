// Package management provides a client for the Doofinder management API.
//
// The client resolves its host from an explicit management host or from the
// account zone (https://{zone}-api.doofinder.com), authenticates with an API
// token, and turns error responses into *Error values classified by HTTP
// status and vendor error code.
//
// # Configuration
//
// Options win over the environment. Unset values are read from
// DOOFINDER_TOKEN, DOOFINDER_ZONE and DOOFINDER_MANAGEMENT_HOST.
//
// # Errors
//
// Every error returned for an API response matches ErrManagementAPI. Refined
// kinds also match their broader class:
//
//	_, err := client.GetSearchEngine(ctx, hashid)
//	switch {
//	case errors.Is(err, management.ErrNotFound):
//	    // unknown hashid
//	case errors.Is(err, management.ErrSearchEngineLocked):
//	    // also matches management.ErrConflict
//	}
//
// # Usage
//
//	client, err := management.NewClient(
//	    management.WithZone("eu1"),
//	    management.WithToken(token),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	engines, err := client.ListSearchEngines(ctx)
package management
