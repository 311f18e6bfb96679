package management

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/s0up4200/godoof/apiclient"
	"github.com/s0up4200/godoof/metrics"
)

// Configuration errors
var (
	// ErrMissingZone indicates neither a zone nor a management host was configured
	ErrMissingZone = errors.New("doofinder zone or management host is required")
	// ErrMissingToken indicates no API token was configured
	ErrMissingToken = errors.New("doofinder API token is required")
)

// Kind identifies the class of a management API error.
type Kind string

const (
	KindManagementAPI      Kind = "management_api"
	KindBadRequest         Kind = "bad_request"
	KindBadParameters      Kind = "bad_parameters"
	KindIndexInternal      Kind = "index_internal"
	KindInvalidBoostValue  Kind = "invalid_boost_value"
	KindInvalidFieldNames  Kind = "invalid_field_names"
	KindNotAuthenticated   Kind = "not_authenticated"
	KindAccessDenied       Kind = "access_denied"
	KindNotFound           Kind = "not_found"
	KindAPITimeout         Kind = "api_timeout"
	KindConflict           Kind = "conflict"
	KindSearchEngineLocked Kind = "search_engine_locked"
	KindTooManyTemporary   Kind = "too_many_temporary"
	KindTooManyItems       Kind = "too_many_items"
	KindTooManyRequests    Kind = "too_many_requests"
	KindBadGateway         Kind = "bad_gateway"
)

// Sentinel errors for errors.Is() checks. Every *Error matches
// ErrManagementAPI.
var (
	ErrManagementAPI      = errors.New("doofinder management API error")
	ErrBadRequest         = errors.New("bad request")
	ErrBadParameters      = errors.New("bad parameters")
	ErrIndexInternal      = errors.New("index internal error")
	ErrInvalidBoostValue  = errors.New("invalid boost value")
	ErrInvalidFieldNames  = errors.New("invalid field names")
	ErrNotAuthenticated   = errors.New("not authenticated")
	ErrAccessDenied       = errors.New("access denied")
	ErrNotFound           = errors.New("not found")
	ErrAPITimeout         = errors.New("API timeout")
	ErrConflict           = errors.New("conflict")
	ErrSearchEngineLocked = errors.New("search engine locked")
	ErrTooManyTemporary   = errors.New("too many temporary indices")
	ErrTooManyItems       = errors.New("too many items")
	ErrTooManyRequests    = errors.New("too many requests")
	ErrBadGateway         = errors.New("bad gateway")
)

var sentinels = map[Kind]error{
	KindManagementAPI:      ErrManagementAPI,
	KindBadRequest:         ErrBadRequest,
	KindBadParameters:      ErrBadParameters,
	KindIndexInternal:      ErrIndexInternal,
	KindInvalidBoostValue:  ErrInvalidBoostValue,
	KindInvalidFieldNames:  ErrInvalidFieldNames,
	KindNotAuthenticated:   ErrNotAuthenticated,
	KindAccessDenied:       ErrAccessDenied,
	KindNotFound:           ErrNotFound,
	KindAPITimeout:         ErrAPITimeout,
	KindConflict:           ErrConflict,
	KindSearchEngineLocked: ErrSearchEngineLocked,
	KindTooManyTemporary:   ErrTooManyTemporary,
	KindTooManyItems:       ErrTooManyItems,
	KindTooManyRequests:    ErrTooManyRequests,
	KindBadGateway:         ErrBadGateway,
}

// parents lists the broader kind a refined kind also matches.
var parents = map[Kind]Kind{
	KindBadParameters:      KindBadRequest,
	KindIndexInternal:      KindBadRequest,
	KindInvalidBoostValue:  KindBadRequest,
	KindInvalidFieldNames:  KindBadRequest,
	KindSearchEngineLocked: KindConflict,
	KindTooManyTemporary:   KindConflict,
}

var statusKinds = map[int]Kind{
	http.StatusUnauthorized:          KindNotAuthenticated,
	http.StatusForbidden:             KindAccessDenied,
	http.StatusNotFound:              KindNotFound,
	http.StatusRequestTimeout:        KindAPITimeout,
	http.StatusRequestEntityTooLarge: KindTooManyItems,
	http.StatusTooManyRequests:       KindTooManyRequests,
	http.StatusBadGateway:            KindBadGateway,
}

var badRequestKinds = map[string]Kind{
	"bad_params":           KindBadParameters,
	"index_internal_error": KindIndexInternal,
	"invalid_boost_value":  KindInvalidBoostValue,
	"invalid_field_name":   KindInvalidFieldNames,
}

var conflictKinds = map[string]Kind{
	"searchengine_locked": KindSearchEngineLocked,
	"too_many_temporary":  KindTooManyTemporary,
}

// Error is a classified error response from the management API.
type Error struct {
	Kind       Kind
	HTTPStatus int
	// Code is the vendor error code from error.code, empty when absent.
	Code    string
	Message string
	// Details holds the decoded error object when the body carried one.
	Details map[string]any
	// HTTPBody holds the raw body when it could not be decoded.
	HTTPBody  string
	RequestID string
}

func (e *Error) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "doofinder management API error: %s (status %d", e.Kind, e.HTTPStatus)
	if e.Code != "" {
		fmt.Fprintf(&b, ", code %s", e.Code)
	}
	b.WriteString(")")

	switch {
	case e.Message != "":
		fmt.Fprintf(&b, ": %s", e.Message)
	case strings.TrimSpace(e.HTTPBody) != "":
		fmt.Fprintf(&b, ": %s", strings.TrimSpace(e.HTTPBody))
	}
	return b.String()
}

// Is implements errors.Is for sentinel error matching.
func (e *Error) Is(target error) bool {
	if target == ErrManagementAPI {
		return true
	}
	for kind := e.Kind; kind != ""; kind = parents[kind] {
		if sentinels[kind] == target {
			return true
		}
	}
	return false
}

// KindFor returns the error kind for an HTTP status refined by a vendor error
// code. Unknown statuses map to KindManagementAPI.
func KindFor(status int, code string) Kind {
	switch status {
	case http.StatusBadRequest:
		if kind, ok := badRequestKinds[code]; ok {
			return kind
		}
		return KindBadRequest
	case http.StatusConflict:
		if kind, ok := conflictKinds[code]; ok {
			return kind
		}
		return KindConflict
	}
	if kind, ok := statusKinds[status]; ok {
		return kind
	}
	return KindManagementAPI
}

// classify turns a non-2xx response into an *Error.
func classify(r *apiclient.Response) error {
	e := &Error{
		HTTPStatus: r.StatusCode,
		RequestID:  r.RequestID,
	}

	if payload, ok := decodeErrorPayload(r.Body); ok {
		e.Details = payload
		e.Code, _ = payload["code"].(string)
		e.Message, _ = payload["message"].(string)
	} else {
		e.HTTPBody = string(r.Body)
	}
	e.Kind = KindFor(r.StatusCode, e.Code)

	metrics.RecordAPIError(r.Operation, string(e.Kind))
	return e
}

// decodeErrorPayload extracts the "error" object from a response body. It
// reports false when the body is not JSON, has no "error" object, or the
// object carries no "code".
func decodeErrorPayload(body []byte) (map[string]any, bool) {
	var envelope map[string]any
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, false
	}
	payload, ok := envelope["error"].(map[string]any)
	if !ok {
		return nil, false
	}
	if _, ok := payload["code"]; !ok {
		return nil, false
	}
	return payload, true
}
