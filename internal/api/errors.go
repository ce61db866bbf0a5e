// This file centralizes the engine's error taxonomy and the uniform error
// envelope every failed request is serialized into.
//
// Conventions:
//   - Codes are lowercase, snake_case, and stable: clients branch on them.
//   - Every Error carries the HTTP status the Response Assembler should emit.
//   - Failures are terminal for the request: no stage retries, and the first
//     error short-circuits the remaining pipeline.
//
// Example response:
//
//	HTTP/1.1 404 Not Found
//	{
//	  "errors": [
//	    { "code": "no_route", "message": "no route was found matching the URL and request method" }
//	  ]
//	}
package api

// Stable engine error codes. Each maps 1:1 to an HTTP status.
const (
	ErrCodeUnsupportedMethod    = "unsupported_method"    // 400
	ErrCodeMissingCallbackParam = "missing_callback_param" // 400
	ErrCodeNoRoute              = "no_route"              // 404
	ErrCodeInvalidHandler       = "invalid_handler"       // 500
	ErrCodeAuthentication       = "authentication_error"  // 500
	ErrCodeAPIDisabled          = "store_api_disabled"    // 404
)

// Error is the engine's structured error value. It satisfies the error
// interface so handlers can return it through ordinary error plumbing, and it
// carries the HTTP status that the Response Assembler maps onto the wire.
type Error struct {
	Code    string `json:"code"    xml:"code"`
	Message string `json:"message" xml:"message"`
	Status  int    `json:"-"       xml:"-"`
}

// NewError constructs an Error with a stable code, a human-readable message,
// and the HTTP status it should surface as.
func NewError(code, message string, status int) *Error {
	return &Error{Code: code, Message: message, Status: status}
}

// Error returns the human-readable message.
func (e *Error) Error() string { return e.Message }

// ErrorList aggregates one or more engine errors under a single transport
// envelope. A dispatch result is either a domain value or an ErrorList; there
// is no partial success.
type ErrorList struct {
	Errors []*Error `json:"errors" xml:"error"`
}

// Error returns the first error's message, satisfying the error interface so
// the aggregate flows through ordinary error plumbing.
func (l ErrorList) Error() string {
	if len(l.Errors) == 0 {
		return ""
	}
	return l.Errors[0].Message
}

// Status returns the HTTP status of the first error carrying one, or 0 when
// no error declares a status (the transport default applies).
func (l ErrorList) Status() int {
	for _, e := range l.Errors {
		if e.Status != 0 {
			return e.Status
		}
	}
	return 0
}

// Envelope flattens err into the wire error-list shape. A *Error becomes a
// single-element list, an ErrorList passes through, and any other error is
// wrapped as an internal_error with no explicit status.
func Envelope(err error) ErrorList {
	switch e := err.(type) {
	case *Error:
		return ErrorList{Errors: []*Error{e}}
	case ErrorList:
		return e
	case *ErrorList:
		return *e
	default:
		return ErrorList{Errors: []*Error{{Code: "internal_error", Message: err.Error()}}}
	}
}
