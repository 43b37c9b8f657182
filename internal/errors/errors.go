package errors

import "fmt"

// ParseError describes a CSV row that could not be turned into a product.
// Parse errors are collected, never returned up the pipeline: the row is
// skipped and reading continues with the next one.
type ParseError struct {
	Row       int
	ProductID string
	Line      string
	Message   string
}

func (e *ParseError) Error() string {
	if e.ProductID != "" {
		return fmt.Sprintf("product %s: %s", e.ProductID, e.Message)
	}
	return e.Message
}

func NewParseError(productID, line, message string) *ParseError {
	return &ParseError{
		ProductID: productID,
		Line:      line,
		Message:   message,
	}
}

func IsParseError(err error) (*ParseError, bool) {
	if pe, ok := err.(*ParseError); ok {
		return pe, true
	}
	return nil, false
}

// RequestError is returned when the server answers a request with a non-2xx
// status. For batch requests this is the fatal tier: the worker aborts and
// writes a bug report instead of retrying.
type RequestError struct {
	StatusCode int
	Status     string
	Body       []byte
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("server returned %s", e.Status)
}

func NewRequestError(statusCode int, status string, body []byte) *RequestError {
	return &RequestError{
		StatusCode: statusCode,
		Status:     status,
		Body:       body,
	}
}

func IsRequestError(err error) (*RequestError, bool) {
	if re, ok := err.(*RequestError); ok {
		return re, true
	}
	return nil, false
}

// InternalError wraps failures on our side of the wire: a request body
// that cannot be encoded or a response that cannot be decoded. The cause
// stays reachable through Unwrap.
type InternalError struct {
	Message string
	Cause   error
}

func (e *InternalError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *InternalError) Unwrap() error {
	return e.Cause
}

func NewInternalError(message string, cause error) *InternalError {
	return &InternalError{
		Message: message,
		Cause:   cause,
	}
}

func IsInternalError(err error) (*InternalError, bool) {
	if ie, ok := err.(*InternalError); ok {
		return ie, true
	}
	return nil, false
}
