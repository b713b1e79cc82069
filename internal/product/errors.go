package product

import "fmt"

// ExternalCallError is a single failed round-trip against the product: a
// transport error, a non-2xx API response, or a non-zero CLI exit. It is
// never retried here; retry policy belongs to the caller.
type ExternalCallError struct {
	Op     string
	Code   int    // HTTP status or process exit code
	Detail string // response body or stderr snippet
	Err    error
}

func (e *ExternalCallError) Error() string {
	switch {
	case e.Detail != "" && e.Code != 0:
		return fmt.Sprintf("%s failed with code %d: %s", e.Op, e.Code, e.Detail)
	case e.Code != 0:
		return fmt.Sprintf("%s failed with code %d", e.Op, e.Code)
	case e.Err != nil:
		return fmt.Sprintf("%s failed: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s failed", e.Op)
}

func (e *ExternalCallError) Unwrap() error {
	return e.Err
}

const detailLimit = 512

func snippet(body []byte) string {
	if len(body) > detailLimit {
		return string(body[:detailLimit])
	}
	return string(body)
}
