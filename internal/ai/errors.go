package ai

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/tidwall/gjson"
)

// StatusResourceExhausted is the Google API status token for quota errors.
const StatusResourceExhausted = "RESOURCE_EXHAUSTED"

// APIError is a non-200 reply from the service.
type APIError struct {
	Status  int
	Code    string // e.g. RESOURCE_EXHAUSTED
	Message string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("gemini API %d %s: %s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("gemini API %d: %s", e.Status, e.Message)
}

// IsQuota reports a rate-limit or quota condition.
func (e *APIError) IsQuota() bool {
	return e.Status == http.StatusTooManyRequests || e.Code == StatusResourceExhausted
}

func newAPIError(status int, body []byte) *APIError {
	e := &APIError{Status: status}
	if gjson.ValidBytes(body) {
		e.Code = gjson.GetBytes(body, "error.status").String()
		e.Message = gjson.GetBytes(body, "error.message").String()
	}
	if e.Message == "" {
		msg := string(body)
		if len(msg) > 1024 {
			msg = msg[:1024]
		}
		e.Message = strings.TrimSpace(msg)
	}
	return e
}

// IsQuotaError reports whether err is a transient quota/rate-limit failure:
// a quota APIError, or any error whose message carries "429" or the
// RESOURCE_EXHAUSTED token. The message check also applies to APIErrors, since
// proxies sometimes relay a 429 inside another status.
func IsQuotaError(err error) bool {
	if err == nil {
		return false
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.IsQuota() {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "429") || strings.Contains(msg, StatusResourceExhausted)
}
