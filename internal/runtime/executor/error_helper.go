// Package executor implements the upstream generators used by the model invoker.
package executor

import (
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/tidwall/gjson"

	log "github.com/FahadBinHussain/Xenovate/internal/logging"
)

// maxErrorBody caps how much of an error response is read and kept.
const maxErrorBody = 8 << 10

// StatusError is a non-2xx upstream response.
type StatusError struct {
	Code    int
	Status  string
	Message string
}

func (e *StatusError) Error() string {
	if e.Status != "" {
		return fmt.Sprintf("upstream error %d (%s): %s", e.Code, e.Status, e.Message)
	}
	return fmt.Sprintf("upstream error %d: %s", e.Code, e.Message)
}

// StatusCode returns the HTTP status of the response.
func (e *StatusError) StatusCode() int { return e.Code }

// HandleHTTPError reads an error response body and converts it to a
// *StatusError. The caller still owns resp.Body.
func HandleHTTPError(resp *http.Response, executorName string) error {
	body, readErr := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if readErr != nil {
		return fmt.Errorf("%s: read error response: %w", executorName, readErr)
	}

	log.Debugf("%s: error status: %d, body: %s", executorName, resp.StatusCode, summarizeErrorBody(body))

	se := &StatusError{Code: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
	if gjson.ValidBytes(body) {
		parsed := gjson.ParseBytes(body)
		if msg := parsed.Get("error.message"); msg.Exists() && msg.String() != "" {
			se.Message = msg.String()
		}
		for _, path := range []string{"error.status", "error.code", "error.type"} {
			if v := parsed.Get(path); v.Type == gjson.String && v.String() != "" {
				se.Status = v.String()
				break
			}
		}
	} else if text := strings.TrimSpace(string(body)); text != "" {
		se.Message = text
	}
	return se
}

func summarizeErrorBody(body []byte) string {
	s := strings.Join(strings.Fields(string(body)), " ")
	if len(s) > 512 {
		return s[:512] + "..."
	}
	return s
}
