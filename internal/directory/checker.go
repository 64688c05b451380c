// Package directory integrates an external user directory that is consulted
// before a user record is created, mirroring an LDAP-backed portal check.
// The lifecycle service treats a failed check the same as a field validation
// failure: the record is never created.
package directory

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// Checker decides whether a username is acceptable to the external
// directory. A nil error means the username passed the check.
type Checker interface {
	Check(ctx context.Context, username string) error
}

// Disabled is a no-op Checker used when no directory is configured.
type Disabled struct{}

func (Disabled) Check(context.Context, string) error { return nil }

// CheckError is returned when the directory rejects a username or the
// lookup itself fails.
type CheckError struct {
	Username string
	Message  string
}

func (e *CheckError) Error() string {
	return fmt.Sprintf("directory: check failed for %q: %s", e.Username, e.Message)
}

// HTTPChecker queries a directory endpoint over HTTP. The endpoint is
// expected to answer GET {base}?name={username} with a JSON body of the form
// {"valid": bool, "message": string}.
type HTTPChecker struct {
	base   string
	client *http.Client
}

// NewHTTPChecker builds a checker against the given base URL.
func NewHTTPChecker(base string, timeout time.Duration) *HTTPChecker {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &HTTPChecker{
		base:   base,
		client: &http.Client{Timeout: timeout},
	}
}

func (c *HTTPChecker) Check(ctx context.Context, username string) error {
	endpoint := c.base + "?name=" + url.QueryEscape(username)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return &CheckError{Username: username, Message: err.Error()}
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return &CheckError{Username: username, Message: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &CheckError{Username: username, Message: fmt.Sprintf("directory returned %d", resp.StatusCode)}
	}

	var body struct {
		Valid   bool   `json:"valid"`
		Message string `json:"message"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return &CheckError{Username: username, Message: err.Error()}
	}

	if !body.Valid {
		msg := body.Message
		if msg == "" {
			msg = "rejected by directory"
		}
		return &CheckError{Username: username, Message: msg}
	}

	return nil
}
