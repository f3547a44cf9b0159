package cms

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrFetch is wrapped by every failed read: transport, auth, query
	// syntax, or an undecodable response.
	ErrFetch = errors.New("cms: fetch failed")

	// ErrUnauthorized is returned by operations that need a token when the
	// client has none.
	ErrUnauthorized = errors.New("cms: auth token required")
)

// Error describes a failed request against the content API.
type Error struct {
	Op          string
	StatusCode  int
	Description string
	Err         error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString("cms: ")
	b.WriteString(e.Op)
	if e.StatusCode != 0 {
		fmt.Fprintf(&b, ": status %d", e.StatusCode)
	}
	if e.Description != "" {
		b.WriteString(": ")
		b.WriteString(e.Description)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrFetch}
	}
	return []error{ErrFetch, e.Err}
}

// apiError decodes both error shapes the API produces:
// {"error":{"description":"..."}} and {"error":"Unauthorized","message":"..."}.
func apiError(body []byte) string {
	var resp struct {
		Error   json.RawMessage `json:"error"`
		Message string          `json:"message"`
	}
	if err := json.Unmarshal(body, &resp); err != nil || len(resp.Error) == 0 {
		s := strings.TrimSpace(string(body))
		if len(s) > 200 {
			s = s[:200]
		}
		return s
	}

	var detail struct {
		Description string `json:"description"`
		Type        string `json:"type"`
	}
	if err := json.Unmarshal(resp.Error, &detail); err == nil && detail.Description != "" {
		return detail.Description
	}

	var name string
	if err := json.Unmarshal(resp.Error, &name); err == nil {
		if resp.Message != "" {
			return name + ": " + resp.Message
		}
		return name
	}
	return resp.Message
}
