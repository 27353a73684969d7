// Package supabase talks to a hosted Supabase project: GoTrue for identities
// and PostgREST for the profiles table.
package supabase

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"nutriflow/config"

	"github.com/go-resty/resty/v2"
)

var ErrServiceKeyRequired = errors.New("supabase: service role key required")

// Error carries the message the platform returned.
type Error struct {
	Status  int
	Code    string
	Message string
}

func (e *Error) Error() string { return e.Message }

type Client struct {
	http       *resty.Client
	anonKey    string
	serviceKey string
}

func New(cfg config.SupabaseConfig) *Client {
	c := resty.New().
		SetBaseURL(cfg.URL).
		SetHeader("apikey", cfg.AnonKey).
		SetHeader("Content-Type", "application/json")
	if cfg.Timeout > 0 {
		c.SetTimeout(cfg.Timeout)
	}
	return &Client{http: c, anonKey: cfg.AnonKey, serviceKey: cfg.ServiceRoleKey}
}

// errorBody covers the shapes GoTrue and PostgREST use for failures.
type errorBody struct {
	Msg              string          `json:"msg"`
	Message          string          `json:"message"`
	Error            string          `json:"error"`
	ErrorDescription string          `json:"error_description"`
	ErrorCode        string          `json:"error_code"`
	Code             json.RawMessage `json:"code"`
}

func (b errorBody) text() string {
	for _, s := range []string{b.Msg, b.Message, b.ErrorDescription, b.Error} {
		if strings.TrimSpace(s) != "" {
			return s
		}
	}
	return ""
}

func (b errorBody) code() string {
	if b.ErrorCode != "" {
		return b.ErrorCode
	}
	// GoTrue sends the HTTP status as a number here, PostgREST a string.
	var s string
	if json.Unmarshal(b.Code, &s) == nil {
		return s
	}
	return ""
}

func responseError(res *resty.Response) error {
	var body errorBody
	_ = json.Unmarshal(res.Body(), &body)
	msg := body.text()
	if msg == "" {
		msg = strings.TrimSpace(res.String())
	}
	if msg == "" {
		msg = fmt.Sprintf("supabase request failed with status %d", res.StatusCode())
	}
	return &Error{Status: res.StatusCode(), Code: body.code(), Message: msg}
}

// dataKey is the key row writes are authorised with: the service role when
// configured, otherwise the anon key and whatever row level security allows.
func (c *Client) dataKey() string {
	if c.serviceKey != "" {
		return c.serviceKey
	}
	return c.anonKey
}
