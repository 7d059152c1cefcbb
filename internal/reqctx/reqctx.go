// Package reqctx carries the per-request identity token and correlation id
// from the inbound boundary to every outbound call and log line.
package reqctx

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"

	"github.com/wayfarer/itinerary-orchestrator/internal/domain"
)

const (
	HeaderToken         = "X-Token"
	HeaderCorrelationID = "X-Correlation-ID"
)

// RequestContext is created once at the boundary and never mutated.
type RequestContext struct {
	IdentityToken string
	SubjectID     string
	CorrelationID string
}

type requestContextKey struct{}

type correlationIDKey struct{}

// WithRequestContext stores rc on ctx. It also records the correlation id so
// CorrelationID keeps working for code that only needs that.
func WithRequestContext(ctx context.Context, rc RequestContext) context.Context {
	ctx = context.WithValue(ctx, requestContextKey{}, rc)
	if rc.CorrelationID != "" {
		ctx = WithCorrelationID(ctx, rc.CorrelationID)
	}
	return ctx
}

// FromContext returns the RequestContext stored by the identity middleware.
func FromContext(ctx context.Context) (RequestContext, bool) {
	rc, ok := ctx.Value(requestContextKey{}).(RequestContext)
	return rc, ok
}

func WithCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, correlationIDKey{}, id)
}

// CorrelationID returns "" if none was attached.
func CorrelationID(ctx context.Context) string {
	v, _ := ctx.Value(correlationIDKey{}).(string)
	return v
}

// wireToken is the JSON shape of the X-Token header.
type wireToken struct {
	UserToken json.RawMessage `json:"user_token"`
	UserID    json.RawMessage `json:"user_id"`
}

// ParseToken validates the raw X-Token header value and returns a
// RequestContext with the identity fields filled in.
//
//	""                                  -> ErrMissingToken
//	not a JSON object                   -> ErrInvalidTokenFormat
//	object without user_token / user_id -> ErrMalformedToken
func ParseToken(raw string) (RequestContext, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return RequestContext{}, domain.ErrMissingToken
	}

	trimmed := []byte(raw)
	if trimmed[0] != '{' {
		return RequestContext{}, domain.ErrInvalidTokenFormat
	}
	var wt wireToken
	if err := json.Unmarshal(trimmed, &wt); err != nil {
		return RequestContext{}, domain.ErrInvalidTokenFormat
	}

	token, ok := scalarString(wt.UserToken, false)
	if !ok {
		return RequestContext{}, domain.ErrMalformedToken
	}
	subject, ok := scalarString(wt.UserID, true)
	if !ok {
		return RequestContext{}, domain.ErrMalformedToken
	}
	return RequestContext{IdentityToken: token, SubjectID: subject}, nil
}

// scalarString accepts a non-empty JSON string, or a JSON number when
// allowNumber is set. Subject ids are sent both ways by existing clients.
func scalarString(raw json.RawMessage, allowNumber bool) (string, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		s = strings.TrimSpace(s)
		return s, s != ""
	}
	if !allowNumber {
		return "", false
	}
	var n json.Number
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&n); err != nil {
		return "", false
	}
	return n.String(), true
}

// EncodeToken renders the identity back into X-Token form for forwarding.
func EncodeToken(rc RequestContext) string {
	// Marshalling a struct of two strings cannot fail.
	b, _ := json.Marshal(struct {
		UserToken string `json:"user_token"`
		UserID    string `json:"user_id"`
	}{rc.IdentityToken, rc.SubjectID})
	return string(b)
}
