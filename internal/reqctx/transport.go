package reqctx

import "net/http"

// Transport stamps X-Token and X-Correlation-ID from the request's context
// onto every outbound call. Headers already set by the caller win.
type Transport struct {
	Base http.RoundTripper
}

// NewTransport wraps base; nil means http.DefaultTransport.
func NewTransport(base http.RoundTripper) *Transport {
	if base == nil {
		base = http.DefaultTransport
	}
	return &Transport{Base: base}
}

func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	ctx := req.Context()
	rc, hasRC := FromContext(ctx)
	cid := CorrelationID(ctx)
	if !hasRC && cid == "" {
		return t.Base.RoundTrip(req)
	}

	// RoundTrippers must not modify the caller's request.
	out := req.Clone(ctx)
	if hasRC && out.Header.Get(HeaderToken) == "" {
		out.Header.Set(HeaderToken, EncodeToken(rc))
	}
	if cid != "" && out.Header.Get(HeaderCorrelationID) == "" {
		out.Header.Set(HeaderCorrelationID, cid)
	}
	return t.Base.RoundTrip(out)
}

var _ http.RoundTripper = (*Transport)(nil)
