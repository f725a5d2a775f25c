package httpsig

// HeaderMode tags how a header participates in signing/verification.
type HeaderMode string

const (
	// Sign includes the header when signing outbound messages.
	Sign HeaderMode = "sign"
	// Verify requires the header to be present in an inbound signature.
	Verify HeaderMode = "verify"
	// Both signs the header on outbound messages and requires it on inbound ones.
	Both HeaderMode = "both"
)

// wantsSign reports whether m should be included when building the
// signed-header list.
func (m HeaderMode) wantsSign() bool {
	return m == Sign || m == Both
}

// wantsVerify reports whether m should be required on an inbound signature.
func (m HeaderMode) wantsVerify() bool {
	return m == Verify || m == Both
}

// Options controls which headers are signed/required and whether a body
// digest is calculated. A nil map field is treated as empty; callers
// should use DefaultOptions to get sensible defaults before overriding.
type Options struct {
	RequestHeaders  map[string]HeaderMode
	ResponseHeaders map[string]HeaderMode
	CalculateDigest *bool
}

// DefaultOptions returns the baseline option record: request headers
// `{(request-target): both, host: both}`, no response headers, digest
// calculation on.
func DefaultOptions() Options {
	calcDigest := true
	return Options{
		RequestHeaders: map[string]HeaderMode{
			"(request-target)": Both,
			"host":              Both,
		},
		ResponseHeaders: map[string]HeaderMode{},
		CalculateDigest: &calcDigest,
	}
}

// CalcDigest returns the effective digest-calculation flag, defaulting to
// true when unset.
func (o Options) CalcDigest() bool {
	if o.CalculateDigest == nil {
		return true
	}
	return *o.CalculateDigest
}

// SignHeaderNames returns the names tagged Sign or Both in hdrs.
func SignHeaderNames(hdrs map[string]HeaderMode) []string {
	var out []string
	for name, mode := range hdrs {
		if mode.wantsSign() {
			out = append(out, name)
		}
	}
	return out
}

// VerifyHeaderNames returns the names tagged Verify or Both in hdrs.
func VerifyHeaderNames(hdrs map[string]HeaderMode) []string {
	var out []string
	for name, mode := range hdrs {
		if mode.wantsVerify() {
			out = append(out, name)
		}
	}
	return out
}

// MergeOptions produces the effective option record: for each field, the
// first defined value of (override, base). Enumerated explicitly rather
// than via a reflective struct walk, because the option set is closed and
// small.
func MergeOptions(base, override Options) Options {
	merged := Options{
		RequestHeaders:  base.RequestHeaders,
		ResponseHeaders: base.ResponseHeaders,
		CalculateDigest: base.CalculateDigest,
	}

	if override.RequestHeaders != nil {
		merged.RequestHeaders = override.RequestHeaders
	}
	if override.ResponseHeaders != nil {
		merged.ResponseHeaders = override.ResponseHeaders
	}
	if override.CalculateDigest != nil {
		merged.CalculateDigest = override.CalculateDigest
	}

	return merged
}
