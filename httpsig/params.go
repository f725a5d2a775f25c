package httpsig

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/hgmich/node-http-sig/internal/b64"
	"github.com/hgmich/node-http-sig/sigalg"
	"github.com/hgmich/node-http-sig/sigerr"
)

// ParsedSignature is the immutable, validated result of parsing a
// `Signature` header's parameter list.
type ParsedSignature struct {
	KeyID               string
	Signature           []byte
	Headers             []string
	SignatureAlgorithm  *sigalg.Scheme
	Created             *time.Time
	Expires             *time.Time
	ObservedAt          time.Time
}

var createdPattern = regexp.MustCompile(`^(0|[1-9][0-9]*)$`)
var expiresPattern = regexp.MustCompile(`^(0|[1-9][0-9]*)(\.[0-9]+)?$`)

// forbiddenHeaderListChars are whitespace runes the "headers" parameter
// must never contain. A single ASCII space is the only valid separator
// between header names and is intentionally not in this set; leading,
// trailing, and consecutive spaces are rejected separately below.
var forbiddenHeaderListChars = []rune{'\t', '\v', '\f', '\u00A0'}

type parseConfig struct {
	observedAt time.Time
}

// ParseOption configures ParseSignatureParams.
type ParseOption func(*parseConfig)

// WithObservedAt overrides the instant against which created/expires slack
// is later evaluated. Tests use this to inject deterministic clocks.
func WithObservedAt(t time.Time) ParseOption {
	return func(c *parseConfig) { c.observedAt = t }
}

// ParseSignatureParams strictly parses the value of a `Signature` header
// (or the portion following "Signature " in an Authorization header) into
// a validated ParsedSignature. Any grammar deviation yields a
// *sigerr.VerificationError.
func ParseSignatureParams(raw string, opts ...ParseOption) (*ParsedSignature, error) {
	cfg := parseConfig{observedAt: time.Now()}
	for _, o := range opts {
		o(&cfg)
	}

	if raw == "" {
		return nil, sigerr.Verification("empty signature parameter list")
	}

	parts := strings.Split(raw, ",")

	seen := make(map[string]bool, len(parts))
	var (
		keyID       string
		haveKeyID   bool
		sigBytes    []byte
		haveSig     bool
		headersList []string
		haveHeaders bool
		scheme      *sigalg.Scheme
		created     *time.Time
		expires     *time.Time
	)

	for _, part := range parts {
		if part == "" {
			return nil, sigerr.Verification("empty parameter in signature list (leading, trailing, or doubled comma)")
		}

		idx := strings.IndexByte(part, '=')
		if idx < 0 {
			return nil, sigerr.Verificationf("malformed parameter %q: missing '='", part)
		}

		name := part[:idx]
		value := part[idx+1:]

		if name == "" || strings.ContainsAny(name, " \t\v\f\r\n") {
			return nil, sigerr.Verificationf("malformed parameter name %q", name)
		}

		if seen[name] {
			return nil, sigerr.Verificationf("duplicate parameter %q", name)
		}
		seen[name] = true

		switch name {
		case "keyId", "algorithm", "headers", "signature":
			unquoted, err := unquote(value)
			if err != nil {
				return nil, sigerr.WrapVerification(fmt.Sprintf("parameter %q must be a quoted string", name), err)
			}

			switch name {
			case "keyId":
				keyID = unquoted
				haveKeyID = true
			case "algorithm":
				s, err := sigalg.ParseScheme(unquoted)
				if err != nil {
					return nil, err
				}
				scheme = &s
			case "headers":
				list, err := parseHeaderList(unquoted)
				if err != nil {
					return nil, err
				}
				headersList = list
				haveHeaders = true
			case "signature":
				decoded, err := decodeSignature(unquoted)
				if err != nil {
					return nil, err
				}
				sigBytes = decoded
				haveSig = true
			}

		case "created":
			if isQuoted(value) {
				return nil, sigerr.Verification("parameter \"created\" must not be a quoted string")
			}
			t, err := parseCreated(value)
			if err != nil {
				return nil, err
			}
			created = &t

		case "expires":
			if isQuoted(value) {
				return nil, sigerr.Verification("parameter \"expires\" must not be a quoted string")
			}
			t, err := parseExpires(value)
			if err != nil {
				return nil, err
			}
			expires = &t

		default:
			// Unknown parameters are silently ignored.
		}
	}

	if !haveKeyID {
		return nil, sigerr.Verification("missing required parameter \"keyId\"")
	}
	if !haveSig {
		return nil, sigerr.Verification("missing required parameter \"signature\"")
	}
	if !haveHeaders {
		headersList = []string{"(created)"}
	}

	return &ParsedSignature{
		KeyID:              keyID,
		Signature:          sigBytes,
		Headers:            headersList,
		SignatureAlgorithm: scheme,
		Created:            created,
		Expires:            expires,
		ObservedAt:         cfg.observedAt,
	}, nil
}

func isQuoted(value string) bool {
	return len(value) >= 2 && value[0] == '"' && value[len(value)-1] == '"'
}

func unquote(value string) (string, error) {
	if !isQuoted(value) {
		return "", fmt.Errorf("value %q is not a quoted string", value)
	}
	return value[1 : len(value)-1], nil
}

func parseHeaderList(unquoted string) ([]string, error) {
	for _, r := range forbiddenHeaderListChars {
		if strings.ContainsRune(unquoted, r) {
			return nil, sigerr.Verification("\"headers\" contains a forbidden whitespace character")
		}
	}

	if unquoted == "" {
		return nil, sigerr.Verification("\"headers\" must not be empty")
	}

	if strings.HasPrefix(unquoted, " ") || strings.HasSuffix(unquoted, " ") {
		return nil, sigerr.Verification("\"headers\" must not have leading or trailing spaces")
	}

	if strings.Contains(unquoted, "  ") {
		return nil, sigerr.Verification("\"headers\" must not contain consecutive spaces")
	}

	return strings.Split(unquoted, " "), nil
}

func decodeSignature(unquoted string) ([]byte, error) {
	trimmed := strings.TrimRight(unquoted, "=")

	decoded, err := b64.Decode(unquoted)
	if err != nil {
		return nil, sigerr.WrapVerification("\"signature\" is not valid base64", err)
	}

	expectedLen := (len(trimmed) * 3) / 4
	if len(decoded) != expectedLen || len(decoded) == 0 {
		return nil, sigerr.Verification("\"signature\" base64 length is inconsistent")
	}

	return decoded, nil
}

func parseCreated(value string) (time.Time, error) {
	if !createdPattern.MatchString(value) {
		return time.Time{}, sigerr.Verificationf("\"created\" is not a valid non-negative integer: %q", value)
	}
	seconds, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return time.Time{}, sigerr.WrapVerification("\"created\" overflowed", err)
	}
	return time.Unix(seconds, 0).UTC(), nil
}

func parseExpires(value string) (time.Time, error) {
	if !expiresPattern.MatchString(value) {
		return time.Time{}, sigerr.Verificationf("\"expires\" is not a valid non-negative decimal: %q", value)
	}
	seconds, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return time.Time{}, sigerr.WrapVerification("\"expires\" overflowed", err)
	}
	nanos := int64(seconds * float64(time.Second))
	return time.Unix(0, nanos).UTC(), nil
}

// Format re-serializes p into the wire format emitted for the `Signature`
// header. Parsing Format(p) again yields an equivalent ParsedSignature.
func (p *ParsedSignature) Format() string {
	var b strings.Builder
	fmt.Fprintf(&b, "keyId=%q", p.KeyID)

	if p.SignatureAlgorithm != nil {
		fmt.Fprintf(&b, ",algorithm=%q", string(*p.SignatureAlgorithm))
	}
	if p.Created != nil {
		fmt.Fprintf(&b, ",created=%d", p.Created.Unix())
	}
	if p.Expires != nil {
		fmt.Fprintf(&b, ",expires=%s", formatExpires(*p.Expires))
	}

	fmt.Fprintf(&b, ",headers=%q", strings.Join(p.Headers, " "))
	fmt.Fprintf(&b, ",signature=%q", b64.Encode(p.Signature))

	return b.String()
}

func formatExpires(t time.Time) string {
	seconds := float64(t.UnixNano()) / float64(time.Second)
	s := strconv.FormatFloat(seconds, 'f', -1, 64)
	return s
}
