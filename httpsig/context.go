package httpsig

import (
	"strconv"
	"strings"
	"time"

	"github.com/hgmich/node-http-sig/adapter"
	"github.com/hgmich/node-http-sig/sigerr"
)

const (
	pseudoRequestTarget = "(request-target)"
	pseudoCreated       = "(created)"
	pseudoExpires       = "(expires)"

	authorizationSignaturePrefix = "Signature "
)

// MessageContext is an append-only abstraction over one HTTP message: a
// case-insensitive header accessor plus an optional request-target and
// optional instance-scope (created)/(expires) timestamps, used to resolve
// pseudo-headers when building the canonical string.
type MessageContext struct {
	msg     adapter.Message
	created *time.Time
	expires *time.Time
}

// NewMessageContext wraps msg for canonicalization and signature extraction.
func NewMessageContext(msg adapter.Message) *MessageContext {
	return &MessageContext{msg: msg}
}

// SetTimestamps installs the (created)/(expires) pseudo-header values used
// when those names appear in a header list. Signing uses this to record
// "now" (and an optional expiry); verification uses it to replay the
// values carried by the signature being verified.
func (c *MessageContext) SetTimestamps(created, expires *time.Time) {
	c.created = created
	c.expires = expires
}

// Message returns the underlying adapter message.
func (c *MessageContext) Message() adapter.Message {
	return c.msg
}

// CanonicalString builds the exact byte string fed to the MAC primitive
// for the given ordered header list.
func (c *MessageContext) CanonicalString(headers []string) (string, error) {
	lines := make([]string, 0, len(headers))

	for _, h := range headers {
		lower := strings.ToLower(h)

		values, ok, err := c.resolve(lower)
		if err != nil {
			return "", err
		}
		if !ok {
			return "", sigerr.Verificationf("attempted to sign/verify missing header '%s'", lower)
		}

		joined := strings.Join(values, ", ")
		line := lower + ":"
		if joined != "" {
			line += " " + joined
		}
		lines = append(lines, line)
	}

	return strings.Join(lines, "\n"), nil
}

func (c *MessageContext) resolve(lower string) (values []string, ok bool, err error) {
	switch lower {
	case pseudoRequestTarget:
		rt, present := c.msg.RequestTarget()
		if !present {
			return nil, false, nil
		}
		return []string{strings.ToLower(rt.Method) + " " + rt.Path}, true, nil

	case pseudoCreated:
		if c.created == nil {
			return nil, false, nil
		}
		return []string{strconv.FormatInt(c.created.Unix(), 10)}, true, nil

	case pseudoExpires:
		if c.expires == nil {
			return nil, false, nil
		}
		return []string{formatExpires(*c.expires)}, true, nil

	default:
		values, ok = c.msg.Header(lower)
		return values, ok, nil
	}
}

// ExtractSignatureString locates the single `Signature` header candidate on
// the message, also considering `Authorization: Signature ...` values. It
// returns ("", false, nil) when no candidate is present, and a
// VerificationError when more than one candidate is found.
func ExtractSignatureString(msg adapter.Message) (string, bool, error) {
	var candidates []string

	if values, ok := msg.Header("signature"); ok {
		candidates = append(candidates, values...)
	}

	if values, ok := msg.Header("authorization"); ok {
		for _, v := range values {
			if strings.HasPrefix(v, authorizationSignaturePrefix) {
				candidates = append(candidates, strings.TrimPrefix(v, authorizationSignaturePrefix))
			}
		}
	}

	switch len(candidates) {
	case 0:
		return "", false, nil
	case 1:
		return candidates[0], true, nil
	default:
		return "", false, sigerr.Verification("multiple signatures present on message")
	}
}
