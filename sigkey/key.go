// Package sigkey implements the signing/verification primitive bound to a
// resolved keyId: algorithm dispatch (HMAC today, RSA/ECDSA reserved),
// body-digest construction, and the request/response signing and
// verification operations built on top of the httpsig canonical string.
package sigkey

import (
	"crypto/sha256"
	"crypto/sha512"
	"crypto/subtle"
	"fmt"
	"hash"
	"sort"
	"strings"
	"time"

	"github.com/hgmich/node-http-sig/httpsig"
	"github.com/hgmich/node-http-sig/internal/b64"
	"github.com/hgmich/node-http-sig/sigalg"
	"github.com/hgmich/node-http-sig/sigerr"
)

const (
	digestHeaderName = "digest"

	// DefaultSlack is the symmetric tolerance applied to created/expires
	// when neither WithCreatedSlack nor WithExpiresSlack is given.
	DefaultSlack = 60 * time.Second
)

// SignatureKey owns a concrete signing/verification primitive for one
// keyId. It is stateless beyond its configuration: safe for concurrent use
// by multiple signing/verification calls, never holding a reusable digest.
type SignatureKey struct {
	keyID     string
	scheme    sigalg.Scheme
	digestAlg sigalg.DigestAlgorithm
	options   httpsig.Options
	variant   variant

	createdSlack time.Duration
	expiresSlack time.Duration
}

// Option configures SignatureKey construction.
type Option func(*SignatureKey)

// WithCreatedSlack overrides the default CREATED_SLACK window.
func WithCreatedSlack(d time.Duration) Option {
	return func(k *SignatureKey) { k.createdSlack = d }
}

// WithExpiresSlack overrides the default EXPIRES_SLACK window.
func WithExpiresSlack(d time.Duration) Option {
	return func(k *SignatureKey) { k.expiresSlack = d }
}

// New builds a SignatureKey from a resolved key configuration, the scheme
// it will advertise on the wire, and the effective (already-merged)
// options that govern which headers are signed/required.
func New(keyID string, cfg KeyConfig, scheme sigalg.Scheme, options httpsig.Options, opts ...Option) (*SignatureKey, error) {
	k := &SignatureKey{
		keyID:        keyID,
		scheme:       scheme,
		options:      options,
		createdSlack: DefaultSlack,
		expiresSlack: DefaultSlack,
	}

	switch c := cfg.(type) {
	case SecretKeyConfig:
		v, err := newHMACVariant(c.MAC, c.Secret)
		if err != nil {
			return nil, err
		}
		k.variant = v

		digestAlg := c.DigestAlgorithm
		if digestAlg == "" {
			d, err := c.MAC.Digest()
			if err != nil {
				return nil, err
			}
			digestAlg = d
		}
		k.digestAlg = digestAlg

	case KeyPairConfig:
		v, err := newKeypairVariant(c)
		if err != nil {
			return nil, err
		}
		k.variant = v

		digestAlg := c.DigestAlgorithm
		if digestAlg == "" {
			digestAlg = sigalg.SHA256
		}
		k.digestAlg = digestAlg

	default:
		return nil, sigerr.Configurationf("unsupported key configuration type %T", cfg)
	}

	for _, o := range opts {
		o(k)
	}

	return k, nil
}

// KeyID returns the identifier this key was resolved for.
func (k *SignatureKey) KeyID() string { return k.keyID }

// Scheme returns the wire scheme this key advertises.
func (k *SignatureKey) Scheme() sigalg.Scheme { return k.scheme }

// Options returns the effective option record governing this key.
func (k *SignatureKey) Options() httpsig.Options { return k.options }

func newDigestHash(alg sigalg.DigestAlgorithm) (hash.Hash, error) {
	switch alg {
	case sigalg.SHA256:
		return sha256.New(), nil
	case sigalg.SHA512:
		return sha512.New(), nil
	default:
		return nil, sigerr.Configurationf("unsupported digest algorithm: %s", alg)
	}
}

// CreateDigestHeader returns the `Digest` header value for body, in the
// form "{digestAlgName}={base64(hash(body))}".
func (k *SignatureKey) CreateDigestHeader(body []byte) (string, error) {
	h, err := newDigestHash(k.digestAlg)
	if err != nil {
		return "", err
	}
	h.Write(body)
	return fmt.Sprintf("%s=%s", k.digestAlg, b64.Encode(h.Sum(nil))), nil
}

// VerifyDigestHeader checks that header is a valid `Digest` header value
// for body, under this key's configured digest algorithm. The algorithm
// token is compared case-insensitively; the digest comparison is
// constant-time. Any mismatch is a VerificationError, never a silent false.
func (k *SignatureKey) VerifyDigestHeader(body []byte, header string) error {
	algToken, encoded, ok := strings.Cut(header, "=")
	if !ok {
		return sigerr.Verification("malformed digest header")
	}

	if !strings.EqualFold(algToken, string(k.digestAlg)) {
		return sigerr.Verificationf("digest algorithm mismatch: header names %q, key expects %s", algToken, k.digestAlg)
	}

	got, err := b64.Decode(encoded)
	if err != nil {
		return sigerr.WrapVerification("digest value is not valid base64", err)
	}

	h, err := newDigestHash(k.digestAlg)
	if err != nil {
		return err
	}
	h.Write(body)
	want := h.Sum(nil)

	if len(got) != len(want) {
		return sigerr.Verification("digest mismatch")
	}
	if subtle.ConstantTimeCompare(got, want) != 1 {
		return sigerr.Verification("digest mismatch")
	}
	return nil
}

// buildSignHeaders returns the deterministic, sorted list of headers this
// key signs for the given option map, appending "digest" when digest
// calculation is on and it isn't already present.
func (k *SignatureKey) buildSignHeaders(hdrs map[string]httpsig.HeaderMode) []string {
	names := httpsig.SignHeaderNames(hdrs)
	sort.Strings(names)

	if k.options.CalcDigest() && !containsFold(names, digestHeaderName) {
		names = append(names, digestHeaderName)
	}
	return names
}

func containsFold(list []string, needle string) bool {
	for _, v := range list {
		if strings.EqualFold(v, needle) {
			return true
		}
	}
	return false
}

func (k *SignatureKey) sign(ctx *httpsig.MessageContext, headers []string) (string, error) {
	if !k.variant.canSign() {
		return "", sigerr.Configuration("key is configured public-key only and cannot sign")
	}

	canonical, err := ctx.CanonicalString(headers)
	if err != nil {
		return "", err
	}

	mac, err := k.variant.sign([]byte(canonical))
	if err != nil {
		return "", err
	}

	return formatSignatureHeader(k.keyID, k.scheme, headers, mac), nil
}

func formatSignatureHeader(keyID string, scheme sigalg.Scheme, headers []string, mac []byte) string {
	return fmt.Sprintf(
		"keyId=%q,algorithm=%q,headers=%q,signature=%q",
		keyID, string(scheme), strings.Join(headers, " "), b64.Encode(mac),
	)
}

// SignRequest signs the request-side headers of ctx and returns the
// formatted `Signature` header value. The digest header, if digest
// calculation is on, must already be present on the underlying message
// before this is called.
func (k *SignatureKey) SignRequest(ctx *httpsig.MessageContext) (string, error) {
	headers := k.buildSignHeaders(k.options.RequestHeaders)
	return k.sign(ctx, headers)
}

// SignResponse signs the response-side headers of ctx.
func (k *SignatureKey) SignResponse(ctx *httpsig.MessageContext) (string, error) {
	headers := k.buildSignHeaders(k.options.ResponseHeaders)
	return k.sign(ctx, headers)
}

func (k *SignatureKey) verify(ctx *httpsig.MessageContext, required []string) (*httpsig.ParsedSignature, error) {
	raw, ok, err := httpsig.ExtractSignatureString(ctx.Message())
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, sigerr.Verification("no signature present on message")
	}

	parsed, err := httpsig.ParseSignatureParams(raw)
	if err != nil {
		return nil, err
	}

	if parsed.SignatureAlgorithm != nil && *parsed.SignatureAlgorithm != k.scheme {
		return nil, sigerr.Verificationf("algorithm mismatch: signature declares %q, key expects %q", *parsed.SignatureAlgorithm, k.scheme)
	}

	ctx.SetTimestamps(parsed.Created, parsed.Expires)

	canonical, err := ctx.CanonicalString(parsed.Headers)
	if err != nil {
		return nil, err
	}

	if err := k.variant.verify([]byte(canonical), parsed.Signature); err != nil {
		return nil, err
	}

	if missing := missingHeaders(required, parsed.Headers); len(missing) > 0 {
		return nil, sigerr.Verificationf("signature is missing required header(s): %s", strings.Join(missing, ", "))
	}

	if err := k.checkTimestamps(parsed); err != nil {
		return nil, err
	}

	return parsed, nil
}

func missingHeaders(required, present []string) []string {
	presentSet := make(map[string]bool, len(present))
	for _, h := range present {
		presentSet[strings.ToLower(h)] = true
	}

	var missing []string
	for _, h := range required {
		if !presentSet[strings.ToLower(h)] {
			missing = append(missing, h)
		}
	}
	return missing
}

func (k *SignatureKey) checkTimestamps(p *httpsig.ParsedSignature) error {
	observedAt := p.ObservedAt

	if p.Created != nil {
		if p.Created.After(observedAt) && p.Created.Sub(observedAt) >= k.createdSlack {
			return sigerr.Verificationf("signature created %s is too far in the future (observed at %s)", p.Created, observedAt)
		}
	}

	if p.Expires != nil {
		if p.Expires.Before(observedAt) && observedAt.Sub(*p.Expires) >= k.expiresSlack {
			return sigerr.Verificationf("signature expired %s (observed at %s)", p.Expires, observedAt)
		}
	}

	return nil
}

func (k *SignatureKey) requiredRequestHeaders() []string {
	required := httpsig.VerifyHeaderNames(k.options.RequestHeaders)
	if k.options.CalcDigest() && !containsFold(required, digestHeaderName) {
		required = append(required, digestHeaderName)
	}
	return required
}

func (k *SignatureKey) requiredResponseHeaders() []string {
	required := httpsig.VerifyHeaderNames(k.options.ResponseHeaders)
	if k.options.CalcDigest() && !containsFold(required, digestHeaderName) {
		required = append(required, digestHeaderName)
	}
	return required
}

// VerifyRequest extracts, parses, and verifies the signature on ctx against
// this key's required request headers, enforcing algorithm agreement,
// MAC validity, header coverage, and the created/expires slack windows.
func (k *SignatureKey) VerifyRequest(ctx *httpsig.MessageContext) (*httpsig.ParsedSignature, error) {
	return k.verify(ctx, k.requiredRequestHeaders())
}

// VerifyResponse is VerifyRequest's response-side counterpart.
func (k *SignatureKey) VerifyResponse(ctx *httpsig.MessageContext) (*httpsig.ParsedSignature, error) {
	return k.verify(ctx, k.requiredResponseHeaders())
}
