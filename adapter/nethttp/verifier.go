package nethttp

import (
	"context"
	"errors"
	"net/http"

	"github.com/hgmich/node-http-sig/httpsig"
	"github.com/hgmich/node-http-sig/keymanager"
	"github.com/hgmich/node-http-sig/sigerr"
)

// Verifier verifies inbound *http.Request values against keys resolved
// from a keymanager.Manager.
type Verifier struct {
	manager *keymanager.Manager
}

// NewVerifier returns a Verifier resolving keys through manager.
func NewVerifier(manager *keymanager.Manager) *Verifier {
	return &Verifier{manager: manager}
}

// Verify checks req's Signature header, and its Digest header against the
// buffered body when the resolved key requires a digest. It returns the
// parsed signature on success, including the keyId that signed it.
func (v *Verifier) Verify(ctx context.Context, req *http.Request) (*httpsig.ParsedSignature, error) {
	msg := NewRequestMessage(req)

	raw, ok, err := httpsig.ExtractSignatureString(msg)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, sigerr.Verification("no signature present on request")
	}

	preview, err := httpsig.ParseSignatureParams(raw)
	if err != nil {
		return nil, err
	}

	key, err := v.manager.GetKey(ctx, preview.KeyID)
	if err != nil {
		return nil, err
	}

	msgCtx := httpsig.NewMessageContext(msg)
	parsed, err := key.VerifyRequest(msgCtx)
	if err != nil {
		return nil, err
	}

	if key.Options().CalcDigest() {
		body, err := BufferBody(req)
		if err != nil {
			return nil, sigerr.WrapConfiguration("failed to buffer request body", err)
		}

		digestHeader := req.Header.Get("Digest")
		if digestHeader == "" {
			return nil, sigerr.Verification("digest required but absent from request")
		}
		if err := key.VerifyDigestHeader(body, digestHeader); err != nil {
			return nil, err
		}
	}

	return parsed, nil
}

// Middleware returns an http.Handler wrapping next with signature
// verification. A VerificationError rejects the request with 403; any
// other error (misconfiguration, a failed key lookup) rejects it with 500.
func (v *Verifier) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, err := v.Verify(r.Context(), r); err != nil {
			status := http.StatusInternalServerError
			if errors.Is(err, sigerr.ErrVerification) {
				status = http.StatusForbidden
			}
			http.Error(w, "invalid signature", status)
			return
		}
		next.ServeHTTP(w, r)
	})
}
