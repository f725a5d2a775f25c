package nethttp

import (
	"context"
	"net/http"

	"github.com/hgmich/node-http-sig/httpsig"
	"github.com/hgmich/node-http-sig/keymanager"
	"github.com/hgmich/node-http-sig/sigerr"
)

// Signer signs outbound *http.Request values with a single key resolved
// from a keymanager.Manager.
type Signer struct {
	manager *keymanager.Manager
	keyID   string
}

// NewSigner returns a Signer that signs with the key identified by keyID,
// resolved through manager at signing time.
func NewSigner(manager *keymanager.Manager, keyID string) *Signer {
	return &Signer{manager: manager, keyID: keyID}
}

// Sign buffers req's body, attaches a Digest header if the resolved key
// requires one, and sets the Signature header.
func (s *Signer) Sign(ctx context.Context, req *http.Request) error {
	key, err := s.manager.GetKey(ctx, s.keyID)
	if err != nil {
		return err
	}

	body, err := BufferBody(req)
	if err != nil {
		return sigerr.WrapConfiguration("failed to buffer request body", err)
	}

	if key.Options().CalcDigest() {
		digest, err := key.CreateDigestHeader(body)
		if err != nil {
			return err
		}
		req.Header.Set("Digest", digest)
	}

	msg := NewRequestMessage(req)
	msgCtx := httpsig.NewMessageContext(msg)

	sig, err := key.SignRequest(msgCtx)
	if err != nil {
		return err
	}

	req.Header.Set("Signature", sig)
	return nil
}

// RoundTripper wraps transport, signing every outbound request with
// signer before it is sent. A nil transport uses http.DefaultTransport.
func (s *Signer) RoundTripper(transport http.RoundTripper) http.RoundTripper {
	if transport == nil {
		transport = http.DefaultTransport
	}
	return roundTripFunc(func(req *http.Request) (*http.Response, error) {
		if err := s.Sign(req.Context(), req); err != nil {
			return nil, err
		}
		return transport.RoundTrip(req)
	})
}

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) { return f(req) }
