// Command httpsigdemo signs an outbound request with an HMAC key, sends it
// to a local handler wrapped in verification middleware, and reports the
// outcome. It exists to exercise the full sign -> transmit -> verify path
// end to end.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/hgmich/node-http-sig/adapter/nethttp"
	"github.com/hgmich/node-http-sig/internal/obslog"
	"github.com/hgmich/node-http-sig/keymanager"
	"github.com/hgmich/node-http-sig/sigalg"
	"github.com/hgmich/node-http-sig/sigkey"
)

func main() {
	log := obslog.NewLogger(true)

	secret := []byte("correct-horse-battery-staple")
	manager, err := keymanager.New(keymanager.Config{
		Version: keymanager.SupportedVersion,
		KeyID:   "demo-key",
		KeyConfig: sigkey.SecretKeyConfig{
			MAC:             sigalg.HmacSha256,
			Secret:          secret,
			DigestAlgorithm: sigalg.SHA256,
		},
	})
	if err != nil {
		log.Error("failed to build key manager", "error", err)
		return
	}

	verifier := nethttp.NewVerifier(manager)
	handler := verifier.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	server := httptest.NewServer(handler)
	defer server.Close()

	req, err := http.NewRequest(http.MethodPost, server.URL+"/widgets", strings.NewReader(`{"name":"gizmo"}`))
	if err != nil {
		log.Error("failed to build request", "error", err)
		return
	}

	signer := nethttp.NewSigner(manager, "demo-key")
	if err := signer.Sign(context.Background(), req); err != nil {
		log.Error("failed to sign request", "error", err)
		return
	}

	log.Info("signed request", slog.String("signature", req.Header.Get("Signature")), slog.String("digest", req.Header.Get("Digest")))

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		log.Error("request failed", "error", err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusOK {
		log.Info("request verified", "status", resp.StatusCode)
	} else {
		log.Error("request rejected", "status", resp.StatusCode)
	}
}
