package sigkey

import (
	"encoding/json"
	"strings"

	"github.com/hgmich/node-http-sig/internal/encoding"
	"github.com/hgmich/node-http-sig/sigalg"
	"github.com/hgmich/node-http-sig/sigerr"
)

// jwkOctKey is the JSON shape of an RFC 7517 appendix A.3 symmetric
// ("oct") key: "kty": "oct" and the raw secret base64url-encoded (no
// padding) under "k".
type jwkOctKey struct {
	Type      string `json:"kty"`
	KeyID     string `json:"kid"`
	Algorithm string `json:"alg"`
	K         string `json:"k"`
}

// macAlgorithmFromJWKAlg maps a JWK "alg" value to this engine's MAC
// algorithm. Only the HMAC family is recognized; JWK "alg" values for
// RSA/ECDSA map to algorithms this engine does not yet sign or verify
// with.
func macAlgorithmFromJWKAlg(alg string) (sigalg.MACAlgorithm, error) {
	switch strings.ToUpper(alg) {
	case "HS256":
		return sigalg.HmacSha256, nil
	case "HS512":
		return sigalg.HmacSha512, nil
	default:
		return "", sigerr.Configurationf("unsupported JWK algorithm for an HTTP signature key: %s", alg)
	}
}

// SecretKeyConfigFromJWK parses a single RFC 7517 symmetric ("oct") JWK
// document and returns the (keyId, SecretKeyConfig) pair it describes.
// The "alg" member is required and must name an HMAC algorithm (HS256 or
// HS512); this engine has no use for a JWK carrying an RSA or EC key,
// since it does not yet sign or verify with either.
func SecretKeyConfigFromJWK(data []byte) (keyID string, cfg SecretKeyConfig, err error) {
	var raw jwkOctKey
	if err := json.Unmarshal(data, &raw); err != nil {
		return "", SecretKeyConfig{}, sigerr.WrapConfiguration("malformed JWK document", err)
	}

	if raw.Type != "oct" {
		return "", SecretKeyConfig{}, sigerr.Configurationf("unsupported JWK key type %q, expected \"oct\"", raw.Type)
	}
	if raw.KeyID == "" {
		return "", SecretKeyConfig{}, sigerr.Configuration("JWK is missing required \"kid\" member")
	}

	mac, err := macAlgorithmFromJWKAlg(raw.Algorithm)
	if err != nil {
		return "", SecretKeyConfig{}, err
	}

	secret, err := encoding.Decode(raw.K)
	if err != nil {
		return "", SecretKeyConfig{}, sigerr.WrapConfiguration("failed to decode JWK \"k\" member", err)
	}
	if len(secret) == 0 {
		return "", SecretKeyConfig{}, sigerr.Configuration("JWK \"k\" member decodes to an empty secret")
	}

	digestAlg, err := mac.Digest()
	if err != nil {
		return "", SecretKeyConfig{}, err
	}

	return raw.KeyID, SecretKeyConfig{
		MAC:             mac,
		Secret:          secret,
		DigestAlgorithm: digestAlg,
	}, nil
}
