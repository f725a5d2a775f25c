package sigkey

import (
	"crypto"

	"github.com/hgmich/node-http-sig/httpsig"
	"github.com/hgmich/node-http-sig/sigalg"
)

// KeyConfig is the tagged-variant key configuration: either a symmetric
// secret (HMAC) or a keypair (reserved for a future asymmetric release).
type KeyConfig interface {
	isKeyConfig()
	// Overrides returns the per-key option overrides, or a zero Options
	// value if none were set.
	Overrides() httpsig.Options
}

// SecretKeyConfig carries a MAC algorithm and opaque shared secret.
type SecretKeyConfig struct {
	MAC    sigalg.MACAlgorithm
	Secret []byte

	// DigestAlgorithm is carried at the outer level for hs2019. The key
	// manager advertises the legacy hmac-sha256 scheme only when this is
	// SHA-256 and MAC is hmac-sha256; it never rewrites the value set here.
	DigestAlgorithm sigalg.DigestAlgorithm

	// OptionOverrides holds per-key option overrides merged over the key
	// manager's base options.
	OptionOverrides *httpsig.Options
}

func (SecretKeyConfig) isKeyConfig() {}

func (c SecretKeyConfig) Overrides() httpsig.Options {
	if c.OptionOverrides == nil {
		return httpsig.Options{}
	}
	return *c.OptionOverrides
}

// KeyPairAlgorithm names a reserved asymmetric primitive family.
type KeyPairAlgorithm string

const (
	KeyPairRSA   KeyPairAlgorithm = "rsa"
	KeyPairECDSA KeyPairAlgorithm = "ecdsa"
)

// RSAParams carries RSA-specific scheme parameters (reserved).
type RSAParams struct {
	// Padding is one of "pkcs1v15" or "pss".
	Padding string
	// SaltLength is only meaningful when Padding == "pss".
	SaltLength int
}

// ECDSAParams carries ECDSA-specific scheme parameters (reserved).
type ECDSAParams struct {
	// Encoding is one of "raw" (fixed-width r||s) or "asn1".
	Encoding string
}

// KeyPairConfig carries a keypair algorithm, hash name, public key, and
// optional private key. This variant is reserved: construction validates
// the configuration shape, but signing and verifying with it always fail
// with a ConfigurationError, since the engine only ships HMAC at v1.
type KeyPairConfig struct {
	Algorithm  KeyPairAlgorithm
	HashName   string
	PublicKey  crypto.PublicKey
	PrivateKey crypto.PrivateKey

	RSAParams   *RSAParams
	ECDSAParams *ECDSAParams

	DigestAlgorithm sigalg.DigestAlgorithm
	OptionOverrides *httpsig.Options
}

func (KeyPairConfig) isKeyConfig() {}

func (c KeyPairConfig) Overrides() httpsig.Options {
	if c.OptionOverrides == nil {
		return httpsig.Options{}
	}
	return *c.OptionOverrides
}
