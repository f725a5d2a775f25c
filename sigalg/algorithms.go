// Package sigalg defines the closed enumerations used throughout the
// signature engine: digest algorithms, MAC algorithms, and signature
// schemes. Wire names are preserved byte-for-byte for header output.
package sigalg

import "github.com/hgmich/node-http-sig/sigerr"

// DigestAlgorithm names a body-digest hash function. The wire name is the
// exact string used as the `Digest` header's algorithm prefix.
type DigestAlgorithm string

const (
	SHA256 DigestAlgorithm = "SHA-256"
	SHA512 DigestAlgorithm = "SHA-512"
)

// Valid reports whether d is one of the closed set of supported digest
// algorithms.
func (d DigestAlgorithm) Valid() bool {
	switch d {
	case SHA256, SHA512:
		return true
	default:
		return false
	}
}

func (d DigestAlgorithm) String() string {
	return string(d)
}

// MACAlgorithm names a MAC primitive. The wire name is the exact string
// used as the `Signature` header's `algorithm` parameter for legacy
// (non-hs2019) schemes.
type MACAlgorithm string

const (
	HmacSha256 MACAlgorithm = "hmac-sha256"
	HmacSha512 MACAlgorithm = "hmac-sha512"
)

func (m MACAlgorithm) Valid() bool {
	switch m {
	case HmacSha256, HmacSha512:
		return true
	default:
		return false
	}
}

func (m MACAlgorithm) String() string {
	return string(m)
}

// Digest returns the digest algorithm implied by a MAC algorithm's hash.
func (m MACAlgorithm) Digest() (DigestAlgorithm, error) {
	switch m {
	case HmacSha256:
		return SHA256, nil
	case HmacSha512:
		return SHA512, nil
	default:
		return "", sigerr.Configurationf("unsupported MAC algorithm: %s", m)
	}
}

// Scheme names the value of the `algorithm` parameter on the wire. hs2019
// leaves the concrete primitive free (carried instead on the key
// configuration); the others pin the scheme to a single MAC or keypair
// algorithm.
type Scheme string

const (
	HS2019      Scheme = "hs2019"
	SchemeHmacSha256 Scheme = "hmac-sha256"
	SchemeRsaSha256  Scheme = "rsa-sha256"
	SchemeEcdsaSha256 Scheme = "ecdsa-sha256"
)

func (s Scheme) Valid() bool {
	switch s {
	case HS2019, SchemeHmacSha256, SchemeRsaSha256, SchemeEcdsaSha256:
		return true
	default:
		return false
	}
}

func (s Scheme) String() string {
	return string(s)
}

// ParseScheme parses a wire-format algorithm token into a Scheme,
// rejecting anything outside the closed set.
func ParseScheme(s string) (Scheme, error) {
	scheme := Scheme(s)
	if !scheme.Valid() {
		return "", sigerr.Verificationf("unsupported signature scheme: %q", s)
	}
	return scheme, nil
}
