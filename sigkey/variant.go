package sigkey

import (
	"crypto/ecdsa"
	"crypto/hmac"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/sha512"
	"crypto/subtle"
	"hash"

	"github.com/hgmich/node-http-sig/sigalg"
	"github.com/hgmich/node-http-sig/sigerr"
)

// variant dispatches sign/verify to a concrete cryptographic primitive.
// The dispatch is per-message-signature, not a hot-path inner loop, so a
// small interface match is equivalent to a vtable.
type variant interface {
	sign(data []byte) ([]byte, error)
	verify(data, mac []byte) error
	canSign() bool
}

// hmacVariant implements sign/verify using HMAC with a pre-shared secret.
type hmacVariant struct {
	secret []byte
	hf     func() hash.Hash
}

func newHMACVariant(mac sigalg.MACAlgorithm, secret []byte) (*hmacVariant, error) {
	if len(secret) == 0 {
		return nil, sigerr.Configuration("hmac secret must not be empty")
	}

	var hf func() hash.Hash
	switch mac {
	case sigalg.HmacSha256:
		hf = sha256.New
	case sigalg.HmacSha512:
		hf = sha512.New
	default:
		return nil, sigerr.Configurationf("unsupported MAC algorithm: %s", mac)
	}

	return &hmacVariant{secret: secret, hf: hf}, nil
}

func (h *hmacVariant) sign(data []byte) ([]byte, error) {
	mac := hmac.New(h.hf, h.secret)
	mac.Write(data)
	return mac.Sum(nil), nil
}

func (h *hmacVariant) verify(data, mac []byte) error {
	expected, err := h.sign(data)
	if err != nil {
		return err
	}

	if len(expected) != len(mac) {
		return sigerr.Verification("mac length mismatch")
	}
	if subtle.ConstantTimeCompare(expected, mac) != 1 {
		return sigerr.Verification("mac mismatch")
	}
	return nil
}

func (h *hmacVariant) canSign() bool { return true }

// keypairVariant validates a reserved RSA/ECDSA configuration at
// construction time but never performs an actual signature: this engine
// ships HMAC signing only.
type keypairVariant struct {
	cfg KeyPairConfig
}

var supportedHashNames = map[string]bool{
	"sha256": true,
	"sha384": true,
	"sha512": true,
}

func newKeypairVariant(cfg KeyPairConfig) (*keypairVariant, error) {
	if !supportedHashNames[cfg.HashName] {
		return nil, sigerr.Configurationf("unsupported hash name: %s", cfg.HashName)
	}

	switch cfg.Algorithm {
	case KeyPairRSA:
		if cfg.PublicKey != nil {
			if _, ok := cfg.PublicKey.(*rsa.PublicKey); !ok {
				return nil, sigerr.Configuration("public key does not match declared algorithm rsa")
			}
		}
		if cfg.RSAParams == nil {
			return nil, sigerr.Configuration("rsa key configuration requires RSAParams")
		}
		if cfg.RSAParams.Padding != "pkcs1v15" && cfg.RSAParams.Padding != "pss" {
			return nil, sigerr.Configurationf("unsupported rsa padding: %s", cfg.RSAParams.Padding)
		}

	case KeyPairECDSA:
		if cfg.PublicKey != nil {
			if _, ok := cfg.PublicKey.(*ecdsa.PublicKey); !ok {
				return nil, sigerr.Configuration("public key does not match declared algorithm ecdsa")
			}
		}
		if cfg.ECDSAParams == nil {
			return nil, sigerr.Configuration("ecdsa key configuration requires ECDSAParams")
		}
		if cfg.ECDSAParams.Encoding != "raw" && cfg.ECDSAParams.Encoding != "asn1" {
			return nil, sigerr.Configurationf("unsupported ecdsa encoding: %s", cfg.ECDSAParams.Encoding)
		}

	default:
		return nil, sigerr.Configurationf("unsupported keypair algorithm: %s", cfg.Algorithm)
	}

	return &keypairVariant{cfg: cfg}, nil
}

func (k *keypairVariant) sign([]byte) ([]byte, error) {
	if k.cfg.PrivateKey == nil {
		return nil, sigerr.Configuration("cannot sign: key is configured public-key only")
	}
	return nil, sigerr.Configuration("keypair signature algorithms are not yet supported")
}

func (k *keypairVariant) verify([]byte, []byte) error {
	return sigerr.Configuration("keypair signature algorithms are not yet supported")
}

func (k *keypairVariant) canSign() bool {
	return k.cfg.PrivateKey != nil
}
