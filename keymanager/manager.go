// Package keymanager resolves a keyId to a configured SignatureKey, either
// through a fixed (keyId, keyConfig) binding or through an injected,
// possibly asynchronous lookup function, merging per-key option overrides
// over a frozen base option record.
package keymanager

import (
	"context"
	"time"

	"github.com/hgmich/node-http-sig/httpsig"
	"github.com/hgmich/node-http-sig/sigalg"
	"github.com/hgmich/node-http-sig/sigerr"
	"github.com/hgmich/node-http-sig/sigkey"
)

// SupportedVersion is the single wire version string this engine implements.
const SupportedVersion = "draft-cavage-http-signatures-12"

// Lookup resolves a keyId to a key configuration. Implementations may
// perform I/O; ctx governs cancellation. A (nil, false, nil) result means
// the keyId is unknown.
type Lookup func(ctx context.Context, keyID string) (sigkey.KeyConfig, bool, error)

// Manager is immutable after New: multiple signing/verification
// operations may resolve keys concurrently without locking.
type Manager struct {
	version string
	base    httpsig.Options

	fixedKeyID string
	fixedCfg   sigkey.KeyConfig
	hasFixed   bool

	lookup Lookup

	createdSlack time.Duration
	expiresSlack time.Duration
}

// Config configures New.
type Config struct {
	// Version must equal SupportedVersion.
	Version string

	// Exactly one of (KeyID+KeyConfig) or Lookup must be set.
	KeyID     string
	KeyConfig sigkey.KeyConfig
	Lookup    Lookup

	// Overrides of the default Options (RequestHeaders, ResponseHeaders,
	// CalculateDigest). Unset fields keep httpsig.DefaultOptions's values.
	RequestHeaders  map[string]httpsig.HeaderMode
	ResponseHeaders map[string]httpsig.HeaderMode
	CalculateDigest *bool

	CreatedSlack time.Duration
	ExpiresSlack time.Duration
}

// New constructs a Manager from cfg, validating the version string and the
// exactly-one-binding-mode invariant.
func New(cfg Config) (*Manager, error) {
	if cfg.Version != SupportedVersion {
		return nil, sigerr.Configurationf("unsupported version %q, expected %q", cfg.Version, SupportedVersion)
	}

	hasFixed := cfg.KeyConfig != nil
	hasLookup := cfg.Lookup != nil

	if hasFixed == hasLookup {
		return nil, sigerr.Configuration("exactly one of (keyId, keyConfig) or keyLookup must be provided")
	}

	base := httpsig.DefaultOptions()
	override := httpsig.Options{
		RequestHeaders:  cfg.RequestHeaders,
		ResponseHeaders: cfg.ResponseHeaders,
		CalculateDigest: cfg.CalculateDigest,
	}
	base = httpsig.MergeOptions(base, override)

	createdSlack := cfg.CreatedSlack
	if createdSlack == 0 {
		createdSlack = sigkey.DefaultSlack
	}
	expiresSlack := cfg.ExpiresSlack
	if expiresSlack == 0 {
		expiresSlack = sigkey.DefaultSlack
	}

	m := &Manager{
		version:      cfg.Version,
		base:         base,
		fixedKeyID:   cfg.KeyID,
		fixedCfg:     cfg.KeyConfig,
		hasFixed:     hasFixed,
		lookup:       cfg.Lookup,
		createdSlack: createdSlack,
		expiresSlack: expiresSlack,
	}

	return m, nil
}

// resolveConfig returns the raw key configuration for keyID, or
// (nil, false, nil) if unknown.
func (m *Manager) resolveConfig(ctx context.Context, keyID string) (sigkey.KeyConfig, bool, error) {
	if m.hasFixed {
		if keyID != m.fixedKeyID {
			return nil, false, nil
		}
		return m.fixedCfg, true, nil
	}

	select {
	case <-ctx.Done():
		return nil, false, sigerr.WrapConfiguration("key lookup canceled", ctx.Err())
	default:
	}

	cfg, ok, err := m.lookup(ctx, keyID)
	if err != nil {
		return nil, false, sigerr.WrapConfiguration("key lookup failed", err)
	}
	return cfg, ok, nil
}

// TryGetKey resolves keyID, returning (nil, false) if no configuration is
// bound to it. A configuration error during coercion is still returned as
// an error, since that indicates invalid setup rather than an absent key.
func (m *Manager) TryGetKey(ctx context.Context, keyID string) (*sigkey.SignatureKey, bool, error) {
	cfg, ok, err := m.resolveConfig(ctx, keyID)
	if err != nil {
		return nil, false, err
	}
	if !ok {
		return nil, false, nil
	}

	key, err := m.buildKey(keyID, cfg)
	if err != nil {
		return nil, false, err
	}
	return key, true, nil
}

// GetKey resolves keyID to a SignatureKey, raising a VerificationError
// "key {keyID} not found" if no configuration is bound to it.
func (m *Manager) GetKey(ctx context.Context, keyID string) (*sigkey.SignatureKey, error) {
	key, ok, err := m.TryGetKey(ctx, keyID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, sigerr.Verificationf("key %s not found", keyID)
	}
	return key, nil
}

// buildKey applies scheme-to-key coercion and option merging, then
// constructs the SignatureKey.
func (m *Manager) buildKey(keyID string, cfg sigkey.KeyConfig) (*sigkey.SignatureKey, error) {
	scheme, coerced, err := coerceScheme(cfg)
	if err != nil {
		return nil, err
	}

	effective := httpsig.MergeOptions(m.base, coerced.Overrides())
	if effective.RequestHeaders == nil || effective.ResponseHeaders == nil || effective.CalculateDigest == nil {
		return nil, sigerr.Configuration("option record incomplete after merge")
	}

	return sigkey.New(keyID, coerced, scheme, effective,
		sigkey.WithCreatedSlack(m.createdSlack),
		sigkey.WithExpiresSlack(m.expiresSlack),
	)
}

// coerceScheme selects the advertised scheme from the key configuration: a
// secret key with MAC=hmac-sha256 and digest=SHA-256 gets the legacy
// hmac-sha256 scheme, any other secret key passes through unchanged as
// hs2019; rsa/ecdsa keypairs are reserved and always raise a
// ConfigurationError. The configuration itself is never modified.
func coerceScheme(cfg sigkey.KeyConfig) (sigalg.Scheme, sigkey.KeyConfig, error) {
	switch c := cfg.(type) {
	case sigkey.SecretKeyConfig:
		if c.MAC == sigalg.HmacSha256 && c.DigestAlgorithm == sigalg.SHA256 {
			// Legacy wire scheme: MAC and digest already at their forced
			// values, so hmac-sha256 is the natural advertised scheme.
			return sigalg.SchemeHmacSha256, c, nil
		}
		return sigalg.HS2019, c, nil

	case sigkey.KeyPairConfig:
		switch c.Algorithm {
		case sigkey.KeyPairRSA, sigkey.KeyPairECDSA:
			return "", nil, sigerr.Configuration("key pair algorithms are not yet supported")
		default:
			return "", nil, sigerr.Configurationf("unsupported keypair algorithm: %s", c.Algorithm)
		}

	default:
		return "", nil, sigerr.Configurationf("unsupported key configuration type %T", cfg)
	}
}
