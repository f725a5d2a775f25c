package httpsig

import (
	"encoding/base64"
	"testing"

	"github.com/go-test/deep"
)

func TestParseSignatureParamsMinimal(t *testing.T) {
	raw := `keyId="test",signature="3UqQIVxNJfNm8E54n35RReP9Nv05a9dEZTxr/deog3g="`

	got, err := ParseSignatureParams(raw)
	if err != nil {
		t.Fatal(err)
	}

	wantSig, err := base64.StdEncoding.DecodeString("3UqQIVxNJfNm8E54n35RReP9Nv05a9dEZTxr/deog3g=")
	if err != nil {
		t.Fatal(err)
	}

	if got.KeyID != "test" {
		t.Errorf("KeyID = %q, want %q", got.KeyID, "test")
	}
	if diff := deep.Equal(got.Headers, []string{"(created)"}); diff != nil {
		t.Error(diff)
	}
	if diff := deep.Equal(got.Signature, wantSig); diff != nil {
		t.Error(diff)
	}
	if got.SignatureAlgorithm != nil {
		t.Errorf("expected no algorithm, got %v", *got.SignatureAlgorithm)
	}
	if got.Created != nil || got.Expires != nil {
		t.Error("expected no created/expires")
	}
}

func TestParseSignatureParamsFull(t *testing.T) {
	raw := `keyId="test",algorithm="hs2019",headers="(request-target) host (created) (expires) digest",created=0,expires=1999999999,signature="Tm3UfRHt/uk2M7P2OGNcIeejRloPFaBP6HV8Fbtzgc0="`

	got, err := ParseSignatureParams(raw)
	if err != nil {
		t.Fatal(err)
	}

	if got.Created == nil || got.Created.Unix() != 0 {
		t.Errorf("created = %v, want epoch 0", got.Created)
	}
	if got.Expires == nil || got.Expires.UnixMilli() != 1999999999000 {
		t.Errorf("expires = %v, want 1999999999000ms", got.Expires)
	}

	wantHeaders := []string{"(request-target)", "host", "(created)", "(expires)", "digest"}
	if diff := deep.Equal(got.Headers, wantHeaders); diff != nil {
		t.Error(diff)
	}
}

func TestParseSignatureParamsStrictRejections(t *testing.T) {
	cases := map[string]string{
		"leading comma":        `,keyId="test",signature="abc"`,
		"trailing comma":       `keyId="test",signature="abc",`,
		"double comma":         `keyId="test",,signature="abc"`,
		"quoted integer field": `keyId="test",created="0",signature="abc"`,
		"unquoted string field": `keyId=test,signature="abc"`,
		"whitespace after comma": `keyId="test", signature="abc"`,
		"created leading zero":   `keyId="test",created=01,signature="abc"`,
		"created negative":       `keyId="test",created=-1,signature="abc"`,
		"created fractional":     `keyId="test",created=1234.56,signature="abc"`,
		"expires leading dot":    `keyId="test",expires=.1,signature="abc"`,
		"expires trailing dot":   `keyId="test",expires=1.,signature="abc"`,
		"expires double dot":     `keyId="test",expires=1.2.3,signature="abc"`,
		"headers leading space":  `keyId="test",headers=" a b",signature="abc"`,
		"headers double space":   `keyId="test",headers="a  b",signature="abc"`,
		"headers tab":            "keyId=\"test\",headers=\"a\tb\",signature=\"abc\"",
		"duplicate parameter":    `keyId="test",keyId="test2",signature="abc"`,
	}

	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := ParseSignatureParams(raw); err == nil {
				t.Errorf("expected a parse error for input %q", raw)
			}
		})
	}
}

func TestParseSignatureParamsRoundTrip(t *testing.T) {
	raw := `keyId="test",algorithm="hs2019",headers="(request-target) host (created) (expires) digest",created=0,expires=1999999999,signature="Tm3UfRHt/uk2M7P2OGNcIeejRloPFaBP6HV8Fbtzgc0="`

	first, err := ParseSignatureParams(raw)
	if err != nil {
		t.Fatal(err)
	}

	second, err := ParseSignatureParams(first.Format())
	if err != nil {
		t.Fatalf("re-parsing formatted output failed: %v", err)
	}

	if diff := deep.Equal(first.KeyID, second.KeyID); diff != nil {
		t.Error(diff)
	}
	if diff := deep.Equal(first.Headers, second.Headers); diff != nil {
		t.Error(diff)
	}
	if diff := deep.Equal(first.Signature, second.Signature); diff != nil {
		t.Error(diff)
	}
	if first.Created.Unix() != second.Created.Unix() {
		t.Errorf("created mismatch: %v vs %v", first.Created, second.Created)
	}
	if first.Expires.UnixMilli() != second.Expires.UnixMilli() {
		t.Errorf("expires mismatch: %v vs %v", first.Expires, second.Expires)
	}
}
