package httpsig

import (
	"testing"
	"time"

	"github.com/hgmich/node-http-sig/adapter"
)

// fixtureMessage is a minimal in-memory adapter.Message used to drive
// canonicalization tests without pulling in net/http.
type fixtureMessage struct {
	headers map[string][]string
	target  adapter.RequestTarget
	hasRT   bool
}

func (m *fixtureMessage) Header(name string) ([]string, bool) {
	v, ok := m.headers[name]
	return v, ok
}

func (m *fixtureMessage) RequestTarget() (adapter.RequestTarget, bool) {
	return m.target, m.hasRT
}

func TestCanonicalStringReference(t *testing.T) {
	msg := &fixtureMessage{
		headers: map[string][]string{
			"host":          {"example.org"},
			"date":          {"Tue, 07 Jun 2014 20:51:35 GMT"},
			"cache-control": {"max-age=60", "must-revalidate"},
			"x-emptyheader": {""},
			"x-example":     {"Example header with some whitespace."},
		},
		target: adapter.RequestTarget{Method: "GET", Path: "/foo"},
		hasRT:  true,
	}

	created := time.Unix(1402170695, 0).UTC()

	ctx := NewMessageContext(msg)
	ctx.SetTimestamps(&created, nil)

	got, err := ctx.CanonicalString([]string{
		"(request-target)",
		"(created)",
		"host",
		"date",
		"cache-control",
		"x-emptyheader",
		"x-example",
	})
	if err != nil {
		t.Fatal(err)
	}

	want := "(request-target): get /foo\n" +
		"(created): 1402170695\n" +
		"host: example.org\n" +
		"date: Tue, 07 Jun 2014 20:51:35 GMT\n" +
		"cache-control: max-age=60, must-revalidate\n" +
		"x-emptyheader:\n" +
		"x-example: Example header with some whitespace."

	if got != want {
		t.Errorf("canonical string mismatch\n got: %q\nwant: %q", got, want)
	}
}

func TestCanonicalStringMissingHeaderErrors(t *testing.T) {
	msg := &fixtureMessage{headers: map[string][]string{}}
	ctx := NewMessageContext(msg)

	if _, err := ctx.CanonicalString([]string{"host"}); err == nil {
		t.Fatal("expected error for missing header")
	}
}

func TestExtractSignatureStringSingleCandidate(t *testing.T) {
	msg := &fixtureMessage{headers: map[string][]string{
		"signature": {`keyId="test",signature="abc"`},
	}}

	raw, ok, err := ExtractSignatureString(msg)
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Fatal("expected a candidate")
	}
	if raw != `keyId="test",signature="abc"` {
		t.Errorf("unexpected raw signature string: %q", raw)
	}
}

func TestExtractSignatureStringFromAuthorization(t *testing.T) {
	msg := &fixtureMessage{headers: map[string][]string{
		"authorization": {`Signature keyId="test",signature="abc"`},
	}}

	raw, ok, err := ExtractSignatureString(msg)
	if err != nil {
		t.Fatal(err)
	}
	if !ok || raw != `keyId="test",signature="abc"` {
		t.Errorf("got (%q, %v), want stripped Authorization value", raw, ok)
	}
}

func TestExtractSignatureStringNone(t *testing.T) {
	msg := &fixtureMessage{headers: map[string][]string{}}

	_, ok, err := ExtractSignatureString(msg)
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Fatal("expected no candidate")
	}
}

func TestExtractSignatureStringMultipleIsAnError(t *testing.T) {
	msg := &fixtureMessage{headers: map[string][]string{
		"signature":     {`keyId="a",signature="abc"`},
		"authorization": {`Signature keyId="b",signature="def"`},
	}}

	if _, _, err := ExtractSignatureString(msg); err == nil {
		t.Fatal("expected an error for multiple signature candidates")
	}
}
