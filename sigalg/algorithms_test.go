package sigalg

import "testing"

func TestMACAlgorithmDigest(t *testing.T) {
	cases := []struct {
		mac     MACAlgorithm
		want    DigestAlgorithm
		wantErr bool
	}{
		{HmacSha256, SHA256, false},
		{HmacSha512, SHA512, false},
		{MACAlgorithm("hmac-sha1"), "", true},
	}

	for _, c := range cases {
		got, err := c.mac.Digest()
		if c.wantErr {
			if err == nil {
				t.Errorf("%s: expected error", c.mac)
			}
			continue
		}
		if err != nil {
			t.Errorf("%s: unexpected error: %v", c.mac, err)
		}
		if got != c.want {
			t.Errorf("%s: digest = %s, want %s", c.mac, got, c.want)
		}
	}
}

func TestParseScheme(t *testing.T) {
	valid := []string{"hs2019", "hmac-sha256", "rsa-sha256", "ecdsa-sha256"}
	for _, v := range valid {
		if _, err := ParseScheme(v); err != nil {
			t.Errorf("ParseScheme(%q) returned error: %v", v, err)
		}
	}

	if _, err := ParseScheme("plaintext"); err == nil {
		t.Error("expected an error for an unsupported scheme")
	}
}
