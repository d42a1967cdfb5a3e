package vnpay

import (
	"net/url"
	"strings"
	"testing"
)

func TestCanonicalizeKnownVector(t *testing.T) {
	p := url.Values{}
	p.Set("vnp_TxnRef", "ORD1")
	p.Set("vnp_OrderInfo", "CMv1 course a learner b")
	p.Set("vnp_Amount", "29900000")
	p.Set("vnp_ReturnUrl", "https://x.test/ret?a=1")
	p.Set("vnp_BankCode", "")
	p.Set(ParamSecureHash, "deadbeef")
	p.Set(ParamSecureHashType, "HmacSHA512")

	want := "vnp_Amount=29900000&vnp_OrderInfo=CMv1+course+a+learner+b&vnp_ReturnUrl=https%3A%2F%2Fx.test%2Fret%3Fa%3D1&vnp_TxnRef=ORD1"
	got := Canonicalize(p)
	if got != want {
		t.Fatalf("canonical mismatch\n got: %s\nwant: %s", got, want)
	}
	sig := Sign(got, "SECRET")
	if sig != "41c7f88ed9a31a4064dd747436d33a7d4f9a8146d2710a74ad9a8690a7f3a7652776d4a3af59734152dd4844a215f65ab1a8fcecfb6e598d9125dd2644f90320" {
		t.Fatalf("unexpected signature %s", sig)
	}
}

func TestSignEmptyIsDeterministic(t *testing.T) {
	if got := Canonicalize(url.Values{}); got != "" {
		t.Fatalf("expected empty canonical, got %q", got)
	}
	want := "180618c43e0735a598393eb122935e75dd4a382e43553c5e0407caaf69bf1ac87469fd19bb15ba26c40bc967377554bf02d2bca72737d8ae2b35f7f6c0149d99"
	if a, b := Sign("", "SECRET"), Sign("", "SECRET"); a != want || b != want {
		t.Fatalf("empty signature not deterministic: %s %s", a, b)
	}
	if Verify(url.Values{}, "", "SECRET") {
		t.Fatalf("empty callback must not verify")
	}
}

func sampleParams() url.Values {
	p := url.Values{}
	p.Set("vnp_TmnCode", "DEMO0001")
	p.Set("vnp_Amount", "50000000")
	p.Set("vnp_OrderInfo", "CMv1 course x learner y")
	p.Set("vnp_ResponseCode", "00")
	p.Set("vnp_TxnRef", "20261015120000ABCDEF1234")
	p.Set("vnp_TransactionNo", "14012345")
	p.Set("vnp_BankCode", "NCB")
	return p
}

func TestVerifyRoundTrip(t *testing.T) {
	secrets := []string{"SECRET", "", "a much longer secret with spaces & symbols"}
	for _, s := range secrets {
		p := sampleParams()
		sig := Sign(Canonicalize(p), s)
		if !Verify(p, sig, s) {
			t.Fatalf("round trip failed for secret %q", s)
		}
		if !Verify(p, strings.ToUpper(sig), s) {
			t.Fatalf("upper-case hex should verify")
		}
		p.Set(ParamSecureHash, sig)
		if !Verify(p, sig, s) {
			t.Fatalf("signature field must be excluded from signing")
		}
	}
}

func TestVerifyRejectsAnySingleCharFlip(t *testing.T) {
	p := sampleParams()
	sig := Sign(Canonicalize(p), "SECRET")
	for i := 0; i < len(sig); i++ {
		b := []byte(sig)
		if b[i] == '0' {
			b[i] = '1'
		} else {
			b[i] = '0'
		}
		if Verify(p, string(b), "SECRET") {
			t.Fatalf("flipped signature at %d verified", i)
		}
	}
	if Verify(p, sig[:len(sig)-1], "SECRET") {
		t.Fatalf("truncated signature verified")
	}
}

func TestVerifyRejectsTamperedParams(t *testing.T) {
	p := sampleParams()
	sig := Sign(Canonicalize(p), "SECRET")
	p.Set("vnp_Amount", "100")
	if Verify(p, sig, "SECRET") {
		t.Fatalf("tampered amount verified")
	}
	if Verify(sampleParams(), sig, "OTHER") {
		t.Fatalf("wrong secret verified")
	}
}
