package vnpay

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"net/url"
	"sort"
	"strings"
)

const (
	ParamSecureHash     = "vnp_SecureHash"
	ParamSecureHashType = "vnp_SecureHashType"
)

// Canonicalize renders params as the string the gateway signs: signature
// fields and empty values dropped, keys sorted by their encoded form, keys and
// values query-escaped (space as '+'), pairs joined with '&'. Only the first
// value of a repeated key is used.
func Canonicalize(params url.Values) string {
	type pair struct{ k, v string }
	pairs := make([]pair, 0, len(params))
	for k, vs := range params {
		if k == ParamSecureHash || k == ParamSecureHashType {
			continue
		}
		if len(vs) == 0 || vs[0] == "" {
			continue
		}
		pairs = append(pairs, pair{k: url.QueryEscape(k), v: url.QueryEscape(vs[0])})
	}
	sort.Slice(pairs, func(i, j int) bool { return pairs[i].k < pairs[j].k })

	var b strings.Builder
	for i, p := range pairs {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(p.k)
		b.WriteByte('=')
		b.WriteString(p.v)
	}
	return b.String()
}

// Sign returns the lowercase hex HMAC-SHA512 of canonical keyed by secret.
// An empty canonical string still yields a deterministic digest.
func Sign(canonical, secret string) string {
	mac := hmac.New(sha512.New, []byte(secret))
	mac.Write([]byte(canonical))
	return hex.EncodeToString(mac.Sum(nil))
}

// Verify recomputes the signature over params and compares it with provided
// in constant time. Hex case is not significant.
func Verify(params url.Values, provided, secret string) bool {
	provided = strings.ToLower(strings.TrimSpace(provided))
	if provided == "" {
		return false
	}
	want := Sign(Canonicalize(params), secret)
	return hmac.Equal([]byte(want), []byte(provided))
}
