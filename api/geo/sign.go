package geo

import (
	"crypto/md5"
	"encoding/hex"
	"net/url"
	"strings"
)

// signSafe are the reserved characters left unescaped when signing
const signSafe = "/:=&?#+!$,;'@()*[]"

// Param is one query parameter. Signing depends on parameter order, so
// queries are built from slices rather than url.Values.
type Param struct {
	Key   string
	Value string
}

// Signer computes the sn signature for Baidu requests
type Signer struct {
	SK string
}

// Query joins uri and params without escaping, e.g. /reverse_geocoding/v3?ak=x&output=json
func Query(uri string, params []Param) string {
	pairs := make([]string, len(params))
	for i, p := range params {
		pairs[i] = p.Key + "=" + p.Value
	}
	return uri + "?" + strings.Join(pairs, "&")
}

// Sign returns the MD5 hex digest of the escaped query followed by the secret key
func (s Signer) Sign(uri string, params []Param) string {
	raw := quote(Query(uri, params), signSafe) + s.SK
	sum := md5.Sum([]byte(url.QueryEscape(raw)))
	return hex.EncodeToString(sum[:])
}

// quote percent-escapes every byte except unreserved characters and safe
func quote(s, safe string) string {
	const hexDigits = "0123456789ABCDEF"

	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if isUnreserved(c) || strings.IndexByte(safe, c) >= 0 {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(hexDigits[c>>4])
		b.WriteByte(hexDigits[c&0x0f])
	}
	return b.String()
}

func isUnreserved(c byte) bool {
	return 'a' <= c && c <= 'z' ||
		'A' <= c && c <= 'Z' ||
		'0' <= c && c <= '9' ||
		c == '_' || c == '.' || c == '-' || c == '~'
}
