package fetch

import (
	"bytes"
	"mime"
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/transform"
)

var metaCharsetRe = regexp.MustCompile(`(?i)<meta[^>]+charset=["']?([a-zA-Z0-9_\-]+)`)

// decodeBody converts a response body to UTF-8. The charset comes from the
// Content-Type header, falling back to a <meta charset> sniff of the first
// 1KB. Bodies that are already valid UTF-8 pass through untouched.
func decodeBody(raw []byte, contentType string) string {
	if utf8.Valid(raw) {
		return string(raw)
	}

	name := charsetFromContentType(contentType)
	if name == "" {
		name = charsetFromMeta(raw)
	}
	if name == "" || strings.EqualFold(name, "utf-8") {
		return string(raw)
	}

	enc, err := htmlindex.Get(name)
	if err != nil {
		return string(raw)
	}
	decoded, _, err := transform.Bytes(enc.NewDecoder(), raw)
	if err != nil {
		return string(raw)
	}
	return string(decoded)
}

func charsetFromContentType(contentType string) string {
	if contentType == "" {
		return ""
	}
	_, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return ""
	}
	return params["charset"]
}

func charsetFromMeta(raw []byte) string {
	head := raw
	if len(head) > 1024 {
		head = head[:1024]
	}
	m := metaCharsetRe.FindSubmatch(bytes.ToLower(head))
	if len(m) > 1 {
		return string(m[1])
	}
	return ""
}
