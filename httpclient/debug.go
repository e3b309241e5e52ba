package httpclient

import (
	"net/http"
	"sort"
	"strings"
)

// Curl renders the request as an equivalent curl command line, headers in
// sorted order. Single quotes inside values are escaped for a POSIX shell.
func (r *Request) Curl() string {
	parts := []string{"curl"}

	if r.Method != "" && r.Method != http.MethodGet {
		parts = append(parts, "-X", r.Method)
	}

	parts = append(parts, shellQuote(r.URL))

	keys := make([]string, 0, len(r.Header))
	for k := range r.Header {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		for _, v := range r.Header[k] {
			parts = append(parts, "-H", shellQuote(k+": "+v))
		}
	}

	if len(r.Body) > 0 {
		parts = append(parts, "--data-binary", shellQuote(string(r.Body)))
	}

	return strings.Join(parts, " ")
}

func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
