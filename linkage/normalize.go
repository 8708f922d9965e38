package linkage

import (
	"net/url"
	"strings"
)

// NormalizeURL reduces a product URL to its host+path identity: query string
// and fragment stripped, trailing slash removed. Comparison stays
// case-sensitive on the path since some retailers use case-significant slugs.
func NormalizeURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return strings.TrimSuffix(raw, "/")
	}

	path := strings.TrimSuffix(u.Path, "/")
	return u.Host + path
}
