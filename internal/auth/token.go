package auth

import (
	"regexp"
	"strings"
)

var (
	schemeRE    = regexp.MustCompile(`^(Token|Bearer)\s+`)
	pairDelimRE = regexp.MustCompile(`[,;\t]`)
)

// ParseToken extracts the token from an Authorization header of the form
// `Token token="abc", nonce="def"`. The Bearer scheme is accepted too, and a
// bare value after the scheme is taken as the token. Options after the token
// are skipped. ok is false when the header uses another scheme or carries an
// empty token.
func ParseToken(header string) (token string, ok bool) {
	loc := schemeRE.FindStringIndex(header)
	if loc == nil {
		return "", false
	}

	for _, p := range pairDelimRE.Split(header[loc[1]:], -1) {
		if p = strings.TrimSpace(p); p == "" {
			continue
		}
		if key, val, found := strings.Cut(p, "="); found && key == "token" {
			p = val
		}
		token = strings.TrimSuffix(strings.TrimPrefix(p, `"`), `"`)
		break
	}
	return token, token != ""
}
