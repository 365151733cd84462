package riot

import (
	"net/url"
	"strconv"
)

// ParseRedirectURI extracts the tokens from the authorization redirect, e.g.
//
//	https://playvalorant.com/opt_in#access_token=...&id_token=...&expires_in=3600
//
// The parameters normally live in the fragment; the query is used when the
// fragment carries none.
func ParseRedirectURI(raw string) (AccessToken, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return AccessToken{}, upstreamf("redirect uri: %v", err)
	}

	// ParseQuery keeps every well-formed pair even when it reports an error.
	params, _ := url.ParseQuery(u.EscapedFragment())
	if params.Get("access_token") == "" {
		params, err = url.ParseQuery(u.RawQuery)
		if err != nil {
			return AccessToken{}, upstreamf("redirect uri parameters: %v", err)
		}
	}

	token := AccessToken{
		Value:   params.Get("access_token"),
		IDToken: params.Get("id_token"),
	}
	if !validToken(token.Value) {
		return AccessToken{}, upstreamf("redirect uri has no valid access_token")
	}
	if !validToken(token.IDToken) {
		return AccessToken{}, upstreamf("redirect uri has no valid id_token")
	}
	if v := params.Get("expires_in"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return AccessToken{}, upstreamf("redirect uri expires_in %q", v)
		}
		token.ExpiresIn = n
	}
	return token, nil
}

// validToken reports whether s is a non-empty run of [A-Za-z0-9._-].
func validToken(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case r == '.', r == '-', r == '_':
		default:
			return false
		}
	}
	return true
}
