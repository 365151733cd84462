package riot

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRedirectURI(t *testing.T) {
	tests := []struct {
		name    string
		uri     string
		want    AccessToken
		wantErr bool
	}{
		{
			name: "fragment",
			uri:  redirectURI("abc.DEF-123_x", "id.tok-en_9"),
			want: AccessToken{Value: "abc.DEF-123_x", IDToken: "id.tok-en_9", ExpiresIn: 3600},
		},
		{
			name: "query fallback",
			uri:  "https://playvalorant.com/opt_in?access_token=a1&id_token=b2&expires_in=60",
			want: AccessToken{Value: "a1", IDToken: "b2", ExpiresIn: 60},
		},
		{
			name: "long tokens",
			uri:  "https://playvalorant.com/opt_in#access_token=" + longToken(2048) + "&id_token=b&expires_in=1",
			want: AccessToken{Value: longToken(2048), IDToken: "b", ExpiresIn: 1},
		},
		{
			name: "stray semicolon in fragment",
			uri:  "https://playvalorant.com/opt_in#access_token=a1&;&id_token=b2&expires_in=60",
			want: AccessToken{Value: "a1", IDToken: "b2", ExpiresIn: 60},
		},
		{
			name: "no expiry",
			uri:  "https://playvalorant.com/opt_in#access_token=a&id_token=b",
			want: AccessToken{Value: "a", IDToken: "b"},
		},
		{name: "missing id token", uri: "https://playvalorant.com/opt_in#access_token=a&expires_in=1", wantErr: true},
		{name: "missing access token", uri: "https://playvalorant.com/opt_in#id_token=b", wantErr: true},
		{name: "foreign characters", uri: "https://playvalorant.com/opt_in#access_token=a%2Bb&id_token=b", wantErr: true},
		{name: "bad expiry", uri: "https://playvalorant.com/opt_in#access_token=a&id_token=b&expires_in=soon", wantErr: true},
		{name: "not a uri", uri: "://", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseRedirectURI(tt.uri)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrUpstream)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func longToken(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = "abcXYZ019.-_"[i%12]
	}
	return string(b)
}
