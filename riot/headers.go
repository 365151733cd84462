package riot

import (
	"net/http"
	"strings"
)

const (
	ClientID      = "play-valorant-web-prod"
	Nonce         = "1"
	RedirectURI   = "https://playvalorant.com/opt_in"
	ResponseType  = "token id_token"
	Scope         = "account openid"
	UserAgent     = "RiotClient/60.0.6.4770705.4749685 rso-auth (Windows;10;;Professional, x64)"
	ClientVersion = "pbe-shipping-55-604424"

	// ClientPlatform is base64 JSON describing a Windows PC client.
	ClientPlatform = "ew0KCSJwbGF0Zm9ybVR5cGUiOiAiUEMiLA0KCSJwbGF0Zm9ybU9TIjogIldpbmRvd3MiLA0KCSJwbGF0Zm9ybU9TVmVyc2lvbiI6ICIxMC4wLjE5MDQyLjEuMjU2LjY0Yml0IiwNCgkicGxhdGZvcm1DaGlwc2V0IjogIlVua25vd24iDQp9"

	// ValorantPoints is the currency id of VP in storefront cost maps.
	ValorantPoints = "85ad13f7-3d1b-5128-9eb2-7cd8ee0b5741"

	AuthorizationURL = "https://auth.riotgames.com/api/v1/authorization"
	EntitlementsURL  = "https://entitlements.auth.riotgames.com/api/token/v1"
	UserInfoURL      = "https://auth.riotgames.com/userinfo"
	RegionURL        = "https://riot-geo.pas.si.riotgames.com/pas/v1/product/valorant"
	CatalogURL       = "https://valorant-api.com/v1/weapons/skinlevels"
	MediaURL         = "https://media.valorant-api.com/weaponskinlevels"
)

// Endpoints holds every host the client talks to.
type Endpoints struct {
	Authorization string
	Entitlements  string
	UserInfo      string
	Region        string
	// Storefront returns the player-data base URL for a region, e.g.
	// https://pd.eu.a.pvp.net.
	Storefront func(region string) string
	Catalog    string
	Media      string
}

// DefaultEndpoints returns the production hosts.
func DefaultEndpoints() Endpoints {
	return Endpoints{
		Authorization: AuthorizationURL,
		Entitlements:  EntitlementsURL,
		UserInfo:      UserInfoURL,
		Region:        RegionURL,
		Storefront: func(region string) string {
			return "https://pd." + region + ".a.pvp.net"
		},
		Catalog: CatalogURL,
		Media:   MediaURL,
	}
}

// ImageURL returns the display icon for a skin level id.
func (e Endpoints) ImageURL(skinID string) string {
	return e.Media + "/" + strings.ToLower(skinID) + "/displayicon.png"
}

func authHeaders() http.Header {
	h := http.Header{}
	h.Set("Accept", "application/json, text/plain, */*")
	h.Set("Content-Type", "application/json")
	h.Set("User-Agent", UserAgent)
	return h
}

func bearerHeaders(accessToken string) http.Header {
	h := http.Header{}
	h.Set("Authorization", "Bearer "+accessToken)
	h.Set("Content-Type", "application/json")
	h.Set("User-Agent", UserAgent)
	return h
}

// BuildHeaders constructs the headers for player-data requests.
func BuildHeaders(accessToken, entitlementsToken string) http.Header {
	h := bearerHeaders(accessToken)
	h.Set("X-Riot-Entitlements-JWT", entitlementsToken)
	h.Set("X-Riot-ClientPlatform", ClientPlatform)
	h.Set("X-Riot-ClientVersion", ClientVersion)
	return h
}
