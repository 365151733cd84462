package riot

import "net/http"

// Credentials identify the account to log in with. Region may be left empty,
// in which case it is discovered during authentication.
type Credentials struct {
	Username string
	Password string
	Region   string
}

// AccessToken is the pair of tokens returned by the authorization redirect.
type AccessToken struct {
	Value     string
	IDToken   string
	ExpiresIn int
}

// Session is an authenticated account. It is read-only once Authenticate
// returns it, and never refreshed; once the vendor expires it a new one must
// be created with Authenticate.
type Session struct {
	accessToken  AccessToken
	entitlements string
	userID       string
	region       string
	header       http.Header
}

func (s *Session) AccessToken() AccessToken { return s.accessToken }

func (s *Session) EntitlementsToken() string { return s.entitlements }

// UserID is the account's puuid.
func (s *Session) UserID() string { return s.userID }

// Region is the lowercase shard used for storefront calls.
func (s *Session) Region() string { return s.region }

// Header returns a copy of the request headers used for storefront calls.
func (s *Session) Header() http.Header {
	return s.header.Clone()
}

type Skin struct {
	ID          string
	DisplayName string
}

type Offer struct {
	Skin     Skin
	Cost     int
	ImageURL string
}

// Store is the daily rotating shop. Offers keep the order of the storefront panel.
type Store struct {
	Offers                   []Offer
	RemainingDurationSeconds int
}

type NightMarketOffer struct {
	Skin            Skin
	DiscountedCost  int
	OriginalCost    int
	DiscountPercent int
	ImageURL        string
}

type NightMarket struct {
	Offers                   []NightMarketOffer
	RemainingDurationSeconds int
}

// authorizationRequest opens the handshake on the authorization endpoint.
type authorizationRequest struct {
	ClientID     string `json:"client_id"`
	Nonce        string `json:"nonce"`
	RedirectURI  string `json:"redirect_uri"`
	ResponseType string `json:"response_type"`
	Scope        string `json:"scope"`
}

type credentialsRequest struct {
	Type     string `json:"type"`
	Username string `json:"username"`
	Password string `json:"password"`
	Remember bool   `json:"remember"`
}

type multifactorRequest struct {
	Type           string `json:"type"`
	Code           string `json:"code"`
	RememberDevice bool   `json:"rememberDevice"`
}

// authorizationResponse is returned by both credential and multifactor PUTs.
type authorizationResponse struct {
	Type     string `json:"type"`
	Error    string `json:"error"`
	Response *struct {
		Parameters struct {
			URI string `json:"uri"`
		} `json:"parameters"`
	} `json:"response"`
	Multifactor *struct {
		Email  string `json:"email"`
		Method string `json:"method"`
	} `json:"multifactor"`
}

type entitlementsResponse struct {
	EntitlementsToken string `json:"entitlements_token"`
}

type userInfoResponse struct {
	Sub string `json:"sub"`
}

type regionRequest struct {
	IDToken string `json:"id_token"`
}

type regionResponse struct {
	Affinities *struct {
		Live string `json:"live"`
	} `json:"affinities"`
}

// storefrontResponse is the subset of the storefront document this package reads.
type storefrontResponse struct {
	SkinsPanelLayout *skinsPanelLayout `json:"SkinsPanelLayout"`
	BonusStore       *bonusStore       `json:"BonusStore"`
}

type skinsPanelLayout struct {
	SingleItemOffers      []string `json:"SingleItemOffers"`
	SingleItemStoreOffers []struct {
		OfferID string         `json:"OfferID"`
		Cost    map[string]int `json:"Cost"`
	} `json:"SingleItemStoreOffers"`
	SingleItemOffersRemainingDurationInSeconds *int `json:"SingleItemOffersRemainingDurationInSeconds"`
}

type bonusStore struct {
	BonusStoreOffers []struct {
		BonusOfferID string `json:"BonusOfferID"`
		Offer        struct {
			OfferID string         `json:"OfferID"`
			Cost    map[string]int `json:"Cost"`
		} `json:"Offer"`
		DiscountPercent *int           `json:"DiscountPercent"`
		DiscountCosts   map[string]int `json:"DiscountCosts"`
	} `json:"BonusStoreOffers"`
	BonusStoreRemainingDurationInSeconds *int `json:"BonusStoreRemainingDurationInSeconds"`
}

// skinLevelResponse is the public catalog entry for one skin level.
type skinLevelResponse struct {
	Status int `json:"status"`
	Data   *struct {
		UUID        string `json:"uuid"`
		DisplayName string `json:"displayName"`
	} `json:"data"`
}
