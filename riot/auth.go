package riot

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"
)

// CodeProvider supplies a second-factor verification code for an account.
// Code is called at most once per Authenticate.
type CodeProvider interface {
	Code(ctx context.Context, username string) (string, error)
}

// CodeProviderFunc adapts a function to CodeProvider.
type CodeProviderFunc func(ctx context.Context, username string) (string, error)

func (f CodeProviderFunc) Code(ctx context.Context, username string) (string, error) {
	return f(ctx, username)
}

type authState int

const (
	stateStart authState = iota
	stateAwaitingCredentialResponse
	stateAwaitingSecondFactor
	stateAuthenticated
	stateFailed
)

func (s authState) String() string {
	switch s {
	case stateStart:
		return "start"
	case stateAwaitingCredentialResponse:
		return "awaiting_credential_response"
	case stateAwaitingSecondFactor:
		return "awaiting_second_factor"
	case stateAuthenticated:
		return "authenticated"
	case stateFailed:
		return "failed"
	}
	return "unknown"
}

// Authenticate runs the full login handshake and returns a Session. A partial
// session is never returned: any failing step aborts the sequence.
func (c *Client) Authenticate(ctx context.Context, creds Credentials, codes CodeProvider) (*Session, error) {
	if creds.Username == "" || creds.Password == "" {
		return nil, fmt.Errorf("%w: username and password are required", ErrInvalidCredentials)
	}
	logger := c.logger.With(zap.String("username", creds.Username))

	token, err := c.accessToken(ctx, logger, creds, codes)
	if err != nil {
		return nil, err
	}

	// Step 3: entitlements token
	entitlements, err := c.entitlementsToken(ctx, token)
	if err != nil {
		return nil, err
	}

	// Step 4: user id
	userID, err := c.userID(ctx, token)
	if err != nil {
		return nil, err
	}

	// Step 5: region, unless configured
	region := strings.ToLower(strings.TrimSpace(creds.Region))
	if region == "" {
		region, err = c.region(ctx, token)
		if err != nil {
			return nil, err
		}
		logger.Debug("resolved region", zap.String("region", region))
	}

	return &Session{
		accessToken:  token,
		entitlements: entitlements,
		userID:       userID,
		region:       region,
		header:       BuildHeaders(token.Value, entitlements),
	}, nil
}

// accessToken drives the authorization endpoint through intent, credentials
// and the optional second factor.
func (c *Client) accessToken(ctx context.Context, logger *zap.Logger, creds Credentials, codes CodeProvider) (AccessToken, error) {
	state := stateStart
	transition := func(next authState) {
		logger.Debug("auth state", zap.Stringer("from", state), zap.Stringer("to", next))
		state = next
	}
	fail := func(err error) (AccessToken, error) {
		transition(stateFailed)
		return AccessToken{}, err
	}

	hc, err := c.handshakeClient()
	if err != nil {
		return fail(err)
	}

	// Step 1: authorization intent
	status, err := c.doJSON(ctx, hc, http.MethodPost, c.endpoints.Authorization, authHeaders(), authorizationRequest{
		ClientID:     ClientID,
		Nonce:        Nonce,
		RedirectURI:  RedirectURI,
		ResponseType: ResponseType,
		Scope:        Scope,
	}, nil)
	if err != nil {
		return fail(fmt.Errorf("authorization intent: %w", err))
	}
	if err := checkStatus("authorization intent", status); err != nil {
		return fail(err)
	}

	// Step 2: credentials
	transition(stateAwaitingCredentialResponse)
	var resp authorizationResponse
	status, err = c.doJSON(ctx, hc, http.MethodPut, c.endpoints.Authorization, authHeaders(), credentialsRequest{
		Type:     "auth",
		Username: creds.Username,
		Password: creds.Password,
	}, &resp)
	// Throttle pages are not always JSON.
	if status == http.StatusTooManyRequests {
		return fail(ErrRateLimited)
	}
	if err != nil {
		return fail(fmt.Errorf("submit credentials: %w", err))
	}

	switch {
	case resp.Type == "response":
		token, err := tokenFromResponse(resp)
		if err != nil {
			return fail(err)
		}
		transition(stateAuthenticated)
		return token, nil

	case resp.Type == "multifactor":
		if resp.Error == "rate_limited" {
			return fail(ErrRateLimited)
		}
		transition(stateAwaitingSecondFactor)
		if codes == nil {
			return fail(ErrSecondFactorUnavailable)
		}
		code, err := codes.Code(ctx, creds.Username)
		if err != nil {
			return fail(fmt.Errorf("%w: %v", ErrSecondFactorUnavailable, err))
		}
		code = strings.TrimSpace(code)
		if code == "" {
			return fail(ErrSecondFactorUnavailable)
		}

		var mfa authorizationResponse
		status, err = c.doJSON(ctx, hc, http.MethodPut, c.endpoints.Authorization, authHeaders(), multifactorRequest{
			Type: "multifactor",
			Code: code,
		}, &mfa)
		if status == http.StatusTooManyRequests {
			return fail(ErrRateLimited)
		}
		if err != nil {
			return fail(fmt.Errorf("submit verification code: %w", err))
		}
		if mfa.Error == "rate_limited" {
			return fail(ErrRateLimited)
		}
		if mfa.Type != "response" {
			return fail(fmt.Errorf("%w: verification code rejected", ErrInvalidCredentials))
		}
		token, err := tokenFromResponse(mfa)
		if err != nil {
			return fail(err)
		}
		transition(stateAuthenticated)
		return token, nil

	case resp.Error == "rate_limited":
		return fail(ErrRateLimited)
	}

	return fail(ErrInvalidCredentials)
}

func tokenFromResponse(resp authorizationResponse) (AccessToken, error) {
	if resp.Response == nil || resp.Response.Parameters.URI == "" {
		return AccessToken{}, upstreamf("authorization response has no redirect uri")
	}
	return ParseRedirectURI(resp.Response.Parameters.URI)
}

func (c *Client) entitlementsToken(ctx context.Context, token AccessToken) (string, error) {
	var resp entitlementsResponse
	status, err := c.doJSON(ctx, c.httpClient, http.MethodPost, c.endpoints.Entitlements, bearerHeaders(token.Value), struct{}{}, &resp)
	if err != nil {
		return "", fmt.Errorf("entitlements: %w", err)
	}
	if err := checkStatus("entitlements", status); err != nil {
		return "", err
	}
	if resp.EntitlementsToken == "" {
		return "", upstreamf("entitlements: missing entitlements_token")
	}
	return resp.EntitlementsToken, nil
}

func (c *Client) userID(ctx context.Context, token AccessToken) (string, error) {
	var resp userInfoResponse
	status, err := c.doJSON(ctx, c.httpClient, http.MethodPost, c.endpoints.UserInfo, bearerHeaders(token.Value), struct{}{}, &resp)
	if err != nil {
		return "", fmt.Errorf("userinfo: %w", err)
	}
	if err := checkStatus("userinfo", status); err != nil {
		return "", err
	}
	if resp.Sub == "" {
		return "", upstreamf("userinfo: missing sub")
	}
	return resp.Sub, nil
}

func (c *Client) region(ctx context.Context, token AccessToken) (string, error) {
	var resp regionResponse
	status, err := c.doJSON(ctx, c.httpClient, http.MethodPut, c.endpoints.Region, bearerHeaders(token.Value), regionRequest{IDToken: token.IDToken}, &resp)
	if err != nil {
		return "", fmt.Errorf("region: %w", err)
	}
	if err := checkStatus("region", status); err != nil {
		return "", err
	}
	if resp.Affinities == nil || resp.Affinities.Live == "" {
		return "", ErrRegionNotFound
	}
	return strings.ToLower(resp.Affinities.Live), nil
}
