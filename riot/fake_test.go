package riot

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"
)

const (
	testUsername     = "player"
	testPassword     = "hunter2"
	testAccessToken  = "eyJhbGciOiJSUzI1NiJ9.access-token_part"
	testIDToken      = "eyJraWQiOiJzMSJ9.id-token_part"
	testEntitlements = "entitlements.jwt"
	testUserID       = "4f5e1c2a-puuid"
	testMediaURL     = "https://media.example/weaponskinlevels"
)

func redirectURI(access, id string) string {
	return "https://playvalorant.com/opt_in#access_token=" + access +
		"&scope=openid&iss=https%3A%2F%2Fauth.riotgames.com&id_token=" + id +
		"&token_type=Bearer&session_state=abc.def&expires_in=3600"
}

// fakeRiot scripts the vendor endpoints on a single httptest server.
type fakeRiot struct {
	t      *testing.T
	server *httptest.Server

	multifactor       bool
	multifactorStatus int
	code              string
	entitlements      string
	region            string
	storefront        string
	skins             map[string]string
	skinDelay         map[string]time.Duration

	mu           sync.Mutex
	handshakes   int
	codesTried   []string
	regionCalls  int
	catalogCalls int
}

func newFakeRiot(t *testing.T) *fakeRiot {
	t.Helper()
	f := &fakeRiot{
		t:            t,
		code:         "123456",
		entitlements: testEntitlements,
		region:       "eu",
		skins:        map[string]string{},
		skinDelay:    map[string]time.Duration{},
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/authorization", f.handleAuthorization)
	mux.HandleFunc("/api/token/v1", f.handleEntitlements)
	mux.HandleFunc("/userinfo", f.handleUserInfo)
	mux.HandleFunc("/pas/v1/product/valorant", f.handleRegion)
	mux.HandleFunc("/pd/", f.handleStorefront)
	mux.HandleFunc("/v1/weapons/skinlevels/", f.handleSkin)
	f.server = httptest.NewServer(mux)
	t.Cleanup(f.server.Close)
	return f
}

type fakeCounts struct {
	handshakes   int
	codesTried   []string
	regionCalls  int
	catalogCalls int
}

func (f *fakeRiot) counts() fakeCounts {
	f.mu.Lock()
	defer f.mu.Unlock()
	return fakeCounts{
		handshakes:   f.handshakes,
		codesTried:   append([]string(nil), f.codesTried...),
		regionCalls:  f.regionCalls,
		catalogCalls: f.catalogCalls,
	}
}

func (f *fakeRiot) endpoints() Endpoints {
	base := f.server.URL
	return Endpoints{
		Authorization: base + "/api/v1/authorization",
		Entitlements:  base + "/api/token/v1",
		UserInfo:      base + "/userinfo",
		Region:        base + "/pas/v1/product/valorant",
		Storefront: func(region string) string {
			return base + "/pd/" + region
		},
		Catalog: base + "/v1/weapons/skinlevels",
		Media:   testMediaURL,
	}
}

func (f *fakeRiot) client(opts ...Option) *Client {
	opts = append([]Option{
		WithEndpoints(f.endpoints()),
		WithTimeout(5 * time.Second),
		WithLogger(zaptest.NewLogger(f.t)),
	}, opts...)
	return NewClient(opts...)
}

func (f *fakeRiot) session() *Session {
	return &Session{
		accessToken:  AccessToken{Value: testAccessToken, IDToken: testIDToken},
		entitlements: testEntitlements,
		userID:       testUserID,
		region:       "eu",
		header:       BuildHeaders(testAccessToken, testEntitlements),
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func successResponse() map[string]any {
	return map[string]any{
		"type": "response",
		"response": map[string]any{
			"mode": "fragment",
			"parameters": map[string]any{
				"uri": redirectURI(testAccessToken, testIDToken),
			},
		},
	}
}

func (f *fakeRiot) handleAuthorization(w http.ResponseWriter, req *http.Request) {
	switch req.Method {
	case http.MethodPost:
		f.mu.Lock()
		f.handshakes++
		n := f.handshakes
		f.mu.Unlock()
		http.SetCookie(w, &http.Cookie{Name: "asid", Value: fmt.Sprintf("handshake-%d", n), Path: "/"})
		writeJSON(w, http.StatusOK, map[string]any{"type": "auth"})
		return
	case http.MethodPut:
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	if _, err := req.Cookie("asid"); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "missing_session"})
		return
	}

	var body map[string]any
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "bad_json"})
		return
	}

	switch body["type"] {
	case "auth":
		if body["username"] != testUsername || body["password"] != testPassword {
			writeJSON(w, http.StatusOK, map[string]any{"type": "auth", "error": "auth_failure"})
			return
		}
		if f.multifactor {
			status := f.multifactorStatus
			if status == 0 {
				status = http.StatusOK
			}
			writeJSON(w, status, map[string]any{
				"type":        "multifactor",
				"multifactor": map[string]any{"email": "p***@example.com", "method": "email"},
			})
			return
		}
		writeJSON(w, http.StatusOK, successResponse())
	case "multifactor":
		code, _ := body["code"].(string)
		f.mu.Lock()
		f.codesTried = append(f.codesTried, code)
		f.mu.Unlock()
		if code != f.code {
			writeJSON(w, http.StatusOK, map[string]any{"type": "multifactor", "error": "multifactor_attempt_failed"})
			return
		}
		writeJSON(w, http.StatusOK, successResponse())
	default:
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "unknown_type"})
	}
}

func (f *fakeRiot) requireBearer(w http.ResponseWriter, req *http.Request) bool {
	if req.Header.Get("Authorization") != "Bearer "+testAccessToken {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"error": "unauthorized"})
		return false
	}
	return true
}

func (f *fakeRiot) handleEntitlements(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodPost || !f.requireBearer(w, req) {
		return
	}
	if f.entitlements == "" {
		writeJSON(w, http.StatusOK, map[string]any{"issuer": "riot"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"entitlements_token": f.entitlements})
}

func (f *fakeRiot) handleUserInfo(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodPost || !f.requireBearer(w, req) {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"sub": testUserID, "email_verified": true})
}

func (f *fakeRiot) handleRegion(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodPut || !f.requireBearer(w, req) {
		return
	}
	f.mu.Lock()
	f.regionCalls++
	f.mu.Unlock()

	var body regionRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil || body.IDToken != testIDToken {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "bad id_token"})
		return
	}
	if f.region == "" {
		writeJSON(w, http.StatusOK, map[string]any{"token": "geo-token"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"token":      "geo-token",
		"affinities": map[string]string{"pbe": "na", "live": f.region},
	})
}

func (f *fakeRiot) handleStorefront(w http.ResponseWriter, req *http.Request) {
	if !strings.HasSuffix(req.URL.Path, "/store/v2/storefront/"+testUserID) {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	if !f.requireBearer(w, req) {
		return
	}
	if req.Header.Get("X-Riot-Entitlements-JWT") != testEntitlements {
		writeJSON(w, http.StatusBadRequest, map[string]any{"errorCode": "BAD_CLAIMS"})
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(f.storefront))
}

func (f *fakeRiot) handleSkin(w http.ResponseWriter, req *http.Request) {
	id := strings.TrimPrefix(req.URL.Path, "/v1/weapons/skinlevels/")
	if req.Header.Get("Authorization") != "" {
		f.t.Errorf("catalog lookup for %s carried credentials", id)
	}
	f.mu.Lock()
	f.catalogCalls++
	delay := f.skinDelay[id]
	name, ok := f.skins[id]
	f.mu.Unlock()

	if delay > 0 {
		time.Sleep(delay)
	}
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]any{"status": 404, "error": "skin level not found"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status": 200,
		"data": map[string]any{
			"uuid":        strings.ToUpper(id),
			"displayName": name,
			"levelItem":   nil,
		},
	})
}
