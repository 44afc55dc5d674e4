package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/yungbote/scorecard-dashboard/internal/http/response"
	"github.com/yungbote/scorecard-dashboard/internal/platform/apierr"
	"github.com/yungbote/scorecard-dashboard/internal/platform/ctxutil"
)

const testSecret = "test-secret"

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return tok
}

func identityRouter(secret string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(AttachRequestContext())
	r.Use(NewIdentityMiddleware(nil, secret).ResolveUser())
	r.GET("/whoami", func(c *gin.Context) {
		c.String(http.StatusOK, ctxutil.UserOrDefault(c.Request.Context(), "none"))
	})
	return r
}

func TestIdentityResolutionOrder(t *testing.T) {
	valid := signToken(t, testSecret, jwt.MapClaims{"username": "jwt-user", "exp": time.Now().Add(time.Hour).Unix()})

	cases := []struct {
		name   string
		secret string
		target string
		header map[string]string
		want   string
	}{
		{name: "nothing", target: "/whoami", want: "Unknown user"},
		{
			name:   "bearer token wins",
			secret: testSecret,
			target: "/whoami?username=query-user",
			header: map[string]string{"Authorization": "Bearer " + valid},
			want:   "jwt-user",
		},
		{name: "token query", secret: testSecret, target: "/whoami?token=" + valid, want: "jwt-user"},
		{
			name:   "token ignored without secret",
			target: "/whoami?username=query-user",
			header: map[string]string{"Authorization": "Bearer " + valid},
			want:   "query-user",
		},
		{
			name:   "query before href",
			target: "/whoami?username=query-user",
			header: map[string]string{headerPageHref: "http://dash/?username=href-user"},
			want:   "query-user",
		},
		{
			name:   "href",
			target: "/whoami",
			header: map[string]string{headerPageHref: "http://dash/dashboard?username=jane.doe%40esa.int&tab=1", headerForwardedUser: "proxy"},
			want:   "jane.doe@esa.int",
		},
		{
			name:   "forwarded user",
			target: "/whoami",
			header: map[string]string{headerForwardedUser: "proxy-user"},
			want:   "proxy-user",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tc.target, nil)
			for k, v := range tc.header {
				req.Header.Set(k, v)
			}
			rec := httptest.NewRecorder()
			identityRouter(tc.secret).ServeHTTP(rec, req)
			if rec.Code != http.StatusOK {
				t.Fatalf("status: want=200 got=%d body=%s", rec.Code, rec.Body.String())
			}
			if got := rec.Body.String(); got != tc.want {
				t.Fatalf("user: want=%q got=%q", tc.want, got)
			}
		})
	}
}

func TestIdentityRejectsBadTokens(t *testing.T) {
	cases := map[string]string{
		"wrong secret":  signToken(t, "other-secret", jwt.MapClaims{"username": "mallory"}),
		"expired":       signToken(t, testSecret, jwt.MapClaims{"username": "bob", "exp": time.Now().Add(-time.Hour).Unix()}),
		"missing claim": signToken(t, testSecret, jwt.MapClaims{"sub": "bob"}),
		"not a jwt":     "garbage",
	}
	for name, tok := range cases {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
			req.Header.Set("Authorization", "Bearer "+tok)
			rec := httptest.NewRecorder()
			identityRouter(testSecret).ServeHTTP(rec, req)
			if rec.Code != http.StatusUnauthorized {
				t.Fatalf("status: want=401 got=%d", rec.Code)
			}
		})
	}
}

func TestIdentityRejectionUsesErrorEnvelope(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	req.Header.Set(headerRequestID, "req-401")
	rec := httptest.NewRecorder()
	identityRouter(testSecret).ServeHTTP(rec, req)

	var env response.ErrorEnvelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode body %q: %v", rec.Body.String(), err)
	}
	want := response.APIError{Message: "invalid session token", Code: apierr.CodeUnauthorized, RequestID: "req-401"}
	if env.Error != want {
		t.Fatalf("envelope: want=%+v got=%+v", want, env.Error)
	}
}

func TestUsernameFromHref(t *testing.T) {
	cases := map[string]string{
		"":                                           "",
		"http://dash/":                               "",
		"http://dash/?username=alice":                "alice",
		"http://dash/?a=1&username=bob&b=2":          "bob",
		"http://dash/?username=a&username=carol#top": "carol",
		"http://dash/?username=John%20Smith":         "John Smith",
	}
	for href, want := range cases {
		if got := UsernameFromHref(href); got != want {
			t.Fatalf("UsernameFromHref(%q): want=%q got=%q", href, want, got)
		}
	}
}
