package middleware

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/yungbote/scorecard-dashboard/internal/domain"
	"github.com/yungbote/scorecard-dashboard/internal/http/response"
	"github.com/yungbote/scorecard-dashboard/internal/platform/apierr"
	"github.com/yungbote/scorecard-dashboard/internal/platform/ctxutil"
	"github.com/yungbote/scorecard-dashboard/internal/platform/logger"
)

const (
	headerPageHref      = "X-Page-Href"
	headerForwardedUser = "X-Forwarded-User"
	usernameClaim       = "username"
	hrefUsernameParam   = "username="
)

var (
	errMissingUsernameClaim = errors.New("session token has no username claim")
	errInvalidSessionToken  = errors.New("invalid session token")
)

// IdentityMiddleware resolves who is acting on a request. It never rejects
// anonymous callers; only a session token that fails verification is refused.
type IdentityMiddleware struct {
	log    *logger.Logger
	secret []byte
}

// NewIdentityMiddleware verifies HS256 session tokens with secret. With an
// empty secret, tokens are ignored and the softer sources are used.
func NewIdentityMiddleware(log *logger.Logger, secret string) *IdentityMiddleware {
	if log == nil {
		log = logger.NewNop()
	}
	return &IdentityMiddleware{
		log:    log.With("Middleware", "IdentityMiddleware"),
		secret: []byte(strings.TrimSpace(secret)),
	}
}

func (im *IdentityMiddleware) ResolveUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := im.userFor(c)
		if err != nil {
			im.log.Debug("Session token rejected", "error", err)
			response.RespondError(c, http.StatusUnauthorized, apierr.CodeUnauthorized, errInvalidSessionToken)
			c.Abort()
			return
		}
		ctx := c.Request.Context()
		rd := ctxutil.GetRequestData(ctx)
		if rd == nil {
			rd = &ctxutil.RequestData{}
			c.Request = c.Request.WithContext(ctxutil.WithRequestData(ctx, rd))
		}
		rd.User = user
		c.Set("user", user)
		c.Next()
	}
}

// userFor checks, in order: a verified session token, the username query
// parameter, the dashboard page URL, the proxy header.
func (im *IdentityMiddleware) userFor(c *gin.Context) (string, error) {
	if len(im.secret) > 0 {
		if token := extractTokenFromAll(c); token != "" {
			return im.verify(token)
		}
	}
	if u := strings.TrimSpace(c.Query("username")); u != "" {
		return u, nil
	}
	if u := UsernameFromHref(c.GetHeader(headerPageHref)); u != "" {
		return u, nil
	}
	if u := strings.TrimSpace(c.GetHeader(headerForwardedUser)); u != "" {
		return u, nil
	}
	return domain.UnknownUser, nil
}

func (im *IdentityMiddleware) verify(token string) (string, error) {
	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return im.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return "", err
	}
	user, _ := claims[usernameClaim].(string)
	if user = strings.TrimSpace(user); user == "" {
		return "", errMissingUsernameClaim
	}
	return user, nil
}

func extractTokenFromAll(c *gin.Context) string {
	if qToken := c.Query("token"); qToken != "" {
		return qToken
	}
	authHeader := c.GetHeader("Authorization")
	if len(authHeader) > 7 && strings.EqualFold(authHeader[:7], "Bearer ") {
		return strings.TrimSpace(authHeader[7:])
	}
	return ""
}

// UsernameFromHref returns the value after the last "username=" in a page
// URL, or "" when there is none.
func UsernameFromHref(href string) string {
	i := strings.LastIndex(href, hrefUsernameParam)
	if i < 0 {
		return ""
	}
	raw := href[i+len(hrefUsernameParam):]
	if j := strings.IndexAny(raw, "&#"); j >= 0 {
		raw = raw[:j]
	}
	if v, err := url.QueryUnescape(raw); err == nil {
		raw = v
	}
	return strings.TrimSpace(raw)
}
