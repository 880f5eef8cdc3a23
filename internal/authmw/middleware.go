// Package authmw validates Keycloak-issued bearer tokens against the realm
// JWKS and enforces studio roles on gin routes.
package authmw

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/MicahParks/keyfunc/v2"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"studioops/atelier-pms/internal/domain"
)

type KeycloakAuth struct {
	Issuer   string
	Audience string
	ClientID string

	JWKS   *keyfunc.JWKS
	Leeway time.Duration
}

// NewKeycloakAuth fetches the JWKS once at startup and keeps it refreshed.
func NewKeycloakAuth(jwksURL, issuer, audience, clientID string) (*KeycloakAuth, error) {
	jwks, err := keyfunc.Get(jwksURL, keyfunc.Options{
		RefreshInterval:  time.Hour,
		RefreshRateLimit: time.Minute * 5,
		RefreshTimeout:   time.Second * 10,
	})
	if err != nil {
		return nil, err
	}

	return &KeycloakAuth{
		Issuer:   issuer,
		Audience: audience,
		ClientID: clientID,
		JWKS:     jwks,
		Leeway:   30 * time.Second,
	}, nil
}

type kcClaims struct {
	jwt.RegisteredClaims

	PreferredUsername string `json:"preferred_username"`
	Email             string `json:"email"`

	RealmAccess struct {
		Roles []string `json:"roles"`
	} `json:"realm_access"`

	ResourceAccess map[string]struct {
		Roles []string `json:"roles"`
	} `json:"resource_access"`
}

// RequireRoles validates the token, stashes the resolved actor into the gin
// context and aborts unless the token carries at least one of the roles.
func (a *KeycloakAuth) RequireRoles(anyOf ...domain.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr, err := extractAccessToken(c)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}

		claims := &kcClaims{}
		_, err = jwt.ParseWithClaims(tokenStr, claims, a.JWKS.Keyfunc,
			jwt.WithIssuer(a.Issuer),
			jwt.WithAudience(a.Audience),
			jwt.WithLeeway(a.Leeway),
			jwt.WithValidMethods([]string{"RS256"}),
		)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		roles := collectRoles(claims, a.ClientID)

		c.Set("kc.sub", claims.Subject)
		c.Set("kc.username", claims.PreferredUsername)
		c.Set("kc.email", claims.Email)
		c.Set("kc.roles", roles)

		actor, okr := resolveActor(claims, roles, anyOf)
		if !okr {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "insufficient role"})
			return
		}
		c.Set("kc.actor", actor)

		c.Next()
	}
}

// CurrentActor retrieves the actor RequireRoles stored for this request.
func CurrentActor(c *gin.Context) (domain.Actor, bool) {
	v, exists := c.Get("kc.actor")
	if !exists {
		return domain.Actor{}, false
	}
	actor, okt := v.(domain.Actor)
	return actor, okt
}

// resolveActor matches the token's roles against the allowed set; the first
// allowed role the token carries becomes the actor's effective role.
func resolveActor(claims *kcClaims, roles []string, anyOf []domain.Role) (domain.Actor, bool) {
	held := make(map[string]struct{}, len(roles))
	for _, r := range roles {
		held[r] = struct{}{}
	}
	for _, want := range anyOf {
		if _, okr := held[string(want)]; okr {
			return domain.Actor{
				ID:       claims.Subject,
				Username: claims.PreferredUsername,
				Role:     want,
			}, true
		}
	}
	return domain.Actor{}, false
}

func extractAccessToken(c *gin.Context) (string, error) {
	authz := c.GetHeader("Authorization")
	if strings.HasPrefix(strings.ToLower(authz), "bearer ") {
		return strings.TrimSpace(authz[7:]), nil
	}

	if cookie, err := c.Cookie("access_token"); err == nil && cookie != "" {
		return cookie, nil
	}

	return "", errors.New("missing access token")
}

func collectRoles(claims *kcClaims, clientID string) []string {
	out := make([]string, 0, 16)
	out = append(out, claims.RealmAccess.Roles...)

	if clientID != "" && claims.ResourceAccess != nil {
		if ra, okr := claims.ResourceAccess[clientID]; okr {
			out = append(out, ra.Roles...)
		}
	}

	return uniq(out)
}

func uniq(in []string) []string {
	seen := map[string]struct{}{}
	out := make([]string, 0, len(in))
	for _, v := range in {
		if v == "" {
			continue
		}
		if _, okv := seen[v]; okv {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
