package middleware

import (
	"net/http"
	"strings"

	"bizdesk/internal/domain/account"
	"bizdesk/pkg"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

var errUnauthorized = pkg.NewDomainErrorSimple("UNAUTHORIZED", "Missing or invalid access token", http.StatusUnauthorized)

// Claims is the subset of the auth provider's access token we rely on. The
// subject is the account id.
type Claims struct {
	Email string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// Auth validates an HS256 bearer token and binds its subject to the request
// context as the current account.
func Auth(secret string) gin.HandlerFunc {
	key := []byte(secret)
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
		jwt.WithExpirationRequired(),
	)
	return func(c *gin.Context) {
		tokenStr := bearerToken(c.GetHeader("Authorization"))
		if tokenStr == "" {
			c.AbortWithStatusJSON(errUnauthorized.HTTPStatus, errUnauthorized.ToHTTPError())
			return
		}

		claims := &Claims{}
		token, err := parser.ParseWithClaims(tokenStr, claims, func(*jwt.Token) (interface{}, error) {
			return key, nil
		})
		if err != nil || !token.Valid || strings.TrimSpace(claims.Subject) == "" {
			c.AbortWithStatusJSON(errUnauthorized.HTTPStatus, errUnauthorized.ToHTTPError())
			return
		}

		bindAccount(c, claims.Subject)
		c.Next()
	}
}

// DevAccount binds a fixed account to every request. Local use only.
func DevAccount(accountID string) gin.HandlerFunc {
	return func(c *gin.Context) {
		bindAccount(c, accountID)
		c.Next()
	}
}

func bindAccount(c *gin.Context, accountID string) {
	c.Request = c.Request.WithContext(account.WithID(c.Request.Context(), accountID))
}

func bearerToken(header string) string {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
