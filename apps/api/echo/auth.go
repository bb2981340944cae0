package echoapi

import (
	"strconv"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/skapefps/Unimap-sub001/core"
	"github.com/skapefps/Unimap-sub001/core/identity"
	"github.com/skapefps/Unimap-sub001/core/rostersync"
)

const (
	tokenContextKey    = "identityToken"
	identityContextKey = "identity"
)

// Claims represents the authorization claims transmitted via a JWT.
// The subject is the identity ID.
type Claims struct {
	jwt.StandardClaims
	Email string `json:"email,omitempty"`
	Role  string `json:"role,omitempty"`
}

func newJWTConfig(conf *core.Config) middleware.JWTConfig {
	return middleware.JWTConfig{
		SigningKey:    []byte(conf.SecretKey),
		SigningMethod: middleware.AlgorithmHS256,
		ContextKey:    tokenContextKey,
		Claims:        new(Claims),
	}
}

func NewClaims(ident identity.Identity, conf *core.Config) *Claims {
	now := time.Now()
	return &Claims{
		StandardClaims: jwt.StandardClaims{
			Issuer:    conf.AppName,
			Subject:   strconv.Itoa(ident.ID),
			ExpiresAt: now.Add(conf.Server.JWTExpirationDelta).Unix(),
			IssuedAt:  now.Unix(),
		},
		Email: ident.Email,
		Role:  ident.Role,
	}
}

// GenerateToken generates a signed JWT token string representing the identity Claims.
func GenerateToken(claims *Claims, conf *core.Config) (string, error) {
	token := jwt.NewWithClaims(jwt.GetSigningMethod(middleware.AlgorithmHS256), claims)
	ss, err := token.SignedString([]byte(conf.SecretKey))
	if err != nil {
		return "", errors.Wrap(err, "signing token")
	}
	return ss, nil
}

func getContextClaims(ctx echo.Context) (Claims, error) {
	if token, ok := ctx.Get(tokenContextKey).(*jwt.Token); ok {
		if claims, ok := token.Claims.(*Claims); ok {
			return *claims, nil
		}
	}
	return Claims{}, errUnauthorized
}

// getContextIdentity loads the acting identity. Roles are read from the store, not the token,
// so a role change applies to tokens already issued.
func getContextIdentity(ctx echo.Context, svc *rostersync.Service) (identity.Identity, error) {
	if ident, ok := ctx.Get(identityContextKey).(identity.Identity); ok {
		return ident, nil
	}

	claims, err := getContextClaims(ctx)
	if err != nil {
		return identity.Identity{}, err
	}
	id, err := strconv.Atoi(claims.Subject)
	if err != nil {
		return identity.Identity{}, errUnauthorized
	}

	ident, err := svc.GetIdentity(ctx.Request().Context(), id)
	if err != nil {
		if errors.Cause(err) == identity.ErrNotFound {
			return identity.Identity{}, errUnauthorized
		}
		return identity.Identity{}, errors.Wrap(err, "finding context identity")
	}
	ctx.Set(identityContextKey, ident)
	return ident, nil
}
