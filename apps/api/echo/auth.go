package echoapi

import (
	"github.com/dgrijalva/jwt-go"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/kistconnect/portal/core"
	"github.com/kistconnect/portal/core/user"
)

var (
	contextTokenKey = "userToken"
	contextUserKey  = "user"
)

// Claims represents the session claims issued by the identity provider.
type Claims struct {
	jwt.StandardClaims
	Name     string `json:"name,omitempty"`
	Email    string `json:"email,omitempty"`
	ImageURL string `json:"image_url,omitempty"`
	Role     string `json:"role,omitempty"` // set once the user picked a role
}

// Profile is the identity provider's view of the user.
func (c Claims) Profile() user.Profile {
	return user.Profile{
		IdentityID: c.Subject,
		Name:       core.CleanString(c.Name),
		Email:      core.CleanString(c.Email, true /* lower */),
		ImageURL:   core.CleanString(c.ImageURL),
		Role:       core.CleanString(c.Role, true /* lower */),
	}
}

// newJWTConfig returns the JWT auth middleware config for the identity provider's tokens.
func newJWTConfig(conf core.IdentityConfig) (middleware.JWTConfig, error) {
	jwtConf := middleware.JWTConfig{
		SigningMethod: conf.SigningMethod,
		ContextKey:    contextTokenKey,
		Claims:        new(Claims),
	}

	switch conf.SigningMethod {
	case middleware.AlgorithmHS256:
		jwtConf.SigningKey = []byte(conf.SigningKey)
	case "RS256":
		key, err := jwt.ParseRSAPublicKeyFromPEM([]byte(conf.SigningKey))
		if err != nil {
			return jwtConf, errors.Wrap(err, "parsing identity provider public key")
		}
		jwtConf.SigningKey = key
	default:
		return jwtConf, errors.Errorf("unsupported signing method %q", conf.SigningMethod)
	}
	return jwtConf, nil
}

// GenerateToken signs claims the way the identity provider does in HS256 mode.
func GenerateToken(claims *Claims, signingKey string) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	ss, err := token.SignedString([]byte(signingKey))
	if err != nil {
		return "", errors.Wrap(err, "signing token")
	}
	return ss, nil
}

func getContextClaims(ctx echo.Context) (Claims, error) {
	if token, ok := ctx.Get(contextTokenKey).(*jwt.Token); ok {
		if claims, ok := token.Claims.(*Claims); ok {
			return *claims, nil
		}
	}
	return Claims{}, errUnauthorized
}

// getContextUser returns the stored user behind the request's token.
func getContextUser(ctx echo.Context, svc *user.Service) (user.User, error) {
	if usr, ok := ctx.Get(contextUserKey).(user.User); ok {
		return usr, nil
	}

	claims, err := getContextClaims(ctx)
	if err != nil {
		return user.User{}, errors.Wrap(err, "getting context claims")
	}

	usr, err := svc.GetByIdentityID(ctx.Request().Context(), claims.Subject)
	if err != nil {
		if errors.Cause(err) == user.ErrNotFound {
			return user.User{}, errUserNotSynced
		}
		return user.User{}, errors.Wrap(err, "finding user by identity")
	}
	ctx.Set(contextUserKey, usr)
	return usr, nil
}
