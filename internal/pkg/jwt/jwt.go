package jwt

import (
	"context"
	"errors"
	"time"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/user"
	"github.com/go-chi/jwtauth/v5"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

const (
	TokenTypeAccess = "access"
	TokenTypeSSE    = "sse"

	sseTokenTTL = 5 * time.Minute
)

var ErrInvalidClaims = errors.New("token claims do not describe a user")

type Service interface {
	GenerateAccessToken(actor user.Actor) (token string, expiresAt int64, err error)
	GenerateSSEToken(actor user.Actor) (token string, expiresIn int, err error)
	ValidateSSEToken(tokenString string) (user.Actor, error)
	JWTAuth() *jwtauth.JWTAuth
}

type JWTService struct {
	accessTokenExpirationTime string
	tokenAuth                 *jwtauth.JWTAuth
	now                       func() time.Time
}

func (j *JWTService) JWTAuth() *jwtauth.JWTAuth {
	return j.tokenAuth
}

func NewJWTService(secretKey string, accessTokenExpirationTime string) *JWTService {
	return &JWTService{
		accessTokenExpirationTime: accessTokenExpirationTime,
		tokenAuth:                 jwtauth.New("HS256", []byte(secretKey), nil, jwt.WithAcceptableSkew(30*time.Second)),
		now:                       time.Now,
	}
}

func (j *JWTService) GenerateAccessToken(actor user.Actor) (token string, expiresAt int64, err error) {
	expDuration, err := time.ParseDuration(j.accessTokenExpirationTime)
	if err != nil {
		return "", 0, err
	}
	expiresAt = j.now().Add(expDuration).Unix()

	_, tokenString, err := j.tokenAuth.Encode(actorClaims(actor, TokenTypeAccess, expiresAt))
	return tokenString, expiresAt, err
}

// GenerateSSEToken generates a short-lived token for EventSource clients,
// which cannot send an Authorization header.
func (j *JWTService) GenerateSSEToken(actor user.Actor) (token string, expiresIn int, err error) {
	expiresAt := j.now().Add(sseTokenTTL).Unix()

	_, tokenString, err := j.tokenAuth.Encode(actorClaims(actor, TokenTypeSSE, expiresAt))
	if err != nil {
		return "", 0, err
	}
	return tokenString, int(sseTokenTTL / time.Second), nil
}

// ValidateSSEToken validates an SSE token and returns the actor it was issued to.
func (j *JWTService) ValidateSSEToken(tokenString string) (user.Actor, error) {
	token, err := j.tokenAuth.Decode(tokenString)
	if err != nil {
		return user.Actor{}, err
	}
	if err := jwt.Validate(token, jwt.WithAcceptableSkew(30*time.Second)); err != nil {
		return user.Actor{}, err
	}

	tokenType, ok := token.Get("type")
	if !ok || tokenType != TokenTypeSSE {
		return user.Actor{}, jwt.ErrInvalidJWT()
	}

	claims, err := token.AsMap(context.Background())
	if err != nil {
		return user.Actor{}, err
	}
	return ActorFromClaims(claims)
}

// ActorFromClaims builds the actor carried by an access or SSE token.
func ActorFromClaims(claims map[string]interface{}) (user.Actor, error) {
	id, _ := claims["user_id"].(string)
	if id == "" {
		return user.Actor{}, ErrInvalidClaims
	}
	roleStr, _ := claims["role"].(string)
	role := user.Role(roleStr)
	if !role.Valid() {
		return user.Actor{}, user.ErrInvalidRole
	}
	name, _ := claims["name"].(string)
	return user.Actor{ID: id, Name: name, Role: role}, nil
}

func actorClaims(actor user.Actor, tokenType string, expiresAt int64) map[string]interface{} {
	return map[string]interface{}{
		"user_id": actor.ID,
		"name":    actor.Name,
		"role":    string(actor.Role),
		"type":    tokenType,
		"exp":     expiresAt,
	}
}
