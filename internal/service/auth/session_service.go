package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"ideaboard/internal/domain"
	"ideaboard/internal/service"
	"ideaboard/pkg/logger"
	"ideaboard/pkg/redis"
)

const issuer = "ideaboard"

var (
	_ service.SessionService = (*SessionService)(nil)
	_ service.LoginService   = (*GoogleLogin)(nil)
)

var (
	// ErrInvalidToken covers malformed, tampered and expired tokens
	ErrInvalidToken = errors.New("invalid session token")

	// ErrSessionRevoked is returned for a well-formed token whose session ended
	ErrSessionRevoked = errors.New("session revoked")
)

type sessionClaims struct {
	Email string `json:"email,omitempty"`
	Name  string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

// SessionService issues HS256 session tokens. When Redis is available every
// session id is also recorded there so logout can revoke it before expiry.
type SessionService struct {
	secret []byte
	ttl    time.Duration
	redis  *redis.Client
	logger *logger.Logger
	now    func() time.Time
}

// NewSessionService creates a session service. redisClient may be nil, in
// which case tokens stay valid until they expire.
func NewSessionService(secret string, ttl time.Duration, redisClient *redis.Client, logger *logger.Logger) *SessionService {
	return &SessionService{
		secret: []byte(secret),
		ttl:    ttl,
		redis:  redisClient,
		logger: logger.Named("sessions"),
		now:    time.Now,
	}
}

// Issue signs a token for user and records the session
func (s *SessionService) Issue(ctx context.Context, user *domain.User) (string, time.Time, error) {
	now := s.now()
	expiresAt := now.Add(s.ttl)
	sessionID := uuid.NewString()

	claims := sessionClaims{
		Email: user.Email,
		Name:  user.Name,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   user.ID,
			ID:        sessionID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign session token: %w", err)
	}

	if s.redis != nil {
		if err := s.redis.Set(ctx, s.redis.KeyBuilder.KeySession(sessionID), user.ID, s.ttl); err != nil {
			return "", time.Time{}, fmt.Errorf("failed to store session: %w", err)
		}
	}

	s.logger.WithField("user_id", user.ID).Debug("Session issued")
	return token, expiresAt, nil
}

// Resolve validates the token and returns the caller's identity
func (s *SessionService) Resolve(ctx context.Context, tokenString string) (domain.Identity, error) {
	claims := &sessionClaims{}
	keyFunc := func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	}
	token, err := jwt.ParseWithClaims(tokenString, claims, keyFunc,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !token.Valid {
		return domain.Identity{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.Subject == "" || claims.ID == "" {
		return domain.Identity{}, fmt.Errorf("%w: missing subject or session id", ErrInvalidToken)
	}

	if s.redis != nil {
		n, err := s.redis.Exists(ctx, s.redis.KeyBuilder.KeySession(claims.ID))
		if err != nil {
			return domain.Identity{}, fmt.Errorf("failed to look up session: %w", err)
		}
		if n == 0 {
			return domain.Identity{}, ErrSessionRevoked
		}
	}

	return domain.Identity{
		UserID:    claims.Subject,
		Email:     claims.Email,
		Name:      claims.Name,
		SessionID: claims.ID,
	}, nil
}

// Revoke deletes the session record
func (s *SessionService) Revoke(ctx context.Context, identity domain.Identity) error {
	if s.redis == nil || identity.SessionID == "" {
		return nil
	}
	if err := s.redis.Delete(ctx, s.redis.KeyBuilder.KeySession(identity.SessionID)); err != nil {
		return fmt.Errorf("failed to revoke session: %w", err)
	}
	s.logger.WithField("user_id", identity.UserID).Debug("Session revoked")
	return nil
}

