package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/aman-churiwal/tutor-gateway/internal/apperr"
	"github.com/aman-churiwal/tutor-gateway/internal/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var errInvalidCredentials = fmt.Errorf("invalid credentials: %w", apperr.ErrUnauthorized)

type UserStore interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	FindUserByUsername(ctx context.Context, username string) (*models.User, error)
	FindUserByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, selectedClass, avatar *string) (*models.User, error)
}

// TokenDenylist remembers revoked token ids until they would have expired.
type TokenDenylist interface {
	Revoke(ctx context.Context, tokenID string, ttl time.Duration) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

type Claims struct {
	UserID uuid.UUID
	Role   string
	ID     string
	Expiry time.Time
}

type AuthService struct {
	repo      UserStore
	denylist  TokenDenylist
	jwtSecret []byte // Stored in env (JWT_SECRET)
	jwtExpiry time.Duration
	now       func() time.Time
}

// denylist may be nil, in which case logout only discards the token client side.
func NewAuthService(repo UserStore, denylist TokenDenylist, secret string, expiry time.Duration) *AuthService {
	return &AuthService{
		repo:      repo,
		denylist:  denylist,
		jwtSecret: []byte(secret),
		jwtExpiry: expiry,
		now:       time.Now,
	}
}

type RegisterRequest struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (r *RegisterRequest) Validate() error {
	r.Username = strings.TrimSpace(r.Username)
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))

	if len(r.Username) < 3 {
		return &apperr.ValidationError{Field: "username", Reason: "must be at least 3 characters"}
	}
	if _, err := mail.ParseAddress(r.Email); err != nil {
		return &apperr.ValidationError{Field: "email", Reason: "is not a valid address"}
	}
	if len(r.Password) < 6 {
		return &apperr.ValidationError{Field: "password", Reason: "must be at least 6 characters"}
	}
	return nil
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Creates a student account and signs them in
func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*models.User, string, error) {
	if err := req.Validate(); err != nil {
		return nil, "", err
	}

	existing, err := s.repo.FindUserByUsername(ctx, req.Username)
	if err != nil {
		return nil, "", err
	}
	if existing != nil {
		return nil, "", fmt.Errorf("username %w", apperr.ErrConflict)
	}

	existing, err = s.repo.FindUserByEmail(ctx, req.Email)
	if err != nil {
		return nil, "", err
	}
	if existing != nil {
		return nil, "", fmt.Errorf("email %w", apperr.ErrConflict)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Username:         req.Username,
		Email:            req.Email,
		PasswordHash:     string(hashedPassword),
		Role:             models.RoleStudent,
		SubscriptionTier: models.TierFree,
		Level:            1,
		SelectedClass:    "11",
		CharacterAvatar:  "scholar",
	}
	if err := s.repo.CreateUser(ctx, user); err != nil {
		return nil, "", err
	}

	token, err := s.issue(user)
	if err != nil {
		return nil, "", err
	}

	return user, token, nil
}

// Authenticates a user and returns a JWT token
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*models.User, string, error) {
	user, err := s.repo.FindUserByUsername(ctx, strings.TrimSpace(req.Username))
	if err != nil {
		return nil, "", err
	}
	if user == nil {
		return nil, "", errInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, "", errInvalidCredentials
	}

	token, err := s.issue(user)
	if err != nil {
		return nil, "", err
	}

	return user, token, nil
}

func (s *AuthService) issue(user *models.User) (string, error) {
	now := s.now()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": user.ID.String(),
		"role":    user.Role,
		"jti":     uuid.NewString(),
		"exp":     now.Add(s.jwtExpiry).Unix(),
		"iat":     now.Unix(),
	})

	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}

	return tokenString, nil
}

// Validates a JWT token and returns its claims. Revoked tokens are rejected.
func (s *AuthService) ValidateToken(ctx context.Context, tokenString string) (*Claims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", apperr.ErrUnauthorized, err)
	}

	mapClaims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token: %w", apperr.ErrUnauthorized)
	}

	claims, err := parseClaims(mapClaims)
	if err != nil {
		return nil, err
	}

	if s.denylist != nil && claims.ID != "" {
		revoked, err := s.denylist.IsRevoked(ctx, claims.ID)
		if err != nil {
			return nil, err
		}
		if revoked {
			return nil, fmt.Errorf("token revoked: %w", apperr.ErrUnauthorized)
		}
	}

	return claims, nil
}

func parseClaims(mc jwt.MapClaims) (*Claims, error) {
	raw, _ := mc["user_id"].(string)
	userID, err := uuid.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid subject: %w", apperr.ErrUnauthorized)
	}

	claims := &Claims{UserID: userID}
	claims.Role, _ = mc["role"].(string)
	claims.ID, _ = mc["jti"].(string)

	exp, err := mc.GetExpirationTime()
	if err == nil && exp != nil {
		claims.Expiry = exp.Time
	}

	return claims, nil
}

// Revokes the token for the rest of its lifetime
func (s *AuthService) Logout(ctx context.Context, claims *Claims) error {
	if s.denylist == nil || claims == nil || claims.ID == "" {
		return nil
	}

	ttl := claims.Expiry.Sub(s.now())
	if ttl <= 0 {
		return nil
	}

	return s.denylist.Revoke(ctx, claims.ID, ttl)
}

func (s *AuthService) Me(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, err := s.repo.GetUserByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, fmt.Errorf("user %w", apperr.ErrNotFound)
	}
	return user, nil
}

type ProfileUpdate struct {
	SelectedClass   *string `json:"selectedClass"`
	CharacterAvatar *string `json:"characterAvatar"`
}

var supportedClasses = map[string]bool{"11": true, "12": true}

func (s *AuthService) UpdateProfile(ctx context.Context, id uuid.UUID, update ProfileUpdate) (*models.User, error) {
	if update.SelectedClass != nil && !supportedClasses[*update.SelectedClass] {
		return nil, &apperr.ValidationError{Field: "selectedClass", Reason: "must be 11 or 12"}
	}
	if update.CharacterAvatar != nil && strings.TrimSpace(*update.CharacterAvatar) == "" {
		return nil, apperr.Required("characterAvatar")
	}

	user, err := s.repo.UpdateProfile(ctx, id, update.SelectedClass, update.CharacterAvatar)
	if errors.Is(err, apperr.ErrNotFound) {
		return nil, err
	}
	return user, err
}
