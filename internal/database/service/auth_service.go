package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/iqmalr/test-bursa-efek/internal/config"
	"github.com/iqmalr/test-bursa-efek/internal/database"
	"github.com/iqmalr/test-bursa-efek/internal/database/models"
	"github.com/iqmalr/test-bursa-efek/internal/database/repository"
)

// AuthService defines the interface for authentication business logic.
//
// A single HS256 JWT is issued per login. Logout puts the token's jti on
// the revocation list, so unlike a purely stateless setup a logged-out
// token really stops validating. Refresh accepts tokens past their expiry
// as long as they are inside the refresh window and not revoked, and
// rotates the old jti onto the revocation list.
type AuthService interface {
	Register(ctx context.Context, name, email, password string) (*models.User, string, error)
	Login(ctx context.Context, email, password string) (*models.User, string, error)
	RefreshToken(ctx context.Context, tokenString string) (*models.User, string, error)
	Logout(ctx context.Context, tokenString string) error
	ValidateToken(ctx context.Context, tokenString string) (uint, error)
	CurrentUser(ctx context.Context, userID uint) (*models.User, error)
}

type authService struct {
	userRepo   repository.UserRepository
	tokenStore *database.TokenStore
	jwtSecret  string
	cfg        *config.Config
	logger     *slog.Logger
}

// NewAuthService creates a new authentication service instance
func NewAuthService(
	userRepo repository.UserRepository,
	tokenStore *database.TokenStore,
	cfg *config.Config,
	logger *slog.Logger,
) AuthService {
	return &authService{
		userRepo:   userRepo,
		tokenStore: tokenStore,
		jwtSecret:  cfg.JWTSecret,
		cfg:        cfg,
		logger:     logger,
	}
}

func (s *authService) Register(ctx context.Context, name, email, password string) (*models.User, string, error) {
	s.logger.Info("📝 [AuthService] Registration attempt", "email", email)

	// Check if email already exists
	existingUser, err := s.userRepo.FindByEmail(email)
	if err != nil && !errors.Is(err, repository.ErrUserNotFound) {
		s.logger.Error("❌ [AuthService] Database error", "error", err)
		return nil, "", err
	}

	if existingUser != nil {
		s.logger.Warn("⚠️ [AuthService] Email already registered", "email", email)
		return nil, "", ErrEmailAlreadyExists
	}

	// Hash password
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		s.logger.Error("❌ [AuthService] Failed to hash password", "error", err)
		return nil, "", err
	}

	user := &models.User{
		Name:     name,
		Email:    email,
		Password: string(hashedPassword),
	}

	if err := s.userRepo.Create(user); err != nil {
		s.logger.Error("❌ [AuthService] Failed to create user", "error", err)
		return nil, "", err
	}

	token, err := s.generateToken(user.ID)
	if err != nil {
		s.logger.Error("❌ [AuthService] Failed to generate token", "error", err)
		return nil, "", err
	}

	s.logger.Info("✅ [AuthService] User registered successfully", "user_id", user.ID)
	return user, token, nil
}

func (s *authService) Login(ctx context.Context, email, password string) (*models.User, string, error) {
	s.logger.Info("🔐 [AuthService] Login attempt", "email", email)

	// Find user
	user, err := s.userRepo.FindByEmail(email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			s.logger.Warn("⚠️ [AuthService] User not found", "email", email)
			return nil, "", ErrInvalidCredentials
		}
		s.logger.Error("❌ [AuthService] Database error", "error", err)
		return nil, "", err
	}

	// Verify password. Unknown email and wrong password surface the same
	// error so responses never reveal which field was wrong.
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		s.logger.Warn("⚠️ [AuthService] Invalid password", "email", email)
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.generateToken(user.ID)
	if err != nil {
		s.logger.Error("❌ [AuthService] Failed to generate token", "error", err)
		return nil, "", err
	}

	s.logger.Info("✅ [AuthService] User logged in successfully", "user_id", user.ID)
	return user, token, nil
}

func (s *authService) RefreshToken(ctx context.Context, tokenString string) (*models.User, string, error) {
	s.logger.Info("🔄 [AuthService] Token refresh attempt")

	// Signature must check out, but an expired token is still refreshable
	// inside the refresh window
	claims, err := s.parseClaims(tokenString, false)
	if err != nil {
		s.logger.Warn("⚠️ [AuthService] Invalid token on refresh", "error", err)
		return nil, "", ErrInvalidToken
	}

	windowEnd := claims.issuedAt.Add(time.Duration(s.cfg.RefreshWindow) * time.Second)
	if time.Now().After(windowEnd) {
		s.logger.Warn("⚠️ [AuthService] Refresh window elapsed", "user_id", claims.userID)
		return nil, "", ErrInvalidToken
	}

	revoked, err := s.tokenStore.IsRevoked(ctx, claims.jti)
	if err != nil {
		s.logger.Error("❌ [AuthService] Failed to check revocation list", "error", err)
		return nil, "", err
	}
	if revoked {
		s.logger.Warn("⚠️ [AuthService] Refresh with revoked token", "user_id", claims.userID)
		return nil, "", ErrInvalidToken
	}

	user, err := s.userRepo.FindByID(claims.userID)
	if err != nil {
		return nil, "", ErrInvalidToken
	}

	newToken, err := s.generateToken(user.ID)
	if err != nil {
		s.logger.Error("❌ [AuthService] Failed to generate new token", "error", err)
		return nil, "", err
	}

	// Rotate: the old token must not be refreshable a second time
	if err := s.tokenStore.Revoke(ctx, claims.jti, time.Until(windowEnd)); err != nil {
		s.logger.Error("❌ [AuthService] Failed to revoke old token", "error", err)
	}

	s.logger.Info("✅ [AuthService] Token refreshed successfully", "user_id", user.ID)
	return user, newToken, nil
}

func (s *authService) Logout(ctx context.Context, tokenString string) error {
	s.logger.Info("👋 [AuthService] Logout attempt")

	claims, err := s.parseClaims(tokenString, false)
	if err != nil {
		return ErrInvalidToken
	}

	// Keep the jti on the list until the token could no longer even be
	// refreshed, then let redis expire the entry
	windowEnd := claims.issuedAt.Add(time.Duration(s.cfg.RefreshWindow) * time.Second)
	if err := s.tokenStore.Revoke(ctx, claims.jti, time.Until(windowEnd)); err != nil {
		return err
	}

	s.logger.Info("✅ [AuthService] User logged out successfully", "user_id", claims.userID)
	return nil
}

func (s *authService) ValidateToken(ctx context.Context, tokenString string) (uint, error) {
	claims, err := s.parseClaims(tokenString, true)
	if err != nil {
		return 0, ErrInvalidToken
	}

	revoked, err := s.tokenStore.IsRevoked(ctx, claims.jti)
	if err != nil {
		s.logger.Error("❌ [AuthService] Failed to check revocation list", "error", err)
		return 0, err
	}
	if revoked {
		return 0, ErrInvalidToken
	}

	return claims.userID, nil
}

func (s *authService) CurrentUser(ctx context.Context, userID uint) (*models.User, error) {
	return s.userRepo.FindByID(userID)
}

// tokenClaims is the decoded payload of an issued token
type tokenClaims struct {
	userID   uint
	jti      string
	issuedAt time.Time
}

// parseClaims verifies the token signature and extracts the claims.
// With validateExpiry false an expired token still parses, which is what
// refresh and logout need.
func (s *authService) parseClaims(tokenString string, validateExpiry bool) (*tokenClaims, error) {
	var opts []jwt.ParserOption
	if !validateExpiry {
		opts = append(opts, jwt.WithoutClaimsValidation())
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(s.jwtSecret), nil
	}, opts...)

	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}

	userID, ok := claims["user_id"].(float64)
	if !ok {
		return nil, ErrInvalidToken
	}

	jti, ok := claims["jti"].(string)
	if !ok {
		return nil, ErrInvalidToken
	}

	iat, ok := claims["iat"].(float64)
	if !ok {
		return nil, ErrInvalidToken
	}

	return &tokenClaims{
		userID:   uint(userID),
		jti:      jti,
		issuedAt: time.Unix(int64(iat), 0),
	}, nil
}

func (s *authService) generateToken(userID uint) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"user_id": userID,
		"jti":     uuid.NewString(),
		"iat":     now.Unix(),
		"exp":     now.Add(time.Duration(s.cfg.TokenExpiration) * time.Second).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.jwtSecret))
}

// Service errors
var (
	ErrEmailAlreadyExists = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidToken       = errors.New("invalid or expired token")
)
