package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Skotchmaster/favcart/internal/cache"
	"github.com/Skotchmaster/favcart/internal/hash"
	"github.com/Skotchmaster/favcart/internal/imagestore"
	"github.com/Skotchmaster/favcart/internal/logging"
	"github.com/Skotchmaster/favcart/internal/models"
	"github.com/Skotchmaster/favcart/internal/repo"
	"github.com/Skotchmaster/favcart/internal/tokens"
)

const MinPasswordLen = 6

type AuthService struct {
	Repo   *repo.GormRepo
	Tokens *tokens.Issuer
	Images *imagestore.Store
	// Products is invalidated on renames since listings embed the seller
	// name. Optional.
	Products cache.ProductCache
}

type Session struct {
	User   *models.User
	Tokens *tokens.Pair
}

// Profile is the authenticated user with the ids held in their cart and
// favorites.
type Profile struct {
	User      *models.User
	Cart      []models.CartItem
	Favorites []uuid.UUID
}

type ProfileUpdate struct {
	FullName   *string
	ProfilePic *string
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *AuthService) SignUp(ctx context.Context, fullName, email, password string) (*Session, error) {
	l := logging.FromContext(ctx).With("svc", "auth.signup")

	fullName = strings.TrimSpace(fullName)
	email = normalizeEmail(email)
	if fullName == "" || email == "" || password == "" {
		return nil, fmt.Errorf("full name, email and password are required: %w", ErrValidation)
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, fmt.Errorf("invalid email: %w", ErrValidation)
	}
	if len(password) < MinPasswordLen {
		return nil, fmt.Errorf("password must be at least %d characters: %w", MinPasswordLen, ErrValidation)
	}

	pwHash, err := hash.HashPassword(password)
	if err != nil {
		l.Error("signup_error", "reason", "cannot hash the password", "error", err)
		return nil, err
	}

	user := &models.User{
		FullName:     fullName,
		Email:        email,
		PasswordHash: pwHash,
	}
	if err := s.Repo.CreateUserIfNotExists(ctx, user); err != nil {
		if errors.Is(err, repo.ErrUserAlreadyExist) {
			return nil, fmt.Errorf("user with this email already exists: %w", ErrConflict)
		}
		return nil, err
	}

	pair, err := s.issue(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	return &Session{User: user, Tokens: pair}, nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*Session, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, fmt.Errorf("email and password are required: %w", ErrValidation)
	}

	user, err := s.Repo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !hash.CheckPassword(user.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}

	pair, err := s.issue(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	return &Session{User: user, Tokens: pair}, nil
}

// Refresh rotates a refresh token. The presented token is revoked, so a
// replayed token fails.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*tokens.Pair, error) {
	l := logging.FromContext(ctx).With("svc", "auth.refresh")

	if refreshToken == "" {
		return nil, fmt.Errorf("refresh token missing: %w", ErrUnauthenticated)
	}
	claims, err := tokens.RefreshClaimsFromToken(refreshToken, s.Tokens.RefreshSecret)
	if err != nil {
		return nil, fmt.Errorf("invalid refresh token: %v: %w", err, ErrUnauthenticated)
	}
	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, fmt.Errorf("invalid subject: %w", ErrUnauthenticated)
	}

	pair, err := s.Tokens.Issue(userID.String())
	if err != nil {
		return nil, err
	}

	next := &models.RefreshToken{
		Token:     hash.Sha256Hex(pair.RefreshToken),
		UserID:    userID,
		JTI:       pair.JTI,
		ExpiresAt: pair.RefreshExp.Unix(),
	}
	if err := s.Repo.RotateRefreshToken(ctx, claims.ID, hash.Sha256Hex(refreshToken), next); err != nil {
		if errors.Is(err, repo.ErrTokenRevoked) || errors.Is(err, gorm.ErrRecordNotFound) {
			l.Warn("refresh_rejected", "jti", claims.ID, "error", err)
			return nil, fmt.Errorf("refresh token expired or revoked: %w", ErrUnauthenticated)
		}
		return nil, err
	}
	return pair, nil
}

// LogOut revokes the refresh token. An empty token is not an error.
func (s *AuthService) LogOut(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}
	return s.Repo.RevokeRefreshToken(ctx, hash.Sha256Hex(refreshToken))
}

func (s *AuthService) Profile(ctx context.Context, userID uuid.UUID) (*Profile, error) {
	user, err := s.Repo.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("user not found: %w", ErrUnauthenticated)
		}
		return nil, err
	}
	cart, err := s.Repo.CartEntries(ctx, userID)
	if err != nil {
		return nil, err
	}
	favorites, err := s.Repo.ListFavorites(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &Profile{User: user, Cart: cart, Favorites: favorites}, nil
}

func (s *AuthService) UpdateProfile(ctx context.Context, userID uuid.UUID, in ProfileUpdate) (*Profile, error) {
	fields := map[string]any{}
	if in.FullName != nil {
		name := strings.TrimSpace(*in.FullName)
		if name == "" {
			return nil, fmt.Errorf("full name cannot be empty: %w", ErrValidation)
		}
		fields["full_name"] = name
	}
	if in.ProfilePic != nil {
		pic, err := s.Images.Resolve(ctx, "profiles", *in.ProfilePic)
		if err != nil {
			if errors.Is(err, imagestore.ErrInvalidImage) {
				return nil, fmt.Errorf("%v: %w", err, ErrValidation)
			}
			return nil, err
		}
		fields["profile_pic"] = pic
	}

	if _, err := s.Repo.UpdateUser(ctx, userID, fields); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("user not found: %w", ErrUnauthenticated)
		}
		return nil, err
	}
	if _, renamed := fields["full_name"]; renamed && s.Products != nil {
		if err := s.Products.Invalidate(ctx); err != nil {
			logging.FromContext(ctx).Warn("product_cache_invalidate_failed", "svc", "auth.update_profile", "error", err)
		}
	}
	return s.Profile(ctx, userID)
}

func (s *AuthService) issue(ctx context.Context, userID uuid.UUID) (*tokens.Pair, error) {
	pair, err := s.Tokens.Issue(userID.String())
	if err != nil {
		return nil, err
	}
	if err := s.Repo.AddRefreshToken(ctx, &models.RefreshToken{
		Token:     hash.Sha256Hex(pair.RefreshToken),
		UserID:    userID,
		JTI:       pair.JTI,
		ExpiresAt: pair.RefreshExp.Unix(),
	}); err != nil {
		return nil, err
	}
	return pair, nil
}
