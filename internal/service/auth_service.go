package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"

	"chirp/internal/auth"
	apperrors "chirp/internal/errors"
	"chirp/internal/model"
	"chirp/internal/repository"
)

const bcryptCost = 10

// TokenPair bundles the access and refresh tokens issued for a session.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// RegisterInput carries the fields required to create a user. Avatar is the
// already-uploaded media URL; CoverImage may be empty.
type RegisterInput struct {
	FullName   string
	Email      string
	Password   string
	Username   string
	Avatar     string
	CoverImage string
}

// AuthService handles session operations.
type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*model.User, error)
	Login(ctx context.Context, username, email, password string) (*model.User, *TokenPair, error)
	Logout(ctx context.Context, userID, accessToken string) error
	Refresh(ctx context.Context, refreshToken string) (*TokenPair, error)
	ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) error
	VerifyAccess(ctx context.Context, accessToken string) (*model.User, error)
}

type authService struct {
	users      repository.UserRepository
	jwtService *auth.JWTService
	blacklist  auth.TokenBlacklist
}

// NewAuthService creates a new authentication service.
func NewAuthService(users repository.UserRepository, jwtService *auth.JWTService, blacklist auth.TokenBlacklist) AuthService {
	return &authService{
		users:      users,
		jwtService: jwtService,
		blacklist:  blacklist,
	}
}

// Register creates a new user with a hashed password. The returned user
// never carries the password or refresh token in its JSON form.
func (s *authService) Register(ctx context.Context, in RegisterInput) (*model.User, error) {
	switch {
	case in.FullName == "":
		return nil, apperrors.Validation("fullName is required")
	case in.Email == "":
		return nil, apperrors.Validation("email is required")
	case in.Password == "":
		return nil, apperrors.Validation("password is required")
	case in.Username == "":
		return nil, apperrors.Validation("username is required")
	case in.Avatar == "":
		return nil, apperrors.Validation("avatar is required")
	}

	username := strings.ToLower(in.Username)
	email := strings.ToLower(in.Email)

	exists, err := s.users.ExistsByLogin(ctx, username, email)
	if err != nil {
		return nil, fmt.Errorf("check user existence: %w", err)
	}
	if exists {
		return nil, apperrors.Conflict("user with username or email already exists")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &model.User{
		Username:     username,
		Email:        email,
		FullName:     in.FullName,
		PasswordHash: string(hashed),
		Avatar:       in.Avatar,
		CoverImage:   in.CoverImage,
	}

	if err := s.users.Create(ctx, user); err != nil {
		// The unique indexes are the authority; the existence pre-check can
		// lose a race.
		if mongo.IsDuplicateKeyError(err) {
			return nil, apperrors.Conflict("user with username or email already exists")
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	return user, nil
}

// Login verifies credentials and issues a new token pair, persisting the
// refresh token on the user record. Any previously stored refresh token is
// overwritten, so at most one session can refresh at a time.
func (s *authService) Login(ctx context.Context, username, email, password string) (*model.User, *TokenPair, error) {
	if username == "" && email == "" {
		return nil, nil, apperrors.Validation("username or email is required")
	}

	user, err := s.users.FindByLogin(ctx, strings.ToLower(username), strings.ToLower(email))
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil, apperrors.NotFound("user with username or email not found")
		}
		return nil, nil, fmt.Errorf("find user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, nil, apperrors.Unauthorized("invalid password")
	}

	pair, err := s.issueTokens(ctx, user.ID)
	if err != nil {
		return nil, nil, err
	}
	user.RefreshToken = pair.RefreshToken

	return user, pair, nil
}

// Logout clears the stored refresh token and revokes the presented access
// token until it would have expired.
func (s *authService) Logout(ctx context.Context, userID, accessToken string) error {
	id, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return apperrors.Unauthorized("invalid user id")
	}

	if err := s.users.SetRefreshToken(ctx, id, ""); err != nil {
		return fmt.Errorf("clear refresh token: %w", err)
	}

	if accessToken != "" {
		if exp, err := s.jwtService.AccessTokenExpiry(accessToken); err == nil {
			_ = s.blacklist.Add(ctx, accessToken, time.Until(exp))
		}
	}

	return nil
}

// Refresh verifies the presented refresh token against the single value
// stored on the user record and issues a brand-new pair. The old refresh
// token becomes permanently unusable even if not expired.
func (s *authService) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	if refreshToken == "" {
		return nil, apperrors.Unauthorized("refresh token is required")
	}

	userID, err := s.jwtService.VerifyRefreshToken(refreshToken)
	if err != nil {
		return nil, apperrors.Unauthorized("invalid refresh token")
	}
	id, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, apperrors.Unauthorized("invalid refresh token")
	}

	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperrors.Unauthorized("user not found")
		}
		return nil, fmt.Errorf("find user: %w", err)
	}

	// The presented token must exactly equal the stored value; anything
	// issued before the latest rotation fails here.
	if user.RefreshToken != refreshToken {
		return nil, apperrors.Unauthorized("refresh token has been rotated or revoked")
	}

	return s.issueTokens(ctx, user.ID)
}

// ChangePassword replaces the stored password hash after verifying the old
// password.
func (s *authService) ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) error {
	if newPassword == "" {
		return apperrors.Validation("newPassword is required")
	}

	id, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return apperrors.Unauthorized("invalid user id")
	}

	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return apperrors.NotFound("user not found")
		}
		return fmt.Errorf("find user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(oldPassword)); err != nil {
		return apperrors.Unauthorized("invalid password")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcryptCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	if err := s.users.UpdatePassword(ctx, user.ID, string(hashed)); err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	return nil
}

// VerifyAccess validates an access token and loads the user it identifies.
// Used by request authentication.
func (s *authService) VerifyAccess(ctx context.Context, accessToken string) (*model.User, error) {
	if accessToken == "" {
		return nil, apperrors.Unauthorized("unauthorized access")
	}

	if revoked, _ := s.blacklist.Contains(ctx, accessToken); revoked {
		return nil, apperrors.Unauthorized("token has been revoked")
	}

	userID, err := s.jwtService.VerifyAccessToken(accessToken)
	if err != nil {
		return nil, apperrors.Unauthorized("invalid access token")
	}
	id, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, apperrors.Unauthorized("invalid access token")
	}

	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, apperrors.Unauthorized("invalid access token")
	}
	return user, nil
}

// issueTokens mints a new token pair and persists the refresh token on the
// user record, overwriting any previous value.
func (s *authService) issueTokens(ctx context.Context, id primitive.ObjectID) (*TokenPair, error) {
	accessToken, err := s.jwtService.GenerateAccessToken(id.Hex())
	if err != nil {
		return nil, fmt.Errorf("generate access token: %w", err)
	}

	refreshToken, err := s.jwtService.GenerateRefreshToken(id.Hex())
	if err != nil {
		return nil, fmt.Errorf("generate refresh token: %w", err)
	}

	if err := s.users.SetRefreshToken(ctx, id, refreshToken); err != nil {
		return nil, fmt.Errorf("store refresh token: %w", err)
	}

	return &TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}
