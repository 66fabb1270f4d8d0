package service

import (
	"context"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"

	"chirp/internal/auth"
	apperrors "chirp/internal/errors"
	"chirp/internal/model"
)

// MockUserRepository is a mock implementation of UserRepository.
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) EnsureIndexes(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUserRepository) Create(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*model.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) FindByLogin(ctx context.Context, username, email string) (*model.User, error) {
	args := m.Called(ctx, username, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) ExistsByLogin(ctx context.Context, username, email string) (bool, error) {
	args := m.Called(ctx, username, email)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) SetRefreshToken(ctx context.Context, id primitive.ObjectID, token string) error {
	args := m.Called(ctx, id, token)
	return args.Error(0)
}

func (m *MockUserRepository) UpdatePassword(ctx context.Context, id primitive.ObjectID, passwordHash string) error {
	args := m.Called(ctx, id, passwordHash)
	return args.Error(0)
}

// memoryBlacklist is an in-memory TokenBlacklist for tests.
type memoryBlacklist struct {
	mu     sync.Mutex
	tokens map[string]struct{}
}

func newMemoryBlacklist() *memoryBlacklist {
	return &memoryBlacklist{tokens: make(map[string]struct{})}
}

func (b *memoryBlacklist) Add(ctx context.Context, token string, ttl time.Duration) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.tokens[token] = struct{}{}
	return nil
}

func (b *memoryBlacklist) Contains(ctx context.Context, token string) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.tokens[token]
	return ok, nil
}

func newTestJWTService() *auth.JWTService {
	return auth.NewJWTService("access-secret", "refresh-secret", 15*time.Minute, 7*24*time.Hour)
}

func validRegisterInput() RegisterInput {
	return RegisterInput{
		FullName: "Alice",
		Email:    "a@x.com",
		Password: "p1",
		Username: "alice",
		Avatar:   "img1",
	}
}

func TestAuthService_Register(t *testing.T) {
	tests := []struct {
		name           string
		mutate         func(*RegisterInput)
		setupMock      func(*MockUserRepository)
		expectedStatus int
	}{
		{
			name: "successful registration",
			setupMock: func(m *MockUserRepository) {
				m.On("ExistsByLogin", mock.Anything, "alice", "a@x.com").Return(false, nil)
				m.On("Create", mock.Anything, mock.AnythingOfType("*model.User")).Return(nil)
			},
		},
		{
			name: "duplicate username or email",
			setupMock: func(m *MockUserRepository) {
				m.On("ExistsByLogin", mock.Anything, "alice", "a@x.com").Return(true, nil)
			},
			expectedStatus: http.StatusConflict,
		},
		{
			name:           "blank full name",
			mutate:         func(in *RegisterInput) { in.FullName = "" },
			setupMock:      func(m *MockUserRepository) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "blank password",
			mutate:         func(in *RegisterInput) { in.Password = "" },
			setupMock:      func(m *MockUserRepository) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "missing avatar",
			mutate:         func(in *RegisterInput) { in.Avatar = "" },
			setupMock:      func(m *MockUserRepository) {},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockUserRepository)
			tt.setupMock(mockRepo)

			in := validRegisterInput()
			if tt.mutate != nil {
				tt.mutate(&in)
			}

			service := NewAuthService(mockRepo, newTestJWTService(), newMemoryBlacklist())
			user, err := service.Register(context.Background(), in)

			if tt.expectedStatus != 0 {
				assert.Error(t, err)
				assert.Equal(t, tt.expectedStatus, apperrors.From(err).StatusCode)
				assert.Nil(t, user)
			} else {
				assert.NoError(t, err)
				assert.NotNil(t, user)
				assert.Equal(t, "alice", user.Username)
				assert.Equal(t, "a@x.com", user.Email)
				// The password is stored hashed, never as plaintext.
				assert.NotEqual(t, "p1", user.PasswordHash)
				assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("p1")))
			}

			mockRepo.AssertExpectations(t)
		})
	}
}

func TestAuthService_Register_RacedDuplicate(t *testing.T) {
	mockRepo := new(MockUserRepository)
	mockRepo.On("ExistsByLogin", mock.Anything, "alice", "a@x.com").Return(false, nil)
	mockRepo.On("Create", mock.Anything, mock.AnythingOfType("*model.User")).Return(mongo.WriteException{
		WriteErrors: mongo.WriteErrors{{Code: 11000}},
	})

	service := NewAuthService(mockRepo, newTestJWTService(), newMemoryBlacklist())
	user, err := service.Register(context.Background(), validRegisterInput())

	assert.Error(t, err)
	assert.Equal(t, http.StatusConflict, apperrors.From(err).StatusCode)
	assert.Nil(t, user)
	mockRepo.AssertExpectations(t)
}

func TestAuthService_Login(t *testing.T) {
	userID := primitive.NewObjectID()
	hashed, _ := bcrypt.GenerateFromPassword([]byte("password123"), 10)

	tests := []struct {
		name           string
		username       string
		password       string
		setupMock      func(*MockUserRepository)
		expectedStatus int
	}{
		{
			name:     "successful login",
			username: "alice",
			password: "password123",
			setupMock: func(m *MockUserRepository) {
				m.On("FindByLogin", mock.Anything, "alice", "").Return(&model.User{
					ID:           userID,
					Username:     "alice",
					PasswordHash: string(hashed),
				}, nil)
				m.On("SetRefreshToken", mock.Anything, userID, mock.AnythingOfType("string")).Return(nil)
			},
		},
		{
			name:     "wrong password",
			username: "alice",
			password: "wrong",
			setupMock: func(m *MockUserRepository) {
				m.On("FindByLogin", mock.Anything, "alice", "").Return(&model.User{
					ID:           userID,
					Username:     "alice",
					PasswordHash: string(hashed),
				}, nil)
			},
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:     "user not found",
			username: "nobody",
			password: "password123",
			setupMock: func(m *MockUserRepository) {
				m.On("FindByLogin", mock.Anything, "nobody", "").Return(nil, mongo.ErrNoDocuments)
			},
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "blank username and email",
			username:       "",
			password:       "password123",
			setupMock:      func(m *MockUserRepository) {},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockUserRepository)
			tt.setupMock(mockRepo)

			service := NewAuthService(mockRepo, newTestJWTService(), newMemoryBlacklist())
			user, pair, err := service.Login(context.Background(), tt.username, "", tt.password)

			if tt.expectedStatus != 0 {
				assert.Error(t, err)
				assert.Equal(t, tt.expectedStatus, apperrors.From(err).StatusCode)
				assert.Nil(t, user)
				assert.Nil(t, pair)
			} else {
				assert.NoError(t, err)
				assert.NotNil(t, user)
				assert.NotEmpty(t, pair.AccessToken)
				assert.NotEmpty(t, pair.RefreshToken)
				// The stored refresh token equals the returned one.
				mockRepo.AssertCalled(t, "SetRefreshToken", mock.Anything, userID, pair.RefreshToken)
				assert.Equal(t, pair.RefreshToken, user.RefreshToken)
			}

			mockRepo.AssertExpectations(t)
		})
	}
}

func TestAuthService_Refresh_RotatesToken(t *testing.T) {
	userID := primitive.NewObjectID()
	jwtService := newTestJWTService()

	stored, err := jwtService.GenerateRefreshToken(userID.Hex())
	assert.NoError(t, err)

	var rotated string
	mockRepo := new(MockUserRepository)
	mockRepo.On("FindByID", mock.Anything, userID).Return(&model.User{ID: userID, RefreshToken: stored}, nil)
	mockRepo.On("SetRefreshToken", mock.Anything, userID, mock.AnythingOfType("string")).
		Run(func(args mock.Arguments) { rotated = args.String(2) }).
		Return(nil)

	service := NewAuthService(mockRepo, jwtService, newMemoryBlacklist())
	pair, err := service.Refresh(context.Background(), stored)

	assert.NoError(t, err)
	assert.NotEmpty(t, pair.AccessToken)
	assert.Equal(t, pair.RefreshToken, rotated)
	mockRepo.AssertExpectations(t)
}

func TestAuthService_Refresh_Unauthorized(t *testing.T) {
	userID := primitive.NewObjectID()
	jwtService := newTestJWTService()

	stored, err := jwtService.GenerateRefreshToken(userID.Hex())
	assert.NoError(t, err)
	// A different, still-valid token for the same user: signature passes but
	// it is not the stored value anymore.
	time.Sleep(1100 * time.Millisecond)
	presented, err := jwtService.GenerateRefreshToken(userID.Hex())
	assert.NoError(t, err)
	assert.NotEqual(t, stored, presented)

	tests := []struct {
		name      string
		token     string
		setupMock func(*MockUserRepository)
	}{
		{
			name:      "missing token",
			token:     "",
			setupMock: func(m *MockUserRepository) {},
		},
		{
			name:      "garbage token",
			token:     "not-a-token",
			setupMock: func(m *MockUserRepository) {},
		},
		{
			name:  "rotated token",
			token: presented,
			setupMock: func(m *MockUserRepository) {
				m.On("FindByID", mock.Anything, userID).Return(&model.User{ID: userID, RefreshToken: stored}, nil)
			},
		},
		{
			name:  "user not found",
			token: presented,
			setupMock: func(m *MockUserRepository) {
				m.On("FindByID", mock.Anything, userID).Return(nil, mongo.ErrNoDocuments)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockUserRepository)
			tt.setupMock(mockRepo)

			service := NewAuthService(mockRepo, jwtService, newMemoryBlacklist())
			pair, err := service.Refresh(context.Background(), tt.token)

			assert.Error(t, err)
			assert.Equal(t, http.StatusUnauthorized, apperrors.From(err).StatusCode)
			assert.Nil(t, pair)
			mockRepo.AssertExpectations(t)
		})
	}
}

func TestAuthService_Logout(t *testing.T) {
	userID := primitive.NewObjectID()
	jwtService := newTestJWTService()
	blacklist := newMemoryBlacklist()

	accessToken, err := jwtService.GenerateAccessToken(userID.Hex())
	assert.NoError(t, err)

	mockRepo := new(MockUserRepository)
	mockRepo.On("SetRefreshToken", mock.Anything, userID, "").Return(nil)

	service := NewAuthService(mockRepo, jwtService, blacklist)
	err = service.Logout(context.Background(), userID.Hex(), accessToken)

	assert.NoError(t, err)
	revoked, _ := blacklist.Contains(context.Background(), accessToken)
	assert.True(t, revoked)
	mockRepo.AssertExpectations(t)
}

func TestAuthService_ChangePassword(t *testing.T) {
	userID := primitive.NewObjectID()
	hashed, _ := bcrypt.GenerateFromPassword([]byte("old-password"), 10)

	tests := []struct {
		name           string
		oldPassword    string
		newPassword    string
		setupMock      func(*MockUserRepository)
		expectedStatus int
	}{
		{
			name:        "successful change",
			oldPassword: "old-password",
			newPassword: "new-password",
			setupMock: func(m *MockUserRepository) {
				m.On("FindByID", mock.Anything, userID).Return(&model.User{ID: userID, PasswordHash: string(hashed)}, nil)
				m.On("UpdatePassword", mock.Anything, userID, mock.MatchedBy(func(hash string) bool {
					return bcrypt.CompareHashAndPassword([]byte(hash), []byte("new-password")) == nil
				})).Return(nil)
			},
		},
		{
			name:        "wrong old password",
			oldPassword: "wrong",
			newPassword: "new-password",
			setupMock: func(m *MockUserRepository) {
				m.On("FindByID", mock.Anything, userID).Return(&model.User{ID: userID, PasswordHash: string(hashed)}, nil)
			},
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "blank new password",
			oldPassword:    "old-password",
			newPassword:    "",
			setupMock:      func(m *MockUserRepository) {},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockUserRepository)
			tt.setupMock(mockRepo)

			service := NewAuthService(mockRepo, newTestJWTService(), newMemoryBlacklist())
			err := service.ChangePassword(context.Background(), userID.Hex(), tt.oldPassword, tt.newPassword)

			if tt.expectedStatus != 0 {
				assert.Error(t, err)
				assert.Equal(t, tt.expectedStatus, apperrors.From(err).StatusCode)
			} else {
				assert.NoError(t, err)
			}

			mockRepo.AssertExpectations(t)
		})
	}
}

func TestAuthService_VerifyAccess(t *testing.T) {
	userID := primitive.NewObjectID()
	jwtService := newTestJWTService()

	accessToken, err := jwtService.GenerateAccessToken(userID.Hex())
	assert.NoError(t, err)

	t.Run("valid token loads user", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		mockRepo.On("FindByID", mock.Anything, userID).Return(&model.User{ID: userID, Username: "alice"}, nil)

		service := NewAuthService(mockRepo, jwtService, newMemoryBlacklist())
		user, err := service.VerifyAccess(context.Background(), accessToken)

		assert.NoError(t, err)
		assert.Equal(t, "alice", user.Username)
		mockRepo.AssertExpectations(t)
	})

	t.Run("revoked token is rejected", func(t *testing.T) {
		blacklist := newMemoryBlacklist()
		_ = blacklist.Add(context.Background(), accessToken, time.Minute)

		service := NewAuthService(new(MockUserRepository), jwtService, blacklist)
		_, err := service.VerifyAccess(context.Background(), accessToken)

		assert.Error(t, err)
		assert.Equal(t, http.StatusUnauthorized, apperrors.From(err).StatusCode)
	})

	t.Run("missing user is rejected", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		mockRepo.On("FindByID", mock.Anything, userID).Return(nil, mongo.ErrNoDocuments)

		service := NewAuthService(mockRepo, jwtService, newMemoryBlacklist())
		_, err := service.VerifyAccess(context.Background(), accessToken)

		assert.Error(t, err)
		assert.Equal(t, http.StatusUnauthorized, apperrors.From(err).StatusCode)
	})
}
