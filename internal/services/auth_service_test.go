package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type AuthServiceTestSuite struct {
	suite.Suite
	mockCache *MockCacheService
	service   AuthService
	adminID   uuid.UUID
}

func (suite *AuthServiceTestSuite) SetupTest() {
	suite.mockCache = &MockCacheService{}
	suite.service = NewAuthService(suite.mockCache, "test-secret-at-least-32-bytes-long", 900, 7*24*3600)
	suite.adminID = uuid.New()
}

func (suite *AuthServiceTestSuite) TearDownTest() {
	suite.mockCache.AssertExpectations(suite.T())
}

func TestAuthServiceTestSuite(t *testing.T) {
	suite.Run(t, new(AuthServiceTestSuite))
}

func (suite *AuthServiceTestSuite) TestGenerateTokens_RoundTrip() {
	suite.mockCache.On("SetString", mock.Anything, mock.AnythingOfType("string"), suite.adminID.String(), 7*24*time.Hour).Return(nil).Once()

	tokens, err := suite.service.GenerateTokens(context.Background(), suite.adminID)

	assert.NoError(suite.T(), err)
	assert.NotEmpty(suite.T(), tokens.AccessToken)
	assert.NotEmpty(suite.T(), tokens.RefreshToken)
	assert.Equal(suite.T(), "Bearer", tokens.TokenType)
	assert.Equal(suite.T(), 900, tokens.ExpiresIn)

	claims, err := suite.service.ValidateToken(context.Background(), tokens.AccessToken)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), suite.adminID.String(), claims.AdminID)
	assert.Equal(suite.T(), "admin", claims.Role)
	assert.Equal(suite.T(), "indumart-auth", claims.Issuer)
}

func (suite *AuthServiceTestSuite) TestValidateToken_WrongSecret() {
	suite.mockCache.On("SetString", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil).Once()

	other := NewAuthService(suite.mockCache, "a-completely-different-signing-secret", 900, 3600)
	tokens, err := other.GenerateTokens(context.Background(), suite.adminID)
	assert.NoError(suite.T(), err)

	_, err = suite.service.ValidateToken(context.Background(), tokens.AccessToken)
	assert.Error(suite.T(), err)
}

func (suite *AuthServiceTestSuite) TestValidateToken_Garbage() {
	_, err := suite.service.ValidateToken(context.Background(), "not.a.jwt")
	assert.Error(suite.T(), err)
}

func (suite *AuthServiceTestSuite) TestRefreshToken_RotatesSingleUse() {
	var storedKey string
	suite.mockCache.On("SetString", mock.Anything, mock.AnythingOfType("string"), suite.adminID.String(), mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		storedKey = args.String(1)
	}).Once()

	tokens, err := suite.service.GenerateTokens(context.Background(), suite.adminID)
	assert.NoError(suite.T(), err)

	// The presented token is deleted before the new pair is issued.
	suite.mockCache.On("GetString", mock.Anything, storedKey).Return(suite.adminID.String(), nil).Once()
	suite.mockCache.On("Delete", mock.Anything, storedKey).Return(nil).Once()
	suite.mockCache.On("SetString", mock.Anything, mock.AnythingOfType("string"), suite.adminID.String(), mock.Anything).Return(nil).Once()

	refreshed, err := suite.service.RefreshToken(context.Background(), tokens.RefreshToken)
	assert.NoError(suite.T(), err)
	assert.NotEqual(suite.T(), tokens.RefreshToken, refreshed.RefreshToken)
}

func (suite *AuthServiceTestSuite) TestRefreshToken_UnknownToken() {
	suite.mockCache.On("GetString", mock.Anything, mock.AnythingOfType("string")).Return("", nil).Once()

	_, err := suite.service.RefreshToken(context.Background(), "unknown-token")
	assert.Error(suite.T(), err)
	assert.Contains(suite.T(), err.Error(), "invalid or expired")
}

func (suite *AuthServiceTestSuite) TestRefreshTokenKey_IsHashedNotRaw() {
	token := "plaintext-refresh-token"
	key := refreshTokenKey(token)

	assert.NotContains(suite.T(), key, token)
	assert.Contains(suite.T(), key, "indumart:refresh:")
}
