package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"reviewhub/internal/httpapi/models"
	"reviewhub/internal/httpapi/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockAuthService mocks the AuthService interface
type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Signup(ctx context.Context, email, username string) error {
	args := m.Called(ctx, email, username)
	return args.Error(0)
}

func (m *MockAuthService) GetToken(ctx context.Context, username, code string) (string, error) {
	args := m.Called(ctx, username, code)
	return args.String(0), args.Error(1)
}

func (m *MockAuthService) Authenticate(ctx context.Context, tokenString string) (*models.User, error) {
	args := m.Called(ctx, tokenString)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func setupAuthRouter(authService service.AuthService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(OptionalAuth(authService))
	r.GET("/open", func(c *gin.Context) {
		user := CurrentUser(c)
		if user == nil {
			c.JSON(http.StatusOK, gin.H{"user": nil})
			return
		}
		c.JSON(http.StatusOK, gin.H{"user": user.Username})
	})
	r.GET("/private", RequireAuth(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user": CurrentUser(c).Username})
	})
	return r
}

func TestOptionalAuth_NoHeaderPassesAnonymous(t *testing.T) {
	mockAuthService := new(MockAuthService)
	router := setupAuthRouter(mockAuthService)

	req, _ := http.NewRequest("GET", "/open", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	mockAuthService.AssertNotCalled(t, "Authenticate", mock.Anything, mock.Anything)
}

func TestOptionalAuth_ValidToken(t *testing.T) {
	mockAuthService := new(MockAuthService)
	router := setupAuthRouter(mockAuthService)

	user := &models.User{ID: "u1", Username: "alice", Role: models.RoleUser}
	mockAuthService.On("Authenticate", mock.Anything, "good-token").Return(user, nil)

	req, _ := http.NewRequest("GET", "/open", nil)
	req.Header.Set("Authorization", "Bearer good-token")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "alice")
}

func TestOptionalAuth_BadTokenRejected(t *testing.T) {
	mockAuthService := new(MockAuthService)
	router := setupAuthRouter(mockAuthService)

	mockAuthService.On("Authenticate", mock.Anything, "bad-token").
		Return(nil, service.ErrInvalidToken)

	req, _ := http.NewRequest("GET", "/open", nil)
	req.Header.Set("Authorization", "Bearer bad-token")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	// A present but invalid token is an error, not an anonymous pass.
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestOptionalAuth_MalformedHeader(t *testing.T) {
	mockAuthService := new(MockAuthService)
	router := setupAuthRouter(mockAuthService)

	req, _ := http.NewRequest("GET", "/open", nil)
	req.Header.Set("Authorization", "Token abc")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	mockAuthService.AssertNotCalled(t, "Authenticate", mock.Anything, mock.Anything)
}

func TestRequireAuth_Anonymous(t *testing.T) {
	mockAuthService := new(MockAuthService)
	router := setupAuthRouter(mockAuthService)

	req, _ := http.NewRequest("GET", "/private", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireAuth_Authenticated(t *testing.T) {
	mockAuthService := new(MockAuthService)
	router := setupAuthRouter(mockAuthService)

	user := &models.User{ID: "u1", Username: "alice", Role: models.RoleUser}
	mockAuthService.On("Authenticate", mock.Anything, "good-token").Return(user, nil)

	req, _ := http.NewRequest("GET", "/private", nil)
	req.Header.Set("Authorization", "Bearer good-token")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}
