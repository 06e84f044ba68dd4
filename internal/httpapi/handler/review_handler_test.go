package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"reviewhub/internal/httpapi/dto"
	"reviewhub/internal/httpapi/models"
	"reviewhub/internal/httpapi/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockReviewService mocks the ReviewService interface
type MockReviewService struct {
	mock.Mock
}

func (m *MockReviewService) List(ctx context.Context, titleID int64, page, pageSize int) (*dto.PaginatedReviewResponse, error) {
	args := m.Called(ctx, titleID, page, pageSize)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.PaginatedReviewResponse), args.Error(1)
}

func (m *MockReviewService) Get(ctx context.Context, titleID, reviewID int64) (*models.Review, error) {
	args := m.Called(ctx, titleID, reviewID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Review), args.Error(1)
}

func (m *MockReviewService) Create(ctx context.Context, titleID int64, author *models.User, req dto.CreateReviewRequest) (*dto.ReviewResponse, error) {
	args := m.Called(ctx, titleID, author, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ReviewResponse), args.Error(1)
}

func (m *MockReviewService) Update(ctx context.Context, titleID, reviewID int64, req dto.UpdateReviewRequest) (*dto.ReviewResponse, error) {
	args := m.Called(ctx, titleID, reviewID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ReviewResponse), args.Error(1)
}

func (m *MockReviewService) Delete(ctx context.Context, titleID, reviewID int64) error {
	args := m.Called(ctx, titleID, reviewID)
	return args.Error(0)
}

func storedReview() *models.Review {
	return &models.Review{
		ID:       10,
		TitleID:  1,
		AuthorID: "author-id",
		Author:   models.User{ID: "author-id", Username: "alice"},
		Text:     "great",
		Score:    9,
	}
}

func patchReviewAs(t *testing.T, actor *models.User) (*MockReviewService, int) {
	t.Helper()
	mockReviewService := new(MockReviewService)
	router, api := setupRouter(actor)
	NewReviewHandler(mockReviewService).RegisterRoutes(api)

	mockReviewService.On("Get", mock.Anything, int64(1), int64(10)).Return(storedReview(), nil)
	mockReviewService.On("Update", mock.Anything, int64(1), int64(10), mock.AnythingOfType("dto.UpdateReviewRequest")).
		Return(&dto.ReviewResponse{ID: 10, Author: "alice", Text: "edited", Score: 8}, nil).
		Maybe()

	text := "edited"
	w := doJSON(router, "PATCH", "/api/v1/titles/1/reviews/10", dto.UpdateReviewRequest{Text: &text})
	return mockReviewService, w.Code
}

func TestReviewPatch_Anonymous(t *testing.T) {
	mockReviewService := new(MockReviewService)
	router, api := setupRouter(nil)
	NewReviewHandler(mockReviewService).RegisterRoutes(api)

	text := "edited"
	w := doJSON(router, "PATCH", "/api/v1/titles/1/reviews/10", dto.UpdateReviewRequest{Text: &text})

	// Collection policy fails before the review is even resolved.
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	mockReviewService.AssertNotCalled(t, "Get", mock.Anything, mock.Anything, mock.Anything)
}

func TestReviewPatch_OtherUserForbidden(t *testing.T) {
	other := &models.User{ID: "other-id", Username: "bob", Role: models.RoleUser}
	mockReviewService, code := patchReviewAs(t, other)

	assert.Equal(t, http.StatusForbidden, code)
	mockReviewService.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestReviewPatch_Author(t *testing.T) {
	author := &models.User{ID: "author-id", Username: "alice", Role: models.RoleUser}
	_, code := patchReviewAs(t, author)

	assert.Equal(t, http.StatusOK, code)
}

func TestReviewPatch_Moderator(t *testing.T) {
	moderator := &models.User{ID: "m1", Username: "mod", Role: models.RoleModerator}
	_, code := patchReviewAs(t, moderator)

	assert.Equal(t, http.StatusOK, code)
}

func TestReviewPatch_Admin(t *testing.T) {
	admin := &models.User{ID: "a1", Username: "root", Role: models.RoleAdmin}
	_, code := patchReviewAs(t, admin)

	assert.Equal(t, http.StatusOK, code)
}

func TestReviewPatch_MissingReviewIs404BeforePermission(t *testing.T) {
	other := &models.User{ID: "other-id", Username: "bob", Role: models.RoleUser}
	mockReviewService := new(MockReviewService)
	router, api := setupRouter(other)
	NewReviewHandler(mockReviewService).RegisterRoutes(api)

	mockReviewService.On("Get", mock.Anything, int64(1), int64(99)).Return(nil, service.ErrNotFound)

	text := "edited"
	w := doJSON(router, "PATCH", "/api/v1/titles/1/reviews/99", dto.UpdateReviewRequest{Text: &text})

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestReviewDelete_Author(t *testing.T) {
	author := &models.User{ID: "author-id", Username: "alice", Role: models.RoleUser}
	mockReviewService := new(MockReviewService)
	router, api := setupRouter(author)
	NewReviewHandler(mockReviewService).RegisterRoutes(api)

	mockReviewService.On("Get", mock.Anything, int64(1), int64(10)).Return(storedReview(), nil)
	mockReviewService.On("Delete", mock.Anything, int64(1), int64(10)).Return(nil)

	w := doJSON(router, "DELETE", "/api/v1/titles/1/reviews/10", nil)

	assert.Equal(t, http.StatusNoContent, w.Code)
	mockReviewService.AssertExpectations(t)
}

func TestReviewCreateEndpoint_Anonymous(t *testing.T) {
	mockReviewService := new(MockReviewService)
	router, api := setupRouter(nil)
	NewReviewHandler(mockReviewService).RegisterRoutes(api)

	w := doJSON(router, "POST", "/api/v1/titles/1/reviews", dto.CreateReviewRequest{Text: "great", Score: 9})

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	mockReviewService.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestReviewCreateEndpoint_AuthenticatedUser(t *testing.T) {
	author := &models.User{ID: "author-id", Username: "alice", Role: models.RoleUser}
	mockReviewService := new(MockReviewService)
	router, api := setupRouter(author)
	NewReviewHandler(mockReviewService).RegisterRoutes(api)

	mockReviewService.On("Create", mock.Anything, int64(1), author, mock.AnythingOfType("dto.CreateReviewRequest")).
		Return(&dto.ReviewResponse{ID: 10, Author: "alice", Text: "great", Score: 9}, nil)

	w := doJSON(router, "POST", "/api/v1/titles/1/reviews", dto.CreateReviewRequest{Text: "great", Score: 9})

	assert.Equal(t, http.StatusCreated, w.Code)

	var response dto.ReviewResponse
	json.Unmarshal(w.Body.Bytes(), &response)
	assert.Equal(t, "alice", response.Author)
	mockReviewService.AssertExpectations(t)
}

func TestReviewCreateEndpoint_DuplicatePayload(t *testing.T) {
	author := &models.User{ID: "author-id", Username: "alice", Role: models.RoleUser}
	mockReviewService := new(MockReviewService)
	router, api := setupRouter(author)
	NewReviewHandler(mockReviewService).RegisterRoutes(api)

	mockReviewService.On("Create", mock.Anything, int64(1), author, mock.AnythingOfType("dto.CreateReviewRequest")).
		Return(nil, service.NewValidationError("title", "you have already reviewed this title"))

	w := doJSON(router, "POST", "/api/v1/titles/1/reviews", dto.CreateReviewRequest{Text: "again", Score: 5})

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var fields map[string][]string
	json.Unmarshal(w.Body.Bytes(), &fields)
	assert.Contains(t, fields, "title")
}

func TestReviewListEndpoint_Anonymous(t *testing.T) {
	mockReviewService := new(MockReviewService)
	router, api := setupRouter(nil)
	NewReviewHandler(mockReviewService).RegisterRoutes(api)

	mockReviewService.On("List", mock.Anything, int64(1), 1, 20).
		Return(&dto.PaginatedReviewResponse{
			Data:       []dto.ReviewResponse{{ID: 10, Author: "alice", Text: "great", Score: 9}},
			Pagination: dto.NewPagination(1, 1, 20),
		}, nil)

	w := doJSON(router, "GET", "/api/v1/titles/1/reviews", nil)

	assert.Equal(t, http.StatusOK, w.Code)

	var response dto.PaginatedReviewResponse
	json.Unmarshal(w.Body.Bytes(), &response)
	assert.Len(t, response.Data, 1)
}
