package service

import (
	"context"
	"testing"
	"time"

	"reviewhub/internal/httpapi/dto"
	"reviewhub/internal/httpapi/models"
	"reviewhub/internal/httpapi/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"
)

type titleServiceMocks struct {
	titleRepo    *MockTitleRepository
	categoryRepo *MockCategoryRepository
	genreRepo    *MockGenreRepository
	reviewRepo   *MockReviewRepository
}

func newTestTitleService() (TitleService, titleServiceMocks) {
	m := titleServiceMocks{
		titleRepo:    new(MockTitleRepository),
		categoryRepo: new(MockCategoryRepository),
		genreRepo:    new(MockGenreRepository),
		reviewRepo:   new(MockReviewRepository),
	}
	svc := NewTitleService(m.titleRepo, m.categoryRepo, m.genreRepo, m.reviewRepo, nil)
	return svc, m
}

func floatPtr(v float64) *float64 { return &v }

func TestTitleGet_RatingFromAverage(t *testing.T) {
	svc, m := newTestTitleService()

	m.titleRepo.On("GetByID", mock.Anything, int64(1)).Return(&models.Title{ID: 1, Name: "Dune", Year: 1965}, nil)
	m.reviewRepo.On("AverageScore", mock.Anything, int64(1)).Return(floatPtr(9.0), nil)

	resp, err := svc.Get(context.Background(), 1)

	assert.NoError(t, err)
	assert.NotNil(t, resp.Rating)
	assert.Equal(t, 9.0, *resp.Rating)
}

func TestTitleGet_NoReviewsMeansNilRating(t *testing.T) {
	svc, m := newTestTitleService()

	m.titleRepo.On("GetByID", mock.Anything, int64(1)).Return(&models.Title{ID: 1, Name: "Dune", Year: 1965}, nil)
	m.reviewRepo.On("AverageScore", mock.Anything, int64(1)).Return(nil, nil)

	resp, err := svc.Get(context.Background(), 1)

	assert.NoError(t, err)
	assert.Nil(t, resp.Rating)
}

func TestTitleGet_NotFound(t *testing.T) {
	svc, m := newTestTitleService()

	m.titleRepo.On("GetByID", mock.Anything, int64(42)).Return(nil, gorm.ErrRecordNotFound)

	resp, err := svc.Get(context.Background(), 42)

	assert.Nil(t, resp)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestTitleCreate_Success(t *testing.T) {
	svc, m := newTestTitleService()

	category := &models.Category{ID: 3, Name: "Books", Slug: "books"}
	genres := []models.Genre{{ID: 7, Name: "Sci-Fi", Slug: "sci-fi"}}

	m.categoryRepo.On("FindBySlug", mock.Anything, "books").Return(category, nil)
	m.genreRepo.On("FindBySlugs", mock.Anything, []string{"sci-fi"}).Return(genres, nil)
	m.titleRepo.On("Create", mock.Anything, mock.AnythingOfType("*models.Title")).
		Run(func(args mock.Arguments) {
			args.Get(1).(*models.Title).ID = 5
		}).
		Return(nil)
	m.titleRepo.On("GetByID", mock.Anything, int64(5)).Return(&models.Title{
		ID:       5,
		Name:     "Dune",
		Year:     1965,
		Category: category,
		Genres:   genres,
	}, nil)
	m.reviewRepo.On("AverageScore", mock.Anything, int64(5)).Return(nil, nil)

	resp, err := svc.Create(context.Background(), dto.CreateTitleRequest{
		Name:     "Dune",
		Year:     1965,
		Category: "books",
		Genre:    []string{"sci-fi"},
	})

	assert.NoError(t, err)
	assert.Equal(t, int64(5), resp.ID)
	assert.Equal(t, "books", resp.Category.Slug)
	assert.Len(t, resp.Genre, 1)
	assert.Nil(t, resp.Rating)
	m.titleRepo.AssertExpectations(t)
}

func TestTitleCreate_YearOutOfRange(t *testing.T) {
	svc, m := newTestTitleService()

	for _, year := range []int{1899, time.Now().Year() + 1} {
		resp, err := svc.Create(context.Background(), dto.CreateTitleRequest{
			Name:     "Dune",
			Year:     year,
			Category: "books",
			Genre:    []string{"sci-fi"},
		})

		assert.Nil(t, resp)
		verr, ok := AsValidationError(err)
		assert.True(t, ok, "expected a validation error for year %d", year)
		assert.Contains(t, verr.Fields, "year")
	}
	m.titleRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestTitleCreate_UnknownCategorySlug(t *testing.T) {
	svc, m := newTestTitleService()

	m.categoryRepo.On("FindBySlug", mock.Anything, "nope").Return(nil, gorm.ErrRecordNotFound)

	resp, err := svc.Create(context.Background(), dto.CreateTitleRequest{
		Name:     "Dune",
		Year:     1965,
		Category: "nope",
		Genre:    []string{"sci-fi"},
	})

	assert.Nil(t, resp)
	verr, ok := AsValidationError(err)
	assert.True(t, ok)
	assert.Contains(t, verr.Fields, "category")
}

func TestTitleCreate_UnknownGenreSlug(t *testing.T) {
	svc, m := newTestTitleService()

	m.categoryRepo.On("FindBySlug", mock.Anything, "books").
		Return(&models.Category{ID: 3, Slug: "books"}, nil)
	m.genreRepo.On("FindBySlugs", mock.Anything, []string{"sci-fi", "nope"}).
		Return(nil, gorm.ErrRecordNotFound)

	resp, err := svc.Create(context.Background(), dto.CreateTitleRequest{
		Name:     "Dune",
		Year:     1965,
		Category: "books",
		Genre:    []string{"sci-fi", "nope"},
	})

	assert.Nil(t, resp)
	verr, ok := AsValidationError(err)
	assert.True(t, ok)
	assert.Contains(t, verr.Fields, "genre")
}

func TestTitleUpdate_PartialYearValidation(t *testing.T) {
	svc, m := newTestTitleService()

	m.titleRepo.On("GetByID", mock.Anything, int64(1)).Return(&models.Title{ID: 1, Name: "Dune", Year: 1965}, nil)

	badYear := 1700
	resp, err := svc.Update(context.Background(), 1, dto.UpdateTitleRequest{Year: &badYear})

	assert.Nil(t, resp)
	verr, ok := AsValidationError(err)
	assert.True(t, ok)
	assert.Contains(t, verr.Fields, "year")
	m.titleRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestTitleUpdate_NotFound(t *testing.T) {
	svc, m := newTestTitleService()

	m.titleRepo.On("GetByID", mock.Anything, int64(42)).Return(nil, gorm.ErrRecordNotFound)

	name := "New name"
	resp, err := svc.Update(context.Background(), 42, dto.UpdateTitleRequest{Name: &name})

	assert.Nil(t, resp)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestTitleDelete_NotFound(t *testing.T) {
	svc, m := newTestTitleService()

	m.titleRepo.On("Delete", mock.Anything, int64(42)).Return(gorm.ErrRecordNotFound)

	assert.ErrorIs(t, svc.Delete(context.Background(), 42), ErrNotFound)
}

func TestTitleList_PassesFilter(t *testing.T) {
	svc, m := newTestTitleService()

	rating := 8.5
	titles := []models.Title{{ID: 1, Name: "Dune", Year: 1965, Rating: &rating}}
	m.titleRepo.On("List", mock.Anything, mock.AnythingOfType("repository.TitleFilter"), 1, 20).
		Return(titles, int64(1), nil)

	resp, err := svc.List(context.Background(), repository.TitleFilter{Genre: "sci-fi"}, 1, 20)

	assert.NoError(t, err)
	assert.Len(t, resp.Data, 1)
	assert.Equal(t, 8.5, *resp.Data[0].Rating)
	assert.Equal(t, 1, resp.Total)
}
