package product

import (
	"context"
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xenking/steezy-shop/internal/domain/validate"
)

// --- Mock implementations ---

type mockRepo struct {
	byID      map[string]*Item
	lastList  Filter
	created   *Item
	updated   *Item
	deleted   string
	listErr   error
	updateErr error
}

func newMockRepo(items ...Item) *mockRepo {
	byID := make(map[string]*Item, len(items))
	for i := range items {
		byID[items[i].ID] = &items[i]
	}
	return &mockRepo{byID: byID}
}

func (m *mockRepo) List(_ context.Context, f Filter) ([]Item, error) {
	m.lastList = f
	if m.listErr != nil {
		return nil, m.listErr
	}
	var out []Item
	for _, it := range m.byID {
		out = append(out, *it)
	}
	return out, nil
}

func (m *mockRepo) GetByID(_ context.Context, id string) (*Item, error) {
	it, ok := m.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := it.Clone()
	return &cp, nil
}

func (m *mockRepo) Create(_ context.Context, it *Item) error {
	m.created = it
	return nil
}

func (m *mockRepo) Update(_ context.Context, it *Item) error {
	m.updated = it
	return m.updateErr
}

func (m *mockRepo) Delete(_ context.Context, id string) error {
	if _, ok := m.byID[id]; !ok {
		return ErrNotFound
	}
	m.deleted = id
	return nil
}

type mockCategories map[string]bool

func (m mockCategories) Exists(_ context.Context, id string) (bool, error) {
	return m[id], nil
}

func newTestService(repo *mockRepo) *Service {
	svc := NewService(repo, mockCategories{"c1": true, "c2": true})
	svc.now = func() time.Time { return time.Date(2026, 10, 1, 9, 0, 0, 0, time.UTC) }
	return svc
}

// --- Tests ---

func TestService_List_DefaultsSort(t *testing.T) {
	repo := newMockRepo()
	svc := newTestService(repo)

	_, err := svc.List(context.Background(), Filter{Query: "  shoe "})
	require.NoError(t, err)
	assert.Equal(t, Filter{Query: "shoe", Sort: SortDefault}, repo.lastList)
}

func TestService_List_InvalidSort(t *testing.T) {
	svc := newTestService(newMockRepo())

	_, err := svc.List(context.Background(), Filter{Sort: "newest"})
	require.ErrorIs(t, err, ErrInvalidSort)
}

func TestService_List_RepoError(t *testing.T) {
	repo := newMockRepo()
	repo.listErr = errors.New("db down")
	svc := newTestService(repo)

	_, err := svc.List(context.Background(), Filter{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "list products")
}

func TestService_Create(t *testing.T) {
	repo := newMockRepo()
	svc := newTestService(repo)

	in := validItem()
	in.Title = "  Canvas sneaker  "
	got, err := svc.Create(context.Background(), in)
	require.NoError(t, err)

	assert.NotEmpty(t, got.ID)
	assert.Equal(t, "Canvas sneaker", got.Title)
	assert.Equal(t, []string{}, got.ImageURLs)
	assert.Equal(t, svc.now(), got.CreatedAt)
	assert.Same(t, repo.created, got)
}

func TestService_Create_Invalid(t *testing.T) {
	repo := newMockRepo()
	svc := newTestService(repo)

	in := validItem()
	in.DiscountPrice = d("100")
	_, err := svc.Create(context.Background(), in)

	var vErr *validate.Error
	require.ErrorAs(t, err, &vErr)
	assert.Contains(t, vErr.Fields, "discount")
	assert.Nil(t, repo.created)
}

func TestService_Create_UnknownCategory(t *testing.T) {
	svc := newTestService(newMockRepo())

	in := validItem()
	in.CategoryID = "ghost"
	_, err := svc.Create(context.Background(), in)

	var ucErr *UnknownCategoryError
	require.ErrorAs(t, err, &ucErr)
	assert.Equal(t, "ghost", ucErr.CategoryID)
}

func TestService_Update_Favorite(t *testing.T) {
	stored := validItem()
	stored.ID = "p1"
	repo := newMockRepo(stored)
	svc := newTestService(repo)

	fav := true
	cat := "c1"
	got, err := svc.Update(context.Background(), "p1", Patch{IsFavorite: &fav, CategoryID: &cat})
	require.NoError(t, err)

	assert.True(t, got.IsFavorite)
	assert.Equal(t, "Canvas sneaker", got.Title)
	require.NotNil(t, repo.updated)
	assert.Equal(t, svc.now(), repo.updated.UpdatedAt)
}

func TestService_Update_EmptyPatchIsNoop(t *testing.T) {
	stored := validItem()
	stored.ID = "p1"
	repo := newMockRepo(stored)
	svc := newTestService(repo)

	got, err := svc.Update(context.Background(), "p1", Patch{})
	require.NoError(t, err)
	assert.Equal(t, "p1", got.ID)
	assert.Nil(t, repo.updated)
}

func TestService_Update_NotFound(t *testing.T) {
	svc := newTestService(newMockRepo())

	fav := true
	_, err := svc.Update(context.Background(), "missing", Patch{IsFavorite: &fav})
	require.ErrorIs(t, err, ErrNotFound)
}

func TestService_Update_DiscountAbovePrice(t *testing.T) {
	stored := validItem()
	stored.ID = "p1"
	repo := newMockRepo(stored)
	svc := newTestService(repo)

	price := d("10")
	_, err := svc.Update(context.Background(), "p1", Patch{Price: &price})

	var vErr *validate.Error
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "must not exceed price", vErr.Fields["discount"])
	assert.Nil(t, repo.updated)
}

func TestService_Update_MovesToUnknownCategory(t *testing.T) {
	stored := validItem()
	stored.ID = "p1"
	svc := newTestService(newMockRepo(stored))

	cat := "ghost"
	_, err := svc.Update(context.Background(), "p1", Patch{CategoryID: &cat})

	var ucErr *UnknownCategoryError
	require.ErrorAs(t, err, &ucErr)
}

func TestService_Delete(t *testing.T) {
	stored := validItem()
	stored.ID = "p1"
	repo := newMockRepo(stored)
	svc := newTestService(repo)

	require.NoError(t, svc.Delete(context.Background(), "p1"))
	assert.Equal(t, "p1", repo.deleted)
	require.ErrorIs(t, svc.Delete(context.Background(), "p2"), ErrNotFound)
}
