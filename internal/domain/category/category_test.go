package category

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xenking/steezy-shop/internal/domain/validate"
)

type mockRepo struct {
	byID    map[string]*Category
	created *Category
	updated *Category
}

func (m *mockRepo) List(_ context.Context) ([]Category, error) { return nil, nil }

func (m *mockRepo) GetByID(_ context.Context, id string) (*Category, error) {
	c, ok := m.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (m *mockRepo) Exists(_ context.Context, id string) (bool, error) {
	_, ok := m.byID[id]
	return ok, nil
}

func (m *mockRepo) Create(_ context.Context, c *Category) error {
	m.created = c
	return nil
}

func (m *mockRepo) Update(_ context.Context, c *Category) error {
	m.updated = c
	return nil
}

func (m *mockRepo) Delete(_ context.Context, _ string) error { return nil }

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		wantMsg string
	}{
		{name: "single character", in: "a"},
		{name: "exactly fifty characters", in: strings.Repeat("ж", MaxNameLen)},
		{name: "empty", in: "", wantMsg: "is required"},
		{name: "whitespace only", in: "   ", wantMsg: "is required"},
		{name: "too long", in: strings.Repeat("a", MaxNameLen+1), wantMsg: "must be at most 50 characters"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.in)
			if tt.wantMsg == "" {
				require.NoError(t, err)
				return
			}
			var vErr *validate.Error
			require.ErrorAs(t, err, &vErr)
			assert.Equal(t, tt.wantMsg, vErr.Fields["name"])
		})
	}
}

func TestService_Create(t *testing.T) {
	repo := &mockRepo{byID: map[string]*Category{}}
	svc := NewService(repo)

	c, err := svc.Create(context.Background(), " Sneakers ")
	require.NoError(t, err)
	assert.NotEmpty(t, c.ID)
	assert.Equal(t, "Sneakers", c.Name)
	assert.Same(t, repo.created, c)
}

func TestService_Create_Invalid(t *testing.T) {
	repo := &mockRepo{byID: map[string]*Category{}}
	svc := NewService(repo)

	_, err := svc.Create(context.Background(), "")
	require.Error(t, err)
	assert.Nil(t, repo.created)
}

func TestService_Rename(t *testing.T) {
	repo := &mockRepo{byID: map[string]*Category{"c1": {ID: "c1", Name: "Old"}}}
	svc := NewService(repo)

	c, err := svc.Rename(context.Background(), "c1", "New")
	require.NoError(t, err)
	assert.Equal(t, "New", c.Name)
	require.NotNil(t, repo.updated)

	_, err = svc.Rename(context.Background(), "nope", "New")
	require.ErrorIs(t, err, ErrNotFound)
}
