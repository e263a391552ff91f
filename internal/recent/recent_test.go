package recent

import (
	"math/rand/v2"
	"strconv"
	"testing"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/xenking/steezy-shop/internal/domain/product"
)

func item(id string) product.Item {
	return product.Item{
		ID:            id,
		Title:         "Item " + id,
		Price:         decimal.NewFromInt(10),
		DiscountPrice: decimal.NewFromInt(8),
		ImageURLs:     []string{"https://cdn.example.com/" + id + ".jpg"},
		CategoryID:    "c1",
	}
}

func ids(items []product.Item) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.ID
	}
	return out
}

func TestListViews_Empty(t *testing.T) {
	l := NewLog(NewMemoryStorage())
	views := l.ListViews()
	assert.NotNil(t, views)
	assert.Empty(t, views)
}

func TestRecordView_MostRecentFirstAndCapped(t *testing.T) {
	l := NewLog(NewMemoryStorage())
	for _, id := range []string{"A", "B", "C", "D", "E"} {
		require.NoError(t, l.RecordView(item(id)))
	}
	assert.Equal(t, []string{"E", "D", "C", "B"}, ids(l.ListViews()))
}

func TestRecordView_ReviewMovesToFront(t *testing.T) {
	l := NewLog(NewMemoryStorage())
	for _, id := range []string{"A", "B", "C", "A"} {
		require.NoError(t, l.RecordView(item(id)))
	}
	assert.Equal(t, []string{"A", "C", "B"}, ids(l.ListViews()))
}

func TestRecordView_SameItemTwice(t *testing.T) {
	l := NewLog(NewMemoryStorage())
	require.NoError(t, l.RecordView(item("A")))
	require.NoError(t, l.RecordView(item("A")))
	assert.Equal(t, []string{"A"}, ids(l.ListViews()))
}

func TestRecordView_EmptyID(t *testing.T) {
	st := NewMemoryStorage()
	l := NewLog(st)
	require.ErrorIs(t, l.RecordView(product.Item{Title: "no id"}), product.ErrEmptyID)

	_, ok, _ := st.Get(Key)
	assert.False(t, ok)
}

func TestRecordView_SnapshotIsolation(t *testing.T) {
	l := NewLog(NewMemoryStorage())
	it := item("A")
	require.NoError(t, l.RecordView(it))

	it.Title = "changed"
	it.ImageURLs[0] = "changed.jpg"

	got := l.ListViews()
	require.Len(t, got, 1)
	assert.Equal(t, "Item A", got[0].Title)
	assert.Equal(t, "https://cdn.example.com/A.jpg", got[0].ImageURLs[0])
}

func TestRecordView_PersistsFullSnapshot(t *testing.T) {
	st := NewMemoryStorage()
	require.NoError(t, NewLog(st).RecordView(item("A")))

	// A fresh Log over the same storage sees the entry.
	got := NewLog(st).ListViews()
	require.Len(t, got, 1)
	assert.True(t, decimal.NewFromInt(8).Equal(got[0].DiscountPrice))
	assert.Equal(t, "c1", got[0].CategoryID)
}

func TestListViews_MalformedData(t *testing.T) {
	for name, raw := range map[string]string{
		"not json":   "{{{",
		"object":     `{"_id":"A"}`,
		"bad member": `[{"_id":42}]`,
	} {
		t.Run(name, func(t *testing.T) {
			st := NewMemoryStorage()
			require.NoError(t, st.Set(Key, raw))
			l := NewLog(st)

			assert.Empty(t, l.ListViews())

			// Recording over malformed data starts a fresh log.
			require.NoError(t, l.RecordView(item("B")))
			assert.Equal(t, []string{"B"}, ids(l.ListViews()))
		})
	}
}

func TestRecordView_DeduplicatesStoredData(t *testing.T) {
	st := NewMemoryStorage()
	require.NoError(t, st.Set(Key, `[{"_id":"A"},{"_id":"B"},{"_id":"A"},{"_id":""}]`))
	l := NewLog(st)

	require.NoError(t, l.RecordView(item("C")))
	assert.Equal(t, []string{"C", "A", "B"}, ids(l.ListViews()))
}

// recordModel is the reference list: id first, older duplicates dropped,
// capped at limit.
func recordModel(prev []string, id string, limit int) []string {
	next := []string{id}
	for _, p := range prev {
		if p != id && len(next) < limit {
			next = append(next, p)
		}
	}
	return next
}

func TestRecordView_RandomSequences(t *testing.T) {
	rnd := rand.New(rand.NewPCG(1, 2))
	for run := 0; run < 200; run++ {
		l := NewLog(NewMemoryStorage())
		var want []string
		n := 1 + rnd.IntN(30)
		for step := 0; step < n; step++ {
			id := strconv.Itoa(rnd.IntN(8))
			require.NoError(t, l.RecordView(item(id)))
			want = recordModel(want, id, Limit)

			got := ids(l.ListViews())
			require.LessOrEqual(t, len(got), Limit)
			require.Equal(t, id, got[0], "run %d step %d", run, step)
			seen := map[string]bool{}
			for _, g := range got {
				require.False(t, seen[g], "duplicate %q in %v", g, got)
				seen[g] = true
			}
			require.Equal(t, want, got, "run %d step %d", run, step)
		}
	}
}

type failingStorage struct {
	*MemoryStorage
}

func (failingStorage) Set(string, string) error { return errors.New("quota exceeded") }

func TestRecordView_WriteFailureIsSilent(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	l := NewLog(failingStorage{NewMemoryStorage()}, WithLogger(zap.New(core)))

	require.NoError(t, l.RecordView(item("A")))
	assert.Empty(t, l.ListViews())
	assert.Equal(t, 1, logs.FilterMessage("Failed to persist recently viewed").Len())
}

func TestWithLimit(t *testing.T) {
	l := NewLog(NewMemoryStorage(), WithLimit(2))
	for _, id := range []string{"A", "B", "C"} {
		require.NoError(t, l.RecordView(item(id)))
	}
	assert.Equal(t, []string{"C", "B"}, ids(l.ListViews()))

	// Ignored.
	l = NewLog(NewMemoryStorage(), WithLimit(0))
	assert.Equal(t, Limit, l.limit)
}
