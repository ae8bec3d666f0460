package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zots0127/codepoint/pkg/types"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	st, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return st
}

func record(postcode string, eastings, northings int) types.Postcode {
	now := time.Now()
	return types.Postcode{
		Postcode:  postcode,
		Eastings:  eastings,
		Northings: northings,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestInsertBatchAndByPrefix(t *testing.T) {
	st := newTestStore(t)

	require.NoError(t, st.InsertBatch([]types.Postcode{
		record("mk17db", 480000, 240000),
		record("mk22aa", 481000, 241000),
		record("ab101ab", 394251, 806376),
	}))

	rows, err := st.ByPrefix("mk")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "mk17db", rows[0].Postcode)
	assert.Equal(t, 480000, rows[0].Eastings)
	assert.Equal(t, 240000, rows[0].Northings)

	rows, err = st.ByPrefix("zz")
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestInsertBatchEmpty(t *testing.T) {
	st := newTestStore(t)
	assert.NoError(t, st.InsertBatch(nil))
}

func TestUpdateCoordinates(t *testing.T) {
	st := newTestStore(t)
	require.NoError(t, st.InsertBatch([]types.Postcode{record("mk17db", 480000, 240000)}))

	before, err := st.ByPrefix("mk")
	require.NoError(t, err)
	require.Len(t, before, 1)

	time.Sleep(10 * time.Millisecond)
	require.NoError(t, st.UpdateCoordinates("mk17db", 480500, 240000))

	after, err := st.ByPrefix("mk")
	require.NoError(t, err)
	require.Len(t, after, 1)
	assert.Equal(t, 480500, after[0].Eastings)
	assert.Equal(t, 240000, after[0].Northings)
	assert.True(t, after[0].UpdatedAt.After(before[0].UpdatedAt))
	assert.Equal(t, before[0].CreatedAt.Unix(), after[0].CreatedAt.Unix())
}

func TestSearchTextPaging(t *testing.T) {
	st := newTestStore(t)

	batch := make([]types.Postcode, 0, 25)
	for i := 0; i < 25; i++ {
		batch = append(batch, record(searchCode(i), 400000+i, 200000+i))
	}
	require.NoError(t, st.InsertBatch(batch))

	t.Run("FirstPageIsFull", func(t *testing.T) {
		rows, err := st.SearchText("mk", 1)
		require.NoError(t, err)
		assert.Len(t, rows, PageSize)
	})

	t.Run("SecondPageHasRemainder", func(t *testing.T) {
		rows, err := st.SearchText("mk", 2)
		require.NoError(t, err)
		assert.Len(t, rows, 5)
	})

	t.Run("NoMatches", func(t *testing.T) {
		rows, err := st.SearchText("zzz", 1)
		require.NoError(t, err)
		assert.Empty(t, rows)
	})

	t.Run("WildcardsAreLiteral", func(t *testing.T) {
		// "m_" would match any second character and "%" everything if
		// the term were interpolated into the pattern unescaped.
		rows, err := st.SearchText("m_", 1)
		require.NoError(t, err)
		assert.Empty(t, rows)

		rows, err = st.SearchText("%", 1)
		require.NoError(t, err)
		assert.Empty(t, rows)
	})
}

// searchCode builds 25 distinct postcodes all containing "mk".
func searchCode(i int) string {
	return "mk" + string(rune('a'+i/5)) + string(rune('a'+i%5))
}

func TestWithinBounds(t *testing.T) {
	st := newTestStore(t)

	require.NoError(t, st.InsertBatch([]types.Postcode{
		record("aa11aa", 480000, 240000),
		record("aa22aa", 480500, 240000), // on the max eastings edge
		record("aa33aa", 480501, 240000), // one meter outside
		record("aa44aa", 480000, 239499), // one meter below min northings
	}))

	rows, err := st.WithinBounds(479500, 480500, 239500, 240500)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "aa11aa", rows[0].Postcode)
	assert.Equal(t, "aa22aa", rows[1].Postcode)
}

func TestCountPostcodes(t *testing.T) {
	st := newTestStore(t)

	count, err := st.CountPostcodes()
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	require.NoError(t, st.InsertBatch([]types.Postcode{record("mk17db", 480000, 240000)}))

	count, err = st.CountPostcodes()
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}
