package pagination

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParamsNormalize(t *testing.T) {
	p := &Params{Page: -2, PerPage: 500}
	p.Normalize()
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, maxPerPage, p.PerPage)

	p = &Params{Page: 3, PerPage: 0}
	p.Normalize()
	assert.Equal(t, defaultPerPage, p.PerPage)
	assert.Equal(t, 40, p.Offset())
}

func TestNewMeta(t *testing.T) {
	m := NewMeta(&Params{Page: 2, PerPage: 10}, 25)
	assert.Equal(t, 3, m.TotalPages)
	assert.True(t, m.HasNext)
	assert.True(t, m.HasPrev)

	m = NewMeta(&Params{Page: 1, PerPage: 10}, 0)
	assert.Equal(t, 0, m.TotalPages)
	assert.False(t, m.HasNext)
}

func TestCursorRoundTrip(t *testing.T) {
	at := time.Date(2026, 5, 4, 3, 2, 1, 0, time.UTC)
	params := &CursorParams{Cursor: EncodeCursor("abc", at)}

	cur, err := params.Decode()
	require.NoError(t, err)
	assert.Equal(t, "abc", cur.ID)
	assert.True(t, at.Equal(cur.CreatedAt))

	_, err = (&CursorParams{Cursor: "%%%"}).Decode()
	assert.Error(t, err)
}

func TestNewCursorResult(t *testing.T) {
	type row struct {
		id string
		at time.Time
	}
	now := time.Now()
	rows := []row{{"a", now}, {"b", now}, {"c", now}}
	key := func(r row) (string, time.Time) { return r.id, r.at }

	res := NewCursorResult(rows, 2, key)
	assert.Len(t, res.Items, 2)
	assert.True(t, res.HasNext)
	require.NotNil(t, res.NextCursor)

	res = NewCursorResult(rows[:1], 2, key)
	assert.False(t, res.HasNext)
	assert.Nil(t, res.NextCursor)

	empty := NewCursorResult[row](nil, 2, key)
	assert.NotNil(t, empty.Items)
}
