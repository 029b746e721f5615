package generator

import (
	"encoding/json"
	"fmt"
	"testing"

	"insightgen/internal/insight"
	"insightgen/internal/templates"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func records(t *testing.T, docs ...string) []*insight.Record {
	t.Helper()
	out := make([]*insight.Record, 0, len(docs))
	for _, d := range docs {
		r, err := insight.Parse([]byte(d))
		require.NoError(t, err)
		out = append(out, r)
	}
	return out
}

func TestCycle_VisitsEachTemplateOnceInOrder(t *testing.T) {
	for n := 1; n <= 5; n++ {
		t.Run(fmt.Sprintf("len=%d", n), func(t *testing.T) {
			var docs []string
			for i := 0; i < n; i++ {
				docs = append(docs, fmt.Sprintf(`{"uid":"t%d"}`, i))
			}
			c := NewCycle(records(t, docs...))

			for i := 0; i < n; i++ {
				rec, ok := c.Next()
				require.True(t, ok)
				assert.Equal(t, fmt.Sprintf("t%d", i), rec.StringOr(insight.FieldUID, ""))
			}
			first, ok := c.Next()
			require.True(t, ok)
			assert.Equal(t, "t0", first.StringOr(insight.FieldUID, ""), "call N+1 repeats the first template")
			assert.Equal(t, uint64(n+1), c.position())
		})
	}
}

func TestCycle_EmptyNeverYields(t *testing.T) {
	c := NewCycle(nil)
	for i := 0; i < 5; i++ {
		rec, ok := c.Next()
		assert.False(t, ok)
		assert.Nil(t, rec)
	}
	assert.Equal(t, uint64(0), c.position())
}

func TestCycle_PeekDoesNotAdvance(t *testing.T) {
	c := NewCycle(records(t, `{"uid":"a"}`, `{"uid":"b"}`))

	rec, ok := c.peek()
	require.True(t, ok)
	assert.Equal(t, "a", rec.StringOr(insight.FieldUID, ""))
	assert.Equal(t, uint64(0), c.position(), "peek must not advance")

	c.advance()
	rec, _ = c.peek()
	assert.Equal(t, "b", rec.StringOr(insight.FieldUID, ""))
}

func TestCycle_NextReturnsCopies(t *testing.T) {
	seq := records(t, `{"uid":"a","data":{"breachDate":"x"}}`)
	pristine, err := json.Marshal(seq[0])
	require.NoError(t, err)

	c := NewCycle(seq)
	rec, _ := c.Next()
	rec.Set(insight.FieldUID, "mutated")
	data, _ := rec.Object(insight.FieldData)
	data.Set(insight.FieldBreachDate, "mutated")

	again, _ := c.Next()
	got, err := json.Marshal(again)
	require.NoError(t, err)
	assert.JSONEq(t, string(pristine), string(got))
}

func TestSelector_IndependentCursors(t *testing.T) {
	store := templates.NewStore(map[templates.Category][]*insight.Record{
		templates.Forecast: records(t, `{"uid":"f0"}`, `{"uid":"f1"}`),
		templates.Past:     records(t, `{"uid":"p0"}`, `{"uid":"p1"}`, `{"uid":"p2"}`),
	})
	s := NewSelector(store)

	next := func(c templates.Category) string {
		rec, ok := s.Next(c)
		if !ok {
			return ""
		}
		return rec.StringOr(insight.FieldUID, "")
	}

	assert.Equal(t, "f0", next(templates.Forecast))
	assert.Equal(t, "p0", next(templates.Past))
	assert.Equal(t, "f1", next(templates.Forecast))
	assert.Equal(t, "f0", next(templates.Forecast))
	assert.Equal(t, "p1", next(templates.Past))
	assert.Equal(t, "", next(templates.Current))

	assert.Equal(t, uint64(3), s.position(templates.Forecast))
	assert.Equal(t, uint64(2), s.position(templates.Past))
	assert.Equal(t, uint64(0), s.position(templates.Current))
	assert.Equal(t, 0, s.Len(templates.Category("unknown")))
}
