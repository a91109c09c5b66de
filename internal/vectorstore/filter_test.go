package vectorstore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilterBuilder(t *testing.T) {
	t.Run("empty builder returns nil", func(t *testing.T) {
		assert.Nil(t, NewFilterBuilder().Build())
	})

	t.Run("match conditions", func(t *testing.T) {
		filter := NewFilterBuilder().
			WithSourceType(SourceTypeJournal).
			WithMatch(PayloadUserID, "user-42").
			Build()

		require.NotNil(t, filter)
		assert.Equal(t, map[string]string{
			PayloadSourceType: SourceTypeJournal,
			PayloadUserID:     "user-42",
		}, filter.Match)
		assert.Nil(t, filter.Range)
	})

	t.Run("range condition", func(t *testing.T) {
		filter := NewFilterBuilder().
			WithRange(PayloadTimestampUnix, 1000, 2000).
			Build()

		require.NotNil(t, filter)
		require.NotNil(t, filter.Range)
		assert.Equal(t, PayloadTimestampUnix, filter.Range.Key)
		assert.Equal(t, float64(1000), filter.Range.GTE)
		assert.Equal(t, float64(2000), filter.Range.LTE)
	})

	t.Run("second range replaces first", func(t *testing.T) {
		filter := NewFilterBuilder().
			WithRange(PayloadTimestampUnix, 1, 2).
			WithRange(PayloadTimestampUnix, 3, 4).
			Build()

		require.NotNil(t, filter)
		assert.Equal(t, float64(3), filter.Range.GTE)
		assert.Equal(t, float64(4), filter.Range.LTE)
	})
}

func TestToQdrantFilter(t *testing.T) {
	t.Run("nil filter", func(t *testing.T) {
		assert.Nil(t, toQdrantFilter(nil))
	})

	t.Run("empty filter", func(t *testing.T) {
		assert.Nil(t, toQdrantFilter(&MetadataFilter{}))
	})

	t.Run("match and range produce must conditions", func(t *testing.T) {
		filter := NewFilterBuilder().
			WithSourceType(SourceTypeJournal).
			WithRange(PayloadTimestampUnix, 100, 200).
			Build()

		qf := toQdrantFilter(filter)
		require.NotNil(t, qf)
		assert.Len(t, qf.Must, 2)
		assert.Empty(t, qf.Should)
		assert.Empty(t, qf.MustNot)
	})
}
