package vectorstore

// MetadataFilter restricts a search to points whose payload matches every
// condition: an AND of exact-match equalities plus at most one closed
// numeric interval (used for date-range queries on Unix timestamps).
type MetadataFilter struct {
	// Match holds exact-match conditions on string payload fields.
	Match map[string]string

	// Range is an optional closed interval on a numeric payload field.
	Range *RangeCondition
}

// RangeCondition is a closed interval [GTE, LTE] on a numeric payload field.
type RangeCondition struct {
	Key string
	GTE float64
	LTE float64
}

// FilterBuilder provides a fluent interface for building metadata filters.
type FilterBuilder struct {
	filter MetadataFilter
}

// NewFilterBuilder creates a new FilterBuilder.
func NewFilterBuilder() *FilterBuilder {
	return &FilterBuilder{
		filter: MetadataFilter{Match: make(map[string]string)},
	}
}

// WithMatch adds an exact-match condition.
func (b *FilterBuilder) WithMatch(key, value string) *FilterBuilder {
	b.filter.Match[key] = value
	return b
}

// WithSourceType restricts results to one provenance kind.
func (b *FilterBuilder) WithSourceType(sourceType string) *FilterBuilder {
	return b.WithMatch(PayloadSourceType, sourceType)
}

// WithRange sets the closed interval condition. At most one range is
// supported; a second call replaces the first.
func (b *FilterBuilder) WithRange(key string, gte, lte float64) *FilterBuilder {
	b.filter.Range = &RangeCondition{Key: key, GTE: gte, LTE: lte}
	return b
}

// Build returns the constructed filter, or nil if no conditions were added.
func (b *FilterBuilder) Build() *MetadataFilter {
	if len(b.filter.Match) == 0 && b.filter.Range == nil {
		return nil
	}
	return &b.filter
}
