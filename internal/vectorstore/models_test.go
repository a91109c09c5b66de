package vectorstore

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSearchResultIsPersonalContent(t *testing.T) {
	tests := []struct {
		name   string
		result SearchResult
		want   bool
	}{
		{
			name:   "journal content",
			result: SearchResult{Payload: map[string]any{PayloadSourceType: SourceTypeJournal}},
			want:   true,
		},
		{
			name:   "pdf content",
			result: SearchResult{Payload: map[string]any{PayloadSourceType: SourceTypePDF}},
			want:   false,
		},
		{
			name:   "missing source type",
			result: SearchResult{Payload: map[string]any{}},
			want:   false,
		},
		{
			name:   "nil payload",
			result: SearchResult{},
			want:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.result.IsPersonalContent())
		})
	}
}

func TestSearchResultText(t *testing.T) {
	r := SearchResult{Payload: map[string]any{PayloadText: "an entry"}}
	assert.Equal(t, "an entry", r.Text())

	assert.Empty(t, SearchResult{}.Text())
	assert.Empty(t, SearchResult{Payload: map[string]any{PayloadText: 7}}.Text())
}
