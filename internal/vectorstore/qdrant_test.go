package vectorstore

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQdrantConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		config  QdrantConfig
		wantErr string
	}{
		{
			name:   "valid config",
			config: QdrantConfig{Host: "localhost", Port: 6334, VectorSize: 384},
		},
		{
			name:    "missing host",
			config:  QdrantConfig{Port: 6334, VectorSize: 384},
			wantErr: "host required",
		},
		{
			name:    "invalid port",
			config:  QdrantConfig{Host: "localhost", Port: 99999, VectorSize: 384},
			wantErr: "invalid port",
		},
		{
			name:    "missing vector size",
			config:  QdrantConfig{Host: "localhost", Port: 6334},
			wantErr: "vector size required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrInvalidConfig)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestQdrantConfigApplyDefaults(t *testing.T) {
	cfg := QdrantConfig{Host: "localhost", VectorSize: 384}
	cfg.ApplyDefaults()

	assert.Equal(t, 6334, cfg.Port)
	assert.Equal(t, 50*1024*1024, cfg.MaxMessageSize)
}

func TestValidateCollectionName(t *testing.T) {
	valid := []string{
		"stoicism_knowledge",
		"stoicism_user-42_personal",
		"a",
		"abc_123",
	}
	for _, name := range valid {
		assert.NoError(t, ValidateCollectionName(name), name)
	}

	invalid := []string{
		"",
		"Stoicism_knowledge",
		"has space",
		"path/traversal",
		"dots.not.allowed",
		strings.Repeat("a", 65),
	}
	for _, name := range invalid {
		err := ValidateCollectionName(name)
		require.Error(t, err, name)
		assert.ErrorIs(t, err, ErrInvalidCollectionName, name)
	}
}

func TestPayloadRoundTrip(t *testing.T) {
	in := map[string]any{
		"text":        "hello",
		"count":       int64(3),
		"score":       0.5,
		"flag":        true,
		"unsupported": []string{"dropped"},
	}

	out := fromQdrantPayload(toQdrantPayload(in))

	assert.Equal(t, "hello", out["text"])
	assert.Equal(t, int64(3), out["count"])
	assert.Equal(t, 0.5, out["score"])
	assert.Equal(t, true, out["flag"])
	assert.NotContains(t, out, "unsupported")
}

func TestToQdrantPayloadWidensInt(t *testing.T) {
	out := fromQdrantPayload(toQdrantPayload(map[string]any{"n": 7}))
	assert.Equal(t, int64(7), out["n"])
}
