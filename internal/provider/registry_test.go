package provider

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func descriptor(id, key string) Descriptor {
	return Descriptor{ID: id, BaseURL: "https://api.example.invalid/v1", Family: FamilyOpenAI, APIKey: key}
}

func TestNewRegistryValidates(t *testing.T) {
	tests := []struct {
		name        string
		defaultID   string
		descriptors []Descriptor
		wantErr     error
	}{
		{name: "empty id", descriptors: []Descriptor{descriptor(" ", "k")}},
		{name: "bad family", descriptors: []Descriptor{{ID: "x", BaseURL: "https://x", Family: "grpc"}}},
		{name: "missing base url", descriptors: []Descriptor{{ID: "x", Family: FamilyGemini}}},
		{name: "duplicate", descriptors: []Descriptor{descriptor("a", ""), descriptor("a", "")}, wantErr: ErrDuplicateModel},
		{name: "unknown default", defaultID: "b", descriptors: []Descriptor{descriptor("a", "")}, wantErr: ErrUnknownModel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewRegistry(tt.defaultID, tt.descriptors...)

			require.Error(t, err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestRegistryLookup(t *testing.T) {
	r, err := NewRegistry("", descriptor("deepseek-chat", "k"))
	require.NoError(t, err)

	d, err := r.Lookup("deepseek-chat")
	require.NoError(t, err)
	assert.Equal(t, "deepseek-chat", d.Model)

	_, err = r.Lookup("missing")
	assert.True(t, errors.Is(err, ErrUnknownModel))
}

func TestRegistryDefaultSkipsUnconfigured(t *testing.T) {
	tests := []struct {
		name      string
		defaultID string
		want      string
	}{
		{name: "preferred default configured", defaultID: "c", want: "c"},
		{name: "preferred default lacks key", defaultID: "a", want: "b"},
		{name: "no preference", defaultID: "", want: "b"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := NewRegistry(tt.defaultID, descriptor("a", ""), descriptor("b", "key-b"), descriptor("c", "key-c"))
			require.NoError(t, err)

			d, err := r.Default()

			require.NoError(t, err)
			assert.Equal(t, tt.want, d.ID)
			assert.True(t, d.Configured())
		})
	}
}

func TestRegistryDefaultWithoutCredentials(t *testing.T) {
	r, err := NewRegistry("a", descriptor("a", ""), descriptor("b", "  "))
	require.NoError(t, err)

	_, err = r.Default()

	assert.ErrorIs(t, err, ErrNoConfiguredModel)
}

func TestRegistryModelsKeepsOrder(t *testing.T) {
	r, err := NewRegistry("", descriptor("z", ""), descriptor("a", ""), descriptor("m", ""))
	require.NoError(t, err)

	var ids []string
	for _, d := range r.Models() {
		ids = append(ids, d.ID)
	}

	assert.Equal(t, []string{"z", "a", "m"}, ids)
}

func TestParseFamily(t *testing.T) {
	f, err := ParseFamily(" Gemini ")
	require.NoError(t, err)
	assert.Equal(t, FamilyGemini, f)

	_, err = ParseFamily("anthropic")
	assert.Error(t, err)
}
