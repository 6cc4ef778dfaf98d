package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type record struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func TestEncode_NoHTMLEscapeNoNewline(t *testing.T) {
	data, err := Encode([]record{{ID: "a&b", Name: "<شاي>"}})
	require.NoError(t, err)
	assert.Equal(t, `[{"id":"a&b","name":"<شاي>"}]`, string(data))
}

func TestEncode_Unsupported(t *testing.T) {
	_, err := Encode(make(chan int))
	require.Error(t, err)
}

func TestLoadInto_RoundTrip(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	want := []record{{ID: "1", Name: "Tea"}, {ID: "2", Name: "Sugar"}}

	data, err := Encode(want)
	require.NoError(t, err)
	require.NoError(t, m.Save(ctx, KeyProducts, data))

	var got []record
	found, err := LoadInto(ctx, m, KeyProducts, &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, want, got)
}

func TestLoadInto_EmptyCollection(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	require.NoError(t, m.Save(ctx, KeyProducts, []byte(`[]`)))

	got := []record{{ID: "stale"}}
	found, err := LoadInto(ctx, m, KeyProducts, &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Empty(t, got)
}

func TestLoadInto_Absent(t *testing.T) {
	got := []record{{ID: "keep"}}
	found, err := LoadInto(context.Background(), NewMemory(), KeyProducts, &got)
	require.NoError(t, err)
	assert.False(t, found)
	assert.Equal(t, []record{{ID: "keep"}}, got)
}

func TestLoadOnto_KeepsMissingFields(t *testing.T) {
	type settings struct {
		StoreName string  `json:"storeName"`
		Rate      float64 `json:"pointsPerCurrency"`
	}
	tests := []struct {
		name string
		doc  string
		want settings
	}{
		{name: "partial", doc: `{"storeName":"Corner"}`, want: settings{StoreName: "Corner", Rate: 0.1}},
		{name: "null", doc: `null`, want: settings{StoreName: "Default", Rate: 0.1}},
		{name: "full", doc: `{"storeName":"Corner","pointsPerCurrency":2}`, want: settings{StoreName: "Corner", Rate: 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			m := NewMemory()
			require.NoError(t, m.Save(ctx, KeySettings, []byte(tt.doc)))

			got := settings{StoreName: "Default", Rate: 0.1}
			found, err := LoadOnto(ctx, m, KeySettings, &got)
			require.NoError(t, err)
			assert.True(t, found)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLoadOnto_MalformedLeavesValue(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	require.NoError(t, m.Save(ctx, KeySettings, []byte(`{"storeName":`)))

	got := record{ID: "keep"}
	found, err := LoadOnto(ctx, m, KeySettings, &got)
	require.Error(t, err)
	assert.True(t, found)
	assert.Equal(t, record{ID: "keep"}, got)
}

func TestLoadInto_Malformed(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	require.NoError(t, m.Save(ctx, KeyProducts, []byte(`{not json`)))

	got := []record{{ID: "keep"}}
	found, err := LoadInto(ctx, m, KeyProducts, &got)
	require.Error(t, err)
	assert.True(t, found)
	assert.Contains(t, err.Error(), "products")
	assert.Equal(t, []record{{ID: "keep"}}, got)
}
