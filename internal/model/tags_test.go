package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTag_Recognized(t *testing.T) {
	info, ok := ParseTag(`table-binding:{"tableName":"SalesQ1","bindingMode":"data-source"}`)
	require.True(t, ok)
	assert.Equal(t, "table-binding", info.BindingType)
	assert.Equal(t, TagPrefixTableBinding, info.Prefix)
	assert.False(t, info.Malformed)
	assert.Equal(t, map[string]any{"tableName": "SalesQ1", "bindingMode": "data-source"}, info.Payload)
}

func TestParseTag_Field(t *testing.T) {
	info, ok := ParseTag("bind:order_id")
	require.True(t, ok)
	assert.Equal(t, "field", info.BindingType)
	assert.Equal(t, "order_id", info.Payload)
}

func TestParseTag_MalformedJSONIsAbsent(t *testing.T) {
	info, ok := ParseTag("custom-binding:{not json")
	require.True(t, ok)
	assert.True(t, info.Malformed)
	assert.Nil(t, info.Payload)
}

func TestParseTag_Link(t *testing.T) {
	info, ok := ParseTag(`link-data:{"id":7}`)
	require.True(t, ok)
	assert.True(t, info.IsLink())

	empty, ok := ParseTag("link-data:")
	require.True(t, ok)
	assert.True(t, empty.IsLink())
	assert.Nil(t, empty.Payload)
}

func TestParseTag_Unrecognized(t *testing.T) {
	for _, tag := range []string{"", "plain", "bindings:x", "chart:1"} {
		_, ok := ParseTag(tag)
		assert.False(t, ok, tag)
	}
}

func TestParseTag_MarkerPrefixesDoNotCollide(t *testing.T) {
	marker, ok := ParseTag(`doc-chart-data:{"sourcePositionIndex":2}`)
	require.True(t, ok)
	assert.Equal(t, "chart-marker", marker.BindingType)

	data, ok := ParseTag(`chart-data:{"a":1}`)
	require.True(t, ok)
	assert.Equal(t, "chart-data", data.BindingType)
}

func TestFormatTag(t *testing.T) {
	tag, err := FormatTag(TagPrefixField, "customer_name")
	require.NoError(t, err)
	assert.Equal(t, "bind:customer_name", tag)

	tag, err = FormatTag(TagPrefixLink, map[string]any{"id": 1})
	require.NoError(t, err)
	assert.Equal(t, `link-data:{"id":1}`, tag)

	tag, err = FormatTag(TagPrefixLink, nil)
	require.NoError(t, err)
	assert.Equal(t, "link-data:", tag)

	_, err = FormatTag(TagPrefixCustomBinding, make(chan int))
	assert.Error(t, err)
}
