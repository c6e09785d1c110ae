package mcp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStringArg(t *testing.T) {
	t.Parallel()

	t.Run("required string present", func(t *testing.T) {
		result, err := parseStringArg(map[string]interface{}{"name": "Greeter"}, "name", true)
		require.NoError(t, err)
		assert.Equal(t, "Greeter", result)
	})

	t.Run("required string missing", func(t *testing.T) {
		result, err := parseStringArg(map[string]interface{}{}, "name", true)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "name parameter is required")
		assert.Empty(t, result)
	})

	t.Run("required string empty", func(t *testing.T) {
		_, err := parseStringArg(map[string]interface{}{"name": ""}, "name", true)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "name cannot be empty")
	})

	t.Run("optional string empty", func(t *testing.T) {
		result, err := parseStringArg(map[string]interface{}{"content": ""}, "content", false)
		require.NoError(t, err)
		assert.Empty(t, result)
	})

	t.Run("wrong type", func(t *testing.T) {
		_, err := parseStringArg(map[string]interface{}{"name": 42}, "name", true)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "name must be a string")
	})
}

func TestBindArguments(t *testing.T) {
	t.Parallel()

	t.Run("native types", func(t *testing.T) {
		var args OutlineSkeletonRequest
		err := bindArguments(map[string]interface{}{
			"path":           "a.ts",
			"name":           "A",
			"entity":         "B",
			"include_bodies": true,
		}, &args)
		require.NoError(t, err)
		assert.Equal(t, OutlineSkeletonRequest{Path: "a.ts", Name: "A", Entity: "B", IncludeBodies: true}, args)
	})

	t.Run("stringified bool", func(t *testing.T) {
		var args OutlineSkeletonRequest
		require.NoError(t, bindArguments(map[string]interface{}{"include_bodies": " true "}, &args))
		assert.True(t, args.IncludeBodies)
	})

	t.Run("stringified number", func(t *testing.T) {
		var args struct {
			Limit int `json:"limit"`
		}
		require.NoError(t, bindArguments(map[string]interface{}{"limit": "10"}, &args))
		assert.Equal(t, 10, args.Limit)
	})

	t.Run("missing bool defaults to false", func(t *testing.T) {
		var args OutlineSkeletonRequest
		require.NoError(t, bindArguments(map[string]interface{}{"path": "a.ts"}, &args))
		assert.False(t, args.IncludeBodies)
	})

	t.Run("unparseable bool", func(t *testing.T) {
		var args OutlineSkeletonRequest
		assert.Error(t, bindArguments(map[string]interface{}{"include_bodies": "maybe"}, &args))
	})
}

func TestMarshalToolResponse(t *testing.T) {
	t.Parallel()

	result, err := marshalToolResponse(map[string]int{"took_ms": 3})
	require.NoError(t, err)
	assert.Equal(t, `{"took_ms":3}`, resultText(t, result))

	_, err = marshalToolResponse(make(chan int))
	assert.Error(t, err)
}
