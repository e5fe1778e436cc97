package cost

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_RegisterAndCreate(t *testing.T) {
	// Given
	reg := NewRegistry()
	var gotProfile string
	factory := func(_ context.Context, profile string) (Source, error) {
		gotProfile = profile
		return newMockSource("aws"), nil
	}

	// When
	require.NoError(t, reg.Register("aws", factory))
	require.NoError(t, reg.Register("azure", factory))
	src, err := reg.Create(context.Background(), "aws", "billing")

	// Then
	require.NoError(t, err)
	assert.Equal(t, "aws", src.Name())
	assert.Equal(t, "billing", gotProfile)
	assert.Equal(t, []string{"aws", "azure"}, reg.List())
}

func TestRegistry_Errors(t *testing.T) {
	reg := NewRegistry()
	ok := func(context.Context, string) (Source, error) { return newMockSource("x"), nil }
	failing := func(context.Context, string) (Source, error) { return nil, errors.New("no credentials") }

	assert.Error(t, reg.Register("", ok))
	assert.Error(t, reg.Register("aws", nil))
	require.NoError(t, reg.Register("aws", ok))
	assert.Error(t, reg.Register("aws", ok))
	require.NoError(t, reg.Register("gcp", failing))

	_, err := reg.Create(context.Background(), "snowflake", "")
	assert.ErrorContains(t, err, "not registered")

	_, err = reg.Create(context.Background(), "gcp", "")
	assert.ErrorContains(t, err, "no credentials")
}
