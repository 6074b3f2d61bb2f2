package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppErrorFormat(t *testing.T) {
	err := New(ErrCodeSpeciesNotFound, "species not found")
	assert.Equal(t, "[MOL_005] species not found", err.Error())

	withDetail := err.WithDetail("label=propane")
	assert.Equal(t, "[MOL_005] species not found: label=propane", withDetail.Error())
	// The original is untouched.
	assert.Empty(t, err.Detail)
}

func TestWrapPreservesChain(t *testing.T) {
	cause := stderrors.New("connection refused")
	err := Wrap(cause, ErrCodeDatabaseError, "cannot load species")

	require.NotNil(t, err)
	assert.True(t, stderrors.Is(err, cause))
	assert.Equal(t, ErrCodeDatabaseError, GetCode(err))
}

func TestWrapNil(t *testing.T) {
	assert.Nil(t, Wrap(nil, ErrCodeInternal, "ignored"))
}

func TestWrapUnknownCodePreservesOriginal(t *testing.T) {
	inner := New(ErrCodeNoReactionsFound, "no reactions")
	outer := Wrap(inner, CodeUnknown, "estimation failed")
	assert.Equal(t, ErrCodeNoReactionsFound, outer.Code)
}

func TestIsCodeThroughWrapping(t *testing.T) {
	inner := New(ErrCodeConstraintOverflow, "too many constraints")
	outer := fmt.Errorf("scheme init: %w", inner)

	assert.True(t, IsCode(outer, ErrCodeConstraintOverflow))
	assert.False(t, IsCode(outer, ErrCodeNotFound))
	assert.False(t, IsCode(nil, ErrCodeNotFound))
}

func TestIsNotFound(t *testing.T) {
	assert.True(t, IsNotFound(New(ErrCodeSpeciesNotFound, "missing")))
	assert.True(t, IsNotFound(NotFound("missing")))
	assert.False(t, IsNotFound(Internal("boom")))
}
