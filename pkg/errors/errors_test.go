package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppErrorChain(t *testing.T) {
	cause := stderrors.New("duplicate key")
	err := fmt.Errorf("insert: %w", Wrap(ErrCodeConflict, "tracking code taken", cause))

	assert.True(t, IsConflict(err))
	assert.False(t, IsNotFound(err))
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "CONFLICT: tracking code taken (duplicate key)", stderrors.Unwrap(err).Error())
}

func TestCodeOf(t *testing.T) {
	assert.Equal(t, ErrCodeNotFound, CodeOf(New(ErrCodeNotFound, "missing")))
	assert.Equal(t, ErrorCode(""), CodeOf(stderrors.New("plain")))
	assert.True(t, IsValidation(New(ErrCodeBadRequest, "bad")))
	assert.True(t, IsValidation(New(ErrCodeValidation, "bad")))
	assert.False(t, IsValidation(nil))
}
