package domainerrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHasCode(t *testing.T) {
	t.Run("matches direct code", func(t *testing.T) {
		err := New(CodeValidation, "name is required")
		assert.True(t, HasCode(err, CodeValidation))
		assert.False(t, HasCode(err, CodeNotFound))
	})

	t.Run("matches code through fmt wrapping", func(t *testing.T) {
		err := fmt.Errorf("register: %w", New(CodeRemoteUnavailable, "insert failed"))
		assert.True(t, HasCode(err, CodeRemoteUnavailable))
	})

	t.Run("matches nested coded errors", func(t *testing.T) {
		inner := New(CodeStorageCorrupt, "bad blob")
		err := Wrap(inner, CodeStorage, "read queue")
		assert.True(t, HasCode(err, CodeStorage))
		assert.True(t, HasCode(err, CodeStorageCorrupt))
		assert.Equal(t, CodeStorage, CodeOf(err))
	})

	t.Run("plain errors carry no code", func(t *testing.T) {
		err := errors.New("boom")
		assert.False(t, HasCode(err, CodeInternal))
		assert.Equal(t, CodeInternal, CodeOf(err))
	})
}

func TestWrapNil(t *testing.T) {
	assert.NoError(t, Wrap(nil, CodeInternal, "nothing"))
}

func TestToHTTPStatus(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, ToHTTPStatus(CodeValidation))
	assert.Equal(t, http.StatusNotFound, ToHTTPStatus(CodeNotFound))
	assert.Equal(t, http.StatusServiceUnavailable, ToHTTPStatus(CodeRemoteUnavailable))
	assert.Equal(t, http.StatusInternalServerError, ToHTTPStatus(Code("unknown")))
}
