package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorsIsMatchesByCode(t *testing.T) {
	err := fmt.Errorf("reservando ida: %w", ErrTripFull(25))

	assert.True(t, errors.Is(err, ErrTripFull(10)))
	assert.False(t, errors.Is(err, ErrTripNotFound()))
	assert.Equal(t, KindUnprocessable, KindOf(err))
	assert.Equal(t, CodeTripFull, CodeOf(err))
}

func TestAsWrapsUnknownErrorsAsInternal(t *testing.T) {
	cause := errors.New("conexão recusada")
	appErr := As(cause)

	assert.Equal(t, KindInternal, appErr.Kind)
	assert.Equal(t, CodeInternal, appErr.Code)
	assert.ErrorIs(t, appErr, cause)
	assert.Equal(t, "Erro interno do servidor", appErr.Message)
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "conflict", KindConflict.String())
	assert.Equal(t, "internal", Kind(99).String())
}
