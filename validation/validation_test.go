package validation

import (
	"testing"

	"github.com/go-faster/errors"
	"github.com/stretchr/testify/assert"
)

func TestIs(t *testing.T) {
	err := Errorf("amount must be positive, got %d", -1)
	assert.EqualError(t, err, "amount must be positive, got -1")
	assert.True(t, Is(err))
	assert.True(t, Is(errors.Wrap(err, "create")))
	assert.False(t, Is(errors.New("boom")))
	assert.False(t, Is(nil))
}
