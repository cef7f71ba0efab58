package pocket_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/universalpocket/pocket"
)

func TestErrorf(t *testing.T) {
	t.Parallel()

	err := pocket.Errorf(pocket.ENOTFOUND, "content %q not found", "test")

	assert.Equal(t, pocket.ENOTFOUND, pocket.ErrorCode(err))
	assert.Equal(t, "content \"test\" not found", pocket.ErrorMessage(err))
}

func TestErrorCode_NilError(t *testing.T) {
	t.Parallel()

	assert.Empty(t, pocket.ErrorCode(nil))
}

func TestErrorCode_NonApplicationError(t *testing.T) {
	t.Parallel()

	assert.Equal(t, pocket.EINTERNAL, pocket.ErrorCode(errors.New("boom")))
}

func TestErrorMessage_NilError(t *testing.T) {
	t.Parallel()

	assert.Empty(t, pocket.ErrorMessage(nil))
}
