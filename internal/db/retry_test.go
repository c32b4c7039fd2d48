package db

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWithRetries_SucceedsFirstTry(t *testing.T) {
	calls := 0
	err := WithRetries(func() error {
		calls++
		return nil
	}, 3, func(error) bool { return true })
	assert.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestWithRetries_RetriesOnDuplicateKey(t *testing.T) {
	calls := 0
	err := WithRetries(func() error {
		calls++
		if calls < 3 {
			return errors.New("dup")
		}
		return nil
	}, 3, func(error) bool { return true })
	assert.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestWithRetries_GivesUpAfterMaxRetries(t *testing.T) {
	calls := 0
	boom := errors.New("dup")
	err := WithRetries(func() error {
		calls++
		return boom
	}, 2, func(error) bool { return true })
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 3, calls, "initial attempt plus two retries")
}

func TestWithRetries_NonDuplicateFailsImmediately(t *testing.T) {
	calls := 0
	boom := errors.New("connection reset")
	err := WithRetries(func() error {
		calls++
		return boom
	}, 5, func(error) bool { return false })
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, calls)
}

func TestIsMongoDuplicateKeyError_PlainError(t *testing.T) {
	assert.False(t, IsMongoDuplicateKeyError(errors.New("nope")))
}
