package utils

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSubmissionErrorMatchesSequenceConflict(t *testing.T) {
	badSeq := fmt.Errorf("submit transaction: %w", &SubmissionError{TransactionCode: "tx_bad_seq"})
	assert.ErrorIs(t, badSeq, ErrSequenceConflict)
	assert.True(t, IsRetryable(badSeq))

	failed := &SubmissionError{TransactionCode: "tx_failed", OperationCodes: []string{"op_cross_self"}}
	assert.NotErrorIs(t, failed, ErrSequenceConflict)
	assert.False(t, IsRetryable(failed))
	assert.Equal(t, "transaction rejected: tx_failed [op_cross_self]", failed.Error())
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, IsRetryable(&NetworkError{Op: "offers", Err: errors.New("connection reset")}))
	assert.True(t, IsRetryable(fmt.Errorf("list: %w", &NetworkError{Op: "offers", Err: errors.New("eof")})))
	assert.False(t, IsRetryable(&ConfigurationError{Setting: "STELLAR_SECRET", Err: errors.New("bad seed")}))
	assert.False(t, IsRetryable(errors.New("plain")))
}
