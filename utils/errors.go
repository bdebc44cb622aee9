package utils

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrUnknownAsset      = errors.New("unknown asset symbol")
	ErrSequenceConflict  = errors.New("sequence number conflict (tx_bad_seq)")
	ErrDivisionInvariant = errors.New("price has a zero denominator")
	ErrHistoryTruncated  = errors.New("market did not provide the full trade history")
)

const txBadSeq = "tx_bad_seq"

// SubmissionError carries the result codes Horizon reported for a rejected transaction.
type SubmissionError struct {
	TransactionCode string
	OperationCodes  []string
	Err             error
}

func (e *SubmissionError) Error() string {
	msg := fmt.Sprintf("transaction rejected: %s", e.TransactionCode)
	if len(e.OperationCodes) > 0 {
		msg += " [" + strings.Join(e.OperationCodes, ", ") + "]"
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *SubmissionError) Unwrap() error { return e.Err }

func (e *SubmissionError) Is(target error) bool {
	return target == ErrSequenceConflict && e.TransactionCode == txBadSeq
}

// NetworkError is a transient transport or upstream failure.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s: network error: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// ConfigurationError means the adapter cannot make progress with its current settings.
type ConfigurationError struct {
	Setting string
	Err     error
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration %s: %v", e.Setting, e.Err)
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

// IsRetryable reports whether err is worth re-running the same call for.
func IsRetryable(err error) bool {
	if errors.Is(err, ErrSequenceConflict) {
		return true
	}
	var netErr *NetworkError
	return errors.As(err, &netErr)
}
