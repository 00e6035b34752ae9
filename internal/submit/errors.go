package submit

import (
	"encoding/json"
	"errors"
	"fmt"
)

var (
	// ErrTransport marks a failed RPC round-trip: send, blockhash fetch,
	// confirmation request or confirmation timeout. Retried.
	ErrTransport = errors.New("transport error")

	// ErrOnChain marks a transaction that landed but failed to execute.
	// Never retried.
	ErrOnChain = errors.New("on-chain execution error")

	// ErrRetriesExhausted is returned when every attempt failed with ErrTransport.
	ErrRetriesExhausted = errors.New("retries exhausted")
)

func transportError(step string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrTransport, step, err)
}

func onChainError(sig string, txErr interface{}) error {
	return fmt.Errorf("%w: transaction %s: %s", ErrOnChain, sig, describe(txErr))
}

// describe renders an RPC error value ({"InstructionError":[0,{"Custom":1}]}) as JSON.
func describe(v interface{}) string {
	if s, ok := v.(string); ok {
		return s
	}
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(b)
}
