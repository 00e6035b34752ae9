package model

// SubmissionResult is the outcome of signing and submitting a transaction.
// Either Success is true and Signature/BlockHash are set, or Success is
// false and Error is set.
type SubmissionResult struct {
	Success   bool   `json:"success"`
	Signature string `json:"signature"`
	BlockHash string `json:"blockHash"`
	Error     string `json:"error"`
	Attempts  int    `json:"attempts"`
}

// Failed builds a failed SubmissionResult from err.
func Failed(err error, attempts int) SubmissionResult {
	return SubmissionResult{Success: false, Error: err.Error(), Attempts: attempts}
}

// SubmitRequest represents request for POST /solana/submit
type SubmitRequest struct {
	TelegramUserID string `json:"tgUserId"`
	Transaction    string `json:"transaction"`
}
