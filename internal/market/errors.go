package market

import "errors"

// Error kinds for the market-data boundary. Callers classify failures with
// errors.Is; the concrete messages wrap these sentinels with context.
var (
	// ErrConfig indicates a missing upstream endpoint or credential. Checked
	// at first use, never at startup. Not retryable.
	ErrConfig = errors.New("upstream not configured")

	// ErrUpstream indicates a non-success status or malformed payload from
	// the provider. Recovered by the refresh scheduler's normal cadence.
	ErrUpstream = errors.New("upstream request failed")

	// ErrNotFound indicates the provider does not recognise the asset id.
	ErrNotFound = errors.New("asset not found")

	// ErrValidation indicates a caller-supplied parameter was invalid. The
	// request is rejected before anything is sent upstream.
	ErrValidation = errors.New("invalid parameter")
)
