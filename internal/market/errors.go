package market

import "errors"

// ErrNoData reports that the upstream returned a well-formed response with
// no usable result set. Callers render it as "not found"; it is never
// silently papered over with stale cache.
var ErrNoData = errors.New("no market data available")

// ErrNotFound reports that a requested asset does not exist upstream.
var ErrNotFound = errors.New("asset not found")
