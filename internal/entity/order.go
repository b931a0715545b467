package entity

// OrderResult is what a venue acknowledges for an accepted market buy.
// Failure is signaled as an error, never as a zero OrderResult.
type OrderResult struct {
	// ID is the venue-assigned order identifier.
	ID string
	// ClientID is the caller-generated identifier the order was
	// submitted under.
	ClientID string
	// Filled reports whether the venue confirmed the fill in the
	// submission response.
	Filled bool
}
