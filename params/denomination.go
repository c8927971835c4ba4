package params

// These are the multipliers for native balance denominations.
// Example: To get the base-unit value of 2 TOS, use
//
//	uint256.NewInt(2 * params.TOS)
const (
	Unit = 1
	TOS  = 1e9
)

// Default attested-queue economics.
const (
	// DefaultRequestFee is moved from the payer into the request escrow each
	// time a randomness request is created.
	DefaultRequestFee uint64 = 2_000_000 // 0.002 TOS
)
