package state

import "github.com/tos-network/feecycle/metrics"

var (
	storageCommittedMeter = metrics.NewRegisteredCounter("state/commit/storage", "Storage words written by state commits.")
	balanceCommittedMeter = metrics.NewRegisteredCounter("state/commit/balance", "Balances written by state commits.")
	revertMeter           = metrics.NewRegisteredCounter("state/revert", "Snapshot reverts.")
)
