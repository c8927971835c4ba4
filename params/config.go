// Copyright 2024 The gtos Authors
// This file is part of the gtos library.
//
// The gtos library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The gtos library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the gtos library. If not, see <http://www.gnu.org/licenses/>.

package params

import (
	"fmt"
	"time"
)

// ChainConfig is the core config which determines the ledger settings.
type ChainConfig struct {
	ChainID uint64 `json:"chainId"`

	// SlotDuration is the wall-clock length of one slot.
	SlotDuration time.Duration `json:"slotDuration"`
}

var (
	// MainnetChainConfig is the chain parameters to run a node on the main network.
	MainnetChainConfig = &ChainConfig{
		ChainID:      1,
		SlotDuration: SlotDuration,
	}

	// TestChainConfig runs slots fast for local development.
	TestChainConfig = &ChainConfig{
		ChainID:      1337,
		SlotDuration: 10 * time.Millisecond,
	}
)

// String implements the fmt.Stringer interface.
func (c *ChainConfig) String() string {
	return fmt.Sprintf("{ChainID: %d SlotDuration: %v}", c.ChainID, c.SlotDuration)
}

// CheckConfigCompatible rejects opening a ledger created for another chain.
func (c *ChainConfig) CheckConfigCompatible(stored *ChainConfig) error {
	if stored == nil {
		return nil
	}
	if c.ChainID != stored.ChainID {
		return fmt.Errorf("mismatching chain id: stored %d, have %d", stored.ChainID, c.ChainID)
	}
	return nil
}
