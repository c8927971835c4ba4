// Package ledger implements the single-writer ledger node. It owns the state
// database, advances the slot clock and applies signed instructions one at
// a time, committing each successful instruction before the next one runs.
package ledger

import (
	"errors"
	"path/filepath"
	"sync"
	"time"

	"github.com/holiman/uint256"
	"github.com/tos-network/feecycle/attestation"
	"github.com/tos-network/feecycle/common"
	"github.com/tos-network/feecycle/core"
	"github.com/tos-network/feecycle/core/rawdb"
	"github.com/tos-network/feecycle/core/state"
	"github.com/tos-network/feecycle/core/types"
	"github.com/tos-network/feecycle/log"
	"github.com/tos-network/feecycle/metrics"
	"github.com/tos-network/feecycle/params"
	"github.com/tos-network/feecycle/schedule"
	"github.com/tos-network/feecycle/token"
	"github.com/tos-network/feecycle/tosdb"
)

var (
	ErrNodeStopped = errors.New("ledger: node stopped")
	errNoGenesis   = errors.New("ledger: empty database and no genesis")
)

var (
	slotGauge    = metrics.NewRegisteredGauge("ledger/slot", "Current slot.")
	pendingGauge = metrics.NewRegisteredGauge("ledger/pending", "Randomness requests waiting for a worker.")
	applyTimer   = metrics.NewRegisteredHistogram("ledger/apply/seconds", "Instruction apply latency.")
)

// Node is a ledger node. All state mutations are serialized.
type Node struct {
	config    *params.ChainConfig
	cfg       Config
	disk      tosdb.Database
	state     *state.Database
	processor *core.StateProcessor
	accounts  *core.GenesisAccounts

	mu      sync.RWMutex // Protects slot, stopped and committed state
	slot    uint64
	stopped bool

	quit chan struct{}
	wg   sync.WaitGroup
	log  log.Logger
}

// New opens the ledger database described by cfg, writing the genesis if
// the database is empty.
func New(cfg Config) (*Node, error) {
	var (
		disk tosdb.Database
		err  error
	)
	if cfg.DataDir == "" {
		disk = rawdb.NewMemoryDatabase()
	} else {
		disk, err = rawdb.NewLevelDBDatabase(filepath.Join(cfg.DataDir, "statedata"), cfg.DatabaseCache, cfg.DatabaseHandles, false)
		if err != nil {
			return nil, err
		}
	}
	n, err := open(cfg, disk)
	if err != nil {
		disk.Close()
		return nil, err
	}
	return n, nil
}

func open(cfg Config, disk tosdb.Database) (*Node, error) {
	sdb := state.NewDatabaseWithCache(disk, cfg.StateCache)
	stored := rawdb.ReadChainConfig(disk)
	genesis := cfg.Genesis

	var (
		config   *params.ChainConfig
		accounts *core.GenesisAccounts
		err      error
	)
	switch {
	case stored == nil && genesis == nil:
		return nil, errNoGenesis
	case stored == nil:
		if accounts, err = genesis.Commit(sdb); err != nil {
			return nil, err
		}
		config = genesis.Config
	default:
		if genesis == nil {
			return nil, errNoGenesis
		}
		if genesis.Config != nil {
			if err := genesis.Config.CheckConfigCompatible(stored); err != nil {
				return nil, err
			}
		}
		if accounts, err = genesis.Accounts(); err != nil {
			return nil, err
		}
		config = stored
	}
	n := &Node{
		config:    config,
		cfg:       cfg,
		disk:      disk,
		state:     sdb,
		processor: core.NewStateProcessor(config, nil),
		accounts:  accounts,
		slot:      rawdb.ReadHeadSlot(disk),
		quit:      make(chan struct{}),
		log:       log.New("chain", config.ChainID),
	}
	n.log.Info("Opened ledger", "slot", n.slot, "schedule", accounts.Schedule, "mint", accounts.Mint)
	return n, nil
}

// Start runs the slot clock unless the node was configured for manual slots.
func (n *Node) Start() {
	if n.cfg.ManualSlots || n.config.SlotDuration <= 0 {
		return
	}
	n.wg.Add(1)
	go n.clockLoop()
}

func (n *Node) clockLoop() {
	defer n.wg.Done()
	ticker := time.NewTicker(n.config.SlotDuration)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			n.AdvanceSlot(1)
		case <-n.quit:
			return
		}
	}
}

// Stop terminates the slot clock and closes the database.
func (n *Node) Stop() error {
	n.mu.Lock()
	if n.stopped {
		n.mu.Unlock()
		return nil
	}
	n.stopped = true
	n.mu.Unlock()

	close(n.quit)
	n.wg.Wait()
	slot := n.Slot()
	rawdb.WriteHeadSlot(n.disk, slot)
	n.log.Info("Ledger stopped", "slot", slot)
	return n.disk.Close()
}

// Config returns the chain configuration.
func (n *Node) Config() *params.ChainConfig { return n.config }

// ChainID returns the chain id instructions are signed for.
func (n *Node) ChainID() uint64 { return n.config.ChainID }

// Accounts returns the identities created at genesis.
func (n *Node) Accounts() *core.GenesisAccounts {
	cpy := *n.accounts
	return &cpy
}

// Slot returns the current slot.
func (n *Node) Slot() uint64 {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.slot
}

// AdvanceSlot moves the slot clock forward by delta slots.
func (n *Node) AdvanceSlot(delta uint64) uint64 {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.slot += delta
	slotGauge.Set(float64(n.slot))
	return n.slot
}

// Apply verifies and executes si at the current slot and commits its state
// changes. A failing instruction leaves no trace in the ledger.
func (n *Node) Apply(si *types.SignedInstruction) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.stopped {
		return ErrNodeStopped
	}
	start := time.Now()
	defer func() { applyTimer.Observe(time.Since(start).Seconds()) }()

	statedb := state.New(n.state)
	if err := n.processor.Process(si, statedb, n.slot); err != nil {
		statedb.Discard()
		n.log.Debug("Instruction rejected", "slot", n.slot, "err", err)
		return err
	}
	if err := statedb.Commit(n.slot); err != nil {
		n.log.Error("Failed to commit state", "slot", n.slot, "err", err)
		return err
	}
	pendingGauge.Set(float64(attestation.Program{}.PendingCount(statedb)))
	return nil
}

// view returns a read-only view of the committed state. Callers hold n.mu.
func (n *Node) view() *state.StateDB { return state.New(n.state) }

// Schedule returns the schedule record.
func (n *Node) Schedule() (*schedule.Record, error) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return schedule.ReadRecord(n.view(), n.accounts.Schedule)
}

// PendingRequests returns the triggered requests that are due at the current
// slot.
func (n *Node) PendingRequests() []*attestation.Request {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return attestation.Program{}.PendingRequests(n.view(), n.slot)
}

// Request returns the request at addr.
func (n *Node) Request(addr common.Address) (*attestation.Request, error) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return attestation.Program{}.Request(n.view(), addr)
}

// Mint returns the governed mint.
func (n *Node) Mint() (*token.Mint, error) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return token.Program{}.Mint(n.view(), n.accounts.Mint)
}

// TokenAccount returns the token account at addr.
func (n *Node) TokenAccount(addr common.Address) (*token.Account, error) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return token.Program{}.Account(n.view(), addr)
}

// Nonce returns the nonce the next instruction signed first by addr must
// carry.
func (n *Node) Nonce(addr common.Address) uint64 {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return core.GetNonce(n.view(), addr)
}

// Balance returns the native balance of addr.
func (n *Node) Balance(addr common.Address) *uint256.Int {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.view().GetBalance(addr)
}
