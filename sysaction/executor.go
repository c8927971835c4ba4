package sysaction

import (
	"fmt"

	mapset "github.com/deckarep/golang-set"
	"github.com/tos-network/feecycle/common"
	"github.com/tos-network/feecycle/core/types"
	"github.com/tos-network/feecycle/core/vm"
	"github.com/tos-network/feecycle/log"
	"github.com/tos-network/feecycle/metrics"
)

var (
	actionAppliedMeter  = metrics.NewRegisteredCounterVec("sysaction/applied", "Program actions applied.", "action")
	actionRejectedMeter = metrics.NewRegisteredCounterVec("sysaction/rejected", "Program actions rejected.", "action")
)

// Context carries information available to a program handler.
type Context struct {
	ProgramID common.Address
	Accounts  []types.AccountMeta
	Signers   mapset.Set // verified signer addresses
	Slot      uint64
	StateDB   vm.StateDB
}

// IsSigner reports whether addr signed the instruction.
func (ctx *Context) IsSigner(addr common.Address) bool {
	return ctx.Signers != nil && ctx.Signers.Contains(addr)
}

// Addresses returns the instruction's account addresses in order.
func (ctx *Context) Addresses() []common.Address {
	out := make([]common.Address, len(ctx.Accounts))
	for i, acc := range ctx.Accounts {
		out[i] = acc.Address
	}
	return out
}

// Handler is implemented by native programs.
type Handler interface {
	CanHandle(kind ActionKind) bool
	Handle(ctx *Context, sa *SysAction) error
}

// Registry maps program addresses to their handlers.
type Registry struct{ handlers map[common.Address][]Handler }

// DefaultRegistry is the process-wide handler registry.
var DefaultRegistry = NewRegistry()

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{handlers: make(map[common.Address][]Handler)}
}

// Register adds a handler for program.
func (r *Registry) Register(program common.Address, h Handler) {
	r.handlers[program] = append(r.handlers[program], h)
}

// Programs returns the number of programs with at least one handler.
func (r *Registry) Programs() int { return len(r.handlers) }

func (r *Registry) lookup(program common.Address, kind ActionKind) Handler {
	for _, h := range r.handlers[program] {
		if h.CanHandle(kind) {
			return h
		}
	}
	return nil
}

// Execute decodes data and dispatches it to the handler registered for
// ctx.ProgramID. The handler's writes are applied all-or-nothing: any error
// reverts ctx.StateDB to its state before the call.
func (r *Registry) Execute(ctx *Context, data []byte) error {
	sa, err := Decode(data)
	if err != nil {
		return err
	}
	h := r.lookup(ctx.ProgramID, sa.Action)
	if h == nil {
		return fmt.Errorf("unknown system action %s for program %s", sa.Action, ctx.ProgramID)
	}
	snap := ctx.StateDB.Snapshot()
	if err := h.Handle(ctx, sa); err != nil {
		ctx.StateDB.RevertToSnapshot(snap)
		actionRejectedMeter.WithLabelValues(sa.Action.String()).Inc()
		log.Debug("Program action rejected", "program", ctx.ProgramID, "action", sa.Action, "err", err)
		return err
	}
	actionAppliedMeter.WithLabelValues(sa.Action.String()).Inc()
	return nil
}

// Execute dispatches using the DefaultRegistry.
func Execute(ctx *Context, data []byte) error {
	return DefaultRegistry.Execute(ctx, data)
}
