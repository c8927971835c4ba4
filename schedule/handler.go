package schedule

import (
	"fmt"

	"github.com/holiman/uint256"
	"github.com/tos-network/feecycle/attestation"
	"github.com/tos-network/feecycle/callback"
	"github.com/tos-network/feecycle/common"
	"github.com/tos-network/feecycle/core/vm"
	"github.com/tos-network/feecycle/log"
	"github.com/tos-network/feecycle/metrics"
	"github.com/tos-network/feecycle/params"
	"github.com/tos-network/feecycle/request"
	"github.com/tos-network/feecycle/sysaction"
	"github.com/tos-network/feecycle/token"
)

var (
	cycleMeter  = metrics.NewRegisteredCounter("schedule/cycles", "Accepted fee updates.")
	feeGauge    = metrics.NewRegisteredGauge("schedule/fee_bp", "Transfer fee applied by the last accepted update.")
	burnedMeter = metrics.NewRegisteredCounter("schedule/burned", "Withheld tokens burned.")
)

// FeeSetter changes the transfer fee of a mint.
type FeeSetter interface {
	SetTransferFee(db vm.StateDB, mint common.Address, authority sysaction.Authority, feeBP uint16, maxFee uint64) error
}

// TokenLedger is the token program as used by the schedule.
type TokenLedger interface {
	FeeSetter
	Mint(db vm.StateDB, mint common.Address) (*token.Mint, error)
	Account(db vm.StateDB, acct common.Address) (*token.Account, error)
	CreateAccount(db vm.StateDB, mint, owner common.Address) (common.Address, error)
	WithdrawWithheldFromAccounts(db vm.StateDB, mint, dest common.Address, authority sysaction.Authority, sources []common.Address) (*uint256.Int, error)
	WithdrawWithheldFromMint(db vm.StateDB, mint, dest common.Address, authority sysaction.Authority) (*uint256.Int, error)
	Burn(db vm.StateDB, acct common.Address, authority sysaction.Authority, amount *uint256.Int) error
}

// RequestQueue is the attested request queue as used by the schedule.
type RequestQueue interface {
	HasState(db vm.StateDB, addr common.Address) bool
	Function(db vm.StateDB, addr common.Address) (*attestation.Function, error)
	Request(db vm.StateDB, addr common.Address) (*attestation.Request, error)
	InitRequest(db vm.StateDB, args *attestation.InitRequestArgs, payer sysaction.Authority) error
	TriggerRequest(db vm.StateDB, req common.Address, authority sysaction.Authority, validAfter uint64) error
	CompleteRequest(db vm.StateDB, req common.Address, authority sysaction.Authority) error
}

var (
	_ TokenLedger  = token.Program{}
	_ RequestQueue = attestation.Program{}
)

func init() {
	sysaction.DefaultRegistry.Register(params.FeeScheduleProgramAddress, NewHandler(attestation.Program{}, token.Program{}))
}

// Handler implements sysaction.Handler for the fee schedule program.
type Handler struct {
	queue  RequestQueue
	tokens TokenLedger
	fees   FeeSetter
}

// NewHandler returns a handler using queue for randomness requests and
// tokens for fee changes and custody.
func NewHandler(queue RequestQueue, tokens TokenLedger) *Handler {
	return &Handler{queue: queue, tokens: tokens, fees: tokens}
}

// WithFeeSetter returns a copy of h that changes fees through fees.
func (h *Handler) WithFeeSetter(fees FeeSetter) *Handler {
	cpy := *h
	cpy.fees = fees
	return &cpy
}

func (h *Handler) CanHandle(kind sysaction.ActionKind) bool {
	switch kind {
	case sysaction.ActionScheduleInit,
		sysaction.ActionTriggerUpdate,
		sysaction.ActionCollectAndBurnFromAccounts,
		sysaction.ActionCollectAndBurnFromMint:
		return true
	}
	return false
}

func (h *Handler) Handle(ctx *sysaction.Context, sa *sysaction.SysAction) error {
	switch sa.Action {
	case sysaction.ActionScheduleInit:
		return h.handleInit(ctx, sa)
	case sysaction.ActionTriggerUpdate:
		return h.handleTriggerUpdate(ctx, sa)
	case sysaction.ActionCollectAndBurnFromAccounts:
		return h.handleCollectAndBurn(ctx, false)
	case sysaction.ActionCollectAndBurnFromMint:
		return h.handleCollectAndBurn(ctx, true)
	}
	return nil
}

// authority returns the derived authority the record acts with.
func (rec *Record) authority() (sysaction.Authority, error) {
	return sysaction.DerivedAuthority(params.FeeScheduleProgramAddress, []byte(params.GlobalSeed), []byte{rec.Bump})
}

func external(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrExternalService, op, err)
}

func mismatch(what string, have, want common.Address) error {
	return fmt.Errorf("%w: %s is %s, want %s", ErrAccountMismatch, what, have, want)
}

// unbound reports a callback identity that differs from the one bound at
// init. Callbacks are untrusted input, so every such difference is an
// authenticity failure.
func unbound(what string, have, want common.Address) error {
	return fmt.Errorf("%w: %s is %s, want %s", ErrAuthenticityMismatch, what, have, want)
}

// arm creates and triggers request req for the next cycle of rec. The
// request fee is paid by payer.
func (h *Handler) arm(db vm.StateDB, rec *Record, req common.Address, payer, auth sysaction.Authority, slot uint64) error {
	p := &request.Params{
		ProgramID: params.FeeScheduleProgramAddress,
		MaxValue:  params.MaxRandValue,
		Global:    rec.Address,
		Mint:      rec.Mint,
	}
	args := &attestation.InitRequestArgs{
		Request:      req,
		Function:     rec.Function,
		Authority:    rec.Address,
		Params:       p.Encode(),
		MaxParamsLen: params.MaxContainerParamsLen,
		Slot:         slot,
	}
	if err := h.queue.InitRequest(db, args, payer); err != nil {
		return external("init request", err)
	}
	if err := h.queue.TriggerRequest(db, req, auth, rec.NextUpdateDueAt); err != nil {
		return external("trigger request", err)
	}
	rec.ActiveRequest = req
	return nil
}

// handleInit creates the schedule record, sets the initial fee and arms the
// first request.
func (h *Handler) handleInit(ctx *sysaction.Context, sa *sysaction.SysAction) error {
	// ── Validation phase (no state writes) ───────────────────────────────────
	var payload InitPayload
	if err := sysaction.DecodePayload(sa, &payload); err != nil {
		return err
	}
	if len(ctx.Accounts) != initNumAccounts {
		return fmt.Errorf("%w: have %d accounts, want %d", ErrAccountMismatch, len(ctx.Accounts), initNumAccounts)
	}
	acc := ctx.Addresses()

	schedule, bump, err := Address()
	if err != nil {
		return err
	}
	if acc[initIndexSchedule] != schedule {
		return mismatch("schedule", acc[initIndexSchedule], schedule)
	}
	if isInitialized(ctx.StateDB, schedule) {
		return ErrAlreadyInitialized
	}
	if err := checkPrograms(acc[initIndexAttestationProgram], acc[initIndexTokenProgram], acc[initIndexSystemProgram]); err != nil {
		return err
	}
	if !h.queue.HasState(ctx.StateDB, acc[initIndexAttestationState]) {
		return fmt.Errorf("%w: %s is not the attestation state", ErrAccountMismatch, acc[initIndexAttestationState])
	}
	fn, err := h.queue.Function(ctx.StateDB, acc[initIndexFunction])
	if err != nil {
		return external("load function", err)
	}
	if fn.Queue != acc[initIndexQueue] {
		return mismatch("queue", acc[initIndexQueue], fn.Queue)
	}
	req, err := RequestAddress(schedule, 0)
	if err != nil {
		return err
	}
	if acc[initIndexRequest] != req {
		return mismatch("request", acc[initIndexRequest], req)
	}
	escrow, err := attestation.EscrowAddress(req)
	if err != nil {
		return err
	}
	if acc[initIndexEscrow] != escrow {
		return mismatch("escrow", acc[initIndexEscrow], escrow)
	}
	mint, err := h.tokens.Mint(ctx.StateDB, acc[initIndexMint])
	if err != nil {
		return external("load mint", err)
	}
	if mint.TransferFeeConfigAuthority != schedule {
		return mismatch("transfer fee authority", mint.TransferFeeConfigAuthority, schedule)
	}
	if mint.WithdrawWithheldAuthority != schedule {
		return mismatch("withdraw authority", mint.WithdrawWithheldAuthority, schedule)
	}
	payer, err := ctx.SignerAuthority(acc[initIndexPayer])
	if err != nil {
		return err
	}
	funding := uint256.NewInt(payload.Funding)
	if ctx.StateDB.GetBalance(payer.Address).Lt(funding) {
		return fmt.Errorf("%w: need %d", ErrInsufficientFunding, payload.Funding)
	}

	// ── Mutation phase ───────────────────────────────────────────────────────
	rec := &Record{
		Address:          schedule,
		Bump:             bump,
		NextUpdateDueAt:  ctx.Slot + params.InitialUpdateDelaySlots,
		LastUpdate:       ctx.Slot,
		Mint:             mint.Address,
		Function:         fn.Address,
		Queue:            fn.Queue,
		AttestationState: acc[initIndexAttestationState],
		CurrentFeeBP:     params.InitialTransferFeeBP,
	}
	auth, err := rec.authority()
	if err != nil {
		return err
	}
	if !funding.IsZero() {
		ctx.StateDB.SubBalance(payer.Address, funding)
		ctx.StateDB.AddBalance(schedule, funding)
	}
	if err := h.fees.SetTransferFee(ctx.StateDB, rec.Mint, auth, rec.CurrentFeeBP, 0); err != nil {
		return external("set transfer fee", err)
	}
	if _, err := h.tokens.CreateAccount(ctx.StateDB, rec.Mint, schedule); err != nil {
		return external("create token account", err)
	}
	if err := h.arm(ctx.StateDB, rec, req, payer, auth, ctx.Slot); err != nil {
		return err
	}
	writeRecord(ctx.StateDB, rec)

	feeGauge.Set(float64(rec.CurrentFeeBP))
	log.Info("Fee schedule initialized", "schedule", schedule, "mint", rec.Mint,
		"function", rec.Function, "request", req, "due", rec.NextUpdateDueAt)
	return nil
}

func checkPrograms(attestationProgram, tokenProgram, systemProgram common.Address) error {
	if attestationProgram != params.AttestationProgramAddress {
		return mismatch("attestation program", attestationProgram, params.AttestationProgramAddress)
	}
	if tokenProgram != params.TokenProgramAddress {
		return mismatch("token program", tokenProgram, params.TokenProgramAddress)
	}
	if systemProgram != params.SystemProgramAddress {
		return mismatch("system program", systemProgram, params.SystemProgramAddress)
	}
	return nil
}

// handleTriggerUpdate accepts a randomness callback, applies the derived fee
// and delay and arms the request for the next cycle.
func (h *Handler) handleTriggerUpdate(ctx *sysaction.Context, sa *sysaction.SysAction) error {
	// ── Validation phase (no state writes) ───────────────────────────────────
	result, err := callback.DecodeResult(sa.Payload)
	if err != nil {
		return err
	}
	acc, err := callback.ParseAccounts(ctx.Accounts)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrAccountMismatch, err)
	}
	schedule, _, err := Address()
	if err != nil {
		return err
	}
	rec, err := ReadRecord(ctx.StateDB, schedule)
	if err != nil {
		return err
	}

	// 1. Time gate.
	if ctx.Slot < rec.NextUpdateDueAt {
		return fmt.Errorf("%w: slot %d, due at %d", ErrRequestNotReady, ctx.Slot, rec.NextUpdateDueAt)
	}
	// 2. Bounds, on the result truncated to 8 bits.
	upd, err := Derive(ctx.Slot, uint8(result))
	if err != nil {
		return err
	}
	// 3. Authenticity: the bound infrastructure, the bound function's
	// enclave signer and the armed request.
	if acc.Schedule != schedule {
		return unbound("schedule", acc.Schedule, schedule)
	}
	if err := checkBindings(rec, acc); err != nil {
		return err
	}
	fn, err := h.queue.Function(ctx.StateDB, rec.Function)
	if err != nil {
		return external("load function", err)
	}
	if acc.EnclaveSigner != fn.EnclaveSigner || !ctx.IsSigner(acc.EnclaveSigner) {
		return fmt.Errorf("%w: signer %s is not the enclave signer", ErrAuthenticityMismatch, acc.EnclaveSigner)
	}
	if !rec.HasActiveRequest() || acc.Request != rec.ActiveRequest {
		return fmt.Errorf("%w: request %s is not armed", ErrAuthenticityMismatch, acc.Request)
	}
	req, err := h.queue.Request(ctx.StateDB, acc.Request)
	if err != nil {
		return external("load request", err)
	}
	if acc.Escrow != req.Escrow {
		return unbound("escrow", acc.Escrow, req.Escrow)
	}
	next, err := RequestAddress(schedule, rec.RequestCounter+1)
	if err != nil {
		return err
	}
	auth, err := rec.authority()
	if err != nil {
		return err
	}

	// ── Mutation phase ───────────────────────────────────────────────────────
	prev := rec.ActiveRequest
	rec.NextUpdateDelayHours = upd.DelayHours
	rec.NextUpdateDueAt = upd.DueAt
	rec.CurrentFeeBP = upd.FeeBP
	rec.LastUpdate = ctx.Slot
	rec.RequestCounter++
	rec.Cycles++

	if err := h.fees.SetTransferFee(ctx.StateDB, rec.Mint, auth, upd.FeeBP, 0); err != nil {
		return external("set transfer fee", err)
	}
	if err := h.queue.CompleteRequest(ctx.StateDB, prev, auth); err != nil {
		return external("complete request", err)
	}
	if err := h.arm(ctx.StateDB, rec, next, auth, auth, ctx.Slot); err != nil {
		return err
	}
	writeRecord(ctx.StateDB, rec)

	cycleMeter.Inc()
	feeGauge.Set(float64(rec.CurrentFeeBP))
	log.Info("Fee schedule updated", "cycle", rec.Cycles, "result", uint8(result),
		"fee", rec.CurrentFeeBP, "hours", rec.NextUpdateDelayHours, "due", rec.NextUpdateDueAt,
		"request", rec.ActiveRequest)
	return nil
}

// checkBindings compares the infrastructure identities of a callback with
// the ones stored at init.
func checkBindings(rec *Record, acc *callback.Accounts) error {
	if acc.Mint != rec.Mint {
		return unbound("mint", acc.Mint, rec.Mint)
	}
	if acc.Function != rec.Function {
		return unbound("function", acc.Function, rec.Function)
	}
	if acc.Queue != rec.Queue {
		return unbound("queue", acc.Queue, rec.Queue)
	}
	if acc.AttestationState != rec.AttestationState {
		return unbound("attestation state", acc.AttestationState, rec.AttestationState)
	}
	for _, p := range []struct {
		what       string
		have, want common.Address
	}{
		{"attestation program", acc.AttestationProgram, params.AttestationProgramAddress},
		{"token program", acc.TokenProgram, params.TokenProgramAddress},
		{"system program", acc.SystemProgram, params.SystemProgramAddress},
	} {
		if p.have != p.want {
			return unbound(p.what, p.have, p.want)
		}
	}
	return nil
}

// handleCollectAndBurn withdraws withheld fees into the schedule's token
// account and burns its whole balance.
func (h *Handler) handleCollectAndBurn(ctx *sysaction.Context, fromMint bool) error {
	// ── Validation phase (no state writes) ───────────────────────────────────
	if len(ctx.Accounts) < collectNumAccounts {
		return fmt.Errorf("%w: have %d accounts, want at least %d", ErrAccountMismatch, len(ctx.Accounts), collectNumAccounts)
	}
	acc := ctx.Addresses()
	schedule, _, err := Address()
	if err != nil {
		return err
	}
	if acc[collectIndexSchedule] != schedule {
		return mismatch("schedule", acc[collectIndexSchedule], schedule)
	}
	rec, err := ReadRecord(ctx.StateDB, schedule)
	if err != nil {
		return err
	}
	if acc[collectIndexMint] != rec.Mint {
		return mismatch("mint", acc[collectIndexMint], rec.Mint)
	}
	if acc[collectIndexTokenProgram] != params.TokenProgramAddress {
		return mismatch("token program", acc[collectIndexTokenProgram], params.TokenProgramAddress)
	}
	dest, err := token.AccountAddress(schedule, rec.Mint)
	if err != nil {
		return err
	}
	if acc[collectIndexTokenAccount] != dest {
		return mismatch("token account", acc[collectIndexTokenAccount], dest)
	}
	auth, err := rec.authority()
	if err != nil {
		return err
	}

	// ── Mutation phase ───────────────────────────────────────────────────────
	var withdrawn *uint256.Int
	if fromMint {
		withdrawn, err = h.tokens.WithdrawWithheldFromMint(ctx.StateDB, rec.Mint, dest, auth)
	} else {
		withdrawn, err = h.tokens.WithdrawWithheldFromAccounts(ctx.StateDB, rec.Mint, dest, auth, acc[collectNumAccounts:])
	}
	if err != nil {
		return external("withdraw withheld", err)
	}
	holding, err := h.tokens.Account(ctx.StateDB, dest)
	if err != nil {
		return external("load token account", err)
	}
	if err := h.tokens.Burn(ctx.StateDB, dest, auth, holding.Amount); err != nil {
		return external("burn", err)
	}
	burnedMeter.Add(float64(holding.Amount.Uint64()))
	log.Info("Collected and burned withheld fees", "mint", rec.Mint, "withdrawn", withdrawn.Uint64(), "burned", holding.Amount.Uint64())
	return nil
}
