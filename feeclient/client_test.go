package feeclient

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tos-network/feecycle/common"
	"github.com/tos-network/feecycle/core"
	"github.com/tos-network/feecycle/core/types"
	"github.com/tos-network/feecycle/crypto"
	"github.com/tos-network/feecycle/internal/feeapi"
	"github.com/tos-network/feecycle/ledger"
	"github.com/tos-network/feecycle/params"
	"github.com/tos-network/feecycle/schedule"
	"github.com/tos-network/feecycle/worker"
)

type fixedSampler uint8

func (f fixedSampler) Sample(min, max uint8) (uint8, error) { return uint8(f), nil }

func TestWorkerDrivesScheduleOverHTTP(t *testing.T) {
	payerKey, err := crypto.GenerateKey()
	require.NoError(t, err)
	signerKey, err := crypto.GenerateKey()
	require.NoError(t, err)
	payer, signer := crypto.PubkeyToAddress(payerKey), crypto.PubkeyToAddress(signerKey)

	cfg := ledger.Defaults
	cfg.ManualSlots = true
	cfg.Genesis = core.DeveloperGenesis(payer, signer)
	node, err := ledger.New(cfg)
	require.NoError(t, err)
	defer node.Stop()

	srv := httptest.NewServer(feeapi.NewHandler(node, feeapi.Defaults))
	defer srv.Close()
	client := Dial(srv.URL)
	ctx := context.Background()

	chainID, err := client.ChainID(ctx)
	require.NoError(t, err)
	require.Equal(t, params.TestChainConfig.ChainID, chainID)

	_, err = client.Schedule(ctx)
	var apiErr *Error
	require.True(t, errors.As(err, &apiErr))
	require.Equal(t, http.StatusNotFound, apiErr.StatusCode)

	node.AdvanceSlot(100)
	acc, err := client.Accounts(ctx)
	require.NoError(t, err)
	ix, err := schedule.NewInitInstruction(acc.Mint, payer, acc.Queue, acc.Function, 5*params.DefaultRequestFee)
	require.NoError(t, err)
	signed := types.SignInstruction(chainID, ix, payerKey)
	require.NoError(t, client.SubmitInstruction(ctx, signed))

	nonce, err := client.Nonce(ctx, payer)
	require.NoError(t, err)
	require.Equal(t, uint64(1), nonce)

	// Resubmitting the signed init is a replay.
	err = client.SubmitInstruction(ctx, signed)
	require.True(t, errors.As(err, &apiErr))
	require.Equal(t, http.StatusUnprocessableEntity, apiErr.StatusCode)
	require.Contains(t, apiErr.Message, core.ErrNonceTooLow.Error())

	// A second init under a fresh nonce is rejected by the program.
	ix.Nonce = nonce
	err = client.SubmitInstruction(ctx, types.SignInstruction(chainID, ix, payerKey))
	require.True(t, errors.As(err, &apiErr))
	require.Equal(t, http.StatusUnprocessableEntity, apiErr.StatusCode)
	require.Contains(t, apiErr.Message, schedule.ErrAlreadyInitialized.Error())

	rec, err := client.Schedule(ctx)
	require.NoError(t, err)
	require.Equal(t, uint64(105), rec.NextUpdateDueAt)

	svc, err := worker.New(worker.Defaults, client, fixedSampler(7), signerKey)
	require.NoError(t, err)
	n, err := svc.Poll(ctx, chainID)
	require.NoError(t, err)
	require.Zero(t, n, "request not due yet")

	node.AdvanceSlot(5)
	pending, err := client.PendingRequests(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	req, err := client.Request(ctx, pending[0].Address)
	require.NoError(t, err)
	require.Equal(t, pending[0].Params, req.Params)

	n, err = svc.Poll(ctx, chainID)
	require.NoError(t, err)
	require.Equal(t, 1, n)

	rec, err = client.Schedule(ctx)
	require.NoError(t, err)
	require.Equal(t, uint16(0), rec.CurrentFeeBP)
	require.Equal(t, uint8(17), rec.NextUpdateDelayHours)

	mint, err := client.Mint(ctx)
	require.NoError(t, err)
	require.Equal(t, uint16(0), mint.TransferFeeBP)
	require.Equal(t, "1000000000", mint.Supply)

	bal, err := client.Balance(ctx, signer)
	require.NoError(t, err)
	require.Equal(t, params.DefaultRequestFee, bal.Uint64())

	nonce, err = client.Nonce(ctx, signer)
	require.NoError(t, err)
	require.Equal(t, uint64(1), nonce)

	_, err = client.TokenAccount(ctx, common.Address{0x01})
	require.True(t, errors.As(err, &apiErr))
	require.Equal(t, http.StatusNotFound, apiErr.StatusCode)
}
