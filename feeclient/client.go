// Package feeclient is a typed client of the ledger node HTTP API.
package feeclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"strings"
	"time"

	"github.com/holiman/uint256"
	"github.com/tos-network/feecycle/attestation"
	"github.com/tos-network/feecycle/common"
	"github.com/tos-network/feecycle/core"
	"github.com/tos-network/feecycle/core/types"
	"github.com/tos-network/feecycle/internal/feeapi"
	"github.com/tos-network/feecycle/schedule"
	"github.com/tos-network/feecycle/worker"
)

// Error is a non-2xx response of the node.
type Error struct {
	StatusCode int
	Message    string
}

func (e *Error) Error() string {
	return fmt.Sprintf("node returned %d: %s", e.StatusCode, e.Message)
}

// Client talks to one ledger node.
type Client struct {
	base string
	http *http.Client
}

// Dial creates a client for the node at rawurl.
func Dial(rawurl string) *Client {
	return NewClient(rawurl, &http.Client{Timeout: 30 * time.Second})
}

// NewClient creates a client for the node at rawurl using hc.
func NewClient(rawurl string, hc *http.Client) *Client {
	return &Client{base: strings.TrimRight(rawurl, "/"), http: hc}
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		var ev feeapi.ErrorView
		if err := json.NewDecoder(resp.Body).Decode(&ev); err != nil || ev.Error == "" {
			ev.Error = http.StatusText(resp.StatusCode)
		}
		return &Error{StatusCode: resp.StatusCode, Message: ev.Error}
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (c *Client) get(ctx context.Context, path string, out interface{}) error {
	return c.do(ctx, http.MethodGet, path, nil, out)
}

func withAddress(route string, addr common.Address) string {
	return strings.Replace(route, ":address", addr.Hex(), 1)
}

// Chain returns the chain id and current slot of the node.
func (c *Client) Chain(ctx context.Context) (*feeapi.ChainInfo, error) {
	var info feeapi.ChainInfo
	if err := c.get(ctx, feeapi.PathChain, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// ChainID returns the chain id instructions must be signed for.
func (c *Client) ChainID(ctx context.Context) (uint64, error) {
	info, err := c.Chain(ctx)
	if err != nil {
		return 0, err
	}
	return info.ChainID, nil
}

// Accounts returns the identities created at genesis.
func (c *Client) Accounts(ctx context.Context) (*core.GenesisAccounts, error) {
	var acc core.GenesisAccounts
	if err := c.get(ctx, feeapi.PathAccounts, &acc); err != nil {
		return nil, err
	}
	return &acc, nil
}

// Schedule returns the schedule record.
func (c *Client) Schedule(ctx context.Context) (*schedule.Record, error) {
	var rec schedule.Record
	if err := c.get(ctx, feeapi.PathSchedule, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// Mint returns the governed mint.
func (c *Client) Mint(ctx context.Context) (*feeapi.MintView, error) {
	var m feeapi.MintView
	if err := c.get(ctx, feeapi.PathMint, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

// PendingRequests returns the randomness requests due for a worker.
func (c *Client) PendingRequests(ctx context.Context) ([]*attestation.Request, error) {
	var reqs []*attestation.Request
	if err := c.get(ctx, feeapi.PathPending, &reqs); err != nil {
		return nil, err
	}
	return reqs, nil
}

// Request returns the request at addr.
func (c *Client) Request(ctx context.Context, addr common.Address) (*attestation.Request, error) {
	var req attestation.Request
	if err := c.get(ctx, withAddress(feeapi.PathRequest, addr), &req); err != nil {
		return nil, err
	}
	return &req, nil
}

// TokenAccount returns the token account at addr.
func (c *Client) TokenAccount(ctx context.Context, addr common.Address) (*feeapi.AccountView, error) {
	var acc feeapi.AccountView
	if err := c.get(ctx, withAddress(feeapi.PathToken, addr), &acc); err != nil {
		return nil, err
	}
	return &acc, nil
}

// Balance returns the native balance of addr.
func (c *Client) Balance(ctx context.Context, addr common.Address) (*uint256.Int, error) {
	var bv feeapi.BalanceView
	if err := c.get(ctx, withAddress(feeapi.PathBalance, addr), &bv); err != nil {
		return nil, err
	}
	b, ok := new(big.Int).SetString(bv.Balance, 10)
	if !ok {
		return nil, fmt.Errorf("invalid balance %q", bv.Balance)
	}
	v, overflow := uint256.FromBig(b)
	if overflow {
		return nil, fmt.Errorf("balance %s overflows 256 bits", bv.Balance)
	}
	return v, nil
}

// Nonce returns the nonce the next instruction signed first by addr must
// carry.
func (c *Client) Nonce(ctx context.Context, addr common.Address) (uint64, error) {
	var nv feeapi.NonceView
	if err := c.get(ctx, withAddress(feeapi.PathNonce, addr), &nv); err != nil {
		return 0, err
	}
	return nv.Nonce, nil
}

// SubmitInstruction hands a signed instruction to the node, which applies
// it at its current slot.
func (c *Client) SubmitInstruction(ctx context.Context, si *types.SignedInstruction) error {
	return c.do(ctx, http.MethodPost, feeapi.PathSubmit, si, nil)
}

var _ worker.Client = (*Client)(nil)
