package worker

import (
	"context"
	"errors"
	"fmt"

	lru "github.com/hashicorp/golang-lru"
	"github.com/tos-network/feecycle/attestation"
	"github.com/tos-network/feecycle/common"
	"github.com/tos-network/feecycle/core/types"
	"github.com/tos-network/feecycle/crypto"
	"github.com/tos-network/feecycle/crypto/ed25519"
	"github.com/tos-network/feecycle/log"
	"github.com/tos-network/feecycle/metrics"
	"github.com/tos-network/feecycle/request"
	"golang.org/x/time/rate"
)

var invocationMeter = metrics.NewRegisteredCounterVec("worker/invocations", "Worker invocations by outcome.", "outcome")

// Client is the ledger node as seen by the worker.
type Client interface {
	ChainID(ctx context.Context) (uint64, error)
	PendingRequests(ctx context.Context) ([]*attestation.Request, error)
	Nonce(ctx context.Context, addr common.Address) (uint64, error)
	SubmitInstruction(ctx context.Context, si *types.SignedInstruction) error
}

// Service polls the node for due requests and answers each one once.
type Service struct {
	cfg     Config
	client  Client
	driver  *Driver
	key     ed25519.PrivateKey
	signer  common.Address
	limiter *rate.Limiter
	seen    *lru.Cache
	log     log.Logger
}

// New creates a worker service signing callbacks with key.
func New(cfg Config, client Client, sampler Sampler, key ed25519.PrivateKey) (*Service, error) {
	signer := crypto.PubkeyToAddress(key)
	driver, err := NewDriver(sampler, signer)
	if err != nil {
		return nil, err
	}
	if cfg.SeenCacheSize <= 0 {
		cfg.SeenCacheSize = Defaults.SeenCacheSize
	}
	if cfg.PollBurst <= 0 {
		cfg.PollBurst = Defaults.PollBurst
	}
	seen, err := lru.New(cfg.SeenCacheSize)
	if err != nil {
		return nil, err
	}
	return &Service{
		cfg:     cfg,
		client:  client,
		driver:  driver,
		key:     key,
		signer:  signer,
		limiter: rate.NewLimiter(rate.Every(cfg.PollInterval), cfg.PollBurst),
		seen:    seen,
		log:     log.New("signer", signer),
	}, nil
}

// Run polls until ctx is cancelled.
func (s *Service) Run(ctx context.Context) error {
	chainID, err := s.client.ChainID(ctx)
	if err != nil {
		return fmt.Errorf("fetch chain id: %w", err)
	}
	s.log.Info("Worker started", "node", s.cfg.Node, "chain", chainID, "interval", s.cfg.PollInterval)
	for {
		if err := s.limiter.Wait(ctx); err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil
			}
			return err
		}
		if _, err := s.Poll(ctx, chainID); err != nil {
			s.log.Warn("Poll failed", "err", err)
		}
	}
}

// Poll services every due request not yet answered and returns the number
// of callbacks submitted.
func (s *Service) Poll(ctx context.Context, chainID uint64) (int, error) {
	reqs, err := s.client.PendingRequests(ctx)
	if err != nil {
		return 0, err
	}
	submitted := 0
	for _, req := range reqs {
		if s.seen.Contains(req.Address) {
			continue
		}
		inv, err := s.driver.Run(req)
		if err != nil {
			s.log.Error("Request not serviced", "id", inv.ID, "request", req.Address, "state", inv.State, "err", err)
			if errors.Is(err, request.ErrArgParseFail) {
				// Malformed parameters will not parse on a later poll either.
				s.seen.Add(req.Address, struct{}{})
				invocationMeter.WithLabelValues("decode_error").Inc()
			} else {
				invocationMeter.WithLabelValues("sampling_error").Inc()
			}
			continue
		}
		nonce, err := s.client.Nonce(ctx, s.signer)
		if err != nil {
			s.log.Warn("Failed to fetch signer nonce", "id", inv.ID, "request", req.Address, "err", err)
			invocationMeter.WithLabelValues("rejected").Inc()
			continue
		}
		inv.Callback.Nonce = nonce
		signed := types.SignInstruction(chainID, inv.Callback, s.key)
		if err := s.client.SubmitInstruction(ctx, signed); err != nil {
			s.log.Warn("Callback rejected", "id", inv.ID, "request", req.Address, "err", err)
			invocationMeter.WithLabelValues("rejected").Inc()
			continue
		}
		s.seen.Add(req.Address, struct{}{})
		invocationMeter.WithLabelValues("submitted").Inc()
		s.log.Info("Callback submitted", "id", inv.ID, "request", req.Address, "result", inv.Result)
		submitted++
	}
	return submitted, nil
}
