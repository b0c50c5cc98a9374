// Package chain provides a deterministic local stand-in for the real
// chain: a balance oracle with seedable holdings and a transaction
// submitter with a configurable confirmation delay and failure rate.
package chain

import (
	"context"
	"encoding/hex"
	"fmt"
	"math/big"
	"math/rand"
	"sync"
	"time"

	"gatechat/contract"
	"gatechat/domain"

	"golang.org/x/crypto/sha3"
)

type Simulator struct {
	mu             sync.Mutex
	balances       map[balanceKey]*big.Int
	defaultBalance string
	confirmDelay   time.Duration
	failureRate    float64
	rng            *rand.Rand
	nonce          uint64
}

type balanceKey struct {
	holder domain.Address
	token  domain.Address
}

var (
	_ contract.BalanceOracle        = (*Simulator)(nil)
	_ contract.TransactionSubmitter = (*Simulator)(nil)
)

// NewSimulator builds a simulator from config. Seed 0 derives the seed
// from the clock; any other value makes runs reproducible.
func NewSimulator(cfg Config) (*Simulator, error) {
	delay, err := time.ParseDuration(cfg.ConfirmDelay)
	if err != nil {
		return nil, fmt.Errorf("parsing CHAIN_CONFIRM_DELAY: %w", err)
	}
	if cfg.FailureRate < 0 || cfg.FailureRate > 1 {
		return nil, fmt.Errorf("CHAIN_FAILURE_RATE must be in [0,1], got %v", cfg.FailureRate)
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	return &Simulator{
		balances:       make(map[balanceKey]*big.Int),
		defaultBalance: cfg.DefaultBalance,
		confirmDelay:   delay,
		failureRate:    cfg.FailureRate,
		rng:            rand.New(rand.NewSource(seed)),
	}, nil
}

// SetBalance seeds a holder's whole-token balance for a token, scaled by
// the token's decimals.
func (s *Simulator) SetBalance(holder domain.Address, token domain.TokenRef, tokens string) error {
	raw, err := domain.ParseUnits(tokens, token.Decimals)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.balances[balanceKey{holder: holder, token: token.Contract}] = raw
	return nil
}

// BalanceOf returns the seeded balance, falling back to the configured
// default for unknown holders so the demo works without seeding.
func (s *Simulator) BalanceOf(_ context.Context, holder domain.Address, token domain.TokenRef) (*big.Int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if raw, ok := s.balances[balanceKey{holder: holder, token: token.Contract}]; ok {
		return new(big.Int).Set(raw), nil
	}
	return domain.ParseUnits(s.defaultBalance, token.Decimals)
}

// Submit waits out the confirmation delay, then either confirms with a
// derived transaction reference or fails at the configured rate.
func (s *Simulator) Submit(ctx context.Context, room domain.RoomID, content string, sender domain.Address) (contract.Receipt, error) {
	select {
	case <-time.After(s.confirmDelay):
	case <-ctx.Done():
		return contract.Receipt{}, ctx.Err()
	}

	s.mu.Lock()
	s.nonce++
	nonce := s.nonce
	failed := s.rng.Float64() < s.failureRate
	s.mu.Unlock()

	if failed {
		return contract.Receipt{}, fmt.Errorf("transaction reverted: insufficient gas")
	}

	return contract.Receipt{
		TxRef:       txRef(room, content, sender, nonce),
		ConfirmedAt: time.Now(),
	}, nil
}

// txRef derives a stable etherscan-style hash from the submission.
func txRef(room domain.RoomID, content string, sender domain.Address, nonce uint64) string {
	h := sha3.NewLegacyKeccak256()
	fmt.Fprintf(h, "%s|%s|%s|%d", room, sender, content, nonce)
	return "0x" + hex.EncodeToString(h.Sum(nil))
}
