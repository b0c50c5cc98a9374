// Package access decides whether a wallet may participate in a room.
// The decision is advisory: it keeps the UI from offering a send the chain
// would reject, it is not the security boundary.
package access

import (
	"context"
	"log/slog"
	"time"

	"gatechat/contract"
	"gatechat/domain"
)

type Decision int

const (
	Admit Decision = iota
	DenyNoWallet
	DenyInsufficientBalance
	DenyUnknown
)

func (d Decision) String() string {
	switch d {
	case Admit:
		return "admit"
	case DenyNoWallet:
		return "deny_no_wallet"
	case DenyInsufficientBalance:
		return "deny_insufficient_balance"
	case DenyUnknown:
		return "deny_unknown"
	default:
		return "unknown"
	}
}

type Gate struct {
	log           *slog.Logger
	oracle        contract.BalanceOracle
	oracleTimeout time.Duration
}

func NewGate(log *slog.Logger, oracle contract.BalanceOracle, oracleTimeout time.Duration) *Gate {
	return &Gate{log: log, oracle: oracle, oracleTimeout: oracleTimeout}
}

// CanAccess evaluates a room policy against the current wallet identity.
// Ungated rooms admit unconditionally. A gated room requires a connected
// wallet and an oracle balance of at least the policy minimum, compared at
// the token's declared decimal precision. An inconclusive oracle read
// fails closed with DenyUnknown.
func (g *Gate) CanAccess(ctx context.Context, policy domain.RoomPolicy, identity domain.WalletIdentity) Decision {
	if !policy.IsTokenGated {
		return Admit
	}
	if identity.Status != domain.Connected {
		return DenyNoWallet
	}
	if policy.RequiredToken == nil {
		// A gated room without a token reference cannot be checked.
		g.log.Error("Gated room has no token reference", "room", policy.ID)
		return DenyUnknown
	}
	token := *policy.RequiredToken

	minimum, err := domain.ParseUnits(policy.MinTokenAmount, token.Decimals)
	if err != nil {
		g.log.Error("Unparseable policy minimum", "room", policy.ID, "min", policy.MinTokenAmount, "error", err)
		return DenyUnknown
	}

	oracleCtx, cancel := context.WithTimeout(ctx, g.oracleTimeout)
	defer cancel()

	balance, err := g.oracle.BalanceOf(oracleCtx, identity.Address, token)
	if err != nil {
		g.log.Warn("Balance oracle unreachable", "room", policy.ID, "token", token.Symbol, "error", err)
		return DenyUnknown
	}

	if balance.Cmp(minimum) >= 0 {
		return Admit
	}
	return DenyInsufficientBalance
}
