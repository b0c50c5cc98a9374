// Package rooms provides RoomLoader implementations: the built-in default
// room set and a JSON file loader for custom deployments.
package rooms

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"gatechat/contract"
	"gatechat/domain"
)

type StaticLoader struct{}

var _ contract.RoomLoader = StaticLoader{}

// Load returns the default room set.
func (StaticLoader) Load(_ context.Context) ([]domain.RoomPolicy, error) {
	return []domain.RoomPolicy{
		{
			ID:          "general",
			Name:        "General",
			Description: "Open discussion for everyone",
			MemberCount: 1337,
		},
		{
			ID:           "hodlers",
			Name:         "Token Hodlers",
			Description:  "Exclusive chat for token holders",
			IsTokenGated: true,
			RequiredToken: &domain.TokenRef{
				Contract: "0x1234000000000000000000000000000000005678",
				Symbol:   "HODL",
				Decimals: 18,
			},
			MinTokenAmount: "100",
			MemberCount:    42,
		},
		{
			ID:           "nft-club",
			Name:         "NFT Collectors",
			Description:  "For verified NFT owners only",
			IsTokenGated: true,
			RequiredToken: &domain.TokenRef{
				Contract: "0x5678000000000000000000000000000000009012",
				Symbol:   "PUNK",
				Decimals: 0,
			},
			MinTokenAmount: "1",
			MemberCount:    89,
		},
		{
			ID:           "dao",
			Name:         "DAO Governance",
			Description:  "Governance discussions and proposals",
			IsTokenGated: true,
			RequiredToken: &domain.TokenRef{
				Contract: "0x9012000000000000000000000000000000003456",
				Symbol:   "GOV",
				Decimals: 18,
			},
			MinTokenAmount: "1000",
			MemberCount:    156,
			IsPrivate:      true,
		},
	}, nil
}

// FileLoader reads room policies from a JSON file holding an array of
// RoomPolicy objects.
type FileLoader struct {
	Path string
}

var _ contract.RoomLoader = FileLoader{}

func (l FileLoader) Load(_ context.Context) ([]domain.RoomPolicy, error) {
	raw, err := os.ReadFile(l.Path)
	if err != nil {
		return nil, fmt.Errorf("reading rooms file %q: %w", l.Path, err)
	}

	var policies []domain.RoomPolicy
	if err := json.Unmarshal(raw, &policies); err != nil {
		return nil, fmt.Errorf("decoding rooms file %q: %w", l.Path, err)
	}
	return policies, nil
}
