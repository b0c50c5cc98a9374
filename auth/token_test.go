package auth

import (
	"testing"
	"time"

	"gatechat/domain"

	"github.com/stretchr/testify/require"
)

var connected = domain.WalletIdentity{
	Status:   domain.Connected,
	Address:  "0x742d35cc6634c0532925a3b8d5c4e21a8b0c9823",
	Provider: "metamask",
}

func TestTokenIssuer_Issue_And_Validate_Roundtrip(t *testing.T) {
	req := require.New(t)
	issuer := NewTokenIssuer([]byte("test_signing_key_2026"), time.Hour)

	// Given a token for a connected wallet
	token, err := issuer.Issue(connected)
	req.NoError(err)
	req.NotEmpty(token)

	// When validating it
	claims, err := issuer.Validate(token)

	// Then the wallet identity round-trips
	req.NoError(err)
	req.Equal("0x742d35cc6634c0532925a3b8d5c4e21a8b0c9823", claims.Address)
	req.Equal("metamask", claims.Provider)
	req.Equal("gatechat", claims.Issuer)
}

func TestTokenIssuer_Validate_Rejects_Wrong_Key(t *testing.T) {
	req := require.New(t)
	issuer := NewTokenIssuer([]byte("key_one"), time.Hour)
	other := NewTokenIssuer([]byte("key_two"), time.Hour)

	token, err := issuer.Issue(connected)
	req.NoError(err)

	_, err = other.Validate(token)
	req.Error(err)
}

func TestTokenIssuer_Validate_Rejects_Expired_Token(t *testing.T) {
	req := require.New(t)
	issuer := NewTokenIssuer([]byte("test_signing_key_2026"), -time.Minute)

	token, err := issuer.Issue(connected)
	req.NoError(err)

	_, err = issuer.Validate(token)
	req.Error(err)
}
