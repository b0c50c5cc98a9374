package domain

type WalletStatus int

const (
	Disconnected WalletStatus = iota
	Connecting
	Connected
)

func (s WalletStatus) String() string {
	switch s {
	case Disconnected:
		return "disconnected"
	case Connecting:
		return "connecting"
	case Connected:
		return "connected"
	default:
		return "unknown"
	}
}

// WalletIdentity is a point-in-time snapshot of the connection state.
// Invariant: Address is non-empty iff Status == Connected.
type WalletIdentity struct {
	Status   WalletStatus
	Address  Address
	Provider string
}

// ConnectorResult is the outcome of an external wallet-provider handshake
// (injected, WalletConnect, hardware...). The address is still raw text at
// this point and goes through ParseAddress before being trusted.
type ConnectorResult struct {
	Address  string
	Provider string
}
