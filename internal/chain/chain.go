package chain

import (
	"errors"
	"fmt"
	"strings"

	"github.com/btcsuite/btcutil/bech32"
)

// Coin is an amount of a single denomination. For token-paid raffles the
// Denom field carries the token contract address instead of a bank denom.
type Coin struct {
	Denom  string
	Amount uint64
}

func (c Coin) String() string {
	return fmt.Sprintf("%d%s", c.Amount, c.Denom)
}

// PrizeTransfer instructs the custody collaborator to hand the escrowed
// prize token over to the recipient.
type PrizeTransfer struct {
	Contract  string
	TokenID   string
	Recipient string
}

// BankSend instructs the payment collaborator to move funds.
type BankSend struct {
	Recipient string
	Amount    Coin
}

type AddressValidator interface {
	Validate(address string) (string, error)
}

var ErrInvalidAddress = errors.New("invalid address")

// Bech32Validator checks bech32 encoding and, when HRP is set, the
// human-readable prefix. Returns the lowercased canonical form.
type Bech32Validator struct {
	HRP string
}

func (v Bech32Validator) Validate(address string) (string, error) {
	normalized := strings.ToLower(strings.TrimSpace(address))
	hrp, _, err := bech32.Decode(normalized)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrInvalidAddress, address)
	}
	if v.HRP != "" && hrp != v.HRP {
		return "", fmt.Errorf("%w: expected prefix %q, got %q", ErrInvalidAddress, v.HRP, hrp)
	}
	return normalized, nil
}
