package payout

import (
	"errors"
	"math/bits"

	"backend/internal/chain"
)

const bpsDivisor = 10000

var (
	ErrOverflow  = errors.New("revenue overflow")
	ErrUnderflow = errors.New("split underflow")
)

type Params struct {
	PriceAmount uint64
	TotalSold   uint64
	Denom       string
	FeeBps      uint32
	Bounty      *chain.Coin
	Admin       string
	Executor    string
	Payee       string
}

type Result struct {
	Total  uint64
	Fee    uint64
	Bounty uint64
	Payout uint64
	Sends  []chain.BankSend
}

// Compute splits the raffle revenue into protocol fee, executor bounty and
// payee remainder, in that order. The three parts always sum to the exact
// revenue; any arithmetic that cannot be represented is an error, never
// silently wrapped or saturated.
func Compute(p Params) (*Result, error) {
	hi, total := bits.Mul64(p.PriceAmount, p.TotalSold)
	if hi != 0 {
		return nil, ErrOverflow
	}

	result := &Result{Total: total}
	remaining := total

	if p.FeeBps > 0 {
		fee := mulRatio(total, uint64(p.FeeBps))
		if fee > 0 {
			var err error
			remaining, err = checkedSub(remaining, fee)
			if err != nil {
				return nil, err
			}
			result.Fee = fee
			result.Sends = append(result.Sends, chain.BankSend{
				Recipient: p.Admin,
				Amount:    chain.Coin{Denom: p.Denom, Amount: fee},
			})
		}
	}

	if p.Bounty != nil && p.Bounty.Denom == p.Denom && p.Bounty.Amount > 0 {
		pay := p.Bounty.Amount
		if remaining < pay {
			pay = remaining
		}
		if pay > 0 {
			var err error
			remaining, err = checkedSub(remaining, pay)
			if err != nil {
				return nil, err
			}
			result.Bounty = pay
			result.Sends = append(result.Sends, chain.BankSend{
				Recipient: p.Executor,
				Amount:    chain.Coin{Denom: p.Denom, Amount: pay},
			})
		}
	}

	if remaining > 0 {
		result.Payout = remaining
		result.Sends = append(result.Sends, chain.BankSend{
			Recipient: p.Payee,
			Amount:    chain.Coin{Denom: p.Denom, Amount: remaining},
		})
	}

	return result, nil
}

// mulRatio is floor(total * num / 10000) computed in 128 bits so the
// intermediate product cannot overflow. The quotient always fits: num is at
// most 10000, so the high word of the product is below the divisor.
func mulRatio(total, num uint64) uint64 {
	hi, lo := bits.Mul64(total, num)
	quotient, _ := bits.Div64(hi, lo, bpsDivisor)
	return quotient
}

func checkedSub(a, b uint64) (uint64, error) {
	if b > a {
		return 0, ErrUnderflow
	}
	return a - b, nil
}
