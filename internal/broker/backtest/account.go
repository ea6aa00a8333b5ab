package backtest

import (
	"github.com/shopspring/decimal"
	"tradeforge/internal/types"
)

// accountLedger owns all cash mutations for one engine instance. The engine
// serializes access; the ledger itself is not locked.
type accountLedger struct {
	id          string
	currency    string
	initialCash decimal.Decimal
	cash        decimal.Decimal
}

func newAccountLedger(id, currency string, initialCash decimal.Decimal) *accountLedger {
	return &accountLedger{
		id:          id,
		currency:    currency,
		initialCash: initialCash,
		cash:        initialCash,
	}
}

func (a *accountLedger) debit(amount decimal.Decimal) {
	a.cash = a.cash.Sub(amount)
}

func (a *accountLedger) credit(amount decimal.Decimal) {
	a.cash = a.cash.Add(amount)
}

func (a *accountLedger) setCash(v decimal.Decimal) {
	a.cash = v
}

func (a *accountLedger) reset() {
	a.cash = a.initialCash
}

// snapshot returns the account view. positionsValue is the mark-to-market
// value of all held positions.
func (a *accountLedger) snapshot(positionsValue decimal.Decimal) types.Account {
	return types.Account{
		ID:              a.id,
		Status:          "ACTIVE",
		Currency:        a.currency,
		Cash:            a.cash,
		BuyingPower:     a.cash.Mul(decimal.NewFromInt(marginMultiplier)),
		PortfolioValue:  a.cash.Add(positionsValue),
		ShortingEnabled: false,
	}
}
