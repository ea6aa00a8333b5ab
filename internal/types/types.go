// Package types defines shared types used across the trading system.
package types

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderSide represents the direction of an order.
type OrderSide string

const (
	SideBuy  OrderSide = "buy"
	SideSell OrderSide = "sell"
)

// Opposite returns the opposite order side.
func (s OrderSide) Opposite() OrderSide {
	if s == SideBuy {
		return SideSell
	}
	return SideBuy
}

// OrderType represents the execution type of an order.
type OrderType string

const (
	OrderTypeMarket    OrderType = "market"
	OrderTypeLimit     OrderType = "limit"
	OrderTypeStop      OrderType = "stop"
	OrderTypeStopLimit OrderType = "stop_limit"
)

// TimeInForce represents how long an order remains active.
type TimeInForce string

const (
	TimeInForceDay TimeInForce = "day"
	TimeInForceGTC TimeInForce = "gtc"
	TimeInForceIOC TimeInForce = "ioc"
	TimeInForceFOK TimeInForce = "fok"
)

// OrderStatus represents the lifecycle state of an order.
type OrderStatus string

const (
	OrderStatusAccepted OrderStatus = "accepted"
	OrderStatusFilled   OrderStatus = "filled"
	OrderStatusCanceled OrderStatus = "canceled"
	OrderStatusRejected OrderStatus = "rejected"
)

// IsTerminal returns true once no further transitions are permitted.
func (s OrderStatus) IsTerminal() bool {
	switch s {
	case OrderStatusFilled, OrderStatusCanceled, OrderStatusRejected:
		return true
	default:
		return false
	}
}

// Leg is one component of a multi-leg order target.
type Leg struct {
	Symbol string
	Ratio  int
}

// OrderTarget is either a single symbol or a list of legs. Exactly one of
// the two forms is populated; use Single or MultiLeg to construct it.
type OrderTarget struct {
	Symbol string
	Legs   []Leg
}

// Single returns a target for one symbol.
func Single(symbol string) OrderTarget {
	return OrderTarget{Symbol: symbol}
}

// MultiLeg returns a target composed of several legs.
func MultiLeg(legs ...Leg) OrderTarget {
	return OrderTarget{Legs: legs}
}

// Resolve returns the canonical trading symbol for the target: the symbol
// itself for a single target, the first leg's symbol for a multi-leg one.
func (t OrderTarget) Resolve() (string, error) {
	if t.Symbol != "" {
		return t.Symbol, nil
	}
	if len(t.Legs) > 0 {
		return t.Legs[0].Symbol, nil
	}
	return "", ErrEmptyTarget
}

// OrderRequest is a request to submit an order.
type OrderRequest struct {
	ClientOrderID string
	Target        OrderTarget
	Qty           decimal.Decimal
	Side          OrderSide
	Type          OrderType
	TimeInForce   TimeInForce
	LimitPrice    *decimal.Decimal
	StopPrice     *decimal.Decimal
}

// Order is the stored representation of a submitted order.
type Order struct {
	ID             string
	ClientOrderID  string
	Target         OrderTarget
	Symbol         string
	Qty            decimal.Decimal
	Side           OrderSide
	Type           OrderType
	TimeInForce    TimeInForce
	LimitPrice     *decimal.Decimal
	StopPrice      *decimal.Decimal
	Status         OrderStatus
	FilledQty      decimal.Decimal
	FilledAvgPrice decimal.Decimal
	RejectReason   string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// PositionSide represents the direction of a held position.
type PositionSide string

const (
	PositionSideLong  PositionSide = "long"
	PositionSideShort PositionSide = "short"
)

// Position is a held quantity of a symbol. Qty is always positive; a
// position is removed rather than kept at zero.
type Position struct {
	Symbol        string
	Qty           decimal.Decimal
	Side          PositionSide
	AvgEntryPrice decimal.Decimal
}

// Account is a snapshot of the account's financial state.
type Account struct {
	ID              string
	Status          string
	Currency        string
	Cash            decimal.Decimal
	BuyingPower     decimal.Decimal
	PortfolioValue  decimal.Decimal
	ShortingEnabled bool
}

// OrderFilter selects which orders GetOrders returns.
type OrderFilter string

const (
	OrderFilterOpen   OrderFilter = "open"
	OrderFilterClosed OrderFilter = "closed"
	OrderFilterAll    OrderFilter = "all"
)
