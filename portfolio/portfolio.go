// Package portfolio tracks cash, position, open-position memory,
// equity-curve samples, and the closed round-trip trade log for one
// backtest run, plus the execution translator that turns an accepted
// signal into a bookkeeping update.
package portfolio

import (
	"time"

	"github.com/archwright/barstate/applog"
	"github.com/archwright/barstate/rule"
	"go.uber.org/zap"
)

// OpenPositionInfo is the per-instrument record created on entry and
// consumed on exit.
type OpenPositionInfo struct {
	EntryTime           time.Time
	EntryPrice          float64
	EntrySignedQuantity float64
	EntryCommission     float64
}

// Trade is one closed round trip.
type Trade struct {
	Instrument      string
	EntryAction     rule.SignalAction // EnterLong or EnterShort
	EntryTime       time.Time
	ExitTime        time.Time
	EntryQuantity   float64 // absolute value
	EntryPrice      float64
	ExitPrice       float64
	TotalCommission float64
	PnL             float64
	ReturnPct       float64
}

// Sample is one equity-curve point.
type Sample struct {
	Timestamp      time.Time
	Cash           float64
	PositionsValue float64
	TotalEquity    float64
}

// Portfolio is owned by exactly one backtest run.
type Portfolio struct {
	initialCapital     float64
	commissionPerShare float64

	cash     float64
	quantity float64 // signed; >0 long, <0 short, 0 flat

	instrument string
	open       *OpenPositionInfo

	trades []Trade
	equity []Sample

	log *applog.Logger
}

// New constructs a Portfolio for one instrument. initialCapital must be
// positive.
func New(instrument string, initialCapital, commissionPerShare float64, log *applog.Logger) *Portfolio {
	return &Portfolio{
		initialCapital:     initialCapital,
		commissionPerShare: commissionPerShare,
		cash:               initialCapital,
		instrument:         instrument,
		log:                log,
	}
}

// Cash returns current cash.
func (p *Portfolio) Cash() float64 { return p.cash }

// Quantity returns the current signed quantity held.
func (p *Portfolio) Quantity() float64 { return p.quantity }

// Trades returns the closed round-trip trade log, in the order they closed.
func (p *Portfolio) Trades() []Trade { return p.trades }

// EquityCurve returns the recorded equity samples, in timestamp order.
func (p *Portfolio) EquityCurve() []Sample { return p.equity }

// InitialCapital returns the capital the portfolio was seeded with.
func (p *Portfolio) InitialCapital() float64 { return p.initialCapital }

// RecordTimestampValue appends an equity sample at t using price for
// mark-to-market, unless the last sample already has timestamp t — at
// most one sample per distinct timestamp.
func (p *Portfolio) RecordTimestampValue(t time.Time, price float64, priceKnown bool) {
	if len(p.equity) > 0 && p.equity[len(p.equity)-1].Timestamp.Equal(t) {
		return
	}

	positionsValue := 0.0
	if p.quantity != 0 {
		if priceKnown {
			positionsValue = p.quantity * price
		} else {
			p.log.Warn("mark price missing for open position, contributing zero", zap.String("instrument", p.instrument))
		}
	}

	p.equity = append(p.equity, Sample{
		Timestamp:      t,
		Cash:           p.cash,
		PositionsValue: positionsValue,
		TotalEquity:    p.cash + positionsValue,
	})
}
