package portfolio

import (
	"math"
	"time"

	"github.com/archwright/barstate/rule"
	"github.com/archwright/barstate/strategy"
	"go.uber.org/zap"
)

const minPrice = 1e-9

// Execute translates an accepted signal into a quantity and a bookkeeping
// update. The execution price is the current bar's close. Execution
// anomalies (wrong-state signal, sub-share sizing, insufficient cash) are
// logged and skipped, never returned as an error.
func (p *Portfolio) Execute(t time.Time, price float64, action rule.SignalAction, sizing strategy.Sizing) {
	switch action {
	case rule.ActionEnterLong:
		p.enter(t, price, sizing, true)
	case rule.ActionEnterShort:
		p.enter(t, price, sizing, false)
	case rule.ActionExitLong:
		p.exit(t, price, true)
	case rule.ActionExitShort:
		p.exit(t, price, false)
	}
}

func (p *Portfolio) enter(t time.Time, price float64, sizing strategy.Sizing, long bool) {
	if p.quantity != 0 {
		p.log.Warn("entry signal ignored: already in a position", zap.Float64("quantity", p.quantity))
		return
	}

	qty, ok := p.sizeEntry(sizing, price)
	if !ok {
		return
	}

	notional := qty * price
	commission := p.commissionPerShare * qty

	signedQty := qty
	action := rule.ActionEnterLong
	var cost float64 // delta applied to cash; negative means cash leaves
	if long {
		cost = -notional - commission
	} else {
		signedQty = -qty
		action = rule.ActionEnterShort
		cost = notional - commission
	}

	if p.cash+cost < 0 {
		p.log.Warn("entry skipped: insufficient cash", zap.Float64("cash", p.cash), zap.Float64("cost", cost))
		return
	}

	p.cash += cost
	p.quantity += signedQty
	p.open = &OpenPositionInfo{
		EntryTime:           t,
		EntryPrice:          price,
		EntrySignedQuantity: signedQty,
		EntryCommission:     commission,
	}

	p.log.Info("entry executed",
		zap.String("action", string(action)),
		zap.Float64("quantity", signedQty),
		zap.Float64("price", price),
		zap.Float64("commission", commission),
		zap.Float64("cash", p.cash))
}

// sizeEntry resolves a sizing policy into an absolute share count.
// Returns ok=false when the computed size is unusable.
func (p *Portfolio) sizeEntry(sizing strategy.Sizing, price float64) (float64, bool) {
	switch sizing.Method {
	case strategy.SizingQuantity:
		return float64(sizing.Quantity), true
	case strategy.SizingCapitalBased:
		if price < minPrice {
			p.log.Warn("entry skipped: execution price too small for capital-based sizing", zap.Float64("price", price))
			return 0, false
		}
		allocated := sizing.Value
		if sizing.IsPercentage {
			allocated = p.initialCapital * sizing.Value / 100
		}
		qty := math.Floor(allocated / price)
		if qty <= 0 {
			p.log.Warn("entry skipped: capital-based sizing produced non-positive quantity", zap.Float64("allocated", allocated), zap.Float64("price", price))
			return 0, false
		}
		return qty, true
	default:
		return 0, false
	}
}

func (p *Portfolio) exit(t time.Time, price float64, long bool) {
	if long && p.quantity <= 0 {
		p.log.Warn("exit-long signal ignored: not long", zap.Float64("quantity", p.quantity))
		return
	}
	if !long && p.quantity >= 0 {
		p.log.Warn("exit-short signal ignored: not short", zap.Float64("quantity", p.quantity))
		return
	}

	qty := math.Abs(p.quantity) // exits are clamped to the full open quantity; no partial exits in v1
	notional := qty * price
	commission := p.commissionPerShare * qty

	var delta float64 // applied to cash
	if long {
		delta = notional - commission
	} else {
		delta = -notional - commission
	}
	if p.cash+delta < 0 {
		p.log.Warn("exit skipped: insufficient cash", zap.Float64("cash", p.cash), zap.Float64("delta", delta))
		return
	}

	p.cash += delta
	if long {
		p.quantity -= qty
	} else {
		p.quantity += qty
	}

	p.closeTrade(t, price, qty, commission, long)
}

// closeTrade appends the round-trip trade record and clears open-position
// memory.
func (p *Portfolio) closeTrade(exitTime time.Time, exitPrice, exitQty, exitCommission float64, long bool) {
	if p.open == nil {
		return
	}
	open := p.open
	p.open = nil

	totalCommission := open.EntryCommission + exitCommission
	entryQtyAbs := math.Abs(open.EntrySignedQuantity)

	var pnl float64
	entryAction := rule.ActionEnterShort
	if long {
		entryAction = rule.ActionEnterLong
		pnl = (exitQty*exitPrice - entryQtyAbs*open.EntryPrice) - totalCommission
	} else {
		pnl = (entryQtyAbs*open.EntryPrice - exitQty*exitPrice) - totalCommission
	}

	trade := Trade{
		Instrument:      p.instrument,
		EntryAction:     entryAction,
		EntryTime:       open.EntryTime,
		ExitTime:        exitTime,
		EntryQuantity:   entryQtyAbs,
		EntryPrice:      open.EntryPrice,
		ExitPrice:       exitPrice,
		TotalCommission: totalCommission,
		PnL:             pnl,
		ReturnPct:       pnl / (entryQtyAbs * open.EntryPrice),
	}
	p.trades = append(p.trades, trade)

	p.log.Info("trade closed",
		zap.Time("entry_time", trade.EntryTime),
		zap.Time("exit_time", trade.ExitTime),
		zap.Float64("pnl", trade.PnL),
		zap.Float64("return_pct", trade.ReturnPct))
}
