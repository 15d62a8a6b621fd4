package risk

import (
	"github.com/openclob/matching-engine/pkg/config"
	"github.com/openclob/matching-engine/pkg/logger"
	"github.com/shopspring/decimal"

	orderbookv1 "github.com/openclob/matching-engine/internal/domain/orderbook/v1"
)

// AccountContext is the per-user state the admission rules evaluate. It is
// an explicit value handed to each rule, never process-wide shared state.
type AccountContext struct {
	UserID   string
	Balance  decimal.Decimal
	DailyNet int64
}

// Rule is one named admission predicate. Rules run in registration order
// and the first failure rejects the order.
type Rule struct {
	Name  string
	Check func(account AccountContext, order *orderbookv1.Order) bool
}

// Gate screens orders before they reach the book. A rejected order is
// never presented to the matching engine; the book itself performs no risk
// checks.
type Gate struct {
	rules          []Rule
	accounts       map[string]*AccountContext
	defaultBalance decimal.Decimal
	dailyNetLimit  int64
	enabled        bool
	logger         logger.Interface
}

// NewGate creates a gate with the default rule set: sane order fields, the
// instrument accepting orders, the notional within the account balance,
// and the account's daily net position within its limit.
func NewGate(cfg config.RiskConfig, log logger.Interface) *Gate {
	g := &Gate{
		accounts:       map[string]*AccountContext{},
		defaultBalance: decimal.NewFromInt(cfg.Balance),
		dailyNetLimit:  cfg.DailyNetLimit,
		enabled:        cfg.InstrumentEnabled,
		logger:         log,
	}

	g.rules = []Rule{
		{Name: "order_fields", Check: checkOrderFields},
		{Name: "instrument_enabled", Check: g.checkInstrumentEnabled},
		{Name: "balance", Check: checkBalance},
		{Name: "daily_net_limit", Check: g.checkDailyNet},
	}

	return g
}

// SetInstrumentEnabled halts or resumes order admission for the
// instrument. Resting orders are unaffected.
func (g *Gate) SetInstrumentEnabled(enabled bool) {
	g.enabled = enabled
}

// AddRule appends a custom rule, evaluated after the defaults.
func (g *Gate) AddRule(rule Rule) {
	g.rules = append(g.rules, rule)
}

// Allow reports whether the order may be presented to the book. On
// admission the account's daily net position is updated.
func (g *Gate) Allow(order *orderbookv1.Order) bool {
	if order == nil {
		return false
	}

	account := g.account(order.UserID)
	for _, rule := range g.rules {
		if rule.Check(*account, order) {
			continue
		}
		g.logger.Warn("Order rejected by admission rule",
			logger.Field{Key: "rule", Value: rule.Name},
			logger.Field{Key: "orderID", Value: order.ID},
			logger.Field{Key: "userID", Value: order.UserID},
			logger.Field{Key: "quantity", Value: order.Quantity},
			logger.Field{Key: "price", Value: order.Price.String()},
		)
		return false
	}

	account.DailyNet += signedQuantity(order)
	return true
}

// account returns the user's context, seeding a fresh one from the
// configured defaults on first sight.
func (g *Gate) account(userID string) *AccountContext {
	if account, ok := g.accounts[userID]; ok {
		return account
	}
	account := &AccountContext{
		UserID:  userID,
		Balance: g.defaultBalance,
	}
	g.accounts[userID] = account
	return account
}

func checkOrderFields(_ AccountContext, order *orderbookv1.Order) bool {
	return order.Quantity > 0 && order.Price.IsPositive()
}

func (g *Gate) checkInstrumentEnabled(_ AccountContext, _ *orderbookv1.Order) bool {
	return g.enabled
}

func checkBalance(account AccountContext, order *orderbookv1.Order) bool {
	if !order.IsBuy() {
		return true
	}
	notional := order.Price.Mul(decimal.NewFromInt(order.Quantity))
	return notional.LessThanOrEqual(account.Balance)
}

func (g *Gate) checkDailyNet(account AccountContext, order *orderbookv1.Order) bool {
	net := account.DailyNet + signedQuantity(order)
	if net < 0 {
		net = -net
	}
	return net <= g.dailyNetLimit
}

func signedQuantity(order *orderbookv1.Order) int64 {
	if order.IsBuy() {
		return order.Quantity
	}
	return -order.Quantity
}
