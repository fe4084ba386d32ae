package types

// ActionType identifies the kind of action an agent proposes for a tick.
type ActionType string

const (
	ActionNone            ActionType = "none"
	ActionTrade           ActionType = "trade"
	ActionAddLiquidity    ActionType = "add_liquidity"
	ActionRemoveLiquidity ActionType = "remove_liquidity"
)

// TradeDirection indicates which token a trader spends in a swap.
type TradeDirection string

const (
	// DirectionBuy spends token B and receives token A.
	DirectionBuy TradeDirection = "buy"
	// DirectionSell spends token A and receives token B.
	DirectionSell TradeDirection = "sell"
)

// Action is the single message an agent hands to the environment each tick.
// Which fields are meaningful depends on Type:
//   - ActionTrade uses Amount (token units spent) and Direction.
//   - ActionAddLiquidity uses AmountA and AmountB as token amounts.
//   - ActionRemoveLiquidity uses AmountA and AmountB as fractions in [0,1];
//     the environment applies the smaller of the two.
//   - ActionNone ignores all fields.
type Action struct {
	Type      ActionType
	Direction TradeDirection
	Amount    float64
	AmountA   float64
	AmountB   float64
}

// NoAction returns the inert action.
func NoAction() Action {
	return Action{Type: ActionNone}
}
