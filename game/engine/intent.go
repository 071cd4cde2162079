package engine

import (
	"fmt"

	"github.com/mitchellh/mapstructure"
)

// Intent types
const (
	// lifecycle / debug
	IntentStartGame     = "START_GAME"
	IntentEndTurn       = "END_TURN"
	IntentRestoreState  = "RESTORE_STATE"
	IntentDebugMoney    = "DEBUG_SET_MONEY"
	IntentDebugTeleport = "DEBUG_TELEPORT"
	IntentLogMessage    = "LOG_MESSAGE"

	// special abilities
	IntentUseContraband    = "USE_CONTRABAND"
	IntentSabotage         = "SABOTAGE"
	IntentClaimCorruption  = "CLAIM_CORRUPTION"
	IntentDepositOffshore  = "DEPOSIT_OFFSHORE"
	IntentWithdrawOffshore = "WITHDRAW_OFFSHORE"

	// shop / market
	IntentBuyShares     = "BUY_SHARES"
	IntentSellShares    = "SELL_SHARES"
	IntentBuyContraband = "BUY_CONTRABAND"

	// elections
	IntentCastVote      = "CAST_VOTE"
	IntentCloseElection = "CLOSE_ELECTION"

	// movement
	IntentRollDice  = "ROLL_DICE"
	IntentMoveToken = "MOVE_TOKEN"
	IntentChooseHop = "CHOOSE_HOP"
	IntentSkipHop   = "SKIP_HOP"
	IntentPayBail   = "PAY_BAIL"

	// property
	IntentBuyProperty     = "BUY_PROPERTY"
	IntentDeclineProperty = "DECLINE_PROPERTY"
	IntentMortgage        = "MORTGAGE"
	IntentUnmortgage      = "UNMORTGAGE"
	IntentBuildHouse      = "BUILD_HOUSE"
	IntentSellHouse       = "SELL_HOUSE"
	IntentSellToState     = "SELL_TO_STATE"
	IntentRepair          = "REPAIR"
	IntentWriteOption     = "WRITE_OPTION"
	IntentExerciseOption  = "EXERCISE_OPTION"

	// auction
	IntentStartAuction = "START_AUCTION"
	IntentListShares   = "LIST_SHARES"
	IntentListOption   = "LIST_OPTION"
	IntentPlaceBid     = "PLACE_BID"
	IntentWithdrawBid  = "WITHDRAW_BID"
	IntentAuctionTick  = "AUCTION_TICK"

	// trade
	IntentProposeTrade = "PROPOSE_TRADE"
	IntentAcceptTrade  = "ACCEPT_TRADE"
	IntentRejectTrade  = "REJECT_TRADE"
	IntentCloseTrade   = "CLOSE_TRADE"

	// economy / finance
	IntentPayDebt           = "PAY_DEBT"
	IntentDeclareBankruptcy = "DECLARE_BANKRUPTCY"

	// minigame dispatch
	IntentPlaceWager      = "PLACE_WAGER"
	IntentMinigameResult  = "MINIGAME_RESULT"
	IntentForfeitMinigame = "FORFEIT_MINIGAME"
)

// Intent is one tagged action dispatched to the engine
type Intent struct {
	Type    string         `json:"type"`
	Payload map[string]any `json:"payload,omitempty"`
	// State carries the replacement world for RESTORE_STATE
	State *WorldState `json:"state,omitempty"`
}

// NewIntent builds an intent with the given payload
func NewIntent(intentType string, payload map[string]any) Intent {
	return Intent{Type: intentType, Payload: payload}
}

// RestoreIntent builds a RESTORE_STATE intent
func RestoreIntent(state *WorldState) Intent {
	return Intent{Type: IntentRestoreState, State: state}
}

// Payload shapes. Player is optional where the acting player defaults to the current one.
type (
	playerPayload struct {
		Player string `json:"player"`
	}
	amountPayload struct {
		Player string `json:"player"`
		Amount int    `json:"amount"`
	}
	tilePayload struct {
		Player string `json:"player"`
		Tile   int    `json:"tile"`
	}
	movePayload struct {
		Player string `json:"player"`
		Steps  int    `json:"steps"`
	}
	sharesPayload struct {
		Player  string `json:"player"`
		Company string `json:"company"`
		Count   int    `json:"count"`
		Sealed  bool   `json:"sealed"`
	}
	contrabandPayload struct {
		Player string `json:"player"`
		Dealer string `json:"dealer"`
		Count  int    `json:"count"`
	}
	votePayload struct {
		Player string `json:"player"`
		Regime string `json:"regime"`
	}
	auctionPayload struct {
		Player string `json:"player"`
		Tile   int    `json:"tile"`
		Sealed bool   `json:"sealed"`
	}
	optionPayload struct {
		Player string `json:"player"`
		Tile   int    `json:"tile"`
		Option string `json:"option"`
		Strike int    `json:"strike"`
		Turns  int    `json:"turns"`
		Sealed bool   `json:"sealed"`
	}
	tradePayload struct {
		Player     string         `json:"player"`
		To         string         `json:"to"`
		GiveMoney  int            `json:"give_money"`
		TakeMoney  int            `json:"take_money"`
		GiveTiles  []int          `json:"give_tiles"`
		TakeTiles  []int          `json:"take_tiles"`
		GiveShares map[string]int `json:"give_shares"`
		TakeShares map[string]int `json:"take_shares"`
	}
	minigamePayload struct {
		Player  string `json:"player"`
		Outcome string `json:"outcome"`
		Amount  int    `json:"amount"`
	}
	messagePayload struct {
		Message string `json:"message"`
	}
)

// decodePayload decodes an intent payload into out. JSON numbers arrive as
// float64, so decoding is weakly typed.
func decodePayload(in Intent, out any) error {
	if len(in.Payload) == 0 {
		return nil
	}
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		WeaklyTypedInput: true,
		Result:           out,
	})
	if err != nil {
		return fmt.Errorf("payload decoder: %w", err)
	}
	if err := decoder.Decode(in.Payload); err != nil {
		return fmt.Errorf("decode %s payload: %w", in.Type, err)
	}
	return nil
}
