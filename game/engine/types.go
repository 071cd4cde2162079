package engine

// TileType represents the kind of a board tile
type TileType string

const (
	TileProperty TileType = "property"
	TileTransit  TileType = "transit"
	TileUtility  TileType = "utility"
	TileTax      TileType = "tax"
	TileJail     TileType = "jail"
	TileGoToJail TileType = "go_to_jail"
	TileEvent    TileType = "event"
	TileStart    TileType = "start"
	TileCasino   TileType = "casino"
	TileSlots    TileType = "slots"
	TilePark     TileType = "park"

	// Validation constants
	MinBoardSize   = 12
	MaxBoardSize   = 64
	MinPlayers     = 2
	MaxPlayers     = 8
	MaxHouses      = 4
	RentLevels     = 6
	DiceSides      = 6
	MaxRerouteHops = 3
	MaxLogEntries  = 500

	// StateID is the creditor/bidder identifier used for the state itself.
	StateID = "state"
)

// Purchasable reports whether tiles of this type can be owned
func (t TileType) Purchasable() bool {
	return t == TileProperty || t == TileTransit || t == TileUtility
}

// OwnerKind distinguishes who holds a tile
type OwnerKind string

const (
	OwnerNone   OwnerKind = ""
	OwnerPlayer OwnerKind = "player"
	OwnerState  OwnerKind = "state"
	OwnerEscrow OwnerKind = "escrow"
)

// Owner is the owner reference of a tile. PlayerID is set only for OwnerPlayer.
type Owner struct {
	Kind     OwnerKind `json:"kind,omitempty"`
	PlayerID string    `json:"player_id,omitempty"`
}

// IsPlayer reports whether the owner is the given player
func (o Owner) IsPlayer(id string) bool {
	return o.Kind == OwnerPlayer && o.PlayerID == id
}

// Phase is the per-turn lifecycle state
type Phase string

const (
	PhaseSetup          Phase = "setup"
	PhaseAwaitingRoll   Phase = "awaiting_roll"
	PhaseMoving         Phase = "moving"
	PhaseLandedDecision Phase = "landed_decision"
	PhaseTurnEnded      Phase = "turn_ended"
	PhaseGameOver       Phase = "game_over"
)

// Weather modifies step counts
type Weather string

const (
	WeatherClear    Weather = "clear"
	WeatherRain     Weather = "rain"
	WeatherStorm    Weather = "storm"
	WeatherTailwind Weather = "tailwind"
)

// AllWeather lists weather values in draw order
var AllWeather = []Weather{WeatherClear, WeatherRain, WeatherStorm, WeatherTailwind}

// Tile represents a single board position
type Tile struct {
	ID        int      `json:"id"`
	Name      string   `json:"name"`
	Type      TileType `json:"type"`
	Price     int      `json:"price,omitempty"`
	Group     string   `json:"group,omitempty"`
	Rent      []int    `json:"rent,omitempty"`
	HouseCost int      `json:"house_cost,omitempty"`
	TaxAmount int      `json:"tax_amount,omitempty"`
	Reroute   bool     `json:"reroute,omitempty"`
	Welfare   bool     `json:"welfare,omitempty"`

	Owner             Owner  `json:"owner"`
	Houses            int    `json:"houses"`
	Hotel             bool   `json:"hotel"`
	Mortgaged         bool   `json:"mortgaged"`
	MortgagePrincipal int    `json:"mortgage_principal,omitempty"`
	BlockedRentTurns  int    `json:"blocked_rent_turns,omitempty"`
	Broken            bool   `json:"broken,omitempty"`
	OccupiedBy        string `json:"occupied_by,omitempty"`
	EvictionTimer     int    `json:"eviction_timer,omitempty"`
}

// Developed reports whether the tile carries any building
func (t *Tile) Developed() bool {
	return t.Houses > 0 || t.Hotel
}

// Player represents a participant
type Player struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Money     int            `json:"money"`
	Position  int            `json:"position"`
	Alive     bool           `json:"alive"`
	Role      Role           `json:"role"`
	IsBot     bool           `json:"is_bot,omitempty"`
	Gender    string         `json:"gender,omitempty"`
	Owned     []int          `json:"owned"`
	JailTurns int            `json:"jail_turns"`
	SkipTurns int            `json:"skip_turns"`
	Cooldowns map[string]int `json:"cooldowns,omitempty"`

	Contraband int            `json:"contraband"`
	Addiction  int            `json:"addiction"`
	Boosted    int            `json:"boosted"`
	Inventory  map[string]int `json:"inventory,omitempty"`
	Offshore   int            `json:"offshore"`
}

// InstrumentKind identifies a financial instrument listed at auction
type InstrumentKind string

const (
	InstrumentShares InstrumentKind = "shares"
	InstrumentOption InstrumentKind = "option"
)

// InstrumentRef points at the instrument under auction
type InstrumentRef struct {
	Kind      InstrumentKind `json:"kind"`
	CompanyID string         `json:"company_id,omitempty"`
	Count     int            `json:"count,omitempty"`
	OptionID  string         `json:"option_id,omitempty"`
}

// AuctionKind is the type of asset under auction
type AuctionKind string

const (
	AuctionTile       AuctionKind = "tile"
	AuctionBundle     AuctionKind = "bundle"
	AuctionInstrument AuctionKind = "instrument"
)

// Auction is the single open auction, if any
type Auction struct {
	ID         string         `json:"id"`
	Kind       AuctionKind    `json:"kind"`
	TileIDs    []int          `json:"tile_ids,omitempty"`
	Instrument *InstrumentRef `json:"instrument,omitempty"`
	Lister     string         `json:"lister,omitempty"`
	HighBid    int            `json:"high_bid"`
	HighBidder string         `json:"high_bidder,omitempty"`
	Bidders    []string       `json:"bidders"`
	TicksLeft  int            `json:"ticks_left"`
	Sealed     bool           `json:"sealed,omitempty"`
}

// TradeProposal is the single pending bilateral trade
type TradeProposal struct {
	ID         string         `json:"id"`
	From       string         `json:"from"`
	To         string         `json:"to"`
	GiveMoney  int            `json:"give_money,omitempty"`
	TakeMoney  int            `json:"take_money,omitempty"`
	GiveTiles  []int          `json:"give_tiles,omitempty"`
	TakeTiles  []int          `json:"take_tiles,omitempty"`
	GiveShares map[string]int `json:"give_shares,omitempty"`
	TakeShares map[string]int `json:"take_shares,omitempty"`
}

// Election is an open regime vote
type Election struct {
	Open  bool           `json:"open"`
	Tally map[Regime]int `json:"tally"`
	Voted []string       `json:"voted"`
}

// Debt is an obligatory payment the debtor could not cover
type Debt struct {
	Debtor   string `json:"debtor"`
	Creditor string `json:"creditor"`
	Amount   int    `json:"amount"`
	// StateShare and PotShare are the parts of Amount routed to the treasury
	// and the corruption pot instead of the creditor.
	StateShare int    `json:"state_share,omitempty"`
	PotShare   int    `json:"pot_share,omitempty"`
	Reason     string `json:"reason"`
}

// Bank holds the remaining building inventory
type Bank struct {
	Houses int `json:"houses"`
	Hotels int `json:"hotels"`
}

// Company is a share-issuing company; the state's holding is Holders[StateID]
type Company struct {
	ID           string         `json:"id"`
	Name         string         `json:"name"`
	SharePrice   int            `json:"share_price"`
	TotalShares  int            `json:"total_shares"`
	Holders      map[string]int `json:"holders"`
	EscrowShares int            `json:"escrow_shares,omitempty"`
}

// Option is a call option on a tile. Holder == Writer means it has not been sold.
type Option struct {
	ID        string `json:"id"`
	TileID    int    `json:"tile_id"`
	Writer    string `json:"writer"`
	Holder    string `json:"holder"`
	Strike    int    `json:"strike"`
	TurnsLeft int    `json:"turns_left"`
}

// MinigameKind enumerates the money-in/money-out minigames
type MinigameKind string

const (
	MinigameCasino MinigameKind = "casino"
	MinigameSlots  MinigameKind = "slots"
)

// MinigameStake is the pending minigame context for the landing player
type MinigameStake struct {
	Kind     MinigameKind `json:"kind"`
	PlayerID string       `json:"player_id"`
	TileID   int          `json:"tile_id"`
	Wager    int          `json:"wager"`
}

// Log kinds
const (
	LogInfo    = "info"
	LogDenied  = "denied"
	LogPolicy  = "policy"
	LogMoney   = "money"
	LogDebt    = "debt"
	LogRegime  = "regime"
	LogMint    = "mint"
	LogAuction = "auction"
	LogTrade   = "trade"
)

// LogEntry is one user-visible log line
type LogEntry struct {
	Turn    int    `json:"turn"`
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// WorldState is the single aggregate root of a game
type WorldState struct {
	ConfigName string   `json:"config_name"`
	Players    []Player `json:"players"`
	Tiles      []Tile   `json:"tiles"`

	Regime          Regime `json:"regime"`
	RegimeTurnsLeft int    `json:"regime_turns_left"`
	Treasury        int    `json:"treasury"`
	CorruptionPot   int    `json:"corruption_pot"`
	EscrowBalance   int    `json:"escrow_balance"`
	Minted          int    `json:"minted"`
	InitialMoney    int    `json:"initial_money"`

	Phase              Phase   `json:"phase"`
	Started            bool    `json:"started"`
	Winner             string  `json:"winner,omitempty"`
	CurrentPlayerIndex int     `json:"current_player_index"`
	Turn               int     `json:"turn"`
	Dice               []int   `json:"dice,omitempty"`
	HasRolled          bool    `json:"has_rolled"`
	RolledDoubles      bool    `json:"rolled_doubles,omitempty"`
	DoublesCount       int     `json:"doubles_count,omitempty"`
	ExtraTurn          bool    `json:"extra_turn,omitempty"`
	PendingMoves       int     `json:"pending_moves"`
	MovementOptions    []int   `json:"movement_options,omitempty"`
	HopUsed            bool    `json:"hop_used,omitempty"`
	PendingPurchase    *int    `json:"pending_purchase,omitempty"`
	Weather            Weather `json:"weather"`

	Auction  *Auction       `json:"auction,omitempty"`
	Trade    *TradeProposal `json:"trade,omitempty"`
	Election *Election      `json:"election,omitempty"`
	Debt     *Debt          `json:"debt,omitempty"`
	Debts    []Debt         `json:"debts,omitempty"` // queued behind Debt, oldest first
	Minigame *MinigameStake `json:"minigame,omitempty"`

	Bank      Bank      `json:"bank"`
	Companies []Company `json:"companies,omitempty"`
	Options   []Option  `json:"options,omitempty"`
	NextID    int       `json:"next_id"`

	Log []LogEntry `json:"log"`
}
