package engine

import (
	"fmt"
	"sort"
)

// Account names besides player ids
const (
	potAccount    = "corruption_pot"
	escrowAccount = "escrow"
)

// Cooldown keys
const (
	cooldownSabotage   = "sabotage"
	cooldownCorruption = "corruption"
)

// logf prepends a log entry, keeping the log bounded
func (w *WorldState) logf(kind, format string, args ...any) {
	entry := LogEntry{Turn: w.Turn, Kind: kind, Message: fmt.Sprintf(format, args...)}
	w.Log = append([]LogEntry{entry}, w.Log...)
	if len(w.Log) > MaxLogEntries {
		w.Log = w.Log[:MaxLogEntries]
	}
}

// Player returns the player with the given id, or nil
func (w *WorldState) Player(id string) *Player {
	for i := range w.Players {
		if w.Players[i].ID == id {
			return &w.Players[i]
		}
	}
	return nil
}

// Current returns the player whose turn it is
func (w *WorldState) Current() *Player {
	if w.CurrentPlayerIndex < 0 || w.CurrentPlayerIndex >= len(w.Players) {
		return nil
	}
	return &w.Players[w.CurrentPlayerIndex]
}

// Tile returns the tile at the given position, or nil
func (w *WorldState) Tile(id int) *Tile {
	if id < 0 || id >= len(w.Tiles) {
		return nil
	}
	return &w.Tiles[id]
}

// AliveCount returns the number of players still in the game
func (w *WorldState) AliveCount() int {
	n := 0
	for _, p := range w.Players {
		if p.Alive {
			n++
		}
	}
	return n
}

// actor resolves the acting player: the named one, or the current player when id is empty
func (w *WorldState) actor(id string) *Player {
	if id == "" {
		return w.Current()
	}
	return w.Player(id)
}

func (w *WorldState) isCurrent(p *Player) bool {
	cur := w.Current()
	return cur != nil && p != nil && cur.ID == p.ID
}

func (w *WorldState) newID(prefix string) string {
	w.NextID++
	return fmt.Sprintf("%s-%d", prefix, w.NextID)
}

// firstTileOfType returns the lowest position holding a tile of type t, or -1
func (w *WorldState) firstTileOfType(t TileType) int {
	for i := range w.Tiles {
		if w.Tiles[i].Type == t {
			return i
		}
	}
	return -1
}

func (p *Player) cooldown(key string) int {
	return p.Cooldowns[key]
}

func (p *Player) setCooldown(key string, turns int) {
	if p.Cooldowns == nil {
		p.Cooldowns = map[string]int{}
	}
	p.Cooldowns[key] = turns
}

// balance returns the cash held by an account
func (w *WorldState) balance(account string) int {
	switch account {
	case StateID:
		return w.Treasury
	case potAccount:
		return w.CorruptionPot
	case escrowAccount:
		return w.EscrowBalance
	}
	if p := w.Player(account); p != nil {
		return p.Money
	}
	return 0
}

func (w *WorldState) adjust(account string, delta int) {
	switch account {
	case StateID:
		w.Treasury += delta
	case potAccount:
		w.CorruptionPot += delta
	case escrowAccount:
		w.EscrowBalance += delta
	default:
		if p := w.Player(account); p != nil {
			p.Money += delta
		}
	}
}

// pay moves amount between accounts if the payer can cover it
func (w *WorldState) pay(from, to string, amount int) bool {
	if amount < 0 {
		return false
	}
	if w.balance(from) < amount {
		return false
	}
	w.adjust(from, -amount)
	w.adjust(to, amount)
	return true
}

// mint creates money in the treasury and records it
func (w *WorldState) mint(amount int, reason string) {
	if amount <= 0 {
		return
	}
	w.Treasury += amount
	w.Minted += amount
	w.logf(LogMint, "%d minted: %s", amount, reason)
}

// payFromTreasury pays a player from the treasury, minting the shortfall
func (w *WorldState) payFromTreasury(playerID string, amount int, reason string) {
	if amount <= 0 {
		return
	}
	if w.Treasury < amount {
		w.mint(amount-w.Treasury, reason)
	}
	w.pay(StateID, playerID, amount)
}

// charge collects an obligatory payment. stateShare and potShare are the parts
// routed to the treasury and the corruption pot instead of the creditor. When
// the debtor cannot cover it, or still owes an earlier obligation, the whole
// amount is owed: merged into a matching debt or queued behind the pending one.
func (w *WorldState) charge(debtor, creditor string, amount, stateShare, potShare int, reason string) bool {
	if amount <= 0 {
		return true
	}
	d := Debt{Debtor: debtor, Creditor: creditor, Amount: amount, StateShare: stateShare, PotShare: potShare, Reason: reason}
	if !w.owes(debtor) && w.balance(debtor) >= amount {
		w.settle(d)
		w.logf(LogMoney, "%s paid %d to %s for %s", w.nameOf(debtor), amount, w.nameOf(creditor), reason)
		return true
	}

	switch {
	case w.Debt == nil:
		w.Debt = &d
		w.logf(LogDebt, "%s cannot pay %d to %s for %s", w.nameOf(debtor), amount, w.nameOf(creditor), reason)
	case w.mergeDebt(d):
		w.logf(LogDebt, "%s owes %d more to %s for %s", w.nameOf(debtor), amount, w.nameOf(creditor), reason)
	default:
		w.Debts = append(w.Debts, d)
		w.logf(LogDebt, "%s owes %d to %s for %s once the pending debt is paid", w.nameOf(debtor), amount, w.nameOf(creditor), reason)
	}
	return false
}

// owes reports whether the account has a pending or queued obligation
func (w *WorldState) owes(account string) bool {
	if w.Debt != nil && w.Debt.Debtor == account {
		return true
	}
	for _, d := range w.Debts {
		if d.Debtor == account {
			return true
		}
	}
	return false
}

// mergeDebt folds d into an outstanding debt between the same two parties
func (w *WorldState) mergeDebt(d Debt) bool {
	into := w.Debt
	if into.Debtor != d.Debtor || into.Creditor != d.Creditor {
		into = nil
		for i := range w.Debts {
			if w.Debts[i].Debtor == d.Debtor && w.Debts[i].Creditor == d.Creditor {
				into = &w.Debts[i]
				break
			}
		}
	}
	if into == nil {
		return false
	}
	into.Amount += d.Amount
	into.StateShare += d.StateShare
	into.PotShare += d.PotShare
	return true
}

// promoteDebt fills an empty pending slot from the queue in order, settling
// queued debts the debtor can already cover
func (w *WorldState) promoteDebt() {
	for w.Debt == nil && len(w.Debts) > 0 {
		d := w.Debts[0]
		w.Debts = w.Debts[1:]
		if len(w.Debts) == 0 {
			w.Debts = nil
		}
		if w.balance(d.Debtor) >= d.Amount {
			w.settle(d)
			w.logf(LogMoney, "%s settled the debt of %d to %s", w.nameOf(d.Debtor), d.Amount, w.nameOf(d.Creditor))
			continue
		}
		w.Debt = &d
		w.logf(LogDebt, "%s now owes %d to %s for %s", w.nameOf(d.Debtor), d.Amount, w.nameOf(d.Creditor), d.Reason)
	}
}

// dropDebtsOf voids the queued debts of a bankrupt account and sends the
// claims it held to the state
func (w *WorldState) dropDebtsOf(account string) {
	kept := w.Debts[:0]
	for _, d := range w.Debts {
		if d.Debtor == account {
			w.logf(LogDebt, "The claim of %s on %s for %s is void", w.nameOf(d.Creditor), w.nameOf(account), d.Reason)
			continue
		}
		if d.Creditor == account {
			d.Creditor = StateID
		}
		kept = append(kept, d)
	}
	if len(kept) == 0 {
		kept = nil
	}
	w.Debts = kept
}

// settle moves a fully covered debt's money to its recipients
func (w *WorldState) settle(d Debt) {
	w.adjust(d.Debtor, -d.Amount)
	w.adjust(StateID, d.StateShare)
	w.adjust(potAccount, d.PotShare)
	w.adjust(d.Creditor, d.Amount-d.StateShare-d.PotShare)
}

func (w *WorldState) nameOf(account string) string {
	switch account {
	case StateID:
		return "the state"
	case potAccount:
		return "the corruption pot"
	case escrowAccount:
		return "escrow"
	}
	if p := w.Player(account); p != nil {
		return p.Name
	}
	return account
}

// redistribute splits amount evenly from the treasury across living players.
// The remainder of the division stays in the treasury.
func (w *WorldState) redistribute(amount int) int {
	alive := w.AliveCount()
	if amount <= 0 || alive == 0 {
		return 0
	}
	if amount > w.Treasury {
		amount = w.Treasury
	}
	share := amount / alive
	if share == 0 {
		return 0
	}
	for i := range w.Players {
		if w.Players[i].Alive {
			w.pay(StateID, w.Players[i].ID, share)
		}
	}
	return share
}

func insertSorted(ids []int, id int) []int {
	i := sort.SearchInts(ids, id)
	if i < len(ids) && ids[i] == id {
		return ids
	}
	ids = append(ids, 0)
	copy(ids[i+1:], ids[i:])
	ids[i] = id
	return ids
}

func removeInt(ids []int, id int) []int {
	out := ids[:0]
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}

func removeString(ids []string, id string) []string {
	out := make([]string, 0, len(ids))
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}

func containsString(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

func containsInt(ids []int, id int) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
