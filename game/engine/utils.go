package engine

import (
	"errors"
	"fmt"
)

// TotalMoney sums every cash pool of the world
func TotalMoney(w *WorldState) int {
	total := w.Treasury + w.CorruptionPot + w.EscrowBalance
	for _, p := range w.Players {
		total += p.Money + p.Offshore
	}
	return total
}

// CheckInvariants verifies money conservation, ownership exclusivity, share
// conservation and turn-pointer sanity. It returns every violation found.
func CheckInvariants(w *WorldState) error {
	var errs []error

	if got, want := TotalMoney(w), w.InitialMoney+w.Minted; got != want {
		errs = append(errs, fmt.Errorf("money: total %d, expected %d (initial %d + minted %d)", got, want, w.InitialMoney, w.Minted))
	}
	for _, p := range w.Players {
		if p.Money < 0 || p.Offshore < 0 {
			errs = append(errs, fmt.Errorf("money: %s has a negative balance (%d cash, %d offshore)", p.ID, p.Money, p.Offshore))
		}
	}
	if w.Treasury < 0 || w.CorruptionPot < 0 || w.EscrowBalance < 0 {
		errs = append(errs, fmt.Errorf("money: negative pool (treasury %d, pot %d, escrow %d)", w.Treasury, w.CorruptionPot, w.EscrowBalance))
	}

	holder := map[int]string{}
	for _, p := range w.Players {
		for _, id := range p.Owned {
			if prev, dup := holder[id]; dup {
				errs = append(errs, fmt.Errorf("ownership: tile %d owned by both %s and %s", id, prev, p.ID))
			}
			holder[id] = p.ID
			if t := w.Tile(id); t == nil || !t.Owner.IsPlayer(p.ID) {
				errs = append(errs, fmt.Errorf("ownership: %s lists tile %d it does not own", p.ID, id))
			}
		}
	}
	for i, t := range w.Tiles {
		if t.Owner.Kind == OwnerPlayer && holder[i] != t.Owner.PlayerID {
			errs = append(errs, fmt.Errorf("ownership: tile %d names %s but is missing from its owned set", i, t.Owner.PlayerID))
		}
		if t.Houses < 0 || t.Houses > MaxHouses || (t.Hotel && t.Houses != 0) {
			errs = append(errs, fmt.Errorf("buildings: tile %d has %d houses, hotel=%v", i, t.Houses, t.Hotel))
		}
	}
	if w.Bank.Houses < 0 || w.Bank.Hotels < 0 {
		errs = append(errs, fmt.Errorf("bank: negative inventory %+v", w.Bank))
	}

	for _, c := range w.Companies {
		held := c.EscrowShares
		for _, n := range c.Holders {
			held += n
		}
		if held != c.TotalShares {
			errs = append(errs, fmt.Errorf("shares: %s accounts for %d of %d shares", c.ID, held, c.TotalShares))
		}
	}

	if w.Started && w.Phase != PhaseGameOver {
		if cur := w.Current(); cur == nil {
			errs = append(errs, fmt.Errorf("turn: index %d out of range", w.CurrentPlayerIndex))
		} else if !cur.Alive && w.Phase != PhaseTurnEnded {
			errs = append(errs, fmt.Errorf("turn: eliminated player %s holds the turn", cur.ID))
		}
	}
	return errors.Join(errs...)
}
