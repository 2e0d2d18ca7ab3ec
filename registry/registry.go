package registry

import (
	"fmt"
	"sort"
)

// Participant identifies a fighter on the event card. Values are only
// meaningful when they belong to the edition the Registry was built from;
// use IsValidParticipant before trusting one that came from a request.
type Participant string

// Combat is a scheduled pairing of two fighters. Combats are defined at
// deploy time and never change at runtime.
type Combat struct {
	ID       int         `json:"id"`
	Fighter1 Participant `json:"fighter1"`
	Fighter2 Participant `json:"fighter2"`
	Year     string      `json:"year,omitempty"`
}

// Registry holds the immutable combat card for one edition and answers
// lookup questions about it. Build one with New and inject it; it is safe
// for concurrent use because it is never mutated after construction.
type Registry struct {
	combats      []Combat
	byID         map[int]Combat
	byFighter    map[Participant]Combat
	participants []Participant
}

func New(combats []Combat) *Registry {
	r := &Registry{
		combats:   make([]Combat, len(combats)),
		byID:      make(map[int]Combat, len(combats)),
		byFighter: make(map[Participant]Combat, len(combats)*2),
	}
	copy(r.combats, combats)

	for _, combat := range r.combats {
		r.byID[combat.ID] = combat
		for _, fighter := range []Participant{combat.Fighter1, combat.Fighter2} {
			if _, ok := r.byFighter[fighter]; !ok {
				r.byFighter[fighter] = combat
				r.participants = append(r.participants, fighter)
			}
		}
	}
	return r
}

// Combats returns the full card in declaration order.
func (r *Registry) Combats() []Combat {
	out := make([]Combat, len(r.combats))
	copy(out, r.combats)
	return out
}

// Participants returns every fighter on the card, in card order.
func (r *Registry) Participants() []Participant {
	out := make([]Participant, len(r.participants))
	copy(out, r.participants)
	return out
}

func (r *Registry) GetCombatByID(id int) (Combat, bool) {
	combat, ok := r.byID[id]
	return combat, ok
}

func (r *Registry) IsValidParticipant(p Participant) bool {
	_, ok := r.byFighter[p]
	return ok
}

// IsParticipantInCombat reports whether p is one of the two fighters of the
// given combat. False when the combat does not exist.
func (r *Registry) IsParticipantInCombat(p Participant, combatID int) bool {
	combat, ok := r.byID[combatID]
	if !ok {
		return false
	}
	return combat.Fighter1 == p || combat.Fighter2 == p
}

// GetOpponent returns the other fighter of p's combat. The second return
// value is false when p is not on the card.
func (r *Registry) GetOpponent(p Participant) (Participant, bool) {
	combat, ok := r.byFighter[p]
	if !ok {
		return "", false
	}
	if combat.Fighter1 == p {
		return combat.Fighter2, true
	}
	return combat.Fighter1, true
}

// Validate checks the structural invariants of the card: unique combat IDs,
// no fighter facing themselves, no duplicate pairings and no fighter in more
// than one combat. Intended as a startup and test-time sanity check, not a
// per-request guard.
func (r *Registry) Validate() []error {
	var errs []error

	seenIDs := make(map[int]bool)
	seenPairs := make(map[string]bool)
	fighterCounts := make(map[Participant]int)

	for _, combat := range r.combats {
		if seenIDs[combat.ID] {
			errs = append(errs, fmt.Errorf("duplicate combat id %d", combat.ID))
		}
		seenIDs[combat.ID] = true

		if combat.Fighter1 == combat.Fighter2 {
			errs = append(errs, fmt.Errorf("combat %d pairs %s against themselves", combat.ID, combat.Fighter1))
		}

		pair := []string{string(combat.Fighter1), string(combat.Fighter2)}
		sort.Strings(pair)
		key := pair[0] + "-" + pair[1]
		if seenPairs[key] {
			errs = append(errs, fmt.Errorf("duplicate fighter pairing %s", key))
		}
		seenPairs[key] = true

		fighterCounts[combat.Fighter1]++
		fighterCounts[combat.Fighter2]++
	}

	fighters := make([]string, 0, len(fighterCounts))
	for fighter := range fighterCounts {
		fighters = append(fighters, string(fighter))
	}
	sort.Strings(fighters)
	for _, fighter := range fighters {
		if count := fighterCounts[Participant(fighter)]; count > 1 {
			errs = append(errs, fmt.Errorf("fighter %s appears in %d combats", fighter, count))
		}
	}

	return errs
}
