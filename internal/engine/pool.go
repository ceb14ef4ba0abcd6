package engine

import (
	"fmt"
	"math/rand"
	"slices"

	"github.com/DoyleJ11/seat-roulette/internal/roster"
)

// Picker returns an index in [0, n). n is always > 0.
type Picker func(n int) int

func uniformPicker(n int) int { return rand.Intn(n) }

// Pools owns the remaining candidates of each group.
type Pools struct {
	roster *roster.Roster
	pools  map[roster.Group][]int
	pick   Picker
}

func NewPools(r *roster.Roster, pick Picker) *Pools {
	if pick == nil {
		pick = uniformPicker
	}
	p := &Pools{roster: r, pick: pick}
	p.Reset()
	return p
}

func (p *Pools) Reset() {
	p.pools = map[roster.Group][]int{
		roster.GroupA: p.roster.Members(roster.GroupA),
		roster.GroupB: p.roster.Members(roster.GroupB),
	}
}

func (p *Pools) Remaining(g roster.Group) []int {
	return slices.Clone(p.pools[g])
}

func (p *Pools) Len(g roster.Group) int { return len(p.pools[g]) }

// Draw removes and returns one id chosen uniformly from g's pool.
func (p *Pools) Draw(g roster.Group) (int, error) {
	pool := p.pools[g]
	if len(pool) == 0 {
		return 0, fmt.Errorf("%w: %s", ErrEmptyPool, g)
	}

	i := p.pick(len(pool))
	if i < 0 || i >= len(pool) {
		return 0, fmt.Errorf("picker returned index %d for pool of %d", i, len(pool))
	}

	id := pool[i]
	p.pools[g] = slices.Delete(slices.Clone(pool), i, i+1)
	return id, nil
}

// PutBack reinserts id in ascending position. Only used to undo a draw.
func (p *Pools) PutBack(g roster.Group, id int) {
	pool := p.pools[g]
	if slices.Contains(pool, id) {
		return
	}
	i, _ := slices.BinarySearch(pool, id)
	p.pools[g] = slices.Insert(slices.Clone(pool), i, id)
}

// Restore replaces g's pool wholesale. ids must belong to g and be unique;
// otherwise the pool is left as it was.
func (p *Pools) Restore(g roster.Group, ids []int) error {
	seen := make(map[int]bool, len(ids))
	for _, id := range ids {
		if !p.roster.Contains(id) || p.roster.GroupOf(id) != g {
			return fmt.Errorf("%w: id %d not in %s", ErrInvalidPool, id, g)
		}
		if seen[id] {
			return fmt.Errorf("%w: duplicate id %d in %s", ErrInvalidPool, id, g)
		}
		seen[id] = true
	}
	p.pools[g] = slices.Clone(ids)
	return nil
}
