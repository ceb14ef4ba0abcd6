package roster

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
)

var ErrEmptyRoster = errors.New("roster is empty")
var ErrInvalidID = errors.New("invalid roster id")
var ErrDuplicateID = errors.New("duplicate roster id")
var ErrInvalidThreshold = errors.New("invalid group threshold")

type Group string

const (
	GroupA Group = "a"
	GroupB Group = "b"
)

// Groups lists every group in display order.
var Groups = []Group{GroupA, GroupB}

func (g Group) String() string {
	switch g {
	case GroupA:
		return "groupA"
	case GroupB:
		return "groupB"
	default:
		return "group(" + string(g) + ")"
	}
}

type Entry struct {
	ID   int    `yaml:"id" json:"id"`
	Name string `yaml:"name" json:"name"`
}

// Roster maps ids 1..N to display names. It is never mutated after New.
type Roster struct {
	entries   []Entry
	byID      map[int]string
	threshold int
}

// New validates entries (ids must be exactly 1..N, in any order) and returns
// a roster where ids <= threshold belong to GroupA.
func New(entries []Entry, threshold int) (*Roster, error) {
	if len(entries) == 0 {
		return nil, ErrEmptyRoster
	}
	if threshold < 0 || threshold > len(entries) {
		return nil, fmt.Errorf("%w: %d (roster size %d)", ErrInvalidThreshold, threshold, len(entries))
	}

	byID := make(map[int]string, len(entries))
	for _, e := range entries {
		if e.ID < 1 || e.ID > len(entries) {
			return nil, fmt.Errorf("%w: %d", ErrInvalidID, e.ID)
		}
		if _, ok := byID[e.ID]; ok {
			return nil, fmt.Errorf("%w: %d", ErrDuplicateID, e.ID)
		}
		byID[e.ID] = e.Name
	}

	sorted := slices.Clone(entries)
	slices.SortFunc(sorted, func(a, b Entry) int { return a.ID - b.ID })

	return &Roster{entries: sorted, byID: byID, threshold: threshold}, nil
}

// Sequential builds a roster of n members named "Member 1".."Member n".
func Sequential(n, threshold int) (*Roster, error) {
	entries := make([]Entry, n)
	for i := range entries {
		entries[i] = Entry{ID: i + 1, Name: "Member " + strconv.Itoa(i+1)}
	}
	return New(entries, threshold)
}

func (r *Roster) Len() int { return len(r.entries) }
func (r *Roster) Threshold() int { return r.threshold }

func (r *Roster) Entries() []Entry { return slices.Clone(r.entries) }

func (r *Roster) GroupOf(id int) Group {
	if id <= r.threshold {
		return GroupA
	}
	return GroupB
}

func (r *Roster) Contains(id int) bool {
	_, ok := r.byID[id]
	return ok
}

func (r *Roster) Name(id int) (string, bool) {
	name, ok := r.byID[id]
	return name, ok
}

// Label is Name with a "#<id>" fallback for ids the roster does not know.
func (r *Roster) Label(id int) string {
	if name, ok := r.byID[id]; ok {
		return name
	}
	return "#" + strconv.Itoa(id)
}

// Members returns the ids of g in ascending order.
func (r *Roster) Members(g Group) []int {
	ids := []int{}
	for _, e := range r.entries {
		if r.GroupOf(e.ID) == g {
			ids = append(ids, e.ID)
		}
	}
	return ids
}
