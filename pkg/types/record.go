// Package types holds the persisted record shape shared by the store and the
// allocator.
//
// Stored under a single key:
//
//	{
//	  "cells":           ["", "Member 3", ...], // row-major, one per seat, "" = empty
//	  "availableGroupA": [1, 2, 4],
//	  "availableGroupB": [21, 25]
//	}
package types

type Record struct {
	Cells           []string `json:"cells"`
	AvailableGroupA []int    `json:"availableGroupA"`
	AvailableGroupB []int    `json:"availableGroupB"`
}

// Snapshot is a Record read back from storage where each field may be
// missing or malformed on its own. A field with its Has flag unset must be
// replaced by its fresh value.
type Snapshot struct {
	Cells    []string
	HasCells bool

	GroupA    []int
	HasGroupA bool

	GroupB    []int
	HasGroupB bool
}

// Complete wraps a fully formed record.
func Complete(r Record) Snapshot {
	return Snapshot{
		Cells: r.Cells, HasCells: true,
		GroupA: r.AvailableGroupA, HasGroupA: true,
		GroupB: r.AvailableGroupB, HasGroupB: true,
	}
}

// Missing lists the record fields that could not be read.
func (s Snapshot) Missing() []string {
	var missing []string
	if !s.HasCells {
		missing = append(missing, "cells")
	}
	if !s.HasGroupA {
		missing = append(missing, "availableGroupA")
	}
	if !s.HasGroupB {
		missing = append(missing, "availableGroupB")
	}
	return missing
}
