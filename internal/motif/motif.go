// Package motif defines the shared hit record produced by detectors and the
// identity key used for cross-chunk deduplication.
package motif

import "fmt"

// Motif is one detected structural hit. Coordinates are 0-based and
// inclusive of Start, exclusive of End, in whatever frame the producer is
// operating in (window-local, chunk-local, or global); the pipeline
// translates frames as hits move outward.
type Motif struct {
	Class    string  `json:"class"`
	Subclass string  `json:"subclass"`
	Start    int     `json:"start"`
	End      int     `json:"end"`
	Length   int     `json:"length"`
	Score    float64 `json:"score"`
	Strand   string  `json:"strand"`
	ID       string  `json:"id"`
}

// Key uniquely identifies a motif in global coordinates. Two motifs with the
// same Key anywhere in the pipeline are the same finding.
type Key struct {
	Class    string
	Subclass string
	Start    int
	End      int
}

// Key returns the deduplication identity of m.
func (m Motif) Key() Key {
	return Key{Class: m.Class, Subclass: m.Subclass, Start: m.Start, End: m.End}
}

// Bytes renders the key in a stable wire form suitable for hashing.
func (k Key) Bytes() []byte {
	return []byte(fmt.Sprintf("%s\x00%s\x00%d\x00%d", k.Class, k.Subclass, k.Start, k.End))
}

// Translate returns a copy of m shifted by off positions.
func (m Motif) Translate(off int) Motif {
	m.Start += off
	m.End += off
	return m
}
