package analyzer

import (
	"strings"
)

// Move is a face turn id in [0, MoveCount). The face is Move/3 and the
// variant is Move%3: 0 clockwise, 1 half turn, 2 counter-clockwise.
type Move int

// Sequence is an ordered list of moves. An empty sequence is a solved state.
type Sequence []Move

const (
	// MoveCount is the number of distinct face turns.
	MoveCount = 18
	// FaceCount is the number of faces.
	FaceCount = 6
)

// MoveNames lists the move tokens in id order.
// Faces are U, D, L, R, F, B so that Face/2 is the axis.
var MoveNames = [MoveCount]string{
	"U", "U2", "U'", "D", "D2", "D'",
	"L", "L2", "L'", "R", "R2", "R'",
	"F", "F2", "F'", "B", "B2", "B'",
}

var moveIndex = func() map[string]Move {
	m := make(map[string]Move, MoveCount)
	for i, name := range MoveNames {
		m[name] = Move(i)
	}
	return m
}()

// Face returns the face the move turns.
func (m Move) Face() int { return int(m) / 3 }

// Axis returns the axis of the move's face.
func (m Move) Axis() int { return m.Face() / 2 }

// IsHalfTurn reports whether the move is a 180 degree turn.
func (m Move) IsHalfTurn() bool { return int(m)%3 == 1 }

// String returns the move token.
func (m Move) String() string {
	if m < 0 || int(m) >= MoveCount {
		return "?"
	}
	return MoveNames[m]
}

// Encode converts a whitespace separated move string into a Sequence.
// Unrecognized tokens are dropped.
func Encode(s string) Sequence {
	fields := strings.Fields(s)
	seq := make(Sequence, 0, len(fields))
	for _, tok := range fields {
		if mv, ok := moveIndex[tok]; ok {
			seq = append(seq, mv)
		}
	}
	return seq
}

// QTM returns the quarter turn metric length. Half turns count as 2.
func QTM(seq Sequence) int {
	qtm := 0
	for _, mv := range seq {
		if mv.IsHalfTurn() {
			qtm += 2
		} else {
			qtm++
		}
	}
	return qtm
}

// HTM returns the half turn metric length.
func HTM(seq Sequence) int {
	return len(seq)
}

// String renders the sequence in standard notation.
func (s Sequence) String() string {
	names := make([]string, len(s))
	for i, mv := range s {
		names[i] = mv.String()
	}
	return strings.Join(names, " ")
}

// Prefix renders the first n moves of seq, or "None" when seq is empty.
func Prefix(seq Sequence, n int) string {
	if n > len(seq) {
		n = len(seq)
	}
	if n <= 0 {
		return "None"
	}
	return seq[:n].String()
}

// Equal reports whether two sequences hold the same moves in the same order.
func (s Sequence) Equal(other Sequence) bool {
	if len(s) != len(other) {
		return false
	}
	for i := range s {
		if s[i] != other[i] {
			return false
		}
	}
	return true
}
