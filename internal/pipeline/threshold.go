package pipeline

import (
	"inkmeta/internal"
	"inkmeta/internal/util"
)

const (
	// Column of the less-frequent table holding the inclusion percentage. Fixed
	// by the site layout; a reordered table is not detected.
	frequencyCell = 3

	MinFrequencyScore = 20.0
)

// QualifiesLessFrequent reports whether a less-frequent row is used in enough
// decks to be kept.
func QualifiesLessFrequent(row internal.CardRow) bool {
	if len(row.Cells) <= frequencyCell {
		return false
	}
	cell := row.Cells[frequencyCell]
	if !cell.HasSort {
		return false
	}
	score, ok := util.ParseScore(cell.Sort)
	return ok && score >= MinFrequencyScore
}
