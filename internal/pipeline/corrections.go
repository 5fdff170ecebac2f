package pipeline

import (
	_ "embed"
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"inkmeta/internal"
)

//go:embed corrections.yaml
var defaultCorrectionsYAML []byte

type correctionKey struct {
	setCode  string
	observed string
}

// CorrectionTable maps (set_code, observed card_number) to the corrected
// card_number. Entries never chain, so applying the table twice changes nothing.
type CorrectionTable struct {
	entries []internal.Correction
	index   map[correctionKey]string
}

type correctionFile struct {
	Corrections []internal.Correction `yaml:"corrections"`
}

func DefaultCorrections() (CorrectionTable, error) {
	return ParseCorrections(defaultCorrectionsYAML)
}

// LoadCorrections reads a table from path, or the built-in table when path is
// empty.
func LoadCorrections(path string) (CorrectionTable, error) {
	if strings.TrimSpace(path) == "" {
		return DefaultCorrections()
	}
	blob, err := os.ReadFile(path)
	if err != nil {
		return CorrectionTable{}, eris.Wrapf(err, "corrections: read %s", path)
	}
	return ParseCorrections(blob)
}

func ParseCorrections(blob []byte) (CorrectionTable, error) {
	var file correctionFile
	if err := yaml.Unmarshal(blob, &file); err != nil {
		return CorrectionTable{}, eris.Wrap(err, "corrections: decode")
	}
	return NewCorrectionTable(file.Corrections)
}

func NewCorrectionTable(entries []internal.Correction) (CorrectionTable, error) {
	table := CorrectionTable{index: make(map[correctionKey]string, len(entries))}
	for i, e := range entries {
		e.SetCode = strings.TrimSpace(e.SetCode)
		e.Observed = strings.TrimSpace(e.Observed)
		e.Corrected = strings.TrimSpace(e.Corrected)
		if e.SetCode == "" || e.Observed == "" || e.Corrected == "" {
			return CorrectionTable{}, eris.Errorf("corrections: entry %d is incomplete", i+1)
		}
		key := correctionKey{setCode: e.SetCode, observed: e.Observed}
		if _, dup := table.index[key]; dup {
			return CorrectionTable{}, eris.Errorf("corrections: duplicate entry for %s %s", e.SetCode, e.Observed)
		}
		table.index[key] = e.Corrected
		table.entries = append(table.entries, e)
	}

	for _, e := range table.entries {
		if _, chained := table.index[correctionKey{setCode: e.SetCode, observed: e.Corrected}]; chained {
			return CorrectionTable{}, eris.Errorf("corrections: %s %s -> %s feeds another entry", e.SetCode, e.Observed, e.Corrected)
		}
	}
	return table, nil
}

func (t CorrectionTable) Entries() []internal.Correction {
	out := make([]internal.Correction, len(t.entries))
	copy(out, t.entries)
	return out
}

func (t CorrectionTable) Len() int {
	return len(t.entries)
}

// Apply returns the corrected card number, or cardNumber unchanged when no
// entry matches.
func (t CorrectionTable) Apply(setCode, cardNumber string) string {
	if corrected, ok := t.index[correctionKey{setCode: setCode, observed: cardNumber}]; ok {
		return corrected
	}
	return cardNumber
}
