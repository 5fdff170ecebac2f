package internal

type Section string

const (
	SectionKeyCards     Section = "Key Cards"
	SectionLessFrequent Section = "Less Frequent Cards Included"
)

func (s Section) Primary() bool {
	return s == SectionKeyCards
}

type CardCell struct {
	Text    string
	Sort    string
	HasSort bool
}

type CardRow struct {
	Quantity int
	ImageSrc string
	Cells    []CardCell
}

type UsageRecord struct {
	ID         int64
	Archetype  string
	Quantity   int
	ImageSrc   string
	SetCode    string
	CardNumber string
}

type Correction struct {
	SetCode   string `yaml:"set"`
	Observed  string `yaml:"observed"`
	Corrected string `yaml:"corrected"`
}

type ArchetypeCount struct {
	Archetype string
	Records   int
	Copies    int
}
