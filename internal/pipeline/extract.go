package pipeline

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"inkmeta/internal"
	"inkmeta/internal/util"
)

// Layout markers of the report pages.
var (
	headingClasses = []string{"card-title", "text-theme", "mt-4"}
	tableClasses   = []string{"table", "table-responsive", "table-condensed", "sortable"}
)

const cardRowSelector = "tr.card-list-item"

type SectionStatus int

const (
	SectionFound SectionStatus = iota
	SectionAbsent
	SectionMalformed
)

func (s SectionStatus) String() string {
	switch s {
	case SectionFound:
		return "found"
	case SectionAbsent:
		return "absent"
	case SectionMalformed:
		return "malformed"
	default:
		return "unknown"
	}
}

type SectionResult struct {
	Section internal.Section
	Status  SectionStatus
	Rows    []internal.CardRow
	Omitted int
	Reason  string
	// Empty is set when the table exists but has no card rows at all. Only the
	// key-cards section treats that as malformed.
	Empty bool
}

// ExtractSection finds the section heading, the first card table following it
// in document order, and that table's card rows. Rows missing a quantity or an
// image reference are counted in Omitted and left out of Rows.
func ExtractSection(doc *goquery.Document, section internal.Section) SectionResult {
	res := SectionResult{Section: section}

	heading := findHeading(doc, string(section))
	if heading == nil {
		res.Status = SectionAbsent
		return res
	}

	table := nextTable(heading)
	if table == nil {
		res.Status = SectionMalformed
		res.Reason = "no card table after heading"
		return res
	}

	rows := goquery.NewDocumentFromNode(table).Find(cardRowSelector)
	if rows.Length() == 0 {
		res.Status = SectionFound
		res.Empty = true
		return res
	}

	rows.Each(func(_ int, row *goquery.Selection) {
		card, ok := readCardRow(row)
		if !ok {
			res.Omitted++
			return
		}
		res.Rows = append(res.Rows, card)
	})
	res.Status = SectionFound
	return res
}

func findHeading(doc *goquery.Document, label string) *html.Node {
	match := doc.Find("h2").FilterFunction(func(_ int, s *goquery.Selection) bool {
		class, _ := s.Attr("class")
		return util.HasClasses(class, headingClasses...) && strings.TrimSpace(s.Text()) == label
	}).First()
	if match.Length() == 0 {
		return nil
	}
	return match.Get(0)
}

// nextTable walks forward from n in document order, skipping n's own subtree,
// and returns the first element that looks like a card table.
func nextTable(n *html.Node) *html.Node {
	for cur := skipSubtree(n); cur != nil; cur = nextNode(cur) {
		if cur.Type == html.ElementNode && cur.Data == "table" && util.HasClasses(attr(cur, "class"), tableClasses...) {
			return cur
		}
	}
	return nil
}

func nextNode(n *html.Node) *html.Node {
	if n.FirstChild != nil {
		return n.FirstChild
	}
	return skipSubtree(n)
}

func skipSubtree(n *html.Node) *html.Node {
	for cur := n; cur != nil; cur = cur.Parent {
		if cur.NextSibling != nil {
			return cur.NextSibling
		}
	}
	return nil
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func readCardRow(row *goquery.Selection) (internal.CardRow, bool) {
	qtyRaw, _ := row.Attr("data-quantity")
	imageSrc, _ := row.Attr("data-image-src")
	qty, ok := util.ParseQuantity(qtyRaw)
	if !ok || imageSrc == "" {
		return internal.CardRow{}, false
	}

	card := internal.CardRow{Quantity: qty, ImageSrc: imageSrc}
	row.Find("td").Each(func(_ int, cell *goquery.Selection) {
		sort, hasSort := cell.Attr("data-sort")
		card.Cells = append(card.Cells, internal.CardCell{
			Text:    util.NormalizeSpaces(cell.Text()),
			Sort:    sort,
			HasSort: hasSort,
		})
	})
	return card, true
}
