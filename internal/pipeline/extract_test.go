package pipeline

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inkmeta/internal"
)

const cardTable = `<table class="table table-responsive table-condensed sortable">`

func parseDoc(t *testing.T, body string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	require.NoError(t, err)
	return doc
}

func TestExtractSectionFound(t *testing.T) {
	doc := parseDoc(t, `
<h2 class="card-title text-theme mt-4">Key Cards</h2>
`+cardTable+`
<tr class="card-list-item" data-quantity="2" data-image-src="a/b/c/d/SET1/042-foo.png"><td>2</td><td>Foo</td><td data-sort="3">3</td><td data-sort="50">50%</td></tr>
<tr class="card-list-item" data-image-src="a/b/c/d/SET1/043-bar.png"><td>?</td></tr>
<tr class="card-list-item" data-quantity="1"><td>1</td></tr>
<tr class="header-row" data-quantity="9" data-image-src="a/b/c/d/SET1/044-baz.png"><td>9</td></tr>
</table>`)

	res := ExtractSection(doc, internal.SectionKeyCards)
	require.Equal(t, SectionFound, res.Status)
	require.Len(t, res.Rows, 1)
	assert.Equal(t, 2, res.Omitted)

	row := res.Rows[0]
	assert.Equal(t, 2, row.Quantity)
	assert.Equal(t, "a/b/c/d/SET1/042-foo.png", row.ImageSrc)
	require.Len(t, row.Cells, 4)
	assert.Equal(t, "Foo", row.Cells[1].Text)
	assert.False(t, row.Cells[0].HasSort)
	assert.True(t, row.Cells[3].HasSort)
	assert.Equal(t, "50", row.Cells[3].Sort)
}

func TestExtractSectionHeadingAbsent(t *testing.T) {
	doc := parseDoc(t, `<h2 class="card-title text-theme mt-4">Key Cards</h2>`+cardTable+`<tr class="card-list-item" data-quantity="1" data-image-src="x"></tr></table>`)

	res := ExtractSection(doc, internal.SectionLessFrequent)
	assert.Equal(t, SectionAbsent, res.Status)
	assert.Empty(t, res.Rows)
}

func TestExtractSectionHeadingNeedsLayoutClasses(t *testing.T) {
	doc := parseDoc(t, `<h2 class="card-title">Key Cards</h2>`+cardTable+`<tr class="card-list-item" data-quantity="1" data-image-src="x"></tr></table>`)

	res := ExtractSection(doc, internal.SectionKeyCards)
	assert.Equal(t, SectionAbsent, res.Status)
}

func TestExtractSectionNoTableAfterHeading(t *testing.T) {
	doc := parseDoc(t, cardTable+`<tr class="card-list-item" data-quantity="1" data-image-src="x"></tr></table>
<h2 class="card-title text-theme mt-4">Less Frequent Cards Included</h2>
<table class="table"><tr class="card-list-item" data-quantity="1" data-image-src="x"></tr></table>`)

	res := ExtractSection(doc, internal.SectionLessFrequent)
	assert.Equal(t, SectionMalformed, res.Status)
	assert.NotEmpty(t, res.Reason)
}

func TestExtractSectionTableWithoutCardRows(t *testing.T) {
	doc := parseDoc(t, `<h2 class="card-title text-theme mt-4">Key Cards</h2>`+cardTable+`<tr><td>empty</td></tr></table>`)

	res := ExtractSection(doc, internal.SectionKeyCards)
	assert.Equal(t, SectionFound, res.Status)
	assert.True(t, res.Empty)
	assert.Empty(t, res.Rows)
}

func TestExtractSectionHeadingTextIsExact(t *testing.T) {
	doc := parseDoc(t, `<h2 class="card-title text-theme mt-4">Key  Cards</h2>`+cardTable+`<tr class="card-list-item" data-quantity="1" data-image-src="x"></tr></table>`)

	res := ExtractSection(doc, internal.SectionKeyCards)
	assert.Equal(t, SectionAbsent, res.Status)

	doc = parseDoc(t, `<h2 class="card-title text-theme mt-4">
  Key Cards
</h2>`+cardTable+`<tr class="card-list-item" data-quantity="1" data-image-src="x"></tr></table>`)
	res = ExtractSection(doc, internal.SectionKeyCards)
	assert.Equal(t, SectionFound, res.Status)
}

func TestExtractSectionAllRowsOmitted(t *testing.T) {
	doc := parseDoc(t, `<h2 class="card-title text-theme mt-4">Key Cards</h2>`+cardTable+`<tr class="card-list-item" data-quantity="0" data-image-src="x"></tr></table>`)

	res := ExtractSection(doc, internal.SectionKeyCards)
	assert.Equal(t, SectionFound, res.Status)
	assert.Empty(t, res.Rows)
	assert.Equal(t, 1, res.Omitted)
	assert.False(t, res.Empty)
}

func TestExtractSectionTakesFirstTableAfterHeading(t *testing.T) {
	doc := parseDoc(t, `
<div>`+cardTable+`<tr class="card-list-item" data-quantity="9" data-image-src="before"></tr></table></div>
<div><h2 class="card-title text-theme mt-4">Key Cards</h2></div>
<div><div>`+cardTable+`<tr class="card-list-item" data-quantity="1" data-image-src="first"></tr></table></div></div>
`+cardTable+`<tr class="card-list-item" data-quantity="2" data-image-src="second"></tr></table>`)

	res := ExtractSection(doc, internal.SectionKeyCards)
	require.Equal(t, SectionFound, res.Status)
	require.Len(t, res.Rows, 1)
	assert.Equal(t, "first", res.Rows[0].ImageSrc)
}

func TestExtractSectionFixture(t *testing.T) {
	doc := parseDoc(t, readFixture(t, "amber-steel.html"))

	primary := ExtractSection(doc, internal.SectionKeyCards)
	require.Equal(t, SectionFound, primary.Status)
	assert.Len(t, primary.Rows, 3)
	assert.Equal(t, 1, primary.Omitted)

	secondary := ExtractSection(doc, internal.SectionLessFrequent)
	require.Equal(t, SectionFound, secondary.Status)
	assert.Len(t, secondary.Rows, 4)
}

func TestSectionStatusString(t *testing.T) {
	assert.Equal(t, "found", SectionFound.String())
	assert.Equal(t, "absent", SectionAbsent.String())
	assert.Equal(t, "malformed", SectionMalformed.String())
}
