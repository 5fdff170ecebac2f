package pipeline

import (
	"fmt"
	"strings"
)

// InspectInput runs the extraction for a single report without touching the
// store. inputType is "file" (input is a path) or "html" (input is the page).
func (p *Pipeline) InspectInput(inputType string, input string) (DocumentResult, error) {
	switch inputType {
	case "file":
		return p.ProcessFile(input)
	case "html":
		return p.ProcessDocument("inline", strings.NewReader(input))
	default:
		return DocumentResult{}, fmt.Errorf("unsupported input type: %s", inputType)
	}
}
