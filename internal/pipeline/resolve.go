package pipeline

import (
	"strings"

	"inkmeta/internal/util"
)

const (
	setCodeSegment    = 4
	cardNumberSegment = 5
)

// ResolveIdentifier derives (set_code, card_number) from an image path such as
// https://cdn.example/images/cards/TFC/042-mickey.webp. The set code is taken
// verbatim; the card number is the leading digit run of the file segment, with
// or without a following dash.
func ResolveIdentifier(imageSrc string) (setCode, cardNumber string, ok bool) {
	parts := strings.Split(imageSrc, "/")
	if len(parts) <= cardNumberSegment {
		return "", "", false
	}
	cardNumber = util.LeadingDigits(parts[cardNumberSegment])
	if cardNumber == "" {
		return "", "", false
	}
	return parts[setCodeSegment], cardNumber, true
}
