package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveIdentifier(t *testing.T) {
	cases := []struct {
		name       string
		src        string
		setCode    string
		cardNumber string
		ok         bool
	}{
		{name: "relative six segments", src: "a/b/c/d/SET1/042-foo.png", setCode: "SET1", cardNumber: "042", ok: true},
		{name: "cdn url", src: "https://cdn.inkdecks.com/cards/TFC/193-stitch.webp", setCode: "TFC", cardNumber: "193", ok: true},
		{name: "extra segments ignored", src: "a/b/c/d/URSU/215-x/extra/more.png", setCode: "URSU", cardNumber: "215", ok: true},
		{name: "digits without dash", src: "a/b/c/d/ITI/7.png", setCode: "ITI", cardNumber: "7", ok: true},
		{name: "unknown set accepted", src: "a/b/c/d/zzz/1-a", setCode: "zzz", cardNumber: "1", ok: true},
		{name: "five segments", src: "a/b/c/d/SET1", ok: false},
		{name: "empty", src: "", ok: false},
		{name: "no leading digit", src: "a/b/c/d/SET1/foo-042.png", ok: false},
		{name: "empty sixth segment", src: "a/b/c/d/SET1/", ok: false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			setCode, cardNumber, ok := ResolveIdentifier(tc.src)
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.setCode, setCode)
			assert.Equal(t, tc.cardNumber, cardNumber)
		})
	}
}
