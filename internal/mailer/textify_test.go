package mailer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConvertHTMLToText(t *testing.T) {
	input := "   Some<br/>Text <a href=\"http://test.com\">Link</a> <strong>End</strong>    "
	assert.Equal(t, "Some\r\nText Link (http://test.com) *End*", ConvertHTMLToText(input))
}

func TestConvertHTMLToText_StripsStyleBlocks(t *testing.T) {
	input := "<style type=\"text/css\">body { color: red; }</style><p>Hello</p>"
	assert.Equal(t, "Hello", ConvertHTMLToText(input))
}

func TestConvertHTMLToText_DecodesEntities(t *testing.T) {
	assert.Equal(t, "Fish & Chips", ConvertHTMLToText("Fish &amp; Chips"))
}

func TestConvertHTMLToText_BoldVariants(t *testing.T) {
	assert.Equal(t, "*one* *two*", ConvertHTMLToText("<b>one</b> <strong>two</strong>"))
}

func TestConvertHTMLToText_LineBreakVariants(t *testing.T) {
	assert.Equal(t, "a\r\nb\r\nc", ConvertHTMLToText("a<br>b<BR/>c"))
}

func TestConvertHTMLToText_Empty(t *testing.T) {
	assert.Equal(t, "", ConvertHTMLToText(""))
	assert.Equal(t, "", ConvertHTMLToText("   "))
}
