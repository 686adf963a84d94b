package render

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewFaceAllFamilies(t *testing.T) {
	for _, family := range FontFamilies {
		for _, variant := range []fontVariant{variantRegular, variantBold, variantItalic} {
			face := newFace(family, variant, 12)
			assert.NotNil(t, face, "family %s variant %d", family, variant)
		}
	}
}

func TestNewFaceUnknownFamilyFallsBack(t *testing.T) {
	assert.NotNil(t, newFace("papyrus", variantRegular, 12))
}
