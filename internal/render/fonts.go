package render

import (
	"log"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/gomonobold"
	"golang.org/x/image/font/gofont/gomonoitalic"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

// fontVariant selects a weight/slant within a family.
type fontVariant int

const (
	variantRegular fontVariant = iota
	variantBold
	variantItalic
)

// fontKey identifies a parsed font.
type fontKey struct {
	family  FontFamily
	variant fontVariant
}

var (
	fontMu    sync.Mutex
	fontCache = map[fontKey]*opentype.Font{}
)

// fontData maps the selectable families onto the embedded Go fonts.
// The Go font set has no serif or cursive cuts, so those fall back to
// the regular and italic faces respectively.
func fontData(key fontKey) []byte {
	switch key.family {
	case FontMonospace:
		switch key.variant {
		case variantBold:
			return gomonobold.TTF
		case variantItalic:
			return gomonoitalic.TTF
		}
		return gomono.TTF
	case FontCursive:
		if key.variant == variantBold {
			return gobold.TTF
		}
		return goitalic.TTF
	default: // sans-serif, serif
		switch key.variant {
		case variantBold:
			return gobold.TTF
		case variantItalic:
			return goitalic.TTF
		}
		return goregular.TTF
	}
}

// parsedFont returns the cached sfnt for a family variant. The parsed
// font is immutable and safe to share; faces created from it are not,
// so newFace builds a fresh face per renderer.
func parsedFont(key fontKey) *opentype.Font {
	fontMu.Lock()
	defer fontMu.Unlock()

	if f, ok := fontCache[key]; ok {
		return f
	}
	f, err := opentype.Parse(fontData(key))
	if err != nil {
		// The embedded fonts are known-good; this only trips on a
		// corrupted build.
		log.Printf("render: parsing embedded font %v: %v", key, err)
		return nil
	}
	fontCache[key] = f
	return f
}

// newFace creates a font.Face for one render pass.
func newFace(family FontFamily, variant fontVariant, sizePt float64) font.Face {
	f := parsedFont(fontKey{family: family, variant: variant})
	if f == nil {
		return nil
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    sizePt,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		log.Printf("render: creating %s face: %v", family, err)
		return nil
	}
	return face
}
