package certimage

import (
	"bytes"
	"fmt"
	"image/color"
	"strings"
	"time"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
)

const (
	width  = 1200
	height = 630
)

// Badge is what gets printed on a certificate image.
type Badge struct {
	LearnerName string
	CourseTitle string
	Code        string
	IssuedAt    time.Time
}

// Renderer draws certificate badges. Safe for concurrent use; each Render
// builds its own faces since font.Face is not goroutine-safe.
type Renderer struct {
	regular *truetype.Font
	bold    *truetype.Font

	background color.Color
	accent     color.Color
	ink        color.Color
}

func NewRenderer() (*Renderer, error) {
	regular, err := truetype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("failed to parse regular font: %w", err)
	}
	bold, err := truetype.Parse(gobold.TTF)
	if err != nil {
		return nil, fmt.Errorf("failed to parse bold font: %w", err)
	}
	return &Renderer{
		regular:    regular,
		bold:       bold,
		background: color.NRGBA{R: 250, G: 248, B: 242, A: 255},
		accent:     color.NRGBA{R: 31, G: 78, B: 121, A: 255},
		ink:        color.NRGBA{R: 33, G: 33, B: 33, A: 255},
	}, nil
}

func face(f *truetype.Font, size float64) font.Face {
	return truetype.NewFace(f, &truetype.Options{Size: size, DPI: 72, Hinting: font.HintingNone})
}

// Render returns the badge as PNG bytes.
func (r *Renderer) Render(b Badge) ([]byte, error) {
	if strings.TrimSpace(b.Code) == "" {
		return nil, fmt.Errorf("certificate code required")
	}
	dc := gg.NewContext(width, height)

	dc.SetColor(r.background)
	dc.DrawRectangle(0, 0, width, height)
	dc.Fill()

	// Frame
	dc.SetColor(r.accent)
	dc.SetLineWidth(12)
	dc.DrawRectangle(24, 24, width-48, height-48)
	dc.Stroke()

	cx := float64(width) / 2

	dc.SetFontFace(face(r.bold, 56))
	dc.SetColor(r.accent)
	dc.DrawStringAnchored("Certificate of Completion", cx, 140, 0.5, 0.5)

	dc.SetFontFace(face(r.regular, 28))
	dc.SetColor(r.ink)
	dc.DrawStringAnchored("This certifies that", cx, 225, 0.5, 0.5)

	dc.SetFontFace(face(r.bold, 48))
	dc.DrawStringAnchored(fallback(b.LearnerName, "Learner"), cx, 295, 0.5, 0.5)

	dc.SetFontFace(face(r.regular, 28))
	dc.DrawStringAnchored("has completed", cx, 365, 0.5, 0.5)

	dc.SetFontFace(face(r.bold, 36))
	dc.DrawStringWrapped(fallback(b.CourseTitle, "Course"), cx, 425, 0.5, 0.5, width-240, 1.3, gg.AlignCenter)

	dc.SetFontFace(face(r.regular, 22))
	dc.SetColor(r.accent)
	footer := "Verification code " + b.Code
	if !b.IssuedAt.IsZero() {
		footer += "  ·  Issued " + b.IssuedAt.UTC().Format("2 January 2006")
	}
	dc.DrawStringAnchored(footer, cx, float64(height)-75, 0.5, 0.5)

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("failed to encode PNG: %w", err)
	}
	return buf.Bytes(), nil
}

func fallback(s, def string) string {
	if s = strings.TrimSpace(s); s == "" {
		return def
	}
	return s
}
