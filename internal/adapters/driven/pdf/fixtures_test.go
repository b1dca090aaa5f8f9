package pdf

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/stretchr/testify/require"
)

// writeTextPDF writes a PDF with one page per content stream. Pages have
// two fonts, /F1 and /F2, both 5.56pt per glyph at size 10.
func writeTextPDF(t *testing.T, contents ...string) string {
	t.Helper()

	widths := strings.TrimSpace(strings.Repeat("556 ", 95))
	font := func(base string) string {
		return fmt.Sprintf("<< /Type /Font /Subtype /Type1 /BaseFont /%s /Encoding /WinAnsiEncoding "+
			"/FirstChar 32 /LastChar 126 /Widths [%s] >>", base, widths)
	}

	kids := make([]string, len(contents))
	for i := range contents {
		kids[i] = fmt.Sprintf("%d 0 R", 5+2*i)
	}
	objects := []string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), len(contents)),
		font("Helvetica"),
		font("Helvetica-Bold"),
	}
	for i, c := range contents {
		objects = append(objects,
			fmt.Sprintf("<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] "+
				"/Resources << /Font << /F1 3 0 R /F2 4 0 R >> >> /Contents %d 0 R >>", 6+2*i),
			fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(c), c),
		)
	}

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objects))
	for i, obj := range objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}
	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n0000000000 65535 f \n", len(objects)+1)
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xref)

	path := filepath.Join(t.TempDir(), "fixture.pdf")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o600))
	return path
}

// writeImagePDF writes a PDF with one page per colour, each holding a
// single 8x8 PNG.
func writeImagePDF(t *testing.T, colours ...color.Color) string {
	t.Helper()
	dir := t.TempDir()

	files := make([]string, len(colours))
	for i, c := range colours {
		img := image.NewRGBA(image.Rect(0, 0, 8, 8))
		for y := 0; y < 8; y++ {
			for x := 0; x < 8; x++ {
				img.Set(x, y, c)
			}
		}
		var buf bytes.Buffer
		require.NoError(t, png.Encode(&buf, img))
		files[i] = filepath.Join(dir, fmt.Sprintf("img%d.png", i))
		require.NoError(t, os.WriteFile(files[i], buf.Bytes(), 0o600))
	}

	out := filepath.Join(dir, "images.pdf")
	require.NoError(t, api.ImportImagesFile(files, out, nil, nil))
	return out
}

// Dosage page: a title, a table laid out with Td moves whose last row has
// a blank first cell, then a closing sentence.
const dosagePage = `BT
/F2 10 Tf
72 730 Td (Dosage guidelines) Tj
/F1 10 Tf
0 -30 Td (Drug) Tj
150 0 Td (Dose) Tj
-150 -15 Td (aspirin) Tj
150 0 Td (100mg) Tj
0 -15 Td (300mg) Tj
-150 -30 Td (Take with food and water unless advised otherwise.) Tj
ET`

// Prose page: words positioned with Td and no space glyphs, and two lines
// set with Tm that switch font mid-line.
const prosePage = `BT
/F1 10 Tf
72 700 Td (Blood) Tj
30 0 Td (pressure) Tj
1 0 0 1 72 640 Tm (The patient should take ) Tj
/F2 10 Tf (two tablets) Tj
/F1 10 Tf ( daily) Tj
1 0 0 1 72 625 Tm (with food and water) Tj
/F2 10 Tf ( unless advised otherwise.) Tj
ET`
