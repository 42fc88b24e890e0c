package certificate

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"
)

// SignatoryBlock is one signature slot on the certificate. Signature holds
// the decoded image bytes; empty means the block renders name and role only.
type SignatoryBlock struct {
	Name            string
	Role            string
	Signature       []byte
	SignatureFormat string // "PNG" or "JPG"
}

// visible reports whether the block occupies a grid slot. A block with a
// name but no image still reserves its caption; a fully empty block is
// omitted.
func (b SignatoryBlock) visible() bool {
	return b.Name != "" || len(b.Signature) > 0
}

// Data is everything the fixed certificate template needs.
type Data struct {
	Institution      string
	CertificateTitle string
	RecipientName    string
	TrainingTitle    string
	Venue            string
	CompletedOn      time.Time
	Signatories      []SignatoryBlock
}

// VisibleBlocks filters out fully empty signature slots, preserving order.
func VisibleBlocks(blocks []SignatoryBlock) []SignatoryBlock {
	var out []SignatoryBlock
	for _, b := range blocks {
		if b.visible() {
			out = append(out, b)
		}
	}
	return out
}

// Render lays out the single-page landscape certificate and returns the PDF
// bytes. The template is fixed: header band, institution, certificate title,
// recipient line, training title, venue, completion date and up to four
// signature blocks in a 2x2 grid.
func Render(d Data) ([]byte, error) {
	if d.RecipientName == "" {
		return nil, fmt.Errorf("recipient name required")
	}

	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetAutoPageBreak(false, 0)
	pdf.AddPage()
	pageW, _ := pdf.GetPageSize()

	// Header band.
	pdf.SetFillColor(21, 67, 96)
	pdf.Rect(0, 0, pageW, 28, "F")
	pdf.SetTextColor(255, 255, 255)
	pdf.SetFont("Helvetica", "B", 20)
	pdf.SetXY(0, 8)
	pdf.CellFormat(pageW, 12, d.Institution, "", 1, "C", false, 0, "")

	pdf.SetTextColor(40, 40, 40)
	pdf.SetFont("Helvetica", "B", 30)
	pdf.SetXY(0, 42)
	title := d.CertificateTitle
	if title == "" {
		title = "Certificate of Completion"
	}
	pdf.CellFormat(pageW, 14, title, "", 1, "C", false, 0, "")

	pdf.SetFont("Helvetica", "", 14)
	pdf.SetXY(0, 64)
	pdf.CellFormat(pageW, 8, "Presented to", "", 1, "C", false, 0, "")

	pdf.SetFont("Helvetica", "B", 24)
	pdf.SetXY(0, 74)
	pdf.CellFormat(pageW, 12, d.RecipientName, "", 1, "C", false, 0, "")

	// Underline beneath the recipient name.
	nameW := pdf.GetStringWidth(d.RecipientName) + 30
	pdf.SetDrawColor(21, 67, 96)
	pdf.SetLineWidth(0.6)
	pdf.Line((pageW-nameW)/2, 88, (pageW+nameW)/2, 88)

	pdf.SetFont("Helvetica", "", 13)
	pdf.SetXY(0, 94)
	body := fmt.Sprintf("for completing the training \"%s\"", d.TrainingTitle)
	if d.Venue != "" {
		body += " held at " + d.Venue
	}
	pdf.CellFormat(pageW, 8, body, "", 1, "C", false, 0, "")

	pdf.SetXY(0, 103)
	pdf.CellFormat(pageW, 8, "on "+d.CompletedOn.Format("January 2, 2006"), "", 1, "C", false, 0, "")

	drawSignatureGrid(pdf, pageW, VisibleBlocks(d.Signatories))

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render certificate: %w", err)
	}
	return buf.Bytes(), nil
}

// drawSignatureGrid places up to four blocks in a 2x2 grid at the bottom of
// the page. One or two blocks fill a single row.
func drawSignatureGrid(pdf *gofpdf.Fpdf, pageW float64, blocks []SignatoryBlock) {
	if len(blocks) == 0 {
		return
	}
	if len(blocks) > 4 {
		blocks = blocks[:4]
	}

	const blockW, rowH = 70.0, 34.0
	topY := 122.0
	perRow := 2
	if len(blocks) == 1 {
		perRow = 1
	}

	for i, b := range blocks {
		row, col := i/perRow, i%perRow
		inRow := perRow
		if row == len(blocks)/perRow && len(blocks)%perRow != 0 {
			inRow = len(blocks) % perRow
		}
		gap := (pageW - float64(inRow)*blockW) / float64(inRow+1)
		x := gap + float64(col)*(blockW+gap)
		y := topY + float64(row)*rowH

		if len(b.Signature) > 0 {
			name := fmt.Sprintf("sig-%d", i)
			opts := gofpdf.ImageOptions{ImageType: b.SignatureFormat, ReadDpi: true}
			pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(b.Signature))
			pdf.ImageOptions(name, x+blockW/2-17, y, 34, 14, false, opts, 0, "")
		}

		lineY := y + 16
		pdf.SetDrawColor(40, 40, 40)
		pdf.SetLineWidth(0.3)
		pdf.Line(x, lineY, x+blockW, lineY)

		pdf.SetFont("Helvetica", "B", 10)
		pdf.SetXY(x, lineY+1)
		pdf.CellFormat(blockW, 5, b.Name, "", 1, "C", false, 0, "")
		if b.Role != "" {
			pdf.SetFont("Helvetica", "", 9)
			pdf.SetX(x)
			pdf.CellFormat(blockW, 5, b.Role, "", 1, "C", false, 0, "")
		}
	}
}

// signatureFormat guesses the gofpdf image type from a URL or filename.
func signatureFormat(url string) string {
	lower := strings.ToLower(url)
	switch {
	case strings.HasSuffix(lower, ".jpg"), strings.HasSuffix(lower, ".jpeg"):
		return "JPG"
	default:
		return "PNG"
	}
}
