// Package invoicegen renders invoice documents as PDF files with a Swiss
// QR-bill payment part.
package invoicegen

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"
	qrcode "github.com/skip2/go-qrcode"

	"fabriq/internal/core/types"
	"fabriq/internal/domain/invoice"
	"fabriq/pkg/logger"
)

// PDFGenerator implements invoice.Generator. One file per invoice, named
// by the invoice number, written atomically into OutputDir.
type PDFGenerator struct {
	outputDir string
}

// Ensure compile-time interface compliance.
var _ invoice.Generator = (*PDFGenerator)(nil)

// NewPDFGenerator creates a generator writing into outputDir.
func NewPDFGenerator(outputDir string) (*PDFGenerator, error) {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	return &PDFGenerator{outputDir: outputDir}, nil
}

// Generate implements invoice.Generator.
func (g *PDFGenerator) Generate(ctx context.Context, req invoice.Request) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := g.render(&buf, req); err != nil {
		return "", fmt.Errorf("render invoice %s: %w", req.InvoiceNumber, err)
	}

	// Temp file plus rename: the artifact either exists complete or not
	// at all, so a crash never leaves a half-written invoice behind.
	target := filepath.Join(g.outputDir, req.InvoiceNumber+".pdf")
	tmp, err := os.CreateTemp(g.outputDir, ".invoice-*")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return "", fmt.Errorf("write invoice: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("close invoice: %w", err)
	}
	if err := os.Rename(tmpName, target); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("place invoice: %w", err)
	}

	logger.Info(ctx, "invoice rendered",
		"invoice", req.InvoiceNumber,
		"path", target)

	return target, nil
}

func (g *PDFGenerator) render(w *bytes.Buffer, req invoice.Request) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(20, 20, 20)
	pdf.AddPage()

	// Creditor block, top left.
	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 6, req.Profile.Creditor.Name)
	pdf.Ln(6)
	pdf.SetFont("Helvetica", "", 10)
	for _, line := range partyLines(req.Profile.Creditor) {
		pdf.Cell(0, 5, line)
		pdf.Ln(5)
	}

	// Debtor block, right side.
	pdf.SetXY(120, 50)
	pdf.SetFont("Helvetica", "", 10)
	pdf.Cell(0, 5, req.Debtor.Name)
	pdf.Ln(5)
	for _, line := range partyLines(req.Debtor) {
		pdf.SetX(120)
		pdf.Cell(0, 5, line)
		pdf.Ln(5)
	}

	// Title and references.
	pdf.SetXY(20, 80)
	pdf.SetFont("Helvetica", "B", 14)
	pdf.Cell(0, 8, fmt.Sprintf("Invoice %s", req.InvoiceNumber))
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "", 10)
	pdf.Cell(0, 5, fmt.Sprintf("Quotation reference: %s", req.QuotationNumber))
	pdf.Ln(5)
	pdf.Cell(0, 5, fmt.Sprintf("Date: %s", time.Now().Format("02.01.2006")))
	pdf.Ln(10)

	// Lines table.
	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(90, 7, "Description", "B", 0, "L", false, 0, "")
	pdf.CellFormat(20, 7, "Qty", "B", 0, "R", false, 0, "")
	pdf.CellFormat(30, 7, "Unit price", "B", 0, "R", false, 0, "")
	pdf.CellFormat(30, 7, "Amount", "B", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	for _, line := range req.Lines {
		amount := line.UnitPrice.Mul(line.Quantity).Sub(line.Discount)
		pdf.CellFormat(90, 6, line.Description, "", 0, "L", false, 0, "")
		pdf.CellFormat(20, 6, line.Quantity.String(), "", 0, "R", false, 0, "")
		pdf.CellFormat(30, 6, formatAmount(line.UnitPrice), "", 0, "R", false, 0, "")
		pdf.CellFormat(30, 6, formatAmount(amount), "", 1, "R", false, 0, "")
	}

	pdf.Ln(2)
	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(140, 7, "Total "+req.Profile.Currency, "T", 0, "L", false, 0, "")
	pdf.CellFormat(30, 7, formatAmount(req.Total), "T", 1, "R", false, 0, "")

	if req.Profile.PaymentTerms != "" {
		pdf.Ln(5)
		pdf.SetFont("Helvetica", "", 9)
		pdf.Cell(0, 5, req.Profile.PaymentTerms)
		pdf.Ln(5)
	}

	if err := g.paymentPart(pdf, req); err != nil {
		return err
	}

	return pdf.Output(w)
}

// paymentPart draws the QR-bill section at the bottom of the page.
func (g *PDFGenerator) paymentPart(pdf *fpdf.Fpdf, req invoice.Request) error {
	png, err := qrcode.Encode(qrPayload(req), qrcode.Medium, 256)
	if err != nil {
		return fmt.Errorf("encode payment QR: %w", err)
	}

	opts := fpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader("payment-qr", opts, bytes.NewReader(png))

	pdf.SetY(215)
	pdf.SetFont("Helvetica", "B", 11)
	pdf.Cell(0, 6, "Payment part")
	pdf.Ln(8)

	pdf.ImageOptions("payment-qr", 20, pdf.GetY(), 46, 46, false, opts, 0, "")

	pdf.SetXY(75, pdf.GetY())
	pdf.SetFont("Helvetica", "", 9)
	details := []string{
		"Account / Payable to",
		req.Profile.IBAN,
		req.Profile.Creditor.Name,
		"",
		"Reference",
		req.InvoiceNumber,
		"",
		fmt.Sprintf("Amount  %s %s", req.Profile.Currency, formatAmount(req.Total)),
	}
	for _, line := range details {
		pdf.SetX(75)
		pdf.Cell(0, 4.5, line)
		pdf.Ln(4.5)
	}

	return nil
}

// qrPayload builds the Swiss QR-bill payload (SPC / version 0200,
// unstructured creditor reference).
func qrPayload(req invoice.Request) string {
	fields := []string{
		"SPC", "0200", "1",
		req.Profile.IBAN,
		"K", // combined address
		req.Profile.Creditor.Name,
		req.Profile.Creditor.Line1,
		req.Profile.Creditor.Line2,
		"", "",
		req.Profile.Creditor.Country,
		"", "", "", "", "", "", "",
		req.Total.StringFixed(2),
		req.Profile.Currency,
		"K",
		req.Debtor.Name,
		req.Debtor.Line1,
		req.Debtor.Line2,
		"", "",
		req.Debtor.Country,
		"NON", // no structured reference
		"",
		req.InvoiceNumber,
		"EPD",
	}
	return strings.Join(fields, "\n")
}

func partyLines(p invoice.Party) []string {
	var lines []string
	for _, l := range []string{p.Line1, p.Line2} {
		if l != "" {
			lines = append(lines, l)
		}
	}
	return lines
}

func formatAmount(m types.Money) string {
	return m.StringFixed(2)
}
