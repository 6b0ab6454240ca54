package invoicegen

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fabriq/internal/core/types"
	"fabriq/internal/domain/invoice"
)

func testRequest() invoice.Request {
	return invoice.Request{
		InvoiceNumber:   "INV-2025-1503-000001-JC",
		QuotationNumber: "DEV-2025-1003-000004-JC",
		Debtor: invoice.Party{
			Name:    "Jean Castel",
			Line1:   "Rue du Lac 12",
			Line2:   "1000 Lausanne",
			Country: "CH",
		},
		Lines: []invoice.Line{
			{Description: "Design work", Quantity: types.NewMoney(1), Unit: "pc", UnitPrice: types.MustMoney("120.00")},
			{Description: "3D printing", Quantity: types.NewMoney(1), Unit: "pc", UnitPrice: types.MustMoney("96.00")},
		},
		Total: types.MustMoney("216.00"),
		Profile: invoice.Profile{
			Creditor: invoice.Party{
				Name:    "Atelier Fabriq",
				Line1:   "Chemin des Prés 3",
				Line2:   "1400 Yverdon",
				Country: "CH",
			},
			IBAN:         "CH9300762011623852957",
			Currency:     "CHF",
			PaymentTerms: "Payable within 30 days.",
		},
	}
}

func TestPDFGenerator_Generate(t *testing.T) {
	dir := t.TempDir()
	gen, err := NewPDFGenerator(dir)
	require.NoError(t, err)

	path, err := gen.Generate(context.Background(), testRequest())
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "INV-2025-1503-000001-JC.pdf"), path)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))

	// No leftover temp files.
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestPDFGenerator_CancelledContext(t *testing.T) {
	gen, err := NewPDFGenerator(t.TempDir())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = gen.Generate(ctx, testRequest())
	require.Error(t, err)
}

func TestQRPayload(t *testing.T) {
	payload := qrPayload(testRequest())

	assert.Contains(t, payload, "SPC\n0200\n1\nCH9300762011623852957")
	assert.Contains(t, payload, "216.00\nCHF")
	assert.Contains(t, payload, "INV-2025-1503-000001-JC")
}
