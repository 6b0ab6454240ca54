package numbering

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fabriq/internal/core/apperror"
	"fabriq/internal/core/sequence"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 12, 0, 0, 0, time.UTC)
}

func TestFormat_Quotation(t *testing.T) {
	num, err := Format(sequence.KindQuotation, date(2024, time.March, 15), 1, "Jean Chartier")
	require.NoError(t, err)
	assert.Equal(t, "DEV-2024-1503-000001-JC", num)
}

func TestFormat_Invoice(t *testing.T) {
	num, err := Format(sequence.KindInvoice, date(2024, time.March, 15), 1, "Jean Chartier")
	require.NoError(t, err)
	assert.Equal(t, "INV-2024-1503-000001-JC", num)
}

func TestFormat_DayMonthOrder(t *testing.T) {
	// December 31st renders as 3112, not 1231.
	num, err := Format(sequence.KindQuotation, date(2025, time.December, 31), 42, "Anna Berger")
	require.NoError(t, err)
	assert.Equal(t, "DEV-2025-3112-000042-AB", num)
}

func TestFormat_Deterministic(t *testing.T) {
	d := date(2024, time.July, 2)
	first, err := Format(sequence.KindQuotation, d, 7, "Marie Curie")
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		again, err := Format(sequence.KindQuotation, d, 7, "Marie Curie")
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestFormat_OverflowBoundary(t *testing.T) {
	d := date(2024, time.January, 1)

	num, err := Format(sequence.KindInvoice, d, MaxSequence, "Jean Chartier")
	require.NoError(t, err)
	assert.Equal(t, "INV-2024-0101-999999-JC", num)

	_, err = Format(sequence.KindInvoice, d, MaxSequence+1, "Jean Chartier")
	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, apperror.CodeSequenceOverflow))
}

func TestFormat_RejectsNonPositiveSequence(t *testing.T) {
	_, err := Format(sequence.KindQuotation, date(2024, time.January, 1), 0, "Jean Chartier")
	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))
}

func TestInitials(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{"simple", "Jean Chartier", "JC", false},
		{"lowercase", "jean chartier", "JC", false},
		{"accented first letter", "Élodie Durand", "ED", false},
		{"accented last name", "Marc Bühler", "MB", false},
		{"middle name uses last component", "Anna Maria Schmid", "AS", false},
		{"hyphenated first name", "Jean-Luc Picard", "JP", false},
		{"extra whitespace", "  Jean   Chartier  ", "JC", false},
		{"single component", "Jean", "", true},
		{"empty", "", "", true},
		{"blank", "   ", "", true},
		{"digits only component", "123 Chartier", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Initials(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, apperror.HasCode(err, apperror.CodeInvalidClientName))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFormat_InvalidClientName(t *testing.T) {
	_, err := Format(sequence.KindQuotation, date(2024, time.March, 15), 1, "Jean")
	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, apperror.CodeInvalidClientName))
}
