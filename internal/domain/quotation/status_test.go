package quotation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatus_CanTransitionTo(t *testing.T) {
	all := []Status{
		StatusIssued,
		StatusAccepted,
		StatusCancelled,
		StatusInvoiced,
		StatusPaymentReceived,
	}

	allowed := map[Status]map[Status]bool{
		StatusIssued: {
			StatusAccepted:  true,
			StatusCancelled: true,
			StatusInvoiced:  true,
		},
		StatusAccepted: {
			StatusCancelled: true,
			StatusInvoiced:  true,
		},
		StatusInvoiced: {
			StatusPaymentReceived: true,
		},
		StatusCancelled:       {},
		StatusPaymentReceived: {},
	}

	// Every (from, to) pair checked, including self-transitions.
	for _, from := range all {
		for _, to := range all {
			got := from.CanTransitionTo(to)
			want := allowed[from][to]
			assert.Equal(t, want, got, "%s -> %s", from, to)
		}
	}
}

func TestStatus_SelfTransitionRejected(t *testing.T) {
	for s := range transitions {
		assert.False(t, s.CanTransitionTo(s), "self-transition %s", s)
	}
}

func TestStatus_Terminal(t *testing.T) {
	assert.True(t, StatusCancelled.Terminal())
	assert.True(t, StatusPaymentReceived.Terminal())
	assert.False(t, StatusIssued.Terminal())
	assert.False(t, StatusAccepted.Terminal())
	assert.False(t, StatusInvoiced.Terminal())
}

func TestStatus_Valid(t *testing.T) {
	assert.True(t, StatusIssued.Valid())
	assert.False(t, Status("draft").Valid())
	assert.False(t, Status("").Valid())
}

func TestParseStatus(t *testing.T) {
	s, err := ParseStatus("accepted")
	require.NoError(t, err)
	assert.Equal(t, StatusAccepted, s)

	_, err = ParseStatus("ACCEPTED")
	assert.Error(t, err)

	_, err = ParseStatus("paid")
	assert.Error(t, err)
}
