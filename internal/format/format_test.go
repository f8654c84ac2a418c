package format

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCurrency(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   float64
		want string
	}{
		{name: "whole", in: 100, want: "R$\u00a0100,00"},
		{name: "cents", in: 19.9, want: "R$\u00a019,90"},
		{name: "grouping", in: 1234.5, want: "R$\u00a01.234,50"},
		{name: "zero", in: 0, want: "R$\u00a00,00"},
		{name: "negative", in: -5.25, want: "-R$\u00a05,25"},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, Currency(tc.in))
		})
	}
}

func TestDate(t *testing.T) {
	got, err := Date("2025-01-15T13:30:00Z")
	require.NoError(t, err)
	assert.Equal(t, "15/01/2025, 10:30:00", got)

	// a bare date is midnight UTC, the evening before in São Paulo
	got, err = Date("2025-01-15")
	require.NoError(t, err)
	assert.Equal(t, "14/01/2025, 21:00:00", got)

	// a date-time without zone is local wall clock
	got, err = Date("2025-01-15T08:00:00")
	require.NoError(t, err)
	assert.Equal(t, "15/01/2025, 08:00:00", got)

	_, err = Date("yesterday")
	assert.Error(t, err)
	assert.Equal(t, "-", DateOr("yesterday", "-"))
}

func TestEscapeHTML(t *testing.T) {
	t.Parallel()

	got := EscapeHTML(`<script>alert("x & 'y'")</script>`)
	assert.Equal(t, "&lt;script&gt;alert(&quot;x &amp; &#39;y&#39;&quot;)&lt;/script&gt;", got)
	assert.Equal(t, "plain text", EscapeHTML("plain text"))
}

func TestSetLocationRejectsUnknownZone(t *testing.T) {
	assert.Error(t, SetLocation("Mars/Olympus_Mons"))
}
