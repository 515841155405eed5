package frontmatter

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSplit(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantFront string
		wantBody  string
		wantHad   bool
	}{
		{
			name:     "no frontmatter",
			input:    "Name: Honda Fit\nPrice: $4,000\n",
			wantBody: "Name: Honda Fit\nPrice: $4,000\n",
		},
		{
			name:      "lf",
			input:     "---\nname: Honda Fit\n---\nPrice: $4,000\n",
			wantFront: "name: Honda Fit\n",
			wantBody:  "Price: $4,000\n",
			wantHad:   true,
		},
		{
			name:      "crlf",
			input:     "---\r\nname: Honda Fit\r\n---\r\nPrice: $4,000\r\n",
			wantFront: "name: Honda Fit\r\n",
			wantBody:  "Price: $4,000\r\n",
			wantHad:   true,
		},
		{
			name:      "bom and empty block",
			input:     "\xef\xbb\xbf---\n---\nbody",
			wantFront: "",
			wantBody:  "body",
			wantHad:   true,
		},
		{
			name:      "closing delimiter at end of file",
			input:     "---\nyear: 2014\n---",
			wantFront: "year: 2014\n",
			wantBody:  "",
			wantHad:   true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			front, body, had, err := Split([]byte(tt.input))
			require.NoError(t, err)
			require.Equal(t, tt.wantHad, had)
			require.Equal(t, tt.wantFront, string(front))
			require.Equal(t, tt.wantBody, string(body))
		})
	}
}

func TestSplit_MissingClosingDelimiter(t *testing.T) {
	_, _, had, err := Split([]byte("---\nname: Honda Fit\nPrice: $4,000\n"))
	require.ErrorIs(t, err, ErrMissingClosingDelimiter)
	require.False(t, had)
}

func TestFields(t *testing.T) {
	fields, err := Fields([]byte("Name: Toyota Hilux\nyear: 2016\nprice: 12500\nsold: true\ntags: [a, b]\nlocation:\n"))
	require.NoError(t, err)
	require.Equal(t, map[string]string{
		"name":     "Toyota Hilux",
		"year":     "2016",
		"price":    "12500",
		"sold":     "true",
		"location": "",
	}, fields)

	_, err = Fields([]byte("name: [unterminated"))
	require.Error(t, err)
}
