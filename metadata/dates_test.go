package metadata

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeDate(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"full pdf timestamp", "D:20240315143025", "2024-03-15T14:30:25"},
		{"pdf date only", "D:20240315", "2024-03-15"},
		{"pdf with timezone suffix", "D:20240315143025+01'00'", "2024-03-15T14:30:25"},
		{"pdf too short", "D:2024", "D:2024"},
		{"iso passes through", "2024-03-15T14:30:25Z", "2024-03-15T14:30:25Z"},
		{"unrecognized passes through", "15 March 2024", "15 March 2024"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeDate(tt.in))
		})
	}
}
