// README: ID validator tests.
package handlers

import (
	"strings"
	"testing"
)

func TestIsValidID(t *testing.T) {
	cases := []struct {
		id   string
		want bool
	}{
		{"", false},
		{"abc123abc123abc123abc123abc12301", true}, // generated trip id
		{"client_pay", true},                       // identity-provider id with separator
		{"driver-7", true},
		{"bad id", false},
		{"t/../../etc", false},
		{"id!", false},
		{strings.Repeat("a", 64), true},
		{strings.Repeat("a", 65), false},
	}
	for _, tc := range cases {
		if got := isValidID(tc.id); got != tc.want {
			t.Errorf("isValidID(%q) = %v, want %v", tc.id, got, tc.want)
		}
	}
}
