package utils

import "testing"

func TestNormalizeIdentifier(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"  8001015009087 ", "8001015009087"},
		{"emp  001", "EMP 001"},
		{"12345.0", "12345"},
		{"ab12.0", "AB12.0"},
		{"", ""},
		{"   ", ""},
	}
	for _, c := range cases {
		if got := NormalizeIdentifier(c.in); got != c.want {
			t.Errorf("NormalizeIdentifier(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}
