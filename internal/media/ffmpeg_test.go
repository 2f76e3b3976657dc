package media

import "testing"

func TestLastLine(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "", want: ""},
		{in: "one line", want: "one line"},
		{in: "first\nsecond\nthird\n", want: "third"},
		{in: "trailing spaces   \n  last  ", want: "  last"},
	}

	for _, tt := range tests {
		if got := lastLine(tt.in); got != tt.want {
			t.Fatalf("lastLine(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
