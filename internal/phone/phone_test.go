package phone

import "testing"

func TestValidate(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"+380671234567", "+380671234567", true},
		{"380671234567", "+380671234567", true},
		{"0671234567", "+380671234567", true},
		{"0509876543", "+380509876543", true},
		{"671234567", "", false},
		{"0671234567 ", "+380671234567", true},
		{"+38 (067) 123-45-67", "+380671234567", true},
		{"38-067-123-45-67", "+380671234567", true},
		{"+380 (67) 123-45-67", "+380671234567", true},
		{"+380 67 123 45 67", "+380671234567", true},
		{"+380-67-123-45-67", "+380671234567", true},
		{"12345", "", false},
		{"", "", false},
		{"abc", "", false},
		{"1234567890", "", false},  // 10 digits, unknown operator code
		{"+3806712345", "", false}, // too short
		{"0971112233", "+380971112233", true},
	}
	for _, c := range cases {
		got, ok := Validate(c.in)
		if ok != c.ok || got != c.want {
			t.Errorf("Validate(%q) = %q, %v; want %q, %v", c.in, got, ok, c.want, c.ok)
		}
	}
}

func TestValidateCanonicalIsDigitsOnly(t *testing.T) {
	// Punctuated international input must not leak formatting into the
	// stored canonical value.
	for _, in := range []string{"+380671234567", "+380 (67) 123-45-67", "+380 67 123 45 67"} {
		got, ok := Validate(in)
		if !ok || got != "+380671234567" {
			t.Fatalf("Validate(%q) = %q, %v; want +380671234567, true", in, got, ok)
		}
	}
}

func TestFormat(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"+380671234567", "+38 (067) 123-45-67"},
		{"0671234567", "+38 (067) 123-45-67"},
		{"380509876543", "+38 (050) 987-65-43"},
		{"not a phone", "not a phone"},
		{"12345", "12345"},
	}
	for _, c := range cases {
		if got := Format(c.in); got != c.want {
			t.Errorf("Format(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}
