package types

import "testing"

func TestNormalizeURL(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"trailing slash", "https://www.ducati.com/ww/en/bikes/", "https://www.ducati.com/ww/en/bikes"},
		{"fragment", "https://www.ducati.com/ww/en/bikes#specs", "https://www.ducati.com/ww/en/bikes"},
		{"uppercase", "HTTPS://WWW.Ducati.COM/WW/EN/Bikes", "https://www.ducati.com/ww/en/bikes"},
		{"query kept", "https://www.ducati.com/search?q=monster", "https://www.ducati.com/search?q=monster"},
		{"bare host", "https://www.ducati.com/", "https://www.ducati.com"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeURL(tt.in); got != tt.want {
				t.Errorf("NormalizeURL(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestNormalizeURLIdempotent(t *testing.T) {
	inputs := []string{
		"https://www.ducati.com/ww/en/bikes/panigale-v4/",
		"HTTPS://www.Ducati.com/Bikes#Gallery",
		"https://www.ducati.com/search?q=Monster&page=2",
	}
	for _, in := range inputs {
		once := NormalizeURL(in)
		twice := NormalizeURL(once)
		if once != twice {
			t.Errorf("not idempotent: %q -> %q -> %q", in, once, twice)
		}
	}
}

func TestIsInternalURL(t *testing.T) {
	tests := []struct {
		url  string
		base string
		want bool
	}{
		{"https://www.ducati.com/bikes", "www.ducati.com", true},
		{"https://shop.ducati.com/apparel", "www.ducati.com", true},
		{"https://ducati.com/bikes", "www.ducati.com", true},
		{"/relative/path", "www.ducati.com", true},
		{"https://www.honda.com/bikes", "www.ducati.com", false},
		{"https://notducati.com/bikes", "www.ducati.com", false},
	}

	for _, tt := range tests {
		if got := IsInternalURL(tt.url, tt.base); got != tt.want {
			t.Errorf("IsInternalURL(%q, %q) = %v, want %v", tt.url, tt.base, got, tt.want)
		}
	}
}

func TestResolveURL(t *testing.T) {
	got := ResolveURL("https://www.ducati.com/ww/en/bikes", "/ww/en/bikes/monster")
	want := "https://www.ducati.com/ww/en/bikes/monster"
	if got != want {
		t.Errorf("ResolveURL = %q, want %q", got, want)
	}

	got = ResolveURL("https://www.ducati.com/ww/en/", "https://other.com/x")
	if got != "https://other.com/x" {
		t.Errorf("absolute href should pass through, got %q", got)
	}
}
