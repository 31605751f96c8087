package contenttype

import "testing"

func TestForKnownExtensions(t *testing.T) {
	testCases := []struct {
		filename string
		expected string
	}{
		{"github.css", "text/css"},
		{"dist/vue.global.min.js", "application/javascript"},
		{"package.json", "application/json"},
		{"index.html", "text/html"},
		{"logo.svg", "image/svg+xml"},
		{"photo.JPG", "image/jpeg"},
	}

	for _, tc := range testCases {
		t.Run(tc.filename, func(t *testing.T) {
			if got := For(tc.filename); got != tc.expected {
				t.Fatalf("expected %s, got %s", tc.expected, got)
			}
		})
	}
}

func TestForFallsBackToOctetStream(t *testing.T) {
	for _, filename := range []string{"archive.tgz", "README", "font.woff2"} {
		if got := For(filename); got != DefaultType {
			t.Fatalf("expected default type for %s, got %s", filename, got)
		}
	}
}
