package asset

import (
	"errors"
	"testing"
)

func TestClassifyLocal(t *testing.T) {
	testCases := []struct {
		path string
		name string
	}{
		{"github.css", "github.css"},
		{"/github.css", "github.css"},
		{"css/site.css", "css/site.css"},
		{"fonts/inter/inter.woff2", "fonts/inter/inter.woff2"},
	}

	for _, tc := range testCases {
		t.Run(tc.path, func(t *testing.T) {
			a, err := Classify(tc.path)
			if err != nil {
				t.Fatalf("classify error: %v", err)
			}
			local, ok := a.(LocalAsset)
			if !ok {
				t.Fatalf("expected LocalAsset, got %T", a)
			}
			if local.Name != tc.name {
				t.Fatalf("name mismatch: expected %q got %q", tc.name, local.Name)
			}
		})
	}
}

func TestClassifyRemote(t *testing.T) {
	testCases := []struct {
		path    string
		pkg     string
		version string
		file    string
	}{
		{"vue@3.2.0/dist/vue.global.min.js", "vue", "3.2.0", "dist/vue.global.min.js"},
		{"pkg@ver/rest", "pkg", "ver", "rest"},
		{"highlight.js@11.9.0/styles/github.css", "highlight.js", "11.9.0", "styles/github.css"},
		{"@scope/pkg@1.0.0/file.js", "@scope/pkg", "1.0.0", "file.js"},
		{"@highlightjs/cdn-assets@11.9.0/styles/github.min.css", "@highlightjs/cdn-assets", "11.9.0", "styles/github.min.css"},
	}

	for _, tc := range testCases {
		t.Run(tc.path, func(t *testing.T) {
			a, err := Classify(tc.path)
			if err != nil {
				t.Fatalf("classify error: %v", err)
			}
			remote, ok := a.(RemoteAsset)
			if !ok {
				t.Fatalf("expected RemoteAsset, got %T", a)
			}
			if remote.Package != tc.pkg || remote.Version != tc.version || remote.File != tc.file {
				t.Fatalf("unexpected parse: %+v", remote)
			}
		})
	}
}

func TestClassifyMalformed(t *testing.T) {
	testCases := []string{
		"",
		"/",
		"vue@3.2.0",          // 缺少文件路径
		"@3.2.0/dist/vue.js", // 包名为空
		"@scope",
		"@scope/file.css", // 形似 scoped 但缺少版本
	}

	for _, path := range testCases {
		t.Run(path, func(t *testing.T) {
			if _, err := Classify(path); !errors.Is(err, ErrMalformedPath) {
				t.Fatalf("expected ErrMalformedPath for %q, got %v", path, err)
			}
		})
	}
}

func TestKind(t *testing.T) {
	if Kind(LocalAsset{Name: "a"}) != "local" {
		t.Fatalf("local kind mismatch")
	}
	if Kind(RemoteAsset{}) != "remote" {
		t.Fatalf("remote kind mismatch")
	}
	if Kind(nil) != "" {
		t.Fatalf("nil kind should be empty")
	}
}
