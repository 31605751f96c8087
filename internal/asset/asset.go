// Package asset classifies incoming /static/ request paths into either a
// local file name or a versioned remote package reference. The grammar is the
// unpkg one: `package@version/file...`, where scoped packages keep their
// leading `@` and occupy up to two path segments (`@scope/pkg@1.0.0/file`).
package asset

import (
	"errors"
	"regexp"
	"strings"
)

// ErrMalformedPath 表示路径既不是合法的本地文件名，也无法解析为
// package@version/file 形态，调用方应将其转换为 400 响应。
var ErrMalformedPath = errors.New("malformed asset path")

// remotePattern 捕获 (package, version, file)。包名允许 `@scope/pkg` 形式，
// 分隔符取包名段之后的第一个 `@`；版本号不允许包含 `/`。
var remotePattern = regexp.MustCompile(`^(@?[^@/]+(?:/[^@/]+)?)@([^/]+)/(.+)$`)

// Asset 是 Classify 的结果，仅有 LocalAsset 与 RemoteAsset 两种实现。
type Asset interface {
	assetKind() string
}

// LocalAsset 指向静态目录下的一个文件，Name 不包含 `@`。
type LocalAsset struct {
	Name string
}

// RemoteAsset 指向固定 Origin 上的 package@version/file 资源。
// File 可以包含嵌套路径（如 dist/vue.global.min.js）。
type RemoteAsset struct {
	Package string
	Version string
	File    string
}

func (LocalAsset) assetKind() string  { return "local" }
func (RemoteAsset) assetKind() string { return "remote" }

// Kind 返回资源类型标识（local/remote），供日志字段使用。
func Kind(a Asset) string {
	if a == nil {
		return ""
	}
	return a.assetKind()
}

// Classify 解析 /static/ 前缀之后的请求路径。首个路径段不含 `@` 时整个
// 路径视为本地文件名；含 `@` 时必须能解析为完整的 package@version/file，
// 否则返回 ErrMalformedPath。
func Classify(raw string) (Asset, error) {
	p := strings.TrimPrefix(raw, "/")
	if p == "" {
		return nil, ErrMalformedPath
	}

	first := p
	if idx := strings.IndexByte(p, '/'); idx >= 0 {
		first = p[:idx]
	}

	if !strings.ContainsRune(first, '@') {
		return LocalAsset{Name: p}, nil
	}

	m := remotePattern.FindStringSubmatch(p)
	if m == nil {
		return nil, ErrMalformedPath
	}

	return RemoteAsset{
		Package: m[1],
		Version: m[2],
		File:    m[3],
	}, nil
}
