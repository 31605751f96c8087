// Package contenttype maps file extensions to the MIME types attached to
// every successful asset response.
package contenttype

import (
	"path"
	"strings"
)

// DefaultType 是未识别扩展名的回退类型。
const DefaultType = "application/octet-stream"

// 扩展名表与上游约定保持一致，键为带点的小写扩展名。
var types = map[string]string{
	".css":  "text/css",
	".js":   "application/javascript",
	".mjs":  "application/javascript",
	".json": "application/json",
	".map":  "application/json",
	".html": "text/html",
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".gif":  "image/gif",
	".svg":  "image/svg+xml",
}

// For 根据文件名扩展名返回 MIME 类型，大小写不敏感，未识别时回退
// application/octet-stream。
func For(filename string) string {
	ext := strings.ToLower(path.Ext(filename))
	if ext == "" {
		return DefaultType
	}
	if mimeType, ok := types[ext]; ok {
		return mimeType
	}
	return DefaultType
}
