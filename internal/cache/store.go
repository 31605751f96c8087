package cache

import (
	"context"
	"errors"
	"io"
)

// Store 负责管理磁盘缓存的读写。磁盘布局遵循：
//
//	<CacheDir>/<package>/<version>/<file>    # 回源得到的原始正文
//
// file 可以包含嵌套子目录（如 dist/vue.global.min.js），写入时按需创建。
// 条目没有任何附加元数据，存在即有效，除非被外部删除，永不过期。
type Store interface {
	// Get 返回一个可流式读取的缓存条目。若不存在则返回 ErrNotFound。
	Get(ctx context.Context, locator Locator) (*ReadResult, error)

	// Put 将回源正文写入缓存，并产出新的 Entry 描述。实现需通过临时文件 + rename
	// 保证写入原子性，并在失败时清理临时文件，避免并发读取方观察到截断内容。
	Put(ctx context.Context, locator Locator, body io.Reader) (*Entry, error)

	// Remove 删除正文文件，不存在时静默成功。
	Remove(ctx context.Context, locator Locator) error
}

// Locator 唯一定位一个缓存条目，即 (package, version, file) 三元组。
type Locator struct {
	Package string
	Version string
	File    string
}

// Entry 表示一次缓存写入/命中结果，包含绝对文件路径及大小。
type Entry struct {
	Locator   Locator `json:"locator"`
	FilePath  string  `json:"file_path"`
	SizeBytes int64   `json:"size_bytes"`
}

// ReadResult 组合 Entry 与正文 Reader，便于处理层直接将 Body 流式返回。
type ReadResult struct {
	Entry  Entry
	Reader io.ReadSeekCloser
}

// ErrNotFound 表示缓存不存在。
var ErrNotFound = errors.New("cache entry not found")
