// Package cache defines the disk-backed store that maps (package, version,
// file) triples onto CacheDir/<package>/<version>/<file> files. The store
// exposes read/write primitives with safe semantics (temp file + rename, per
// entry locking) so higher layers can fill the cache on first fetch and serve
// hits without duplicating filesystem logic. Entries carry no metadata beyond
// their presence and never expire.
package cache
