package gallery

import (
	"path/filepath"
	"strconv"
)

const (
	// EDBName is the consolidated EDB file name.
	EDBName = "edb"
	// ManifestName is the consolidated manifest file name.
	ManifestName = "manifest"
)

// EDBPath returns the consolidated EDB path in dir.
func EDBPath(dir string) string { return filepath.Join(dir, EDBName) }

// ManifestPath returns the consolidated manifest path in dir.
func ManifestPath(dir string) string { return filepath.Join(dir, ManifestName) }

// ShardEDBPath returns the EDB path written by shard i.
func ShardEDBPath(dir string, shard int) string {
	return filepath.Join(dir, EDBName+"."+strconv.Itoa(shard))
}

// ShardManifestPath returns the manifest path written by shard i.
func ShardManifestPath(dir string, shard int) string {
	return filepath.Join(dir, ManifestName+"."+strconv.Itoa(shard))
}
