// Package fs abstracts the filesystem operations the harness stages perform
// on shard outputs, so tests can inject I/O faults.
//
//   - [LocalFS]: production implementation on the os package
//   - [FaultyFS]: wraps another FileSystem and fails writes, syncs, closes
//     or removes for file names matching a rule
//
// Stages take a FileSystem and default to [Default]:
//
//	f, err := fs.Default.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
//
// Operations carry no context.Context; local file calls are not interruptible.
package fs
