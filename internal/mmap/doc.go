// Package mmap maps a finalized EDB read-only into memory so template
// ranges can be sliced without copying.
//
//	m, err := mmap.Open(edbPath)
//	if err != nil { ... }
//	defer m.Close()
//
//	tmpl, err := m.Slice(entry.Offset, entry.Length)
//
// Mappings are safe for concurrent reads. Close is idempotent; callers must
// not use slices obtained from Bytes or Slice after Close returns.
package mmap
