// Package gallery implements the flat-file template store shared between
// enrollment, finalization and search.
//
// A gallery is two files: the EDB, raw template bytes appended back to back,
// and the manifest, one "id length offset" line per template in enrollment
// order. Each enrollment shard writes its own edb.<i>/manifest.<i> pair;
// finalization consolidates the pairs into edb/manifest with rebased offsets.
//
// Invariants checked by Verify:
//
//   - every [offset, offset+length) range lies inside the EDB
//   - ranges of distinct entries never overlap (empty ranges overlap nothing)
//
// Contiguity is not required.
package gallery
