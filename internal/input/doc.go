// Package input reads record files and splits them into worker shards.
//
// Two line formats exist:
//
//	id path label [path label ...]                      face, iris, mm
//	id|type path label [path label ...]|type path ...   five
//
// Blank lines are not records. Tokens are separated by runs of whitespace.
package input
