// Package model defines the types shared by the harness stages.
//
// # Input Types
//
//   - Record: one input line, an id plus ordered media references
//   - Media, Image: decoded media handed to the engine
//
// # Gallery Types
//
//   - Template: opaque engine bytes, copied on receipt
//   - IndexEntry: (id, length, offset) into the EDB
//
// # Search Types
//
//   - Candidate, CandidateList: ranked gallery matches for one search record
//
// # Status Types
//
//   - ReturnStatus: per-call engine outcome, recorded as data
//   - ShardStatus: terminal worker outcome, reduced worst-wins
package model
