// Package ir provides the framing types shared by every mergers package.
//
// This package contains the payload envelope (DataHeader, InputSpec, DataRef),
// producer identity resolution, publication digests and the canonical JSON
// encoder used for golden traces. All other internal packages import ir;
// ir imports nothing internal. This keeps the wire-level vocabulary the
// foundational layer with no circular dependencies.
//
// Key design constraints:
//   - Headers are binary, fixed prefix + length-prefixed strings, big endian
//   - A DataRef never owns its bytes; use Clone to take ownership
//   - Producer identity is a pure function of the header (origin, description, sub-spec)
//   - Canonical JSON sorts keys by UTF-16 code units and rejects floats and null
//   - All JSON tags use snake_case
package ir
