// Package ir provides the value domain shared by every docstore package.
//
// This package contains value definitions only. All other internal packages
// import ir; ir imports nothing internal. This keeps the value layer at the
// bottom of the dependency graph.
//
// Key design constraints:
//   - NO float types anywhere - use int64 for numbers
//   - Only scalars (string, int, bool) are ordered; see Compare
//   - A record is an IRObject; a missing key reads as IRNull
//   - All content-addressed identities go through MarshalCanonical
package ir
