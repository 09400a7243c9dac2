// Package ir holds the entity and value types shared by the query layers.
//
// This package contains type definitions only. All other internal packages
// import ir; ir imports nothing internal.
//
// Key design constraints:
//   - Variable values are a sealed set: String, Long, Boolean, Null
//   - NO float types (floats make equality predicates non-deterministic)
//   - All JSON tags use snake_case
package ir
