// Package ir provides the intermediate representation shared by the search
// fragment compiler: column descriptors, association paths, search scopes and
// compiled fragments.
//
// This package contains type definitions only. All other internal packages
// import ir; ir imports nothing internal. This keeps ir the foundational
// layer with no circular dependencies.
//
// Key design constraints:
//   - Scope values are immutable once built; Prepare derives everything static
//   - Fragments are produced fresh for every query and never cached
//   - A column weight of 0 means "unset" and behaves as weight 1
//   - All JSON tags use snake_case
package ir
