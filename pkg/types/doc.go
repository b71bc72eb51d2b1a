// Package types defines the note, zone and sort option entities, the store,
// repository and preference interfaces, and the standard errors for Pouch.
//
// Storage backends live under internal/; callers depend only on the
// interfaces declared here.
package types
