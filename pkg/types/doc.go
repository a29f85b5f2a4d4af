// Package types defines the Store interface, entity types, vote state
// machine, and standard errors for the restroom facility knowledge store.
//
// Entities reference each other by identifier only. The Store is the sole
// owner of every entity; callers resolve references through it.
package types
