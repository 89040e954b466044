// Package migrations holds the schema migrations. Each file registers its
// migration from init(); importing the package for side effects is enough
// for the migrate commands and serve to see them.
package migrations
