// Package textutil provides small string helpers shared by the store and the
// CLI: identifier sanitization for on-disk document names and a generic
// conditional.
package textutil
