// Package ports defines interfaces for the native layer boundary.
// These ports enable dependency inversion - the bridge and domain operations
// depend on abstractions, and the cgo adapter (or a test fake) implements them.
package ports
