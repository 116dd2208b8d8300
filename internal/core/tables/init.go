// Package tables registers the call-center schemas with the core registry.
// Import it for side effects; each file registers one table in init().
package tables
