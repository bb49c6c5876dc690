// Package pkg provides the core functionality of working with iterators over log entries.
// This package (and subpackages) is a dependency of anything in the plugin package.
//   - The iterator package contains functions for creating and altering the behavior of an iterator.Iterator.
//   - The entries package contains functions related to an individual entries.LogEntry.
package pkg
