// Package util holds small helpers shared by the archive loaders, the
// interception log and the CLI tables.
package util
