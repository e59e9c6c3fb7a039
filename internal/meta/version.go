// Package meta holds build-time metadata.
package meta

// VersionSHA is the version control revision this binary was built from.
// It is stamped at build time via -ldflags "-X".
var VersionSHA = "dev"
