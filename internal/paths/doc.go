// Package paths centralizes filesystem layout for the vcinstall CLI.
//
// It resolves the installation directory, the well-known user-data
// subdirectories inside an installation (datasets, logs, weights,
// pretrained models), the generated launcher script, and the XDG
// locations used for vcinstall's own configuration and caches.
package paths
