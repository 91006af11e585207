// Package reinstall preserves user-generated data across a destructive
// reinstall of the application.
//
// A clean reinstall renames the existing installation to a timestamped
// backup, re-clones the source into the original path, then restores the
// known user-data categories: datasets, embeddings, and logs move back
// wholesale; trained weights merge copy-without-clobber so default models
// shipped by the fresh clone survive alongside user-added ones; the
// application config file is copied back if present.
//
// Restores are best-effort. A category that is missing, empty, or whose
// destination fails the safety check is skipped with a warning. The backup
// directory is removed at the end of the run regardless of individual
// restore outcomes.
package reinstall
