// Package cli defines the Cobra command tree for the modkit CLI. Each file in
// this package registers one top-level command (create, status, config,
// version) with the root command. Commands only parse flags, prompt, and format
// output; the work happens in internal/scaffold and the packages it drives.
package cli
