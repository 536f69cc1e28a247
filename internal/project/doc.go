// Package project reads and writes the .modkit.yaml record kept at the root of
// every scaffolded mod, and compares the recorded dependency version with the
// latest published one.
package project
