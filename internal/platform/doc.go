// Package platform provides the filesystem primitives shared by the scaffolding
// pipeline: whole-file atomic writes through a temp file and rename, and
// permission handling that is a no-op on Windows.
package platform
