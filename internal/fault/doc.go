// Package fault defines the error taxonomy shared by the scaffolding pipeline.
// Every failure the core reports is an *OpError carrying the operation, a
// coarse Kind, and the path or URL involved.
package fault
