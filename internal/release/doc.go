// Package release resolves downloadable assets through a GitHub repository's
// "latest release" endpoint. Every call is a fresh request; retries and caching
// are left to the caller.
package release
