// Package version holds the ctxgen release version.
//
// The version participates in cache invalidation (it is one of the four
// cache-key axes), so it must change on any release that alters summary
// output or on-disk formats.
package version

// Version is the current version of the ctxgen tool.
const Version = "0.3.0"
