// Package utils provides bespoke, one off utils that don't make sense to be
// their own package
package utils

// Build metadata reported by "faqrag version". Release builds set these with
// -ldflags "-X github.com/papercomputeco/faqrag/pkg/utils.Version=...".
var (
	Version   = "dev"
	Sha       = "HEAD"
	Buildtime = "dev"
)
