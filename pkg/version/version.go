package version

// Version is the application version, overridden at build time via
// -ldflags "-X simsetgo/pkg/version.Version=...".
var Version = "dev"
