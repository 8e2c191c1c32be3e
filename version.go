package i18nmig

// Version information for i18nmig.
// These values can be overridden at build time using ldflags:
//
//	go build -ldflags "-X github.com/ZaguanLabs/i18nmig.GitCommit=$(git rev-parse HEAD)"
const (
	// Name is the application name.
	Name = "i18nmig"

	// Description is a short description of the application.
	Description = "Source-to-source i18n migration for React-style UIs"

	// Version is the semantic version of the application.
	Version = "0.3.0"

	// Repository is the source code repository URL.
	Repository = "https://github.com/ZaguanLabs/i18nmig"
)

// Build information, set via ldflags.
var (
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// FullVersion returns the version string with the short commit, if known.
func FullVersion() string {
	v := Version
	if GitCommit != "unknown" && GitCommit != "" {
		short := GitCommit
		if len(short) > 7 {
			short = short[:7]
		}
		v += "+" + short
	}
	return v
}

// UserAgent returns the user agent sent to suggestion providers.
func UserAgent() string {
	return Name + "/" + FullVersion()
}
