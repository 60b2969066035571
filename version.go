package pikax

import "fmt"

func VersionNumberString() string {
	// TODO: we probably want a commit hash for non-debug binaries
	return "dev"
}

func VersionString() string {
	return fmt.Sprintf("pikax %s", VersionNumberString())
}

// UserAgent returns a browser-like user agent. The web frontend refuses some
// endpoints to clients that do not look like a browser.
func UserAgent() string {
	return "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"
}
