package handlers

import "net/http"

var versionInfo = struct {
	Version   string
	Commit    string
	BuildDate string
}{"dev", "HEAD", "unknown"}

// SetVersionInfo records build metadata served by /version. Called
// from main with ldflags-injected values.
func SetVersionInfo(version, commit, buildDate string) {
	if version != "" {
		versionInfo.Version = version
	}
	if commit != "" {
		versionInfo.Commit = commit
	}
	if buildDate != "" {
		versionInfo.BuildDate = buildDate
	}
}

// VersionHandler serves GET /version.
func VersionHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"version":   versionInfo.Version,
		"commit":    versionInfo.Commit,
		"buildDate": versionInfo.BuildDate,
	})
}
