// Package misc keeps build identification used by the CLI shell.
package misc

import "runtime/debug"

var (
	appName = "yttc"
	version = "development"
)

func GetAppName() string {
	return appName
}

func GetVersion() string {
	return version
}

// GetGitHash digs the vcs revision out of build info when present.
func GetGitHash() string {
	if bi, ok := debug.ReadBuildInfo(); ok {
		for _, setting := range bi.Settings {
			if setting.Key == "vcs.revision" {
				if len(setting.Value) > 12 {
					return setting.Value[:12]
				}
				return setting.Value
			}
		}
	}
	return "unknown"
}
