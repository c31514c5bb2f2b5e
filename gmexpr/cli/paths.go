package cli

import (
	"os"
	"path/filepath"
)

// AppPaths is an interface to determine application specific paths for configuration
// and logging/tracing.
type AppPaths interface {
	ConfigDir() string
	LogDir() string
}

// DefaultAppPaths returns an AppPaths instance with platform-dependent defaults
// set, given appTag. appTag is a string specific to a client's application to identify it.
func DefaultAppPaths(appTag string) (AppPaths, error) {
	return appHome(appTag)
}

type appPaths struct {
	tag  string
	home string
}

var _ AppPaths = appPaths{}

// appHome determines the user's home directory. A missing home directory
// is reported, but the returned paths remain usable for the platform's
// user directories.
func appHome(appTag string) (a appPaths, err error) {
	a = appPaths{tag: appTag}
	if a.home, err = os.UserHomeDir(); err != nil {
		a.home = ""
	}
	return
}

// defaultPrelude is the prelude script loaded if none is configured.
const defaultPrelude = "prelude.lua"

// locatePrelude returns the path of the default prelude in the configuration
// directory, or "" if there is none.
func locatePrelude(paths AppPaths) string {
	if paths == nil || paths.ConfigDir() == "" {
		return ""
	}
	p := filepath.Join(paths.ConfigDir(), defaultPrelude)
	if _, err := os.Stat(p); err != nil {
		return ""
	}
	tracer().Debugf("found default prelude %s", p)
	return p
}
