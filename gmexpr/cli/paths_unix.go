//go:build aix || dragonfly || freebsd || (js && wasm) || nacl || linux || netbsd || openbsd || solaris
// +build aix dragonfly freebsd js,wasm nacl linux netbsd openbsd solaris

package cli

import (
	"os"
	"path/filepath"
	"strings"
)

// ConfigDir follows XDG conventions, i.e. $XDG_CONFIG_HOME/gmexpr or
// ~/.config/gmexpr.
func (a appPaths) ConfigDir() string {
	c, err := os.UserConfigDir()
	if err != nil {
		c = filepath.Join(a.home, ".config")
	}
	return filepath.Join(c, strings.ToLower(a.tag))
}

func (a appPaths) LogDir() string {
	c, err := os.UserCacheDir()
	if err != nil {
		c = filepath.Join(a.home, ".cache")
	}
	return filepath.Join(c, strings.ToLower(a.tag), "logs")
}
