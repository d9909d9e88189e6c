package config

import (
	"os"
	"os/user"
	"path/filepath"
	"strings"
)

// ExpandTilde replaces a leading ~ or ~/ with the user's home directory.
// ~username is left alone.
func ExpandTilde(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

// Expand resolves ${USER}, ${HOME} and a leading ~ in a local file path,
// such as log.file. Other ${VAR} references are kept verbatim.
func Expand(s string) string {
	if s == "" {
		return s
	}
	expanded := os.Expand(s, func(name string) string {
		switch name {
		case "USER":
			return currentUser()
		case "HOME":
			if home, err := os.UserHomeDir(); err == nil {
				return home
			}
			return "~"
		default:
			return "${" + name + "}"
		}
	})
	return ExpandTilde(expanded)
}

func currentUser() string {
	if u := os.Getenv("USER"); u != "" {
		return u
	}
	if u, err := user.Current(); err == nil {
		return u.Username
	}
	return "user"
}
