package envutil

import (
	"os"
	"strconv"
	"strings"
)

func String(name, def string) string {
	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		return def
	}
	return v
}

func Int(name string, def int) int {
	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}

func Bool(name string, def bool) bool {
	v := strings.TrimSpace(strings.ToLower(os.Getenv(name)))
	switch v {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return def
	}
}

// Missing returns the names from required that are unset in the environment.
func Missing(required ...string) []string {
	var out []string
	for _, name := range required {
		if _, ok := os.LookupEnv(name); !ok {
			out = append(out, name)
		}
	}
	return out
}
