package gcp

import (
	"strings"

	"google.golang.org/api/option"
)

// credentialOptions picks service account credentials from
// GOOGLE_APPLICATION_CREDENTIALS_JSON, then GOOGLE_APPLICATION_CREDENTIALS.
// Either may hold inline JSON or a file path. With neither set the client
// falls back to application default credentials.
func credentialOptions(getenv func(string) string) []option.ClientOption {
	for _, name := range []string{"GOOGLE_APPLICATION_CREDENTIALS_JSON", "GOOGLE_APPLICATION_CREDENTIALS"} {
		v := strings.TrimSpace(getenv(name))
		switch {
		case v == "":
			continue
		case strings.HasPrefix(v, "{"):
			return []option.ClientOption{option.WithCredentialsJSON([]byte(v))}
		default:
			return []option.ClientOption{option.WithCredentialsFile(v)}
		}
	}
	return nil
}
