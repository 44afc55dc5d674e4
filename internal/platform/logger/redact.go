package logger

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"strings"
	"sync"
)

const redacted = "[REDACTED]"

// redactor hides credentials from log fields. Keys containing a redact word
// lose their value; keys containing a hash word keep a salted digest.
type redactor struct {
	enabled     bool
	salt        string
	redactWords []string
	hashWords   []string
}

var (
	defaultRedactor     *redactor
	defaultRedactorOnce sync.Once
)

func currentRedactor() *redactor {
	defaultRedactorOnce.Do(func() {
		defaultRedactor = newRedactorFromEnv()
	})
	return defaultRedactor
}

// newRedactorFromEnv reads LOG_REDACTION_ENABLED (default on), LOG_HASH_SALT
// and LOG_HASH_KEYS, a comma separated list added to the hashed key words.
func newRedactorFromEnv() *redactor {
	r := &redactor{
		enabled:     true,
		salt:        strings.TrimSpace(os.Getenv("LOG_HASH_SALT")),
		redactWords: []string{"token", "authorization", "password", "secret", "cookie", "credentials"},
		hashWords:   []string{"session_id"},
	}
	switch strings.ToLower(strings.TrimSpace(os.Getenv("LOG_REDACTION_ENABLED"))) {
	case "0", "false", "no", "off":
		r.enabled = false
	}
	for _, w := range strings.Split(os.Getenv("LOG_HASH_KEYS"), ",") {
		if w = strings.ToLower(strings.TrimSpace(w)); w != "" {
			r.hashWords = append(r.hashWords, w)
		}
	}
	return r
}

func scrub(kv []interface{}) []interface{} {
	return currentRedactor().scrub(kv)
}

func (r *redactor) scrub(kv []interface{}) []interface{} {
	if !r.enabled || len(kv) == 0 {
		return kv
	}
	out := make([]interface{}, len(kv))
	copy(out, kv)
	for i := 0; i+1 < len(out); i += 2 {
		out[i+1] = r.value(keyOf(out[i]), out[i+1])
	}
	return out
}

func (r *redactor) value(key string, val interface{}) interface{} {
	switch {
	case key != "" && containsAny(key, r.redactWords):
		return redacted
	case key != "" && containsAny(key, r.hashWords):
		return r.digest(val)
	}
	switch v := val.(type) {
	case map[string]interface{}:
		if v == nil {
			return v
		}
		out := make(map[string]interface{}, len(v))
		for k, inner := range v {
			out[k] = r.value(keyOf(k), inner)
		}
		return out
	case string:
		if looksLikeJWT(v) {
			return redacted
		}
	}
	return val
}

func (r *redactor) digest(val interface{}) string {
	raw := stringOf(val)
	if raw == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(r.salt + raw))
	return "hash:" + hex.EncodeToString(sum[:])[:12]
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}

// looksLikeJWT matches three dot separated segments with a substantial header
// and payload.
func looksLikeJWT(s string) bool {
	parts := strings.Split(s, ".")
	return len(parts) == 3 && len(parts[0]) > 10 && len(parts[1]) > 10
}

func keyOf(k interface{}) string {
	return strings.ToLower(stringOf(k))
}

func stringOf(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case []byte:
		return strings.TrimSpace(string(t))
	}
	return strings.TrimSpace(fmt.Sprint(v))
}
