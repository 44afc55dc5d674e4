package logger

import (
	"strings"
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]zapcore.Level{
		"":        zapcore.InfoLevel,
		"debug":   zapcore.DebugLevel,
		"WARN":    zapcore.WarnLevel,
		"warning": zapcore.WarnLevel,
		" err ":   zapcore.ErrorLevel,
		"error":   zapcore.ErrorLevel,
		"verbose": zapcore.InfoLevel,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Fatalf("ParseLevel(%q): want=%v got=%v", in, want, got)
		}
	}
}

func TestRedactorHidesSecrets(t *testing.T) {
	r := &redactor{enabled: true, redactWords: []string{"token", "secret", "authorization"}}
	jwtLike := "eyJhbGciOiJIUzI1NiJ9.eyJ1c2VybmFtZSI6ImEifQ.sig"
	got := r.scrub([]interface{}{
		"session_jwt_secret", "abc",
		"Authorization", "Bearer x",
		"value", jwtLike,
		"filename", "myplan_2024-01-01T10-00-00",
		"headers", map[string]interface{}{"x_token": "t"},
	})
	want := []interface{}{redacted, redacted, redacted, "myplan_2024-01-01T10-00-00"}
	for i, w := range want {
		if got[2*i+1] != w {
			t.Fatalf("field %v: want=%v got=%v", got[2*i], w, got[2*i+1])
		}
	}
	if m := got[9].(map[string]interface{}); m["x_token"] != redacted {
		t.Fatalf("nested map: want token redacted, got=%v", m)
	}
}

func TestRedactorHashesConfiguredKeys(t *testing.T) {
	t.Setenv("LOG_HASH_KEYS", " Client_IP ,")
	t.Setenv("LOG_HASH_SALT", "pepper")
	r := newRedactorFromEnv()

	got := r.scrub([]interface{}{"session_id", "abc", "client_ip", "10.0.0.1", "dangling"})
	for _, i := range []int{1, 3} {
		s, ok := got[i].(string)
		if !ok || !strings.HasPrefix(s, "hash:") || len(s) != len("hash:")+12 {
			t.Fatalf("field %v: expected 12 char hash, got=%v", got[i-1], got[i])
		}
	}
	if got[4] != "dangling" {
		t.Fatalf("odd trailing key should be kept, got=%v", got[4])
	}
	if (&redactor{enabled: true}).digest("abc") == r.digest("abc") {
		t.Fatalf("salt should change the digest")
	}
}

func TestRedactionCanBeDisabled(t *testing.T) {
	t.Setenv("LOG_REDACTION_ENABLED", "off")
	r := newRedactorFromEnv()
	kv := []interface{}{"password", "hunter2"}
	if got := r.scrub(kv); got[1] != "hunter2" {
		t.Fatalf("disabled redactor changed value: %v", got)
	}
}
