package ctxutil

import (
	"context"
	"reflect"
	"testing"
)

func TestUserOrDefault(t *testing.T) {
	if got := UserOrDefault(context.Background(), "Unknown user"); got != "Unknown user" {
		t.Fatalf("UserOrDefault: want=%q got=%q", "Unknown user", got)
	}
	ctx := WithRequestData(context.Background(), &RequestData{User: "alice"})
	if got := UserOrDefault(ctx, "Unknown user"); got != "alice" {
		t.Fatalf("UserOrDefault: want=%q got=%q", "alice", got)
	}
}

func TestLogFieldsSkipsEmpty(t *testing.T) {
	if kv := LogFields(context.Background()); kv != nil {
		t.Fatalf("LogFields on bare ctx: want nil got=%v", kv)
	}
	ctx := WithRequestData(context.Background(), &RequestData{RequestID: "r1", User: "bob"})
	want := []interface{}{"request_id", "r1", "user", "bob"}
	if got := LogFields(ctx); !reflect.DeepEqual(got, want) {
		t.Fatalf("LogFields: want=%v got=%v", want, got)
	}
}
