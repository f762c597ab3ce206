package ctxkeys

import (
	"context"
	"testing"
)

func TestWithValue_SetsAndGetsTypedKey(t *testing.T) {
	t.Parallel()

	ctx := WithValue(context.Background(), Subject, "ci-bot")

	got, ok := ctx.Value(Subject).(string)
	if !ok {
		t.Fatalf("expected a string under Subject, got %T", ctx.Value(Subject))
	}
	if got != "ci-bot" {
		t.Errorf("expected subject 'ci-bot', got %q", got)
	}
}

func TestWithValue_PlainStringKeyDoesNotCollide(t *testing.T) {
	t.Parallel()

	//nolint:staticcheck // deliberately using a plain string key
	ctx := context.WithValue(context.Background(), "subject", "intruder")

	if v, ok := ctx.Value(Subject).(string); ok {
		t.Fatalf("typed key must not see plain string key, got %q", v)
	}
}
