package store

import (
	"context"
	"strings"
	"testing"

	config "example.com/campusfeed/internal/init"
)

func TestNew_UnknownDriver(t *testing.T) {
	st, err := New(context.Background(), &config.Config{StoreDriver: "sqlite"})
	if err == nil {
		t.Fatal("expected an error for an unknown driver")
	}
	if st != nil {
		t.Fatalf("expected no store, got %T", st)
	}
	if !strings.Contains(err.Error(), "sqlite") {
		t.Fatalf("error should name the driver: %v", err)
	}
}
