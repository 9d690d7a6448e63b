//go:build integration

package store

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"
)

func TestMongoStore(t *testing.T) {
	uri := os.Getenv("MONGO_URI")
	if uri == "" {
		t.Skip("MONGO_URI not set")
	}

	ctx := context.Background()
	s, err := NewMongoStore(ctx, MongoConfig{
		URI:        uri,
		Database:   "cheertower_test",
		Collection: fmt.Sprintf("routines_%d", time.Now().UnixNano()),
	})
	if err != nil {
		t.Fatalf("NewMongoStore: %v", err)
	}
	defer func() {
		_ = s.coll.Drop(ctx)
		_ = s.Close(ctx)
	}()

	exerciseStore(t, s)
}
