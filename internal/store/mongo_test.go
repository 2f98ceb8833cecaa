package store

import (
	"context"
	"log"
	"os"
	"testing"

	"github.com/joho/godotenv"
	"github.com/stretchr/testify/require"
)

// mongoBackend connects to TEST_MONGO_URI, which must point at a replica set, and
// drops the partitions collection. It returns nil when no test server is configured.
func mongoBackend(t *testing.T) *MongoStore {
	t.Helper()
	loadEnv.Do(func() {
		if err := godotenv.Load("../../.env"); err != nil {
			log.Printf("No .env file found or failed to load: %v", err)
		}
	})

	uri := os.Getenv("TEST_MONGO_URI")
	if uri == "" {
		return nil
	}

	ctx := context.Background()
	client, err := NewMongoClient(ctx, uri)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Disconnect(context.Background()) })

	s := NewMongoStore(client, "venue_booking_test")
	require.NoError(t, s.coll.Drop(ctx))
	return s
}
