package repositories

import (
	"testing"

	"github.com/nimada80/plusp/internal/store"
	"github.com/nimada80/plusp/internal/storetest"
	"go.uber.org/zap/zaptest"
)

const testServiceKey = "test-service-key"

// setupStore starts an in-memory record store and a client bound to it
func setupStore(t *testing.T) (*storetest.Server, *store.Client) {
	t.Helper()
	srv := storetest.NewServer(t, testServiceKey)
	return srv, store.NewClient(srv.URL, testServiceKey, zaptest.NewLogger(t))
}
