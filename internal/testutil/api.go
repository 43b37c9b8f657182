package testutil

import (
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"

	"shopfeed/internal/config"
	"shopfeed/internal/mockapi"
)

// SetupTestAPI starts an in-process mock API and returns its handler, the
// backing store and a client config pointing at it. The server is torn
// down with the test.
func SetupTestAPI(t *testing.T, merchantID, authToken string) (*mockapi.Handler, *mockapi.Store, config.APIConfig) {
	store := mockapi.NewStore()
	handler := mockapi.NewHandler(store, authToken, zap.NewNop())

	srv := httptest.NewServer(handler.Router())
	t.Cleanup(srv.Close)

	cfg := config.APIConfig{
		RootURL:    srv.URL,
		MerchantID: merchantID,
		AuthToken:  authToken,
		Homepage:   "http://shop.example.com/",
	}
	return handler, store, cfg
}
