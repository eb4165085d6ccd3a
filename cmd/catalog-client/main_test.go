package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Sternrassler/catalog-client/internal/config"
	"github.com/Sternrassler/catalog-client/internal/testutil"
	"github.com/Sternrassler/catalog-client/pkg/catalog"
	"github.com/Sternrassler/catalog-client/pkg/client"
	"github.com/rs/zerolog"
)

// setupEnv points the CLI at mock and keeps state local to the test.
func setupEnv(t *testing.T, mock *testutil.MockCatalog) {
	t.Helper()
	t.Setenv("FAKESTORE_API_URL", mock.URL())
	t.Setenv("DATABASE_DSN", filepath.Join(t.TempDir(), "favorites.db"))
	t.Setenv("REDIS_URL", "")
	t.Setenv("FAKESTORE_API_WARMUP_IDS", "")
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer

	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)

	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestProductCommand(t *testing.T) {
	mock := testutil.NewMockCatalog()
	defer mock.Close()
	mock.AddProduct(1, "Backpack", "109.95")
	setupEnv(t, mock)

	out, err := execute(t, "product", "1")
	if err != nil {
		t.Fatalf("product 1 error = %v", err)
	}

	var item catalog.Item
	if err := json.Unmarshal([]byte(out), &item); err != nil {
		t.Fatalf("decode output %q: %v", out, err)
	}
	if item.ID != 1 || item.Title != "Backpack" {
		t.Errorf("item = %+v", item)
	}
}

func TestProductCommand_Errors(t *testing.T) {
	mock := testutil.NewMockCatalog()
	defer mock.Close()
	setupEnv(t, mock)

	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{name: "not found", args: []string{"product", "999"}, wantErr: "product 999 not found"},
		{name: "invalid id", args: []string{"product", "abc"}, wantErr: "invalid product id"},
		{name: "negative id", args: []string{"product", "-1"}, wantErr: "invalid product id"},
		{name: "missing id", args: []string{"product"}, wantErr: "accepts 1 arg"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, tt.args...)
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestProductsCommand(t *testing.T) {
	mock := testutil.NewMockCatalog()
	defer mock.Close()
	mock.AddProduct(1, "Backpack", "109.95")
	mock.AddProduct(2, "T-Shirt", "22.30")
	setupEnv(t, mock)

	out, err := execute(t, "products", "--log-level", "error")
	if err != nil {
		t.Fatalf("products error = %v", err)
	}

	var items []catalog.Item
	if err := json.Unmarshal([]byte(out), &items); err != nil {
		t.Fatalf("decode output: %v", err)
	}
	if len(items) != 2 {
		t.Errorf("got %d items, want 2", len(items))
	}
}

func TestStatsCommand(t *testing.T) {
	mock := testutil.NewMockCatalog()
	defer mock.Close()
	setupEnv(t, mock)
	t.Setenv("FAKESTORE_API_RATE_LIMIT_MAX", "25")

	out, err := execute(t, "stats")
	if err != nil {
		t.Fatalf("stats error = %v", err)
	}

	var stats client.Stats
	if err := json.Unmarshal([]byte(out), &stats); err != nil {
		t.Fatalf("decode output: %v", err)
	}
	if stats.RateLimitMax != 25 || stats.RateLimitRemaining != 25 {
		t.Errorf("stats = %+v", stats)
	}
	if stats.BaseURL != mock.URL() {
		t.Errorf("BaseURL = %q, want %q", stats.BaseURL, mock.URL())
	}
	if mock.RequestCount() != 0 {
		t.Errorf("stats made %d upstream requests, want 0", mock.RequestCount())
	}
}

func TestInvalidConfig(t *testing.T) {
	mock := testutil.NewMockCatalog()
	defer mock.Close()
	setupEnv(t, mock)
	t.Setenv("FAKESTORE_API_TIMEOUT", "0")

	if _, err := execute(t, "stats"); err == nil || !strings.Contains(err.Error(), "load config") {
		t.Errorf("error = %v, want config error", err)
	}
}

func TestAppHandler(t *testing.T) {
	mock := testutil.NewMockCatalog()
	defer mock.Close()
	mock.AddProduct(1, "Backpack", "109.95")

	cfg := config.Default()
	cfg.Catalog.BaseURL = mock.URL()
	cfg.Database.DSN = filepath.Join(t.TempDir(), "favorites.db")

	ctx := context.Background()
	a, err := buildApp(ctx, cfg, zerolog.Nop())
	if err != nil {
		t.Fatalf("buildApp() error = %v", err)
	}
	defer a.close()

	if a.redis != nil {
		t.Error("expected in-memory state without a Redis address")
	}

	handler, err := a.handler(ctx)
	if err != nil {
		t.Fatalf("handler() error = %v", err)
	}

	t.Run("ready", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest("GET", "/ready", nil))
		if w.Code != http.StatusOK {
			t.Errorf("Expected status 200, got %d", w.Code)
		}
	})

	t.Run("add and list favorite", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest("POST", "/users/7/favorites", strings.NewReader(`{"product_id":1}`)))
		if w.Code != http.StatusCreated {
			t.Fatalf("add status = %d (%s)", w.Code, w.Body.String())
		}

		w = httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest("GET", "/users/7/favorites", nil))
		if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"title":"Backpack"`) {
			t.Errorf("list = %d %s", w.Code, w.Body.String())
		}
	})

	t.Run("unknown product rejected", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest("POST", "/users/7/favorites", strings.NewReader(`{"product_id":42}`)))
		if w.Code != http.StatusUnprocessableEntity {
			t.Errorf("status = %d, want 422", w.Code)
		}
	})
}

func TestNewRedisClient(t *testing.T) {
	tests := []struct {
		addr     string
		wantAddr string
		wantErr  bool
	}{
		{addr: "localhost:6379", wantAddr: "localhost:6379"},
		{addr: "redis://cache:6380/2", wantAddr: "cache:6380"},
		{addr: "http://%zz", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.addr, func(t *testing.T) {
			rdb, err := newRedisClient(tt.addr)
			if (err != nil) != tt.wantErr {
				t.Fatalf("newRedisClient() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			defer rdb.Close()
			if got := rdb.Options().Addr; got != tt.wantAddr {
				t.Errorf("Addr = %q, want %q", got, tt.wantAddr)
			}
		})
	}
}
