// Package testutil provides testing utilities for the catalog client.
package testutil

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"time"
)

// MockResponse defines the behavior for a mock catalog endpoint response.
type MockResponse struct {
	StatusCode int
	Body       string
	Headers    map[string]string
	Delay      time.Duration
}

// MockCatalog is a configurable mock catalog API for testing.
//
// By default it serves the products added with AddProduct: the listing on
// /products and each item on /products/{id}, 404 for unknown ids.
// SetSequence overrides a path with scripted responses.
type MockCatalog struct {
	server *httptest.Server

	mu        sync.Mutex
	products  map[int]string
	order     []int
	sequences map[string][]MockResponse
	counts    map[string]int

	// Tracking
	requestCount      int
	lastRequestHeader http.Header
}

// NewMockCatalog creates a new mock catalog server.
func NewMockCatalog() *MockCatalog {
	mock := &MockCatalog{
		products:  make(map[int]string),
		sequences: make(map[string][]MockResponse),
		counts:    make(map[string]int),
	}

	mock.server = httptest.NewServer(http.HandlerFunc(mock.serve))
	return mock
}

// URL returns the mock server URL.
func (m *MockCatalog) URL() string {
	return m.server.URL
}

// Close shuts down the mock server.
func (m *MockCatalog) Close() {
	m.server.Close()
}

// AddProduct registers a product and returns its JSON body.
func (m *MockCatalog) AddProduct(id int, title string, price string) string {
	body := ProductJSON(id, title, price)

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.products[id]; !exists {
		m.order = append(m.order, id)
	}
	m.products[id] = body
	return body
}

// RemoveProduct makes the product answer 404 from now on.
func (m *MockCatalog) RemoveProduct(id int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.products, id)
	for i, v := range m.order {
		if v == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
}

// SetSequence scripts the responses for path. Each request consumes the next
// response; the last one repeats once the script is exhausted.
func (m *MockCatalog) SetSequence(path string, responses ...MockResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sequences[path] = responses
}

// SetResponse configures a single repeating response for path.
func (m *MockCatalog) SetResponse(path string, resp MockResponse) {
	m.SetSequence(path, resp)
}

// ClearResponse removes a scripted response so path falls back to the product data.
func (m *MockCatalog) ClearResponse(path string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sequences, path)
}

// RequestCount returns the number of requests made to the server.
func (m *MockCatalog) RequestCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.requestCount
}

// PathCount returns the number of requests made to path.
func (m *MockCatalog) PathCount(path string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.counts[path]
}

// LastRequestHeader returns the headers of the most recent request.
func (m *MockCatalog) LastRequestHeader() http.Header {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastRequestHeader
}

// Reset clears all tracking counters.
func (m *MockCatalog) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requestCount = 0
	m.counts = make(map[string]int)
	m.lastRequestHeader = nil
}

func (m *MockCatalog) serve(w http.ResponseWriter, r *http.Request) {
	m.mu.Lock()
	m.requestCount++
	n := m.counts[r.URL.Path]
	m.counts[r.URL.Path] = n + 1
	m.lastRequestHeader = r.Header.Clone()

	script, scripted := m.sequences[r.URL.Path]
	var resp MockResponse
	if scripted && len(script) > 0 {
		if n >= len(script) {
			n = len(script) - 1
		}
		resp = script[n]
	} else {
		resp = m.productResponse(r.URL.Path)
	}
	m.mu.Unlock()

	write(w, r, resp)
}

// productResponse builds the default response; callers hold m.mu.
func (m *MockCatalog) productResponse(path string) MockResponse {
	if path == "/products" {
		bodies := make([]string, 0, len(m.order))
		for _, id := range m.order {
			bodies = append(bodies, m.products[id])
		}
		return NewHealthyResponse("[" + strings.Join(bodies, ",") + "]")
	}

	if rest, ok := strings.CutPrefix(path, "/products/"); ok {
		if id, err := strconv.Atoi(rest); err == nil {
			if body, exists := m.products[id]; exists {
				return NewHealthyResponse(body)
			}
		}
	}

	return NewNotFoundResponse()
}

func write(w http.ResponseWriter, r *http.Request, resp MockResponse) {
	if resp.Delay > 0 {
		select {
		case <-time.After(resp.Delay):
		case <-r.Context().Done():
			return
		}
	}

	for key, value := range resp.Headers {
		w.Header().Set(key, value)
	}

	w.WriteHeader(resp.StatusCode)
	if resp.Body != "" {
		w.Write([]byte(resp.Body))
	}
}

// ProductJSON renders a product in the upstream format.
func ProductJSON(id int, title string, price string) string {
	return fmt.Sprintf(`{"id":%d,"title":%q,"price":%s,"description":"test product","category":"test","image":"https://example.com/%d.png","rating":{"rate":4.1,"count":120}}`,
		id, title, price, id)
}

// NewHealthyResponse creates a standard 200 OK JSON response.
func NewHealthyResponse(data string) MockResponse {
	return MockResponse{
		StatusCode: http.StatusOK,
		Body:       data,
		Headers: map[string]string{
			"Content-Type": "application/json; charset=utf-8",
		},
	}
}

// NewNotFoundResponse creates a 404 Not Found response.
func NewNotFoundResponse() MockResponse {
	return MockResponse{
		StatusCode: http.StatusNotFound,
		Body:       `{"error":"Not found"}`,
		Headers: map[string]string{
			"Content-Type": "application/json; charset=utf-8",
		},
	}
}

// NewRateLimitResponse creates a 429 Too Many Requests response.
func NewRateLimitResponse() MockResponse {
	return MockResponse{
		StatusCode: http.StatusTooManyRequests,
		Body:       `{"error":"Rate limit exceeded"}`,
		Headers: map[string]string{
			"Content-Type": "application/json; charset=utf-8",
			"Retry-After":  "30",
		},
	}
}

// NewServerErrorResponse creates a 500 Internal Server Error response.
func NewServerErrorResponse() MockResponse {
	return MockResponse{
		StatusCode: http.StatusInternalServerError,
		Body:       `{"error":"Internal server error"}`,
		Headers: map[string]string{
			"Content-Type": "application/json; charset=utf-8",
		},
	}
}

// NewSlowResponse creates a 200 response delivered after delay.
func NewSlowResponse(data string, delay time.Duration) MockResponse {
	resp := NewHealthyResponse(data)
	resp.Delay = delay
	return resp
}
