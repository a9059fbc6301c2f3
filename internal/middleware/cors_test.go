package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func serve(origins []string, method, origin string) *httptest.ResponseRecorder {
	h := CORS(origins)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	req := httptest.NewRequest(method, "/api/actions", nil)
	if origin != "" {
		req.Header.Set("Origin", origin)
	}
	resp := httptest.NewRecorder()
	h.ServeHTTP(resp, req)
	return resp
}

func TestCORSWildcardEchoesOriginWithoutCredentials(t *testing.T) {
	resp := serve([]string{"*"}, http.MethodGet, "http://localhost:5173")

	if got := resp.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:5173" {
		t.Fatalf("unexpected allow-origin: %q", got)
	}
	if resp.Header().Get("Access-Control-Allow-Credentials") != "" {
		t.Fatal("wildcard must not allow credentials")
	}
	if resp.Code != http.StatusTeapot {
		t.Fatalf("expected request to reach handler, got %d", resp.Code)
	}
}

func TestCORSExplicitOriginAllowsCredentials(t *testing.T) {
	resp := serve([]string{"https://sagara.example"}, http.MethodGet, "https://sagara.example")
	if resp.Header().Get("Access-Control-Allow-Credentials") != "true" {
		t.Fatal("expected credentials for explicit origin")
	}
}

func TestCORSUnknownOriginGetsNoHeaders(t *testing.T) {
	resp := serve([]string{"https://sagara.example"}, http.MethodGet, "https://evil.example")
	if resp.Header().Get("Access-Control-Allow-Origin") != "" {
		t.Fatal("unexpected allow-origin for unlisted origin")
	}
}

func TestCORSPreflightShortCircuits(t *testing.T) {
	resp := serve([]string{"*"}, http.MethodOptions, "http://localhost:5173")
	if resp.Code != http.StatusNoContent {
		t.Fatalf("expected 204 for preflight, got %d", resp.Code)
	}
}
