//go:build integration
// +build integration

package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"testing"
	"time"
)

func envOrDefault(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func baseURL() string {
	return envOrDefault("INTEGRATION_BASE_URL", "http://localhost:8080")
}

// login signs in with INTEGRATION_ADMIN_USER / INTEGRATION_ADMIN_PASSWORD.
func login(t *testing.T) string {
	t.Helper()

	payload := map[string]string{
		"username": envOrDefault("INTEGRATION_ADMIN_USER", "admin"),
		"password": envOrDefault("INTEGRATION_ADMIN_PASSWORD", "change-me-please"),
	}
	resp := doJSON(t, http.MethodPost, "/v1/auth/login", "", payload)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login: unexpected status %d", resp.StatusCode)
	}

	var out struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
	}
	decode(t, resp, &out)
	if out.AccessToken == "" {
		t.Fatal("login: empty access token")
	}
	return out.AccessToken
}

func doJSON(t *testing.T, method, path, token string, body any) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, baseURL()+path, reader)
	if err != nil {
		t.Fatalf("create request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("%s %s failed: %v", method, path, err)
	}
	return resp
}

func decode(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

func expectStatus(t *testing.T, resp *http.Response, want int) {
	t.Helper()
	if resp.StatusCode != want {
		body, _ := io.ReadAll(resp.Body)
		t.Fatalf("expected status %d, got %d: %s", want, resp.StatusCode, body)
	}
}

type category struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func createCategory(t *testing.T, token, name string) category {
	t.Helper()

	resp := doJSON(t, http.MethodPost, "/v1/categories", token, map[string]string{
		"name": fmt.Sprintf("%s-%d", name, time.Now().UnixNano()),
	})
	defer resp.Body.Close()
	expectStatus(t, resp, http.StatusCreated)

	var c category
	decode(t, resp, &c)
	return c
}

func deleteCategory(t *testing.T, token, id string) {
	t.Helper()
	resp := doJSON(t, http.MethodDelete, "/v1/categories/"+id, token, nil)
	resp.Body.Close()
}

type sessionView struct {
	SessionID string `json:"session_id"`
	Pack      struct {
		ID           string `json:"id"`
		Name         string `json:"name"`
		CategoryName string `json:"category_name"`
		Questions    []struct {
			ID   string `json:"id"`
			Text string `json:"text"`
		} `json:"questions"`
		Version int64 `json:"version"`
	} `json:"pack"`
	Draft *struct {
		Text string `json:"text"`
	} `json:"draft"`
}

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Field   string `json:"field"`
}

func apply(t *testing.T, token, sessionID string, cmd map[string]any) sessionView {
	t.Helper()

	resp := doJSON(t, http.MethodPost, "/v1/sessions/"+sessionID+"/commands", token, cmd)
	defer resp.Body.Close()
	expectStatus(t, resp, http.StatusOK)

	var view sessionView
	decode(t, resp, &view)
	return view
}
