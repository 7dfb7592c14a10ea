package shopping

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/golang-jwt/jwt/v5"
)

const testCartKey = "keyid123:aabbccddeeff"

func TestCartClient_Submit(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/cart/items" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}

		auth := r.Header.Get("Authorization")
		if !strings.HasPrefix(auth, "Bearer ") {
			t.Fatalf("missing bearer token, got %q", auth)
		}

		token, err := jwt.Parse(strings.TrimPrefix(auth, "Bearer "), func(tok *jwt.Token) (interface{}, error) {
			if tok.Header["kid"] != "keyid123" {
				t.Errorf("kid = %v", tok.Header["kid"])
			}
			return []byte{0xaa, 0xbb, 0xcc, 0xdd, 0xee, 0xff}, nil
		})
		if err != nil || !token.Valid {
			t.Errorf("invalid token: %v", err)
		}

		var payload struct {
			PlanID string `json:"plan_id"`
			Items  []Item `json:"items"`
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Fatalf("decode payload: %v", err)
		}
		if payload.PlanID != "plan-1" || len(payload.Items) != 1 {
			t.Errorf("payload = %+v", payload)
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(CartResult{
			Success:    true,
			TotalPrice: 12.5,
			ItemsAdded: []string{"tomato"},
			CartURL:    "https://groceries.example/cart/abc",
		})
	}))
	defer server.Close()

	client, err := NewCartClient(server.URL, testCartKey, "user-1")
	if err != nil {
		t.Fatalf("NewCartClient() error = %v", err)
	}

	list := &List{PlanID: "plan-1", Items: []Item{{Name: "tomato", Quantity: 5, Unit: "whole", Category: "fruit_veg"}}}
	result, err := client.Submit(context.Background(), list)
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if !result.Success || result.TotalPrice != 12.5 {
		t.Errorf("result = %+v", result)
	}
}

func TestNewCartClient_RejectsBadKeys(t *testing.T) {
	if _, err := NewCartClient("http://x", "no-separator", "u"); err == nil {
		t.Error("expected error for key without separator")
	}
	if _, err := NewCartClient("http://x", "id:not-hex!", "u"); err == nil {
		t.Error("expected error for non-hex secret")
	}
}

func TestCartClient_SubmitServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusForbidden)
	}))
	defer server.Close()

	client, err := NewCartClient(server.URL, testCartKey, "user-1")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := client.Submit(context.Background(), &List{PlanID: "p"}); err == nil {
		t.Error("expected error on 403")
	}
}
