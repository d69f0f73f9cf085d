package openai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/joseph-ayodele/variance-drafts/internal/common"
)

func chatServer(t *testing.T, content string, status int) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("auth = %q", got)
		}
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{{"message": map[string]any{"content": content}}},
		})
	}))
}

func newTestClient(url string, lenient bool) *Client {
	return NewClient(Config{APIKey: "test-key", BaseURL: url, LenientOptional: lenient}, nil)
}

func TestExtractItems(t *testing.T) {
	srv := chatServer(t, `{"items":[{"item_code":"D01","description":"Door","quantity":"2","unit_price":"1,500","vendor":"Acme"}]}`, http.StatusOK)
	defer srv.Close()

	lines, err := newTestClient(srv.URL, false).ExtractItems(context.Background(), "D01 Door 2 x 1,500")
	if err != nil {
		t.Fatal(err)
	}
	if len(lines) != 1 {
		t.Fatalf("lines = %+v", lines)
	}
	l := lines[0]
	if *l.ItemCode != "D01" || *l.Quantity != 2 || *l.UnitPrice != 1500 || *l.VendorName != "Acme" {
		t.Errorf("line = %+v", l)
	}
	if l.Amount != nil {
		t.Errorf("amount should stay absent, got %v", *l.Amount)
	}
}

func TestExtractRepairsFencedJSON(t *testing.T) {
	srv := chatServer(t, "```json\n{\"items\": [{\"item_code\": \"A1\", \"total\": 40,}]}\n```", http.StatusOK)
	defer srv.Close()

	lines, err := newTestClient(srv.URL, false).ExtractItems(context.Background(), "A1 40")
	if err != nil {
		t.Fatal(err)
	}
	if len(lines) != 1 || *lines[0].Amount != 40 {
		t.Errorf("lines = %+v", lines)
	}
}

func TestExtractLenientDropsBadOptionals(t *testing.T) {
	content := `{"items":[{"item_code":"A1","total":10,"currency":"riyal"},{"item_code":"B2"}]}`

	strict := chatServer(t, content, http.StatusOK)
	defer strict.Close()
	if _, err := newTestClient(strict.URL, false).ExtractItems(context.Background(), "x"); !errors.Is(err, common.ErrSchemaViolation) {
		t.Errorf("strict err = %v", err)
	}

	lenient := chatServer(t, content, http.StatusOK)
	defer lenient.Close()
	lines, err := newTestClient(lenient.URL, true).ExtractItems(context.Background(), "x")
	if err != nil {
		t.Fatal(err)
	}
	if len(lines) != 1 || lines[0].Currency != nil {
		t.Errorf("lines = %+v", lines)
	}
}

func TestExtractUpstreamError(t *testing.T) {
	srv := chatServer(t, "", http.StatusTooManyRequests)
	defer srv.Close()
	if _, err := newTestClient(srv.URL, true).ExtractItems(context.Background(), "x"); !errors.Is(err, common.ErrUpstream) {
		t.Errorf("err = %v", err)
	}
}
