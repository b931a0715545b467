package sentiment

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestGetFNG(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		fmt.Fprint(w, `{"name":"Fear and Greed Index","data":[{"value":"23","value_classification":"Extreme Fear"}]}`)
	}))
	defer srv.Close()

	c := NewFNGClientWithURL(srv.URL, time.Second)

	fng, err := c.GetFNG(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fng != 23 {
		t.Fatalf("expected 23, got %d", fng)
	}
	if calls != 1 {
		t.Fatalf("sentiment fetch must be a single attempt, got %d calls", calls)
	}
}

func TestGetFNGServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewFNGClientWithURL(srv.URL, time.Second)

	if _, err := c.GetFNG(context.Background()); err == nil {
		t.Fatal("expected error on 500 response")
	}
}

func TestGetFNGOutOfRange(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"data":[{"value":"250"}]}`)
	}))
	defer srv.Close()

	c := NewFNGClientWithURL(srv.URL, time.Second)

	if _, err := c.GetFNG(context.Background()); err == nil {
		t.Fatal("expected error for out-of-range value")
	}
}

func TestGetFNGMissingValue(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"data":[]}`)
	}))
	defer srv.Close()

	c := NewFNGClientWithURL(srv.URL, time.Second)

	if _, err := c.GetFNG(context.Background()); err == nil {
		t.Fatal("expected error for empty data")
	}
}
