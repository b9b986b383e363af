package patman

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/broady/patman/testutil"
)

func TestCombine(t *testing.T) {
	prod := testutil.NewUpstream(t).RespondJSON(http.StatusOK, []string{"prod"})
	dev := testutil.NewUpstream(t).RespondJSON(http.StatusOK, []string{"dev"})

	services := Services{
		"prod": {BaseURL: prod.URL},
		"dev":  {BaseURL: dev.URL},
	}
	endpoints := map[string]Definition{
		"lorem":  NewEndpoint[loremArgs, []string]("GET", "/api/").WithParamsFunc(loremParams),
		"health": NewEndpoint[NoArgs, any]("GET", "/health"),
	}

	m, err := Combine(NewClient(), services, endpoints)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(m) != 2 || len(m["prod"]) != 2 || len(m["dev"]) != 2 {
		t.Fatalf("expected 2x2 matrix, got %v", m)
	}

	inv, err := m.Lookup("dev", "lorem")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	lorem, ok := As[loremArgs, []string](inv)
	if !ok {
		t.Fatal("expected typed call function")
	}
	res, err := lorem(context.Background(), loremArgs{Type: "all-meat"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Body[0] != "dev" {
		t.Errorf("expected dev upstream, got %v", res.Body)
	}
	if len(prod.Requests()) != 0 {
		t.Error("expected prod upstream to be untouched")
	}

	if _, ok := As[NoArgs, []string](inv); ok {
		t.Error("expected As to fail for mismatched types")
	}
}

func TestCombine_Empty(t *testing.T) {
	m, err := Combine(NewClient(), Services{"prod": {BaseURL: "https://x"}}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(m["prod"]) != 0 {
		t.Errorf("expected no endpoints, got %v", m["prod"])
	}

	m, err = Combine(NewClient(), nil, map[string]Definition{"a": NewEndpoint[NoArgs, any]("GET", "/")})
	if err != nil || len(m) != 0 {
		t.Errorf("expected empty matrix, got %v (%v)", m, err)
	}
}

func TestCombine_InvalidService(t *testing.T) {
	_, err := Combine(NewClient(), Services{"broken": {BaseURL: "nope"}}, nil)
	if err == nil || !strings.Contains(err.Error(), `service "broken"`) {
		t.Errorf("expected service error, got %v", err)
	}
}

func TestCombine_NilEndpoint(t *testing.T) {
	_, err := Combine(NewClient(), Services{"prod": {BaseURL: "https://x"}}, map[string]Definition{"a": nil})
	if err == nil {
		t.Error("expected error for nil endpoint")
	}
}

func TestMatrix_Lookup(t *testing.T) {
	m, err := Combine(NewClient(), Services{"prod": {BaseURL: "https://x"}}, map[string]Definition{
		"a": NewEndpoint[NoArgs, any]("GET", "/a"),
		"b": NewEndpoint[NoArgs, any]("GET", "/b"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := m.Lookup("staging", "a"); err == nil || !strings.Contains(err.Error(), "[prod]") {
		t.Errorf("expected unknown service error listing prod, got %v", err)
	}
	if _, err := m.Lookup("prod", "c"); err == nil || !strings.Contains(err.Error(), "[a b]") {
		t.Errorf("expected unknown endpoint error listing a and b, got %v", err)
	}
}
