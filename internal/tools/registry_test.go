package tools

import (
	"context"
	"reflect"
	"testing"
)

func noopHandler(ctx context.Context, args map[string]any) (any, error) {
	return nil, nil
}

func TestRegistry_Register_And_Resolve(t *testing.T) {
	r := NewRegistry()
	if err := r.Register(&Descriptor{Name: "list_tables", Handler: noopHandler}); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	d, ok := r.Resolve("list_tables")
	if !ok {
		t.Fatal("Expected list_tables to resolve")
	}
	if d.Name != "list_tables" {
		t.Errorf("Expected name list_tables, got %s", d.Name)
	}

	if _, ok := r.Resolve("no_such_tool"); ok {
		t.Error("Expected no_such_tool to not resolve")
	}
}

func TestRegistry_Register_Duplicate(t *testing.T) {
	r := NewRegistry()
	if err := r.Register(&Descriptor{Name: "run_query", Handler: noopHandler}); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if err := r.Register(&Descriptor{Name: "run_query", Handler: noopHandler}); err == nil {
		t.Fatal("Expected error for duplicate registration")
	}
}

func TestRegistry_Register_Invalid(t *testing.T) {
	r := NewRegistry()
	if err := r.Register(&Descriptor{Name: "", Handler: noopHandler}); err == nil {
		t.Error("Expected error for empty name")
	}
	if err := r.Register(&Descriptor{Name: "no_handler"}); err == nil {
		t.Error("Expected error for nil handler")
	}
}

func TestRegistry_Names_RegistrationOrder(t *testing.T) {
	r := NewRegistry()
	for _, name := range []string{"search_repositories", "list_tables", "database_info"} {
		if err := r.Register(&Descriptor{Name: name, Handler: noopHandler}); err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
	}

	want := []string{"search_repositories", "list_tables", "database_info"}
	if got := r.Names(); !reflect.DeepEqual(got, want) {
		t.Errorf("Expected names %v, got %v", want, got)
	}
	if got := len(r.List()); got != 3 {
		t.Errorf("Expected 3 descriptors, got %d", got)
	}
}
