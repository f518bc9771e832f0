package tracing

import "testing"

func TestRegistryInsertRemove(t *testing.T) {
	r := NewRegistry()
	span := newFakeSpan("frontend_tcp_request")
	r.Insert("1::abc", span)

	if got := r.Len(); got != 1 {
		t.Fatalf("Len() = %d, want 1", got)
	}

	got, ok := r.Remove("1::abc")
	if !ok {
		t.Fatal("Remove: want found")
	}
	if got != span {
		t.Fatal("Remove returned a different span")
	}
	if r.Len() != 0 {
		t.Fatalf("Len() after remove = %d, want 0", r.Len())
	}

	if _, ok := r.Remove("1::abc"); ok {
		t.Fatal("Remove: want not found on second call")
	}
}

func TestRegistryTakeAndReplace(t *testing.T) {
	r := NewRegistry()
	first := newFakeSpan("frontend_tcp_request")
	r.Insert("2::xyz", first)

	prior, ok := r.TakeAndReplace("2::xyz")
	if !ok || prior != first {
		t.Fatalf("TakeAndReplace = %+v, %v, want %+v, true", prior, ok, first)
	}
	if r.Len() != 0 {
		t.Fatalf("Len() after TakeAndReplace = %d, want 0", r.Len())
	}

	second := newFakeSpan("frontend_http_request")
	r.Insert("2::xyz", second)
	if r.Len() != 1 {
		t.Fatalf("Len() after re-insert = %d, want 1", r.Len())
	}
}
