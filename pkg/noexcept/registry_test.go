package noexcept

import (
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
	"golang.org/x/sync/errgroup"
)

func TestRegistry_WriteOnce(t *testing.T) {
	r := NewRegistry()
	if !r.Register(Registration{Code: 404, DefaultMessage: "Not Found", Linked: []Code{500}}) {
		t.Fatalf("Register() = false, want true")
	}
	if r.Register(Registration{Code: 404, DefaultMessage: "Other", Soft: true}) {
		t.Errorf("second Register() = true, want false")
	}

	want := Registration{Code: 404, Name: "Error404", DefaultMessage: "Not Found", Linked: []Code{500}}
	if diff := cmp.Diff(want, r.Lookup(404)); diff != "" {
		t.Errorf("Lookup(404) mismatch (-want +got):\n%s", diff)
	}
}

func TestRegistry_LookupUnregistered(t *testing.T) {
	r := NewRegistry()

	want := Registration{Code: 7, Name: "Error7", DefaultMessage: "Error 7"}
	if diff := cmp.Diff(want, r.Lookup(7)); diff != "" {
		t.Errorf("Lookup(7) mismatch (-want +got):\n%s", diff)
	}
	if r.IsRegistered(7) {
		t.Errorf("IsRegistered(7) = true, want false")
	}
	if msg, ok := r.DefaultMessageFor(7); ok || msg != "Error 7" {
		t.Errorf("DefaultMessageFor(7) = %q, %v, want %q, false", msg, ok, "Error 7")
	}
}

func TestRegistry_LookupReturnsCopy(t *testing.T) {
	r := NewRegistry()
	r.Register(Registration{Code: 1, Linked: []Code{2, 3}})

	got := r.Lookup(1)
	got.Linked[0] = 99

	if r.Lookup(1).Linked[0] != 2 {
		t.Errorf("Lookup(1).Linked[0] = %d after caller mutation, want 2", r.Lookup(1).Linked[0])
	}
}

func TestRegistry_EntriesSorted(t *testing.T) {
	r := NewRegistry()
	for _, code := range []Code{500, 3, 404} {
		r.Register(Registration{Code: code})
	}

	var got []Code
	for _, entry := range r.Entries() {
		got = append(got, entry.Code)
	}
	if diff := cmp.Diff([]Code{3, 404, 500}, got); diff != "" {
		t.Errorf("Entries() codes mismatch (-want +got):\n%s", diff)
	}
	if r.Len() != 3 {
		t.Errorf("Len() = %d, want 3", r.Len())
	}
}

func TestRegistry_ConcurrentRegister(t *testing.T) {
	r := NewRegistry()
	var g errgroup.Group
	for i := 0; i < 16; i++ {
		i := i
		g.Go(func() error {
			r.Register(Registration{Code: 1, DefaultMessage: fmt.Sprintf("writer %d", i)})
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatal(err)
	}

	if r.Len() != 1 {
		t.Errorf("Len() = %d, want 1", r.Len())
	}
	first := r.Lookup(1).DefaultMessage
	for i := 0; i < 4; i++ {
		if got := r.Lookup(1).DefaultMessage; got != first {
			t.Errorf("Lookup(1).DefaultMessage = %q, want stable %q", got, first)
		}
	}
}
