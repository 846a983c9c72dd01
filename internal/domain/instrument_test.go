package domain

import (
	"errors"
	"sync"
	"testing"
)

func TestInstrumentRegistry_RegisterAndExists(t *testing.T) {
	r := NewInstrumentRegistry()

	if r.Exists("FYND") {
		t.Error("Exists(FYND) = true before registration")
	}

	r.Register("FYND")

	if !r.Exists("FYND") {
		t.Error("Exists(FYND) = false after registration")
	}
	if r.Exists("ACME") {
		t.Error("Exists(ACME) = true, should be false")
	}
}

func TestInstrumentRegistry_OpenAdmitsAnything(t *testing.T) {
	r := NewInstrumentRegistry()

	if err := r.Admit("FYND"); err != nil {
		t.Fatalf("Admit(FYND): %v", err)
	}
	if !r.Exists("FYND") {
		t.Error("open registry should register admitted instruments")
	}
}

func TestInstrumentRegistry_RestrictedRejectsUnknown(t *testing.T) {
	r := NewInstrumentRegistry("FYND", "ACME")

	if err := r.Admit("FYND"); err != nil {
		t.Errorf("Admit(FYND): %v", err)
	}
	if err := r.Admit("OTHER"); !errors.Is(err, ErrUnknownInstrument) {
		t.Errorf("Admit(OTHER) error = %v, want ErrUnknownInstrument", err)
	}
	if r.Exists("OTHER") {
		t.Error("rejected instrument should not be registered")
	}

	got := r.List()
	if len(got) != 2 || got[0] != "ACME" || got[1] != "FYND" {
		t.Errorf("List() = %v, want [ACME FYND]", got)
	}
}

func TestInstrumentRegistry_ConcurrentAccess(t *testing.T) {
	r := NewInstrumentRegistry()
	var wg sync.WaitGroup

	for i := 0; i < 100; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_ = r.Admit("SYM")
		}()
		go func() {
			defer wg.Done()
			r.Exists("SYM")
		}()
	}
	wg.Wait()

	if !r.Exists("SYM") {
		t.Error("Exists(SYM) = false after concurrent admission")
	}
}

func TestInstrumentRegistry_AllowsDoesNotRegister(t *testing.T) {
	open := NewInstrumentRegistry()
	if !open.Allows("FYND") {
		t.Error("open registry should allow any instrument")
	}
	if open.Exists("FYND") {
		t.Error("Allows registered FYND")
	}

	restricted := NewInstrumentRegistry("FYND")
	if !restricted.Allows("FYND") {
		t.Error("Allows(FYND) = false for a configured instrument")
	}
	if restricted.Allows("ACME") {
		t.Error("Allows(ACME) = true for a restricted registry")
	}
}
