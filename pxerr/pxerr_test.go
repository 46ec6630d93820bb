package pxerr

import (
	"errors"
	"fmt"
	"testing"
)

func TestIs(t *testing.T) {
	err := New(InvalidSQL, "unexpected token %s", "FROM")
	if !Is(err, InvalidSQL) {
		t.Fatalf("expected InvalidSQL, got %s", err)
	}
	if Is(err, NotFound) {
		t.Fatalf("did not expect NotFound for %s", err)
	}
}

func TestWrapUnwrap(t *testing.T) {
	cause := errors.New("disk read failed")
	err := Wrap(DataFormat, cause, "decoding table %s", "AREACODES")
	if !Is(err, DataFormat) {
		t.Fatalf("expected DataFormat, got %s", err)
	}
	if !errors.Is(err, cause) {
		t.Fatalf("expected cause to be unwrapped from %s", err)
	}
}

func TestIsNonPxerr(t *testing.T) {
	if Is(fmt.Errorf("plain error"), InvalidSQL) {
		t.Fatal("plain error should not match any Kind")
	}
	if Is(nil, InvalidSQL) {
		t.Fatal("nil error should not match any Kind")
	}
}
