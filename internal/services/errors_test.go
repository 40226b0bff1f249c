package services

import (
	"errors"
	"fmt"
	"testing"
)

func TestWrapTagsMarker(t *testing.T) {
	base := fmt.Errorf("exit status 1")
	err := Wrap(ErrExternalTool, "normalize", "measure", "loudnorm pass 1", base)

	if !errors.Is(err, ErrExternalTool) {
		t.Fatalf("expected ErrExternalTool marker, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped base error, got %v", err)
	}
	want := "external tool error: normalize: measure: loudnorm pass 1: exit status 1"
	if err.Error() != want {
		t.Fatalf("message = %q, want %q", err.Error(), want)
	}
}

func TestWrapNilMarkerDefaultsToTransient(t *testing.T) {
	err := Wrap(nil, "synthesize", "", "", nil)
	if !errors.Is(err, ErrTransient) {
		t.Fatalf("expected ErrTransient fallback, got %v", err)
	}
}

func TestWrapEmptyDetail(t *testing.T) {
	err := Wrap(ErrValidation, "", "", "", nil)
	if err.Error() != "validation error: service failure" {
		t.Fatalf("unexpected message: %q", err.Error())
	}
}
