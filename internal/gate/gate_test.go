package gate

import (
	"testing"

	perrors "screen-parser/internal/errors"
)

func TestTryAcquireRelease(t *testing.T) {
	g := New("test")

	token, err := g.TryAcquire()
	if err != nil {
		t.Fatalf("first acquire failed: %v", err)
	}

	if _, err := g.TryAcquire(); !perrors.Is(err, perrors.CodeBusy) {
		t.Errorf("second acquire error = %v, want BUSY", err)
	}

	token.Release()
	token2, err := g.TryAcquire()
	if err != nil {
		t.Fatalf("acquire after release failed: %v", err)
	}
	token2.Release()
}

func TestDoubleReleaseIsNoop(t *testing.T) {
	g := New("test")
	token, err := g.TryAcquire()
	if err != nil {
		t.Fatalf("acquire failed: %v", err)
	}
	token.Release()
	token.Release()

	// A second holder's token must not be invalidated by the stale release.
	token2, err := g.TryAcquire()
	if err != nil {
		t.Fatalf("acquire failed: %v", err)
	}
	token.Release()
	if _, err := g.TryAcquire(); !perrors.Is(err, perrors.CodeBusy) {
		t.Errorf("stale release freed the gate: %v", err)
	}
	token2.Release()
}

func TestNilTokenRelease(t *testing.T) {
	var token *Token
	token.Release()
}
