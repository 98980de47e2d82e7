package chirp

import (
	"math"
	"math/cmplx"
	"testing"
)

func TestWorkspaceChirpMagnitudeIsUnity(t *testing.T) {
	ws, err := NewWorkspace(7)
	if err != nil {
		t.Fatalf("NewWorkspace: %v", err)
	}
	for i, v := range ws.Upchirp() {
		if math.Abs(cmplx.Abs(v)-1) > 1e-9 {
			t.Fatalf("upchirp[%d] magnitude %f, want 1", i, cmplx.Abs(v))
		}
	}
}

func TestWorkspaceDownchirpIsConjugate(t *testing.T) {
	ws, err := NewWorkspace(7)
	if err != nil {
		t.Fatalf("NewWorkspace: %v", err)
	}
	up := ws.Upchirp()
	down := ws.Downchirp()
	for i := range up {
		product := up[i] * down[i]
		if math.Abs(real(product)-1) > 1e-9 || math.Abs(imag(product)) > 1e-9 {
			t.Fatalf("u[%d]*d[%d] = %v, want 1", i, i, product)
		}
	}
}

func TestWorkspaceInitIdempotent(t *testing.T) {
	ws, err := NewWorkspace(9)
	if err != nil {
		t.Fatalf("NewWorkspace: %v", err)
	}
	up1 := ws.Upchirp()
	if err := ws.Init(9); err != nil {
		t.Fatalf("Init: %v", err)
	}
	if ws.N() != 1<<9 {
		t.Fatalf("N() = %d, want %d", ws.N(), 1<<9)
	}
	up2 := ws.Upchirp()
	if len(up1) != len(up2) {
		t.Fatalf("upchirp should not be resized on idempotent re-init")
	}
}

func TestWorkspaceInitRejectsOutOfRangeSF(t *testing.T) {
	if _, err := NewWorkspace(6); err == nil {
		t.Fatal("expected error for sf=6")
	}
	if _, err := NewWorkspace(13); err == nil {
		t.Fatal("expected error for sf=13")
	}
}

func TestDechirpThenFFTPeaksAtModulatedBin(t *testing.T) {
	ws, err := NewWorkspace(7)
	if err != nil {
		t.Fatalf("NewWorkspace: %v", err)
	}
	for _, bin := range []int{0, 1, 5, 63, 100} {
		sym := ModulateSymbol(ws.N(), bin)
		y := ws.Dechirp(sym)
		spec := ws.FFT(y)

		best, bestMag := 0, -1.0
		for k, v := range spec {
			if m := cmplx.Abs(v); m > bestMag {
				bestMag = m
				best = k
			}
		}
		if best != bin {
			t.Fatalf("modulated bin %d demodulated to %d", bin, best)
		}
	}
}
