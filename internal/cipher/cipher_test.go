package cipher_test

import (
	"errors"
	"testing"

	"abxsurvey/internal/cipher"
)

func TestEncodeKeepsDigitsAndExtension(t *testing.T) {
	got, err := cipher.Encode("reference_01.wav")
	if err != nil {
		t.Fatalf("Encode returned error: %v", err)
	}
	if got != "ersrerapr_01.wav" {
		t.Fatalf("unexpected cipher name: %q", got)
	}
	back, err := cipher.Decode(got)
	if err != nil {
		t.Fatalf("Decode returned error: %v", err)
	}
	if back != "reference_01.wav" {
		t.Fatalf("round trip mismatch: got %q", back)
	}
}

func TestRoundTrip(t *testing.T) {
	names := []string{
		"reference_01.wav",
		"Proposed_12.flac",
		"baseline-XYZ_007.wav",
		"dummy_3.WAV",
		"mixed.Case.name.mp3",
		"a.b",
		"zzZZ_99.ogg",
	}
	for _, name := range names {
		enc, err := cipher.Encode(name)
		if err != nil {
			t.Fatalf("Encode(%q): %v", name, err)
		}
		dec, err := cipher.Decode(enc)
		if err != nil {
			t.Fatalf("Decode(%q): %v", enc, err)
		}
		if dec != name {
			t.Fatalf("decode(encode(%q)) = %q", name, dec)
		}

		dec, err = cipher.Decode(name)
		if err != nil {
			t.Fatalf("Decode(%q): %v", name, err)
		}
		enc, err = cipher.Encode(dec)
		if err != nil {
			t.Fatalf("Encode(%q): %v", dec, err)
		}
		if enc != name {
			t.Fatalf("encode(decode(%q)) = %q", name, enc)
		}
	}
}

func TestInteriorDotsArePreserved(t *testing.T) {
	got, err := cipher.Encode("take.two.wav")
	if err != nil {
		t.Fatalf("Encode returned error: %v", err)
	}
	if got != "gnxr.gjb.wav" {
		t.Fatalf("unexpected cipher name: %q", got)
	}
}

func TestShiftWrapsAndNegates(t *testing.T) {
	for _, shift := range []int{1, 13, 25, 26, 27, -3, 52} {
		enc, err := cipher.EncodeShift("Azby_09.wav", shift)
		if err != nil {
			t.Fatalf("EncodeShift(%d): %v", shift, err)
		}
		dec, err := cipher.DecodeShift(enc, shift)
		if err != nil {
			t.Fatalf("DecodeShift(%d): %v", shift, err)
		}
		if dec != "Azby_09.wav" {
			t.Fatalf("shift %d round trip: got %q", shift, dec)
		}
	}
	enc, _ := cipher.EncodeShift("zZ.wav", 1)
	if enc != "aA.wav" {
		t.Fatalf("expected wraparound, got %q", enc)
	}
}

func TestRejectsInvalidNames(t *testing.T) {
	for _, name := range []string{"", "noext", ".wav", "trailing.", "réference_01.wav", "dir/reference.wav"} {
		if _, err := cipher.Encode(name); !errors.Is(err, cipher.ErrInvalidFilename) {
			t.Fatalf("Encode(%q): expected ErrInvalidFilename, got %v", name, err)
		}
		if _, err := cipher.Decode(name); !errors.Is(err, cipher.ErrInvalidFilename) {
			t.Fatalf("Decode(%q): expected ErrInvalidFilename, got %v", name, err)
		}
	}
}
