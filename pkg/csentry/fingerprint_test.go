package csentry

import "testing"

const sampleStack = `goroutine 1 [running]:
main.doSomething()
	/app/main.go:42 +0x123
main.helper()
	/app/main.go:30 +0x456
main.main()
	/app/main.go:10 +0x789`

func TestFingerprint_Stability(t *testing.T) {
	in := FingerprintInput{
		Logger:     "worker",
		Level:      SeverityError,
		Template:   "connection to %s timed out",
		StackTrace: sampleStack,
	}

	fp1 := Fingerprint(in)
	fp2 := Fingerprint(in)

	if fp1 != fp2 {
		t.Errorf("Same input produced different fingerprints: %q vs %q", fp1, fp2)
	}
	if len(fp1) != 32 {
		t.Errorf("Fingerprint length = %d, want 32", len(fp1))
	}
}

func TestFingerprint_DifferentLineNumbers_SameFingerprint(t *testing.T) {
	in1 := FingerprintInput{
		Template: "boom",
		StackTrace: `goroutine 1 [running]:
main.doSomething()
	/app/main.go:42 +0x123
main.main()
	/app/main.go:10 +0x456`,
	}
	in2 := FingerprintInput{
		Template: "boom",
		StackTrace: `goroutine 7 [running]:
main.doSomething()
	/app/main.go:99 +0xabc
main.main()
	/app/main.go:55 +0xdef`,
	}

	if fp1, fp2 := Fingerprint(in1), Fingerprint(in2); fp1 != fp2 {
		t.Errorf("Inputs differing only in line numbers should have same fingerprint: %q vs %q", fp1, fp2)
	}
}

func TestFingerprint_DifferentMemoryAddresses_SameFingerprint(t *testing.T) {
	in1 := FingerprintInput{StackTrace: "main.handler(0x1234abcd)\n\t/app/main.go:42 +0x100"}
	in2 := FingerprintInput{StackTrace: "main.handler(0xdeadbeef)\n\t/app/main.go:42 +0x200"}

	if fp1, fp2 := Fingerprint(in1), Fingerprint(in2); fp1 != fp2 {
		t.Errorf("Inputs differing only in addresses should have same fingerprint: %q vs %q", fp1, fp2)
	}
}

func TestFingerprint_StableFieldsMatter(t *testing.T) {
	base := FingerprintInput{Logger: "a", Level: SeverityError, Template: "t"}
	variants := []FingerprintInput{
		{Logger: "b", Level: SeverityError, Template: "t"},
		{Logger: "a", Level: SeverityWarning, Template: "t"},
		{Logger: "a", Level: SeverityError, Template: "u"},
		{Logger: "a", Level: SeverityError, Template: "t", StackTrace: sampleStack},
	}

	want := Fingerprint(base)
	for _, v := range variants {
		if got := Fingerprint(v); got == want {
			t.Errorf("Fingerprint(%+v) should differ from base", v)
		}
	}
}

func TestNormalizeStackTrace_FirstThreeFrames(t *testing.T) {
	trace := sampleStack + "\nruntime.goexit()\n\t/usr/local/go/src/runtime/asm_amd64.s:1700 +0x1"

	frames := normalizeStackTrace(trace)

	want := []string{"main.doSomething", "main.helper", "main.main"}
	if len(frames) != len(want) {
		t.Fatalf("normalizeStackTrace returned %d frames, want %d: %v", len(frames), len(want), frames)
	}
	for i := range want {
		if frames[i] != want[i] {
			t.Errorf("frame[%d] = %q, want %q", i, frames[i], want[i])
		}
	}
}

func TestNormalizeStackTrace_Empty(t *testing.T) {
	if frames := normalizeStackTrace(""); frames != nil {
		t.Errorf("normalizeStackTrace(\"\") = %v, want nil", frames)
	}
}
