package checksum

import "testing"

func TestSum(t *testing.T) {
	const empty = "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"
	if got := Sum(nil); got != empty {
		t.Errorf("Sum(nil) = %s", got)
	}
	if Sum([]byte("a")) == Sum([]byte("b")) {
		t.Error("distinct inputs share a digest")
	}
}

func TestFingerprint(t *testing.T) {
	if Fingerprint("hello") != Fingerprint("hello") {
		t.Error("fingerprint is not deterministic")
	}
	pairs := [][2]string{
		{"ab", "ba"},
		{"post", "post "},
		{"", "\x00"},
	}
	for _, p := range pairs {
		if Fingerprint(p[0]) == Fingerprint(p[1]) {
			t.Errorf("Fingerprint(%q) == Fingerprint(%q)", p[0], p[1])
		}
	}
}
