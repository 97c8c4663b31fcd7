package xid

import (
	"regexp"
	"testing"
)

func TestNewHasPrefixAndEightDigits(t *testing.T) {
	pattern := regexp.MustCompile(`^MR-[1-9]\d{7}$`)
	for i := 0; i < 200; i++ {
		id, err := New("MR")
		if err != nil {
			t.Fatalf("new id: %v", err)
		}
		if !pattern.MatchString(id) {
			t.Fatalf("unexpected id format %q", id)
		}
	}
}
