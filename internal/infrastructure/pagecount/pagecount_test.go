package pagecount

import "testing"

func TestCountNonPDFIsOnePage(t *testing.T) {
	c := New()
	if got := c.Count([]byte("jpeg bytes"), "image/jpeg"); got != 1 {
		t.Fatalf("Count = %d, want 1", got)
	}
}

func TestCountMalformedPDFFallsBack(t *testing.T) {
	c := New()
	if got := c.Count([]byte("not really a pdf"), "application/pdf"); got != 1 {
		t.Fatalf("Count = %d, want fallback 1", got)
	}
}
