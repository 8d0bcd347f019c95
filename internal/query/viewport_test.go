package query

import "testing"

func TestViewportAppendContinuesIncompleteLine(t *testing.T) {
	vp := NewViewport(false, false)
	vp.Append([]byte("partial"), false)
	vp.Append([]byte(" rest\n"), true)

	if vp.Len() != 1 {
		t.Fatalf("expected 1 line, got %d", vp.Len())
	}
	if got := string(vp.Line(0)); got != "partial rest\n" {
		t.Fatalf("got %q", got)
	}
}

func TestViewportFilenameNavigationNulTriplet(t *testing.T) {
	vp := NewViewport(false, false)
	vp.Append([]byte("\x001\x00f1\x00match1\n"), true)
	vp.Append([]byte("match2\n"), true)
	vp.Append([]byte("\x003\x00f2\x00match3\n"), true)

	row, found := vp.Next(1)
	if !found || row != 2 {
		t.Fatalf("expected next() to land on row 2, got row=%d found=%v", row, found)
	}

	row, found = vp.Back(1)
	if !found || row != 0 {
		t.Fatalf("expected back() to return to row 0, got row=%d found=%v", row, found)
	}
}

func TestViewportFilenameNavigationIdempotentForSameName(t *testing.T) {
	vp := NewViewport(false, false)
	vp.Append([]byte("\x001\x00f1\x00match1\n"), true)
	vp.Append([]byte("\x002\x00f1\x00match2\n"), true) // same filename, not a new marker
	vp.Append([]byte("\x003\x00f2\x00match3\n"), true)

	row, found := vp.Next(1)
	if !found || row != 2 {
		t.Fatalf("expected the repeated f1 marker to be skipped, landing on row 2, got row=%d found=%v", row, found)
	}
}

func TestViewportFilenameNavigationFilesWithMatches(t *testing.T) {
	vp := NewViewport(true, false)
	vp.Append([]byte("\x1b[35mfile1.txt\x1b[0m\n"), true)
	vp.Append([]byte("\x1b[35mfile2.txt\x1b[0m\n"), true)

	row, found := vp.Next(1)
	if !found || row != 1 {
		t.Fatalf("expected next() to land on row 1, got row=%d found=%v", row, found)
	}
}

func TestViewportDegradesToPageScroll(t *testing.T) {
	vp := NewViewport(false, true)
	for i := 0; i < 10; i++ {
		vp.Append([]byte("line\n"), true)
	}

	row, found := vp.Next(3)
	if found {
		t.Fatal("expected degraded mode to never report a found marker")
	}
	if row != 3 {
		t.Fatalf("expected page scroll by 3, got row=%d", row)
	}
}
