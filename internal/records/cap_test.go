package records

import "testing"

func TestCapDropsOutOfRange(t *testing.T) {
	drafts := []Draft{
		{Number: 0},
		{Number: 1},
		{Number: 22},
		{Number: 23},
		{Number: -4},
	}
	kept, stats := Cap(drafts, 22, nil)
	if len(kept) != 2 {
		t.Fatalf("kept %d, want 2", len(kept))
	}
	if stats.OutOfRange != 2 {
		t.Errorf("OutOfRange = %d, want 2 for the non-positive numbers", stats.OutOfRange)
	}
	if stats.Overflow != 1 {
		t.Errorf("Overflow = %d, want 1 for number 23", stats.Overflow)
	}
}

func TestCapKeepsLowestNumbers(t *testing.T) {
	var drafts []Draft
	for n := 5; n >= 1; n-- {
		drafts = append(drafts, Draft{Number: n})
	}
	kept, stats := Cap(drafts, 3, nil)
	if len(kept) != 3 {
		t.Fatalf("kept %d, want 3", len(kept))
	}
	for i, want := range []int{1, 2, 3} {
		if kept[i].Number != want {
			t.Errorf("kept[%d].Number = %d, want %d", i, kept[i].Number, want)
		}
	}
	if stats.Overflow != 2 {
		t.Errorf("Overflow = %d, want 2", stats.Overflow)
	}
}

func TestCapCountsTruncationAsOverflow(t *testing.T) {
	// five in-range records but two share a number, so the count exceeds max
	drafts := []Draft{
		{Number: 1}, {Number: 1},
		{Number: 2}, {Number: 3}, {Number: 3},
	}
	kept, stats := Cap(drafts, 4, nil)
	if len(kept) != 4 {
		t.Fatalf("kept %d, want 4", len(kept))
	}
	if stats.Overflow != 1 {
		t.Errorf("Overflow = %d, want 1 from truncation", stats.Overflow)
	}
	if stats.OutOfRange != 0 {
		t.Errorf("OutOfRange = %d, want 0", stats.OutOfRange)
	}
}

func TestCapTieBreaksBySeq(t *testing.T) {
	drafts := []Draft{
		{Number: 1, Seq: 2, Content: "late chunk"},
		{Number: 1, Seq: 0, Content: "early chunk"},
	}
	kept, _ := Cap(drafts, 22, nil)
	if kept[0].Content != "early chunk" {
		t.Errorf("kept[0] = %q, want the earlier chunk first", kept[0].Content)
	}
}
