package gmaps

import (
	"testing"

	"github.com/AhmedRagabRG/scraper/models"
)

func TestScanStarPairs(t *testing.T) {
	text := `
Reviews summary
5
120
4
40
3
7
2
6
1
3
`
	got := ScanStarPairs(text)

	want := map[int]int{5: 120, 4: 40, 3: 7, 2: 6, 1: 3}
	for stars, count := range want {
		if got[stars] != count {
			t.Errorf("stars %d: got %d, want %d", stars, got[stars], count)
		}
	}
}

func TestScanStarPairsFirstPairWins(t *testing.T) {
	text := "5\n120\nsome noise\n5\n999"
	got := ScanStarPairs(text)
	if got[5] != 120 {
		t.Errorf("stars 5 = %d; first pairing 120 must win", got[5])
	}
}

func TestScanStarPairsSkipsZeroCounts(t *testing.T) {
	got := ScanStarPairs("5\n0\n4\n12")
	if _, ok := got[5]; ok {
		t.Error("a zero count must not claim the star bucket")
	}
	if got[4] != 12 {
		t.Errorf("stars 4 = %d; want 12", got[4])
	}
}

func TestScanStarPairsCommaSeparators(t *testing.T) {
	got := ScanStarPairs("5\n1,234")
	if got[5] != 1234 {
		t.Errorf("stars 5 = %d; want 1234", got[5])
	}
}

func TestScanStarPairsCountMustBeNearby(t *testing.T) {
	// The count sits three lines away; the two-line window must miss it.
	got := ScanStarPairs("5\nnoise\nnoise\n120")
	if _, ok := got[5]; ok {
		t.Error("a count outside the lookahead window must not pair")
	}
}

func TestApplyStarBreakdown(t *testing.T) {
	rec := &models.BusinessRecord{}
	applyStarBreakdown(rec, map[int]int{5: 10, 1: 2})

	if rec.FiveStar == nil || *rec.FiveStar != 10 {
		t.Errorf("FiveStar = %v; want 10", rec.FiveStar)
	}
	if rec.OneStar == nil || *rec.OneStar != 2 {
		t.Errorf("OneStar = %v; want 2", rec.OneStar)
	}
	if rec.FourStar != nil || rec.ThreeStar != nil || rec.TwoStar != nil {
		t.Error("absent buckets must stay nil")
	}
}
