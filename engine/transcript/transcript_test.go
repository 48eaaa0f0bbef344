package transcript

import (
	"path/filepath"
	"reflect"
	"testing"

	"github.com/VidraAI/vidra-mvp/engine/domain"
)

func TestFindTimestamps_FirstSeenWinsTies(t *testing.T) {
	loc := NewLocator([]domain.Segment{
		{Text: "cat dog", Start: 0, End: 5},
		{Text: "cat dog", Start: 5, End: 10},
	})
	start, end := loc.FindTimestamps("cat dog")
	if start != 0 || end != 5 {
		t.Errorf("got (%v, %v), want (0, 5)", start, end)
	}
}

func TestFindTimestamps_ZeroOverlapDefaults(t *testing.T) {
	loc := NewLocator([]domain.Segment{
		{Text: "stars emit light", Start: 4, End: 8},
	})
	start, end := loc.FindTimestamps("quantum bagels")
	if start != 0.0 || end != 0.0 {
		t.Errorf("got (%v, %v), want (0.0, 0.0)", start, end)
	}
}

func TestFindTimestamps_EmptyTranscript(t *testing.T) {
	loc := NewLocator(nil)
	start, end := loc.FindTimestamps("anything")
	if start != 0.0 || end != 0.0 {
		t.Errorf("got (%v, %v), want (0.0, 0.0)", start, end)
	}
}

func TestFindTimestamps_BestOverlapWins(t *testing.T) {
	loc := NewLocator([]domain.Segment{
		{Text: "The sun is a star", Start: 0, End: 4},
		{Text: "Stars emit light", Start: 4, End: 8},
	})
	// Overlap {"the","sun"} with segment one, nothing with segment two.
	start, end := loc.FindTimestamps("What is the sun")
	if start != 0 || end != 4 {
		t.Errorf("got (%v, %v), want (0, 4)", start, end)
	}
}

func TestFindTimestamps_CaseInsensitive(t *testing.T) {
	loc := NewLocator([]domain.Segment{
		{Text: "Photosynthesis converts sunlight", Start: 12, End: 18},
	})
	start, end := loc.FindTimestamps("PHOTOSYNTHESIS sunlight")
	if start != 12 || end != 18 {
		t.Errorf("got (%v, %v), want (12, 18)", start, end)
	}
}

func TestFindTimestamps_DuplicateQueryTokensCountOnce(t *testing.T) {
	loc := NewLocator([]domain.Segment{
		{Text: "dog", Start: 0, End: 2},
		{Text: "dog cat", Start: 2, End: 4},
	})
	// "dog dog dog" is the set {dog}; the second segment still wins only
	// via "cat", so score is 1 vs 1 and the first segment keeps the tie.
	start, end := loc.FindTimestamps("dog dog dog")
	if start != 0 || end != 2 {
		t.Errorf("got (%v, %v), want (0, 2)", start, end)
	}
}

func TestReplaceSwapsTranscript(t *testing.T) {
	loc := NewLocator([]domain.Segment{{Text: "old words", Start: 0, End: 1}})
	loc.Replace([]domain.Segment{{Text: "new words", Start: 9, End: 11}})
	start, end := loc.FindTimestamps("new words")
	if start != 9 || end != 11 {
		t.Errorf("got (%v, %v), want (9, 11)", start, end)
	}
	if start, end := loc.FindTimestamps("old"); start != 0 || end != 0 {
		t.Errorf("stale transcript still matching: (%v, %v)", start, end)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state", "transcript.json")
	want := domain.Transcript{
		VideoID: "abc123",
		Segments: []domain.Segment{
			{Text: "The sun is a star", Start: 0, End: 4},
			{Text: "Stars emit light", Start: 4, End: 8},
		},
	}
	if err := Save(path, want); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("round trip mismatch:\ngot  %+v\nwant %+v", got, want)
	}
}

func TestLoadMissingFileIsEmpty(t *testing.T) {
	got, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	if err != nil {
		t.Fatalf("Load missing: %v", err)
	}
	if len(got.Segments) != 0 {
		t.Errorf("got %d segments from missing file", len(got.Segments))
	}
}
