package playlist

import (
	"context"
	"errors"
	"strings"
	"testing"

	"mixtape/internal/apperr"
)

func TestValidateContextStory_InclusiveLowerBound(t *testing.T) {
	if err := ValidateContextStory(strings.Repeat("x", 9)); err == nil {
		t.Error("9 characters should be rejected")
	}
	if err := ValidateContextStory(strings.Repeat("x", 10)); err != nil {
		t.Errorf("10 characters should be accepted, got %v", err)
	}
}

func TestValidateContextStory_CountsRunesNotBytes(t *testing.T) {
	// ten runes, far more bytes
	if err := ValidateContextStory("ありがとう、音楽の友"); err != nil {
		t.Errorf("10 runes should be accepted, got %v", err)
	}
}

func TestValidateContextStory_TrimsWhitespace(t *testing.T) {
	if err := ValidateContextStory("   short    "); err == nil {
		t.Error("padding must not count toward the minimum")
	}
}

func TestCreate_RejectsInvalidInputBeforeStore(t *testing.T) {
	// zero-value service: reaching the store would panic, so these
	// cases also prove validation happens first
	s := &Service{}

	cases := map[string]CreateInput{
		"short story": {
			Name: "Summer", Platform: PlatformSpotify, ContextStory: "too short",
		},
		"missing name": {
			Platform: PlatformSpotify, ContextStory: "long enough story",
		},
		"unknown platform": {
			Name: "Summer", Platform: "tape", ContextStory: "long enough story",
		},
	}
	for name, in := range cases {
		_, err := s.Create(context.Background(), 1, in)
		var ve *apperr.ValidationError
		if !errors.As(err, &ve) {
			t.Errorf("%s: expected validation error, got %v", name, err)
		}
	}
}

func TestShare_RejectsInvalidInputBeforeStore(t *testing.T) {
	s := &Service{}

	if _, err := s.Share(context.Background(), 1, "01ARZ", ShareInput{ShareType: "carrier-pigeon"}); err == nil {
		t.Error("unknown share type should be rejected")
	}
	if _, err := s.Share(context.Background(), 1, "01ARZ", ShareInput{ShareType: ShareTypeFriend}); err == nil {
		t.Error("friend share without recipients should be rejected")
	}
}

func TestEffectiveContext(t *testing.T) {
	if got := effectiveContext("  override story  ", "playlist story"); got != "override story" {
		t.Errorf("got %q", got)
	}
	if got := effectiveContext("   ", "playlist story"); got != "playlist story" {
		t.Errorf("got %q", got)
	}
}

func TestDedupeIDs(t *testing.T) {
	got := dedupeIDs([]uint64{3, 0, 3, 7, 7, 1})
	if len(got) != 3 || got[0] != 3 || got[1] != 7 || got[2] != 1 {
		t.Errorf("got %v", got)
	}
}
