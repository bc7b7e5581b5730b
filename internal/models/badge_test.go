// file: internal/models/badge_test.go
package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"Go Study Circle", "go-study-circle"},
		{"  Padded  Name  ", "padded-name"},
		{"C++ & Friends!", "c-friends"},
		{"already-a-slug", "already-a-slug"},
		{"---", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Slugify(tt.name), "Slugify(%q)", tt.name)
	}
}

func TestRatingLabel(t *testing.T) {
	assert.Equal(t, "Never", RatingLabel(RatingNever))
	assert.Equal(t, "Always", RatingLabel(RatingAlways))
	assert.Equal(t, "", RatingLabel(0))
	assert.Equal(t, "", RatingLabel(5))
}

func TestFinalRatingDisplayClamps(t *testing.T) {
	assert.Equal(t, "Never", (&Assessment{FinalRating: 0}).FinalRatingDisplay())
	assert.Equal(t, "Most of the time", (&Assessment{FinalRating: 3.2}).FinalRatingDisplay())
	assert.Equal(t, "Always", (&Assessment{FinalRating: 9}).FinalRatingDisplay())
}

func TestBadgeClassification(t *testing.T) {
	self := &Badge{AssessmentType: AssessmentSelf, BadgeType: BadgeCompletion}
	skill := &Badge{AssessmentType: AssessmentPeer, BadgeType: BadgeSkill}
	community := &Badge{AssessmentType: AssessmentPeer, BadgeType: BadgeCommunity}

	assert.True(t, self.IsSelfCompletion())
	assert.False(t, self.IsPeerSkill())
	assert.True(t, skill.IsPeerSkill())
	assert.True(t, community.IsPeerCommunity())
	assert.False(t, community.IsPeerSkill())
}

func TestBadgeFilterClassificationPairs(t *testing.T) {
	all, _ := BadgeFilter{}.ClassificationPairs()
	assert.Len(t, all, 3)

	at, bt := BadgeFilter{OnlySelfCompletion: true}.ClassificationPairs()
	assert.Equal(t, []string{AssessmentSelf}, at)
	assert.Equal(t, []string{BadgeCompletion}, bt)

	at, bt = BadgeFilter{OnlyPeerSkill: true}.ClassificationPairs()
	assert.Equal(t, []string{AssessmentPeer}, at)
	assert.Equal(t, []string{BadgeSkill}, bt)
}
