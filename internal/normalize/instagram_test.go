package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/leadgen-cli/internal/model"
)

func TestInstagram_BusinessProfile(t *testing.T) {
	raw := InstagramRaw{
		OwnerUsername:       "joes_cafe",
		OwnerFullName:       "Joe's Cafe",
		OwnerBio:            "Specialty coffee shop ☕ bookings: hi@joescafe.com | +61 2 9999 0000 | joescafe.com",
		OwnerFollowersCount: 4200,
		Posts: []InstagramRawPost{
			{ID: "p1", Caption: "new roast", DisplayURL: "https://cdn/p1.jpg", LikesCount: 80, CommentsCount: 4, Timestamp: "2026-08-01T09:30:00Z"},
		},
	}

	lead := Instagram(raw, "Springfield", "coffee")
	require.NotNil(t, lead)

	assert.Equal(t, "Joe's Cafe", lead.BusinessName)
	assert.Equal(t, "joes_cafe", lead.InstagramHandle)
	assert.Equal(t, "hi@joescafe.com", lead.Email)
	assert.Contains(t, lead.Phone, "9999")
	assert.Equal(t, "joescafe.com", lead.Website)
	assert.Equal(t, 4200, lead.FollowerCount)
	assert.Equal(t, "cafe", lead.Category)
	assert.Equal(t, model.SourceInstagram, lead.Source)
	assert.Equal(t, model.StatusNew, lead.Status)

	require.Len(t, lead.RecentPosts, 1)
	assert.Equal(t, "p1", lead.RecentPosts[0].ID)
	assert.Equal(t, 80, lead.RecentPosts[0].LikeCount)
	assert.Equal(t, 2026, lead.RecentPosts[0].Timestamp.Year())
}

func TestInstagram_PersonalProfileDropped(t *testing.T) {
	raw := InstagramRaw{
		OwnerUsername:       "jane.doe",
		OwnerFullName:       "Jane Doe",
		OwnerBio:            "living my best life",
		OwnerFollowersCount: 300,
	}
	assert.Nil(t, Instagram(raw, "Springfield", ""))
}

func TestInstagram_MissingUsernameDropped(t *testing.T) {
	assert.Nil(t, Instagram(InstagramRaw{OwnerFullName: "Someone"}, "", ""))
}

func TestInstagram_HandleAtPrefixStripped(t *testing.T) {
	raw := InstagramRaw{
		OwnerUsername:       "@corner_store",
		OwnerBio:            "Official store. Order online: cornerstore.com",
		OwnerFollowersCount: 2500,
	}
	lead := Instagram(raw, "", "retail")
	require.NotNil(t, lead)
	assert.Equal(t, "corner_store", lead.InstagramHandle)
	// Full name missing, handle stands in for the business name.
	assert.Equal(t, "corner_store", lead.BusinessName)
}

func TestInstagram_ExternalURLPreferredOverBio(t *testing.T) {
	raw := InstagramRaw{
		OwnerUsername:       "gymco",
		OwnerBio:            "Gym & fitness studio. other.com",
		ExternalURL:         "https://gymco.fit",
		OwnerFollowersCount: 9000,
	}
	lead := Instagram(raw, "", "")
	require.NotNil(t, lead)
	assert.Equal(t, "https://gymco.fit", lead.Website)
}

func TestIsBusiness_Scoring(t *testing.T) {
	tests := []struct {
		name      string
		username  string
		bio       string
		verified  bool
		followers int
		want      bool
	}{
		{"keyword plus url", "x", "Coffee shop, order at shop.com", false, 0, true},
		{"keyword plus followers", "beauty_studio", "", false, 5000, true},
		{"verified with url and phone", "x", "call +61 2 9999 0000, x.com", true, 0, true},
		{"bare personal account", "jane", "mum of three", false, 50, false},
		{"followers alone insufficient", "jane", "", false, 100000, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsBusiness(tt.username, tt.bio, tt.verified, tt.followers))
		})
	}
}
