package normalize

import (
	"strings"
	"time"

	"github.com/sells-group/leadgen-cli/internal/model"
)

// InstagramRaw is one profile item as emitted by the Instagram scraping
// actor (owner fields plus recent posts).
type InstagramRaw struct {
	OwnerUsername       string             `json:"ownerUsername"`
	OwnerFullName       string             `json:"ownerFullName"`
	OwnerBio            string             `json:"ownerBio"`
	OwnerFollowersCount int                `json:"ownerFollowersCount"`
	OwnerIsVerified     bool               `json:"ownerIsVerified"`
	ExternalURL         string             `json:"externalUrl"`
	Posts               []InstagramRawPost `json:"posts"`
}

// InstagramRawPost is one post attached to a scraped profile.
type InstagramRawPost struct {
	ID            string `json:"id"`
	Caption       string `json:"caption"`
	DisplayURL    string `json:"displayUrl"`
	LikesCount    int    `json:"likesCount"`
	CommentsCount int    `json:"commentsCount"`
	Timestamp     string `json:"timestamp"`
}

// Instagram maps a raw profile to a Lead. Profiles with no username, or
// that score below the business threshold, are dropped (nil). Contact
// details are mined out of the bio.
func Instagram(raw InstagramRaw, city, searchTerm string) *model.Lead {
	handle := strings.TrimSpace(strings.TrimPrefix(raw.OwnerUsername, "@"))
	if handle == "" {
		return nil
	}
	if !IsBusiness(handle, raw.OwnerBio, raw.OwnerIsVerified, raw.OwnerFollowersCount) {
		return nil
	}

	name := strings.TrimSpace(raw.OwnerFullName)
	if name == "" {
		name = handle
	}

	website := strings.TrimSpace(raw.ExternalURL)
	if website == "" {
		website = extractURL(raw.OwnerBio)
	}

	posts := make([]model.Post, 0, len(raw.Posts))
	for _, p := range raw.Posts {
		ts, _ := time.Parse(time.RFC3339, p.Timestamp)
		posts = append(posts, model.Post{
			ID:           p.ID,
			Caption:      p.Caption,
			MediaURL:     p.DisplayURL,
			LikeCount:    p.LikesCount,
			CommentCount: p.CommentsCount,
			Timestamp:    ts,
		})
	}

	now := time.Now().UTC()
	return &model.Lead{
		BusinessName:    name,
		InstagramHandle: handle,
		OwnerName:       raw.OwnerFullName,
		Email:           extractEmail(raw.OwnerBio),
		Phone:           extractPhone(raw.OwnerBio),
		Website:         website,
		Bio:             raw.OwnerBio,
		FollowerCount:   raw.OwnerFollowersCount,
		Category:        Categorize(name, raw.OwnerBio, searchTerm),
		City:            city,
		Location:        city,
		RecentPosts:     posts,
		Source:          model.SourceInstagram,
		Status:          model.StatusNew,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}
