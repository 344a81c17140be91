package model

import "time"

// LeadSource identifies which adapter discovered a lead.
type LeadSource string

const (
	SourceInstagram LeadSource = "instagram"
	SourceGoogle    LeadSource = "google"
	SourceEmail     LeadSource = "email"
	SourceWebsite   LeadSource = "website"
)

// LeadStatus represents where a lead sits in the outreach funnel.
// Transitions are monotonic in practice but not enforced here.
type LeadStatus string

const (
	StatusNew       LeadStatus = "new"
	StatusContacted LeadStatus = "contacted"
	StatusReplied   LeadStatus = "replied"
	StatusQualified LeadStatus = "qualified"
	StatusHotLead   LeadStatus = "hot_lead"
	StatusClosed    LeadStatus = "closed"
)

// Lead is the canonical record for one discovered business.
type Lead struct {
	// ID is assigned by the store on creation; empty before persistence.
	ID string `json:"id,omitempty"`

	BusinessName    string     `json:"business_name"`
	InstagramHandle string     `json:"instagram_handle,omitempty"`
	Email           string     `json:"email,omitempty"`
	Phone           string     `json:"phone,omitempty"`
	Address         string     `json:"address,omitempty"`
	Source          LeadSource `json:"source"`

	OwnerName     string            `json:"owner_name,omitempty"`
	Website       string            `json:"website,omitempty"`
	Bio           string            `json:"bio,omitempty"`
	Description   string            `json:"description,omitempty"`
	FollowerCount int               `json:"follower_count,omitempty"`
	Rating        float64           `json:"rating,omitempty"`
	ReviewCount   int               `json:"review_count,omitempty"`
	Category      string            `json:"category,omitempty"`
	City          string            `json:"city,omitempty"`
	Location      string            `json:"location,omitempty"`
	BusinessHours map[string]string `json:"business_hours,omitempty"`
	RecentPosts   []Post            `json:"recent_posts,omitempty"`

	Status          LeadStatus `json:"status"`
	Notes           string     `json:"notes,omitempty"`
	LastContactedAt *time.Time `json:"last_contacted_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// Post is one recent social post attached to a lead.
type Post struct {
	ID           string    `json:"id"`
	Caption      string    `json:"caption,omitempty"`
	MediaURL     string    `json:"media_url,omitempty"`
	LikeCount    int       `json:"like_count"`
	CommentCount int       `json:"comment_count"`
	Timestamp    time.Time `json:"timestamp"`
}

// BatchSummary is the outcome of one ingestion run, consumed by the
// CLI/serve layers and the summary webhook.
type BatchSummary struct {
	Source            LeadSource `json:"source"`
	TotalInput        int        `json:"total_input"`
	DuplicatesSkipped int        `json:"duplicates_skipped"`
	Persisted         int        `json:"persisted"`
	Failed            int        `json:"failed"`
	Errors            []string   `json:"errors,omitempty"`
}
