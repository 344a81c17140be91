package leadstore

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jomei/notionapi"

	"github.com/sells-group/leadgen-cli/internal/model"
	"github.com/sells-group/leadgen-cli/internal/resilience"
	"github.com/sells-group/leadgen-cli/pkg/notion"
)

// Notion property names. These are the stable external schema of the
// shared lead database; renaming a column there breaks this mapping.
const (
	propBusinessName    = "Business Name"
	propInstagramHandle = "Instagram Handle"
	propEmail           = "Email"
	propPhone           = "Phone"
	propAddress         = "Address"
	propSource          = "Source"
	propOwnerName       = "Owner Name"
	propWebsite         = "Website"
	propBio             = "Bio"
	propDescription     = "Description"
	propFollowerCount   = "Follower Count"
	propRating          = "Rating"
	propReviewCount     = "Review Count"
	propCategory        = "Category"
	propCity            = "City"
	propLocation        = "Location"
	propBusinessHours   = "Business Hours"
	propRecentPosts     = "Recent Posts"
	propStatus          = "Status"
	propNotes           = "Notes"
	propLastContacted   = "Last Contacted"
)

// NotionStore implements Store against a shared Notion database.
type NotionStore struct {
	client notion.Client
	dbID   string
}

// NewNotion creates a NotionStore over the given lead database.
func NewNotion(client notion.Client, dbID string) *NotionStore {
	return &NotionStore{client: client, dbID: dbID}
}

func (s *NotionStore) ListExisting(ctx context.Context, limit int) ([]model.Lead, error) {
	pages, err := notion.QueryPages(ctx, s.client, s.dbID, nil, limit)
	if err != nil {
		return nil, classify("list existing", err)
	}

	leads := make([]model.Lead, 0, len(pages))
	for _, p := range pages {
		l := pageToLead(p)
		// Identity projection only; descriptive fields stay behind.
		leads = append(leads, model.Lead{
			ID:              l.ID,
			BusinessName:    l.BusinessName,
			InstagramHandle: l.InstagramHandle,
			Email:           l.Email,
			Phone:           l.Phone,
			Address:         l.Address,
		})
	}
	return leads, nil
}

func (s *NotionStore) Create(ctx context.Context, lead model.Lead) (*model.Lead, error) {
	req := &notionapi.PageCreateRequest{
		Parent: notionapi.Parent{
			Type:       notionapi.ParentTypeDatabaseID,
			DatabaseID: notionapi.DatabaseID(s.dbID),
		},
		Properties: leadToProperties(lead),
	}

	page, err := s.client.CreatePage(ctx, req)
	if err != nil {
		return nil, classify("create", err)
	}

	created := lead
	created.ID = page.ID.String()
	return &created, nil
}

func (s *NotionStore) Update(ctx context.Context, id string, upd LeadUpdate) error {
	props := notionapi.Properties{}
	if upd.Status != nil {
		props[propStatus] = selectProp(string(*upd.Status))
	}
	if upd.Email != nil {
		props[propEmail] = &notionapi.EmailProperty{Email: *upd.Email}
	}
	if upd.Notes != nil {
		props[propNotes] = richTextProp(*upd.Notes)
	}
	if upd.LastContactedAt != nil {
		props[propLastContacted] = dateProp(*upd.LastContactedAt)
	}
	if len(props) == 0 {
		return nil
	}

	if _, err := s.client.UpdatePage(ctx, id, &notionapi.PageUpdateRequest{Properties: props}); err != nil {
		return classify("update", err)
	}
	return nil
}

func (s *NotionStore) Delete(ctx context.Context, id string) error {
	req := &notionapi.PageUpdateRequest{
		Properties: notionapi.Properties{},
		Archived:   true,
	}
	if _, err := s.client.UpdatePage(ctx, id, req); err != nil {
		return classify("delete", err)
	}
	return nil
}

func (s *NotionStore) QueryAll(ctx context.Context, limit int) ([]model.Lead, error) {
	pages, err := notion.QueryPages(ctx, s.client, s.dbID, nil, limit)
	if err != nil {
		return nil, classify("query all", err)
	}

	leads := make([]model.Lead, 0, len(pages))
	for _, p := range pages {
		leads = append(leads, pageToLead(p))
	}
	return leads, nil
}

// Close is a no-op; the Notion client holds no persistent connection.
func (s *NotionStore) Close() error { return nil }

// classify maps a Notion API failure to a typed StoreError.
func classify(op string, err error) *StoreError {
	kind := KindConnectivity

	var apiErr *notionapi.Error
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.Code == "rate_limited" || apiErr.Status == 429:
			kind = KindRateLimit
		case apiErr.Code == "object_not_found" || apiErr.Status == 404:
			kind = KindNotFound
		case apiErr.Status >= 500:
			kind = KindConnectivity
		default:
			kind = KindValidation
		}
	} else if resilience.IsTransient(err) {
		kind = KindConnectivity
	}

	return &StoreError{Kind: kind, Op: op, Err: err}
}

func leadToProperties(l model.Lead) notionapi.Properties {
	props := notionapi.Properties{
		propBusinessName: &notionapi.TitleProperty{Title: richText(l.BusinessName)},
		propSource:       selectProp(string(l.Source)),
		propStatus:       selectProp(string(l.Status)),
	}

	if l.InstagramHandle != "" {
		props[propInstagramHandle] = richTextProp(l.InstagramHandle)
	}
	if l.Email != "" {
		props[propEmail] = &notionapi.EmailProperty{Email: l.Email}
	}
	if l.Phone != "" {
		props[propPhone] = &notionapi.PhoneNumberProperty{PhoneNumber: l.Phone}
	}
	if l.Address != "" {
		props[propAddress] = richTextProp(l.Address)
	}
	if l.OwnerName != "" {
		props[propOwnerName] = richTextProp(l.OwnerName)
	}
	if l.Website != "" {
		props[propWebsite] = &notionapi.URLProperty{URL: l.Website}
	}
	if l.Bio != "" {
		props[propBio] = richTextProp(l.Bio)
	}
	if l.Description != "" {
		props[propDescription] = richTextProp(l.Description)
	}
	if l.FollowerCount > 0 {
		props[propFollowerCount] = &notionapi.NumberProperty{Number: float64(l.FollowerCount)}
	}
	if l.Rating > 0 {
		props[propRating] = &notionapi.NumberProperty{Number: l.Rating}
	}
	if l.ReviewCount > 0 {
		props[propReviewCount] = &notionapi.NumberProperty{Number: float64(l.ReviewCount)}
	}
	if l.Category != "" {
		props[propCategory] = selectProp(l.Category)
	}
	if l.City != "" {
		props[propCity] = richTextProp(l.City)
	}
	if l.Location != "" {
		props[propLocation] = richTextProp(l.Location)
	}
	if len(l.BusinessHours) > 0 {
		if b, err := json.Marshal(l.BusinessHours); err == nil {
			props[propBusinessHours] = richTextProp(string(b))
		}
	}
	if len(l.RecentPosts) > 0 {
		if b, err := json.Marshal(l.RecentPosts); err == nil {
			props[propRecentPosts] = richTextProp(string(b))
		}
	}
	if l.Notes != "" {
		props[propNotes] = richTextProp(l.Notes)
	}
	if l.LastContactedAt != nil {
		props[propLastContacted] = dateProp(*l.LastContactedAt)
	}

	return props
}

func pageToLead(p notionapi.Page) model.Lead {
	l := model.Lead{
		ID:              p.ID.String(),
		BusinessName:    titleText(p.Properties[propBusinessName]),
		InstagramHandle: plainText(p.Properties[propInstagramHandle]),
		Email:           emailText(p.Properties[propEmail]),
		Phone:           phoneText(p.Properties[propPhone]),
		Address:         plainText(p.Properties[propAddress]),
		Source:          model.LeadSource(selectName(p.Properties[propSource])),
		OwnerName:       plainText(p.Properties[propOwnerName]),
		Website:         urlText(p.Properties[propWebsite]),
		Bio:             plainText(p.Properties[propBio]),
		Description:     plainText(p.Properties[propDescription]),
		FollowerCount:   int(number(p.Properties[propFollowerCount])),
		Rating:          number(p.Properties[propRating]),
		ReviewCount:     int(number(p.Properties[propReviewCount])),
		Category:        selectName(p.Properties[propCategory]),
		City:            plainText(p.Properties[propCity]),
		Location:        plainText(p.Properties[propLocation]),
		Status:          model.LeadStatus(selectName(p.Properties[propStatus])),
		Notes:           plainText(p.Properties[propNotes]),
		LastContactedAt: dateValue(p.Properties[propLastContacted]),
		CreatedAt:       p.CreatedTime,
		UpdatedAt:       p.LastEditedTime,
	}

	if raw := plainText(p.Properties[propBusinessHours]); raw != "" {
		var hours map[string]string
		if err := json.Unmarshal([]byte(raw), &hours); err == nil {
			l.BusinessHours = hours
		}
	}
	if raw := plainText(p.Properties[propRecentPosts]); raw != "" {
		var posts []model.Post
		if err := json.Unmarshal([]byte(raw), &posts); err == nil {
			l.RecentPosts = posts
		}
	}

	return l
}

func richText(s string) []notionapi.RichText {
	return []notionapi.RichText{{
		Type:      notionapi.ObjectTypeText,
		Text:      &notionapi.Text{Content: s},
		PlainText: s,
	}}
}

func richTextProp(s string) *notionapi.RichTextProperty {
	return &notionapi.RichTextProperty{RichText: richText(s)}
}

func selectProp(name string) *notionapi.SelectProperty {
	return &notionapi.SelectProperty{Select: notionapi.Option{Name: name}}
}

func dateProp(t time.Time) *notionapi.DateProperty {
	d := notionapi.Date(t)
	return &notionapi.DateProperty{Date: &notionapi.DateObject{Start: &d}}
}

func titleText(p notionapi.Property) string {
	tp, ok := p.(*notionapi.TitleProperty)
	if !ok {
		return ""
	}
	return joinRichText(tp.Title)
}

func plainText(p notionapi.Property) string {
	rt, ok := p.(*notionapi.RichTextProperty)
	if !ok {
		return ""
	}
	return joinRichText(rt.RichText)
}

func joinRichText(parts []notionapi.RichText) string {
	out := ""
	for _, r := range parts {
		out += r.PlainText
	}
	return out
}

func emailText(p notionapi.Property) string {
	ep, ok := p.(*notionapi.EmailProperty)
	if !ok {
		return ""
	}
	return ep.Email
}

func phoneText(p notionapi.Property) string {
	pp, ok := p.(*notionapi.PhoneNumberProperty)
	if !ok {
		return ""
	}
	return pp.PhoneNumber
}

func urlText(p notionapi.Property) string {
	up, ok := p.(*notionapi.URLProperty)
	if !ok {
		return ""
	}
	return up.URL
}

func selectName(p notionapi.Property) string {
	sp, ok := p.(*notionapi.SelectProperty)
	if !ok {
		return ""
	}
	return sp.Select.Name
}

func number(p notionapi.Property) float64 {
	np, ok := p.(*notionapi.NumberProperty)
	if !ok {
		return 0
	}
	return np.Number
}

func dateValue(p notionapi.Property) *time.Time {
	dp, ok := p.(*notionapi.DateProperty)
	if !ok || dp.Date == nil || dp.Date.Start == nil {
		return nil
	}
	t := time.Time(*dp.Date.Start)
	return &t
}
