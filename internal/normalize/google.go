// Package normalize converts source-specific scraper payloads into
// canonical leads. Normalizers are pure: unusable records come back nil,
// never as errors.
package normalize

import (
	"strings"
	"time"

	"github.com/sells-group/leadgen-cli/internal/model"
)

// GoogleRaw is one Google Maps place item as emitted by the scraping
// actor. Title/Name and Phone/PhoneUnformatted are alternative field
// names across actor versions; the first non-empty wins.
type GoogleRaw struct {
	Title            string            `json:"title"`
	Name             string            `json:"name"`
	Address          string            `json:"address"`
	Street           string            `json:"street"`
	City             string            `json:"city"`
	State            string            `json:"state"`
	PostalCode       string            `json:"postalCode"`
	Phone            string            `json:"phone"`
	PhoneUnformatted string            `json:"phoneUnformatted"`
	Website          string            `json:"website"`
	TotalScore       float64           `json:"totalScore"`
	ReviewsCount     int               `json:"reviewsCount"`
	CategoryName     string            `json:"categoryName"`
	Description      string            `json:"description"`
	OpeningHours     []GoogleHoursSlot `json:"openingHours"`
}

// GoogleHoursSlot is one day's opening hours.
type GoogleHoursSlot struct {
	Day   string `json:"day"`
	Hours string `json:"hours"`
}

// Google maps a raw place item to a Lead. The city and searchTerm give
// the scrape context (where and what we searched for). Records with no
// usable business name are dropped (nil).
func Google(raw GoogleRaw, city, searchTerm string) *model.Lead {
	name := strings.TrimSpace(raw.Title)
	if name == "" {
		name = strings.TrimSpace(raw.Name)
	}
	if name == "" {
		return nil
	}

	phone := strings.TrimSpace(raw.Phone)
	if phone == "" {
		phone = strings.TrimSpace(raw.PhoneUnformatted)
	}

	var hours map[string]string
	if len(raw.OpeningHours) > 0 {
		hours = make(map[string]string, len(raw.OpeningHours))
		for _, slot := range raw.OpeningHours {
			if slot.Day != "" {
				hours[slot.Day] = slot.Hours
			}
		}
	}

	now := time.Now().UTC()
	return &model.Lead{
		BusinessName:  name,
		Phone:         phone,
		Address:       googleAddress(raw),
		Website:       strings.TrimSpace(raw.Website),
		Description:   raw.Description,
		Rating:        raw.TotalScore,
		ReviewCount:   raw.ReviewsCount,
		Category:      Categorize(name, raw.CategoryName, searchTerm),
		City:          firstNonEmpty(raw.City, city),
		Location:      city,
		BusinessHours: hours,
		Source:        model.SourceGoogle,
		Status:        model.StatusNew,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// googleAddress prefers the pre-formatted address and otherwise
// concatenates whatever locality parts the item carries.
func googleAddress(raw GoogleRaw) string {
	if addr := strings.TrimSpace(raw.Address); addr != "" {
		return addr
	}
	parts := make([]string, 0, 4)
	for _, p := range []string{raw.Street, raw.City, raw.State, raw.PostalCode} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
