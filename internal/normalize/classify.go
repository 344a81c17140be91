package normalize

import (
	"regexp"
	"strings"
)

// Signals that a scraped social profile belongs to a business rather
// than a person. Each signal contributes points; profiles at or above
// businessScoreThreshold are kept.
const (
	businessScoreThreshold = 3

	pointsKeyword   = 2
	pointsWebsite   = 1
	pointsEmail     = 1
	pointsPhone     = 1
	pointsVerified  = 1
	pointsFollowers = 1

	followerThreshold = 1000
)

var businessKeywords = []string{
	"shop", "store", "official", "studio", "boutique", "salon",
	"cafe", "coffee", "restaurant", "bar", "fitness", "gym",
	"agency", "co.", "company", "services", "bookings", "book now",
	"order", "shipping", "dm for", "appointments", "est.", "local",
}

var (
	emailRe = regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`)
	phoneRe = regexp.MustCompile(`\+?\d[\d\s().\-]{7,}\d`)
	urlRe   = regexp.MustCompile(`(https?://|www\.)[^\s]+|[a-zA-Z0-9\-]+\.(com|net|org|io|co|shop|store|au|uk)(/\S*)?`)
)

// businessScore accumulates heuristic points for a profile.
func businessScore(username, bio string, verified bool, followers int) int {
	text := strings.ToLower(username + " " + bio)

	score := 0
	for _, kw := range businessKeywords {
		if strings.Contains(text, kw) {
			score += pointsKeyword
			break
		}
	}
	if urlRe.MatchString(bio) {
		score += pointsWebsite
	}
	if emailRe.MatchString(bio) {
		score += pointsEmail
	}
	if phoneRe.MatchString(bio) {
		score += pointsPhone
	}
	if verified {
		score += pointsVerified
	}
	if followers >= followerThreshold {
		score += pointsFollowers
	}
	return score
}

// IsBusiness reports whether a social profile looks like a business.
func IsBusiness(username, bio string, verified bool, followers int) bool {
	return businessScore(username, bio, verified, followers) >= businessScoreThreshold
}

// extractEmail returns the first email-like token in text, or "".
func extractEmail(text string) string {
	return emailRe.FindString(text)
}

// extractPhone returns the first phone-like token in text, or "".
func extractPhone(text string) string {
	return strings.TrimSpace(phoneRe.FindString(text))
}

// extractURL returns the first URL-like token in text, or "".
func extractURL(text string) string {
	return urlRe.FindString(text)
}
