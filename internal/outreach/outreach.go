// Package outreach pushes qualified leads into an Instantly email
// campaign with a Claude-generated personalized first line, then marks
// them contacted.
package outreach

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/leadgen-cli/internal/leadstore"
	"github.com/sells-group/leadgen-cli/internal/model"
	"github.com/sells-group/leadgen-cli/pkg/anthropic"
	"github.com/sells-group/leadgen-cli/pkg/instantly"
)

const (
	defaultScanLimit = 1000
	defaultModel     = "claude-haiku-4-5-20251001"
	defaultMaxTokens = 300
)

const systemPrompt = `You write the opening line of a cold email to a ` +
	`small local business. One or two sentences, specific to the business, ` +
	`friendly and plain. No greeting, no pitch, no placeholders. ` +
	`Respond with the line only.`

// Summary reports the outcome of one outreach pass.
type Summary struct {
	Scanned   int
	Eligible  int
	Contacted int
	Failed    int
}

// Config tunes an outreach pass.
type Config struct {
	// Campaign is the Instantly campaign ID leads are added to.
	Campaign string

	// Model overrides the message-generation model.
	Model string

	// MaxLeads caps how many leads are contacted in one pass. Zero
	// means no cap.
	MaxLeads int

	// ScanLimit caps how many stored leads are read. Zero means the
	// default.
	ScanLimit int
}

// Outreacher drives the contact pipeline for new leads with an email.
type Outreacher struct {
	store     leadstore.Store
	llm       anthropic.Client
	instantly instantly.Client
	cfg       Config
	now       func() time.Time
}

// New builds an Outreacher. Config.Campaign must be set.
func New(store leadstore.Store, llm anthropic.Client, inst instantly.Client, cfg Config) (*Outreacher, error) {
	if cfg.Campaign == "" {
		return nil, eris.New("outreach: campaign is required")
	}
	if cfg.Model == "" {
		cfg.Model = defaultModel
	}
	if cfg.ScanLimit <= 0 {
		cfg.ScanLimit = defaultScanLimit
	}
	return &Outreacher{
		store:     store,
		llm:       llm,
		instantly: inst,
		cfg:       cfg,
		now:       time.Now,
	}, nil
}

// Run contacts every eligible lead: status new with a non-empty email.
// Per-lead failures are counted and logged; a failed lead keeps its
// status so a later pass retries it.
func (o *Outreacher) Run(ctx context.Context) (*Summary, error) {
	leads, err := o.store.QueryAll(ctx, o.cfg.ScanLimit)
	if err != nil {
		return nil, eris.Wrap(err, "outreach: scan leads")
	}

	sum := &Summary{Scanned: len(leads)}
	for _, lead := range leads {
		if lead.Status != model.StatusNew || lead.Email == "" {
			continue
		}
		if o.cfg.MaxLeads > 0 && sum.Eligible >= o.cfg.MaxLeads {
			break
		}
		sum.Eligible++

		if err := o.contactOne(ctx, lead); err != nil {
			sum.Failed++
			zap.L().Warn("outreach failed",
				zap.String("lead_id", lead.ID),
				zap.String("business", lead.BusinessName),
				zap.Error(err))
			continue
		}
		sum.Contacted++
	}

	zap.L().Info("outreach pass complete",
		zap.String("campaign", o.cfg.Campaign),
		zap.Int("scanned", sum.Scanned),
		zap.Int("eligible", sum.Eligible),
		zap.Int("contacted", sum.Contacted),
		zap.Int("failed", sum.Failed))
	return sum, nil
}

func (o *Outreacher) contactOne(ctx context.Context, lead model.Lead) error {
	line, err := o.personalize(ctx, lead)
	if err != nil {
		return eris.Wrap(err, "outreach: personalize")
	}

	_, err = o.instantly.AddLead(ctx, instantly.AddLeadRequest{
		Campaign:        o.cfg.Campaign,
		Email:           lead.Email,
		FirstName:       firstName(lead.OwnerName),
		CompanyName:     lead.BusinessName,
		Personalization: line,
		CustomVariables: map[string]string{
			"city":     lead.City,
			"category": lead.Category,
			"source":   string(lead.Source),
		},
	})
	if err != nil {
		return eris.Wrap(err, "outreach: add campaign lead")
	}

	contacted := model.StatusContacted
	at := o.now().UTC()
	if err := o.store.Update(ctx, lead.ID, leadstore.LeadUpdate{
		Status:          &contacted,
		LastContactedAt: &at,
	}); err != nil {
		// The campaign send is already queued; the status update is
		// the part a later pass must not repeat.
		return eris.Wrap(err, "outreach: mark contacted")
	}
	return nil
}

func (o *Outreacher) personalize(ctx context.Context, lead model.Lead) (string, error) {
	resp, err := o.llm.CreateMessage(ctx, anthropic.MessageRequest{
		Model:     o.cfg.Model,
		MaxTokens: defaultMaxTokens,
		System:    systemPrompt,
		Messages: []anthropic.Message{
			{Role: "user", Content: leadBrief(lead)},
		},
	})
	if err != nil {
		return "", err
	}

	line := strings.TrimSpace(resp.Text())
	if line == "" {
		return "", eris.New("empty model response")
	}
	return line, nil
}

// leadBrief renders the lead facts the model personalizes from.
func leadBrief(lead model.Lead) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Business: %s\n", lead.BusinessName)
	if lead.Category != "" {
		fmt.Fprintf(&b, "Category: %s\n", lead.Category)
	}
	if lead.City != "" {
		fmt.Fprintf(&b, "City: %s\n", lead.City)
	}
	if lead.Bio != "" {
		fmt.Fprintf(&b, "Bio: %s\n", lead.Bio)
	}
	if lead.Description != "" {
		fmt.Fprintf(&b, "Description: %s\n", lead.Description)
	}
	if lead.Rating > 0 {
		fmt.Fprintf(&b, "Rating: %.1f (%d reviews)\n", lead.Rating, lead.ReviewCount)
	}
	for i, p := range lead.RecentPosts {
		if i >= 3 {
			break
		}
		if p.Caption == "" {
			continue
		}
		fmt.Fprintf(&b, "Recent post: %s\n", p.Caption)
	}
	return b.String()
}

func firstName(owner string) string {
	fields := strings.Fields(owner)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}
