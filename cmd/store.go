package main

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/sells-group/leadgen-cli/internal/leadstore"
	"github.com/sells-group/leadgen-cli/pkg/notion"
)

// initStore opens the configured lead store driver.
func initStore(ctx context.Context) (leadstore.Store, error) {
	switch cfg.Store.Driver {
	case "notion":
		if cfg.Notion.Token == "" {
			return nil, eris.New("notion token is required (LEADGEN_NOTION_TOKEN)")
		}
		if cfg.Notion.LeadDB == "" {
			return nil, eris.New("notion lead DB ID is required (LEADGEN_NOTION_LEAD_DB)")
		}
		return leadstore.NewNotion(notion.NewClient(cfg.Notion.Token), cfg.Notion.LeadDB), nil
	case "sqlite":
		dsn := cfg.Store.DatabaseURL
		if dsn == "" {
			dsn = "leads.db"
		}
		return leadstore.NewSQLite(ctx, dsn)
	case "postgres":
		return leadstore.NewPostgres(ctx, cfg.Store.DatabaseURL)
	default:
		return nil, eris.Errorf("unsupported store driver: %s", cfg.Store.Driver)
	}
}
