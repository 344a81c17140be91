// Package importer reads leads from tabular files (CSV, XLSX) so
// existing spreadsheets can flow through the same ingestion pipeline
// as scraped batches.
package importer

import (
	"encoding/csv"
	"io"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/leadgen-cli/internal/model"
)

// Record is one row keyed by its lowercased header name.
type Record map[string]string

// ReadCSV parses a headered CSV stream into records. Ragged rows are
// tolerated; fields beyond the header are dropped.
func ReadCSV(r io.Reader) ([]Record, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1 // allow variable fields

	header, err := reader.Read()
	if err == io.EOF {
		return nil, eris.New("importer: empty file")
	}
	if err != nil {
		return nil, eris.Wrap(err, "importer: read header")
	}
	keys := normalizeHeader(header)

	var records []Record
	for {
		row, err := reader.Read()
		if err == io.EOF {
			return records, nil
		}
		if err != nil {
			return nil, eris.Wrap(err, "importer: read row")
		}
		records = append(records, toRecord(keys, row))
	}
}

// ReadXLSX parses the first sheet of an XLSX file into records. The
// first row is the header.
func ReadXLSX(path string) ([]Record, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "importer: open xlsx")
	}
	if len(f.Sheets) == 0 {
		return nil, eris.New("importer: xlsx has no sheets")
	}
	sheet := f.Sheets[0]

	var keys []string
	var records []Record
	for i, row := range sheet.Rows {
		cells := make([]string, len(row.Cells))
		for j, cell := range row.Cells {
			cells[j] = cell.String()
		}

		if i == 0 {
			keys = normalizeHeader(cells)
			continue
		}
		records = append(records, toRecord(keys, cells))
	}

	if keys == nil {
		return nil, eris.New("importer: empty sheet")
	}
	return records, nil
}

// Leads converts records into candidate leads. Rows without a business
// name are dropped; the count of dropped rows is returned alongside.
func Leads(records []Record, source model.LeadSource) ([]model.Lead, int) {
	var leads []model.Lead
	dropped := 0
	for _, rec := range records {
		name := firstValue(rec, "business_name", "business", "name", "company")
		if name == "" {
			dropped++
			continue
		}

		lead := model.Lead{
			BusinessName:    name,
			InstagramHandle: strings.TrimPrefix(firstValue(rec, "instagram_handle", "instagram", "ig"), "@"),
			Email:           firstValue(rec, "email", "email_address"),
			Phone:           firstValue(rec, "phone", "phone_number"),
			Address:         firstValue(rec, "address", "street_address"),
			Source:          source,
			OwnerName:       firstValue(rec, "owner_name", "owner", "contact"),
			Website:         firstValue(rec, "website", "url"),
			City:            firstValue(rec, "city"),
			Category:        firstValue(rec, "category"),
			Notes:           firstValue(rec, "notes"),
			Status:          model.StatusNew,
		}
		if v := firstValue(rec, "follower_count", "followers"); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				lead.FollowerCount = n
			}
		}
		leads = append(leads, lead)
	}
	return leads, dropped
}

func normalizeHeader(header []string) []string {
	keys := make([]string, len(header))
	for i, h := range header {
		h = strings.ToLower(strings.TrimSpace(h))
		keys[i] = strings.ReplaceAll(h, " ", "_")
	}
	return keys
}

func toRecord(keys, row []string) Record {
	rec := make(Record, len(keys))
	for i, key := range keys {
		if key == "" || i >= len(row) {
			continue
		}
		rec[key] = strings.TrimSpace(row[i])
	}
	return rec
}

func firstValue(rec Record, keys ...string) string {
	for _, k := range keys {
		if v := rec[k]; v != "" {
			return v
		}
	}
	return ""
}
