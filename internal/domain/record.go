package domain

import "time"

// Source identifies the upstream data source a record came from.
type Source string

// Known record sources.
const (
	SourcePNCP      Source = "PNCP"      // national procurement portal
	SourceTCE       Source = "TCE"       // state audit court exports
	SourceGazette   Source = "GAZETTE"   // official gazette extractions
	SourceTransfers Source = "TRANSFERS" // federal transfer registries
)

// Record is a normalized public-procurement record (contract or expense).
// Value and date resolution happen once at ingestion (see internal/ingest);
// detectors never re-derive fields from raw payloads.
type Record struct {
	ID           string     // stable record identifier from the source
	Value        *float64   // resolved monetary value, nil when unparsable
	InitialValue *float64   // contract initial value, nil when absent
	GlobalValue  *float64   // contract global/final value, nil when absent
	SignedAt     *time.Time // resolved signing/publication date (UTC), nil when missing
	SupplierName string     // supplier trade name
	SupplierID   string     // supplier tax id (CNPJ/CPF), digits only
	OrgCode      string     // contracting organization code
	Description  string     // free-text contract object description
	Source       Source     // raw source tag
}

// HasValue reports whether the record carries a usable positive value.
// Records without a parseable value are excluded from value-based
// statistics but may still contribute to count-based statistics.
func (r *Record) HasValue() bool {
	return r.Value != nil && *r.Value >= 0
}

// HasDate reports whether the record carries a resolved date.
func (r *Record) HasDate() bool {
	return r.SignedAt != nil
}

// VendorKey returns the grouping key for a supplier: tax id when present,
// otherwise the name. Records with neither are grouped under "".
func (r *Record) VendorKey() string {
	if r.SupplierID != "" {
		return r.SupplierID
	}
	return r.SupplierName
}
