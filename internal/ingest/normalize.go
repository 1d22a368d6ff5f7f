// Package ingest converts loosely-typed supplier payloads into
// domain.Records. Value and date resolution happen here exactly once;
// downstream detectors only see resolved fields.
package ingest

import (
	"encoding/json"
	"strings"
	"time"

	"procwatch/internal/domain"
)

// RawRecord mirrors the supplier JSON shape. Sources disagree on field
// names: monetary value may arrive as valor, valorInicial or valorGlobal
// (numbers or locale-formatted strings), and the record date may be any of
// four candidate fields.
type RawRecord struct {
	ID             string          `json:"id"`
	Numero         string          `json:"numero"`
	Valor          json.RawMessage `json:"valor"`
	ValorInicial   json.RawMessage `json:"valorInicial"`
	ValorGlobal    json.RawMessage `json:"valorGlobal"`
	DataAssinatura string          `json:"dataAssinatura"`
	DataPublicacao string          `json:"dataPublicacao"`
	DataVigencia   string          `json:"dataVigenciaInicio"`
	DataContrato   string          `json:"dataContrato"`
	Fornecedor     string          `json:"fornecedor"`
	CNPJ           string          `json:"cnpjFornecedor"`
	OrgaoCodigo    string          `json:"codigoOrgao"`
	Objeto         string          `json:"objeto"`
	Fonte          string          `json:"fonte"`
}

// dateLayouts are tried in order when resolving candidate date fields.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02",
	"02/01/2006",
	"2006-01-02 15:04:05",
}

// Normalize resolves a raw record into a domain.Record.
// Unparsable values and dates become nil fields, never errors: a record
// with no usable value can still contribute to count-based statistics.
func Normalize(raw *RawRecord) *domain.Record {
	rec := &domain.Record{
		ID:           resolveID(raw),
		SupplierName: strings.TrimSpace(raw.Fornecedor),
		SupplierID:   digitsOnly(raw.CNPJ),
		OrgCode:      strings.TrimSpace(raw.OrgaoCodigo),
		Description:  strings.TrimSpace(raw.Objeto),
		Source:       domain.Source(strings.ToUpper(strings.TrimSpace(raw.Fonte))),
	}

	rec.InitialValue = parseMoney(raw.ValorInicial)
	rec.GlobalValue = parseMoney(raw.ValorGlobal)
	rec.Value = resolveValue(raw)
	rec.SignedAt = resolveDate(raw)

	return rec
}

// NormalizeAll resolves a batch, dropping nil inputs.
func NormalizeAll(raws []*RawRecord) []*domain.Record {
	records := make([]*domain.Record, 0, len(raws))
	for _, raw := range raws {
		if raw == nil {
			continue
		}
		records = append(records, Normalize(raw))
	}
	return records
}

// resolveID prefers the explicit id, falling back to the contract number.
func resolveID(raw *RawRecord) string {
	if id := strings.TrimSpace(raw.ID); id != "" {
		return id
	}
	return strings.TrimSpace(raw.Numero)
}

// resolveValue picks the first parseable of valor, valorGlobal, valorInicial.
// Negative values are treated as unparsable.
func resolveValue(raw *RawRecord) *float64 {
	for _, candidate := range []json.RawMessage{raw.Valor, raw.ValorGlobal, raw.ValorInicial} {
		if v := parseMoney(candidate); v != nil {
			return v
		}
	}
	return nil
}

// resolveDate picks the first parseable of the candidate date fields.
// The resolved time is truncated to UTC midnight.
func resolveDate(raw *RawRecord) *time.Time {
	for _, candidate := range []string{raw.DataAssinatura, raw.DataPublicacao, raw.DataContrato, raw.DataVigencia} {
		candidate = strings.TrimSpace(candidate)
		if candidate == "" {
			continue
		}
		for _, layout := range dateLayouts {
			t, err := time.Parse(layout, candidate)
			if err != nil {
				continue
			}
			day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
			return &day
		}
	}
	return nil
}

// parseMoney accepts a JSON number or a string in either dot-decimal or
// Brazilian locale format ("1.234,56"). Returns nil when absent, malformed
// or negative.
func parseMoney(raw json.RawMessage) *float64 {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}

	var num float64
	if err := json.Unmarshal(raw, &num); err == nil {
		if num < 0 {
			return nil
		}
		return &num
	}

	var str string
	if err := json.Unmarshal(raw, &str); err != nil {
		return nil
	}
	str = strings.TrimSpace(str)
	str = strings.TrimPrefix(str, "R$")
	str = strings.TrimSpace(str)
	if str == "" {
		return nil
	}

	// Locale detection: a comma after the last dot means Brazilian format.
	if i := strings.LastIndex(str, ","); i > strings.LastIndex(str, ".") {
		str = strings.ReplaceAll(str, ".", "")
		str = strings.Replace(str, ",", ".", 1)
	} else {
		str = strings.ReplaceAll(str, ",", "")
	}

	if err := json.Unmarshal([]byte(str), &num); err != nil {
		return nil
	}
	if num < 0 {
		return nil
	}
	return &num
}

// digitsOnly strips CNPJ/CPF punctuation.
func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
