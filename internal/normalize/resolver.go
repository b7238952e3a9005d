package normalize

import (
	"strings"

	"mediapulse/pkg/contracts/domain"
)

// Field is a canonical field name that source columns resolve to.
type Field string

const (
	FieldDate        Field = "date"
	FieldCreative    Field = "creative"
	FieldPublisher   Field = "publisher"
	FieldSpend       Field = "spend"
	FieldImpressions Field = "impressions"
	FieldClicks      Field = "clicks"
	FieldStarts      Field = "starts"
	FieldQ25         Field = "q25"
	FieldQ50         Field = "q50"
	FieldQ75         Field = "q75"
	FieldQ100        Field = "q100"
	FieldCTR         Field = "ctr"
	FieldVTR         Field = "vtr"
	FieldCPV         Field = "cpv"
	FieldCPM         Field = "cpm"
)

// AliasTable maps each canonical field to its accepted header synonyms in
// priority order. Tables are explicit, per-campaign configuration so two
// campaigns with different sheet layouts never share mutable state.
type AliasTable map[Field][]string

// DefaultAliasTable covers the header variants seen across the platform
// exports this engine ingests (Portuguese and English, with and without
// accents or units).
func DefaultAliasTable() AliasTable {
	return AliasTable{
		FieldDate:        {"date", "data", "dia", "day"},
		FieldCreative:    {"creative", "criativo", "ad name", "anuncio", "peca"},
		FieldPublisher:   {"publisher", "site", "placement", "veiculo", "canal de exibicao"},
		FieldSpend:       {"custo", "cost", "spend", "investimento", "valor gasto", "budget utilizado"},
		FieldImpressions: {"impressoes", "impressions", "impr."},
		FieldClicks:      {"cliques", "clicks", "click"},
		FieldStarts:      {"inicio de video", "video starts", "starts", "video plays", "reproducoes"},
		FieldQ25:         {"25%", "first quartile", "q25"},
		FieldQ50:         {"50%", "midpoint", "q50"},
		FieldQ75:         {"75%", "third quartile", "q75"},
		FieldQ100:        {"100%", "views completas", "complete views", "completions", "q100"},
		FieldCTR:         {"ctr"},
		FieldVTR:         {"vtr"},
		FieldCPV:         {"cpv"},
		FieldCPM:         {"cpm"},
	}
}

// Merge returns a copy of the table with per-campaign overrides applied.
// Overridden fields replace the default alias list wholesale; priority
// within a list is the list order.
func (t AliasTable) Merge(overrides map[string][]string) AliasTable {
	merged := make(AliasTable, len(t))
	for field, aliases := range t {
		merged[field] = append([]string(nil), aliases...)
	}
	for field, aliases := range overrides {
		merged[Field(field)] = append([]string(nil), aliases...)
	}
	return merged
}

// Resolver resolves canonical fields against raw rows. It is a pure
// lookup over the row: no caching, no mutation.
type Resolver struct {
	table AliasTable
	// normalized alias lists, computed once per resolver
	normalized map[Field][]string
}

// NewResolver builds a resolver for the given alias table. A nil table
// falls back to DefaultAliasTable.
func NewResolver(table AliasTable) *Resolver {
	if table == nil {
		table = DefaultAliasTable()
	}
	normalized := make(map[Field][]string, len(table))
	for field, aliases := range table {
		ns := make([]string, len(aliases))
		for i, a := range aliases {
			ns[i] = Header(a)
		}
		normalized[field] = ns
	}
	return &Resolver{table: table, normalized: normalized}
}

// Resolve returns the first cell value for the field, walking aliases in
// priority order and columns left to right. A match on a later alias
// never shadows one on an earlier alias, and within one alias the
// leftmost matching column wins; this governs sheets that carry duplicate
// "Day"-like columns. Returns ok=false when no alias matches or every
// matching cell is empty or nan-like.
func (r *Resolver) Resolve(row domain.RawRow, field Field) (string, bool) {
	for _, alias := range r.normalized[field] {
		for i, header := range row.Headers {
			if !Matches(Header(header), alias) {
				continue
			}
			value := strings.TrimSpace(row.Value(i))
			if IsEmptyCell(value) {
				continue
			}
			return value, true
		}
	}
	return "", false
}

// ResolveLabel applies the same alias matching to a free-standing label
// (a row label in a key/value metadata sheet rather than a column
// header).
func (r *Resolver) ResolveLabel(label string, field Field) bool {
	normalized := Header(label)
	for _, alias := range r.normalized[field] {
		if Matches(normalized, alias) {
			return true
		}
	}
	return false
}
