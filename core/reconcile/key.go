package reconcile

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Key is the tuple of key column values identifying one record.
type Key []Value

// RecordID renders the key for display: the canonical text of a single
// value, or the values joined with "|" for composite keys. Nulls render as
// empty text. RecordID is not unique for composite keys and is never parsed.
func (k Key) RecordID() string {
	parts := make([]string, len(k))
	for i, v := range k {
		if s := Stringify(v); s != nil {
			parts[i] = *s
		}
	}
	return strings.Join(parts, "|")
}

// EncodeRecordKey returns the unambiguous encoding of a key: a JSON array of
// the comparator tokens, with null for null values.
func EncodeRecordKey(k Key, cmp Comparator) string {
	tokens := make([]*string, len(k))
	for i, v := range k {
		tokens[i] = cmp.Token(v)
	}
	return encodeTokens(tokens)
}

// DecodeRecordKey parses an encoded record key back into its tokens.
func DecodeRecordKey(recordKey string) ([]*string, error) {
	var tokens []*string
	if err := json.Unmarshal([]byte(recordKey), &tokens); err != nil {
		return nil, fmt.Errorf("decode record key %q: %w", recordKey, err)
	}
	return tokens, nil
}

func encodeTokens(tokens []*string) string {
	// A []*string always marshals.
	raw, _ := json.Marshal(tokens)
	return string(raw)
}

// Index maps record keys to rows for one side of a comparison.
type Index struct {
	columns []string
	cmp     Comparator
	entries map[string]indexEntry
	order   []string
}

type indexEntry struct {
	key Key
	row Row
}

// BuildIndex indexes rows by keyColumns. When two rows share a key the later
// row replaces the earlier one, but the key keeps its first position.
// Rows lacking a key column fail with *MissingKeyColumnError.
func BuildIndex(rows []Row, keyColumns []string, cmp Comparator, side string) (*Index, error) {
	if cmp == nil {
		cmp = LooseComparator{}
	}
	ix := &Index{
		columns: append([]string(nil), keyColumns...),
		cmp:     cmp,
		entries: make(map[string]indexEntry, len(rows)),
		order:   make([]string, 0, len(rows)),
	}

	for _, row := range rows {
		key := make(Key, len(keyColumns))
		var missing []string
		for i, col := range keyColumns {
			v, ok := row.Get(col)
			if !ok {
				missing = append(missing, col)
				continue
			}
			key[i] = v
		}
		if len(missing) > 0 {
			return nil, &MissingKeyColumnError{Side: side, Missing: missing}
		}

		recordKey := EncodeRecordKey(key, cmp)
		if _, exists := ix.entries[recordKey]; !exists {
			ix.order = append(ix.order, recordKey)
		}
		ix.entries[recordKey] = indexEntry{key: key, row: row}
	}

	return ix, nil
}

// Len returns the number of distinct keys.
func (ix *Index) Len() int { return len(ix.order) }

// KeyColumns returns the key column names the index was built with.
func (ix *Index) KeyColumns() []string {
	return append([]string(nil), ix.columns...)
}

// RecordKeys returns the encoded keys in first-arrival order.
func (ix *Index) RecordKeys() []string {
	return append([]string(nil), ix.order...)
}

// Has reports whether recordKey is indexed.
func (ix *Index) Has(recordKey string) bool {
	_, ok := ix.entries[recordKey]
	return ok
}

// Lookup returns the row stored under recordKey.
func (ix *Index) Lookup(recordKey string) (Row, bool) {
	e, ok := ix.entries[recordKey]
	return e.row, ok
}

// Key returns the key tuple stored under recordKey.
func (ix *Index) Key(recordKey string) (Key, bool) {
	e, ok := ix.entries[recordKey]
	return e.key, ok
}

// LookupTokens finds the row whose key has the given tokens. It returns false
// when the arity does not match the index.
func (ix *Index) LookupTokens(tokens []*string) (Row, bool) {
	if len(tokens) != len(ix.columns) {
		return Row{}, false
	}
	return ix.Lookup(encodeTokens(tokens))
}
