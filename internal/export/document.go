package export

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/joseph-ayodele/loan-offers/internal/offers"
)

// BuildCollectionSchema returns the JSON schema of a collection document as a
// generic map. When productNames is non-empty, productName is constrained to it.
func BuildCollectionSchema(productNames []string) map[string]any {
	name := map[string]any{"type": "string", "minLength": 1}
	if len(productNames) > 0 {
		name["enum"] = productNames
	}

	scores := make([]any, 0, len(offers.CreditScoreTiers)+2)
	for _, t := range offers.CreditScoreTiers {
		scores = append(scores, t.Score)
	}
	scores = append(scores, offers.FallbackCreditScore, nil)

	record := map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"productName":              name,
			"interestRate":             nullableString(`%$`),
			"minimumIncomeRequired":    nullableString(`^₹[0-9]+$`),
			"minimumCreditScoreNeeded": map[string]any{"enum": scores},
			"loanAmount":               nullableString(""),
			"minimumAge":               map[string]any{"type": "string", "pattern": `^[0-9]+ years$`},
			"rawText":                  map[string]any{"type": "string", "maxLength": offers.RawTextLimit},
		},
		"required": []string{
			"productName", "interestRate", "minimumIncomeRequired",
			"minimumCreditScoreNeeded", "loanAmount", "minimumAge", "rawText",
		},
	}

	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"url":         map[string]any{"type": "string", "minLength": 1},
			"scrapedAt":   map[string]any{"type": "string"},
			"lenderCount": map[string]any{"type": "integer", "minimum": 0},
			"lenders":     map[string]any{"type": "array", "items": record},
		},
		"required": []string{"url", "scrapedAt", "lenderCount", "lenders"},
	}
}

func nullableString(pattern string) map[string]any {
	p := map[string]any{"type": []string{"string", "null"}}
	if pattern != "" {
		p["pattern"] = pattern
	}
	return p
}

// MarshalCollection renders the document with two-space indentation and without
// HTML escaping, so raw page text survives verbatim.
func MarshalCollection(c offers.Collection) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(c); err != nil {
		return nil, fmt.Errorf("marshal collection: %w", err)
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// ValidateDocument checks data against schemaMap and that lenderCount matches
// the number of lenders.
func ValidateDocument(schemaMap map[string]any, data []byte) error {
	b, err := json.Marshal(schemaMap)
	if err != nil {
		return fmt.Errorf("marshal schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("collection.json", bytes.NewReader(b)); err != nil {
		return fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile("collection.json")
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("unmarshal data: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("document does not match schema: %w", err)
	}

	var counts struct {
		LenderCount int               `json:"lenderCount"`
		Lenders     []json.RawMessage `json:"lenders"`
	}
	if err := json.Unmarshal(data, &counts); err != nil {
		return fmt.Errorf("unmarshal counts: %w", err)
	}
	if counts.LenderCount != len(counts.Lenders) {
		return fmt.Errorf("lenderCount %d does not match %d lenders", counts.LenderCount, len(counts.Lenders))
	}
	return nil
}
