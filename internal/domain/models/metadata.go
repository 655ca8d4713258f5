package models

// MetadataSchemaVersion is the current canonical metadata schema. Version 1
// rows predate normalization and may still carry camelCase key spellings in
// the raw JSONB; NormalizeMetadata migrates them on ingestion.
const MetadataSchemaVersion = 2

// Metadata is the canonical per-document metadata schema. The historical
// open key/value bag with dual key spellings (client_id vs clientId) is
// migrated into this shape exactly once, when a record is written.
type Metadata struct {
	SchemaVersion int    `json:"schema_version,omitempty"`
	ClientID      string `json:"client_id,omitempty"`
	ClientName    string `json:"client_name,omitempty"`
	FormType      string `json:"form_type,omitempty"`
	// ExtractedFields holds the raw OCR/LLM-extracted key/value pairs that
	// feed the form field mapper. Source field names, not canonical ones.
	ExtractedFields map[string]string `json:"extracted_fields,omitempty"`
	// NeedsReview is set when extraction confidence was low.
	NeedsReview bool `json:"needs_review,omitempty"`
}

// legacy key spellings honored by the one-time normalization step
var legacyMetadataKeys = map[string]string{
	"clientId":    "client_id",
	"clientName":  "client_name",
	"formType":    "form_type",
	"needsReview": "needs_review",
}

// NormalizeMetadata migrates a raw metadata bag into the canonical schema.
// Canonical snake_case keys win over their legacy camelCase spellings; any
// key that is neither canonical nor a known alias is folded into
// ExtractedFields so no extracted data is lost.
func NormalizeMetadata(raw map[string]any) Metadata {
	merged := make(map[string]any, len(raw))
	// legacy spellings first, canonical keys overwrite
	for k, v := range raw {
		if canonical, ok := legacyMetadataKeys[k]; ok {
			if _, exists := raw[canonical]; !exists {
				merged[canonical] = v
			}
		}
	}
	for k, v := range raw {
		if _, isLegacy := legacyMetadataKeys[k]; isLegacy {
			continue
		}
		merged[k] = v
	}

	// schema_version is always stamped with the current version
	meta := Metadata{
		SchemaVersion:   MetadataSchemaVersion,
		ClientID:        stringValue(merged["client_id"]),
		ClientName:      stringValue(merged["client_name"]),
		FormType:        stringValue(merged["form_type"]),
		ExtractedFields: stringMap(merged["extracted_fields"]),
	}
	if b, ok := merged["needs_review"].(bool); ok {
		meta.NeedsReview = b
	}

	for k, v := range merged {
		switch k {
		case "schema_version", "client_id", "client_name", "form_type", "needs_review", "extracted_fields":
			continue
		}
		if meta.ExtractedFields == nil {
			meta.ExtractedFields = make(map[string]string)
		}
		if _, exists := meta.ExtractedFields[k]; !exists {
			meta.ExtractedFields[k] = stringValue(v)
		}
	}
	return meta
}

func stringValue(v any) string {
	s, _ := v.(string)
	return s
}

func stringMap(v any) map[string]string {
	switch m := v.(type) {
	case map[string]string:
		out := make(map[string]string, len(m))
		for k, val := range m {
			out[k] = val
		}
		return out
	case map[string]any:
		out := make(map[string]string, len(m))
		for k, val := range m {
			out[k] = stringValue(val)
		}
		return out
	default:
		return nil
	}
}
