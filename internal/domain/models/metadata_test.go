package models

import (
	"reflect"
	"testing"
)

func TestNormalizeMetadata(t *testing.T) {
	tests := []struct {
		name string
		raw  map[string]any
		want Metadata
	}{
		{
			name: "canonical keys pass through",
			raw: map[string]any{
				"client_id":   "cl-1",
				"client_name": "Maria Hernandez",
				"form_type":   "B101",
			},
			want: Metadata{
				SchemaVersion: MetadataSchemaVersion,
				ClientID:      "cl-1",
				ClientName:    "Maria Hernandez",
				FormType:      "B101",
			},
		},
		{
			name: "legacy camelCase spellings migrated",
			raw: map[string]any{
				"clientId":    "cl-2",
				"clientName":  "Daniel Okafor",
				"formType":    "B107",
				"needsReview": true,
			},
			want: Metadata{
				SchemaVersion: MetadataSchemaVersion,
				ClientID:      "cl-2",
				ClientName:    "Daniel Okafor",
				FormType:      "B107",
				NeedsReview:   true,
			},
		},
		{
			name: "canonical wins over legacy when both present",
			raw: map[string]any{
				"client_id": "cl-canonical",
				"clientId":  "cl-legacy",
			},
			want: Metadata{
				SchemaVersion: MetadataSchemaVersion,
				ClientID:      "cl-canonical",
			},
		},
		{
			name: "unknown keys fold into extracted fields",
			raw: map[string]any{
				"client_id":   "cl-3",
				"debtor_name": "Jane Roe",
				"chapter":     "13",
			},
			want: Metadata{
				SchemaVersion: MetadataSchemaVersion,
				ClientID:      "cl-3",
				ExtractedFields: map[string]string{
					"debtor_name": "Jane Roe",
					"chapter":     "13",
				},
			},
		},
		{
			name: "explicit extracted fields win over folded unknowns",
			raw: map[string]any{
				"extracted_fields": map[string]any{"chapter": "7"},
				"chapter":          "13",
			},
			want: Metadata{
				SchemaVersion:   MetadataSchemaVersion,
				ExtractedFields: map[string]string{"chapter": "7"},
			},
		},
		{
			name: "stale schema version restamped",
			raw: map[string]any{
				"schema_version": 1,
				"client_id":      "cl-4",
			},
			want: Metadata{
				SchemaVersion: MetadataSchemaVersion,
				ClientID:      "cl-4",
			},
		},
		{
			name: "nil bag yields versioned empty metadata",
			raw:  nil,
			want: Metadata{SchemaVersion: MetadataSchemaVersion},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeMetadata(tt.raw)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("NormalizeMetadata() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestNormalizeMetadataIsIdempotentOverSpellings(t *testing.T) {
	// The same logical bag in legacy and canonical spellings normalizes to
	// an identical record.
	legacy := NormalizeMetadata(map[string]any{"clientId": "cl-1", "formType": "B101"})
	canonical := NormalizeMetadata(map[string]any{"client_id": "cl-1", "form_type": "B101"})

	if !reflect.DeepEqual(legacy, canonical) {
		t.Errorf("legacy = %+v, canonical = %+v; want identical", legacy, canonical)
	}
}
