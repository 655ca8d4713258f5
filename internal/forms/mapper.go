package forms

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed dictionaries.yaml
var dictionariesYAML []byte

// dictionary maps a canonical field name to the ordered list of source-field
// aliases that may carry its value.
type dictionary map[string][]string

var dictionaries map[FormType]dictionary

func init() {
	raw := map[string]dictionary{}
	if err := yaml.Unmarshal(dictionariesYAML, &raw); err != nil {
		panic(fmt.Sprintf("forms: invalid embedded dictionaries: %v", err))
	}
	dictionaries = make(map[FormType]dictionary, len(raw))
	for name, dict := range raw {
		ft, err := ParseFormType(name)
		if err != nil {
			panic(fmt.Sprintf("forms: embedded dictionary for unknown form %q", name))
		}
		dictionaries[ft] = dict
	}
}

// MapFields maps a bag of extracted source fields onto the canonical field
// names of the given form. For each canonical field the aliases are tried in
// dictionary order and the first non-empty value wins. Canonical fields with
// no matching source value are left out of the result entirely.
func MapFields(formType FormType, data map[string]string) (*MappingResult, error) {
	dict, ok := dictionaries[formType]
	if !ok {
		return nil, fmt.Errorf("no field dictionary for form %s", formType)
	}

	result := &MappingResult{
		FormType:     formType,
		MappedFields: make(map[string]string),
		SourceFields: make(map[string]string),
	}
	for canonical, aliases := range dict {
		for _, alias := range aliases {
			value, present := data[alias]
			if !present || value == "" {
				continue
			}
			result.MappedFields[canonical] = value
			result.SourceFields[canonical] = alias
			break
		}
	}
	return result, nil
}
