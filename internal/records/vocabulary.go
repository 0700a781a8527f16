package records

// Vocabulary maps raw record type values to display labels.
type Vocabulary map[string]string

var defaultRecordTypes = map[string]string{
	"CABINET FILE":                       "Cabinet File",
	"CORPORATE DOCUMENT":                 "Corporate Document",
	"DOCUMENT GROUP":                     "Document Group",
	"EBC DOCUMENT":                       "EBC Document",
	"EBC FOLDER":                         "EBC Folder",
	"MINISTERIAL BRIEFING - VERS":        "Ministerial Briefing - VERS",
	"MINISTERIAL CORRESPONDENCE  - VERS": "Ministerial Correspondence - VERS",
}

// DefaultVocabulary returns the built-in record type mappings merged with
// overrides. Override keys are matched exactly.
func DefaultVocabulary(overrides map[string]string) Vocabulary {
	v := make(Vocabulary, len(defaultRecordTypes)+len(overrides))
	for raw, label := range defaultRecordTypes {
		v[raw] = label
	}
	for raw, label := range overrides {
		v[raw] = label
	}
	return v
}

// Lookup returns the display label for raw. An empty raw value maps to an
// empty label and counts as known.
func (v Vocabulary) Lookup(raw string) (string, bool) {
	if raw == "" {
		return "", true
	}
	label, ok := v[raw]
	if !ok {
		return raw, false
	}
	return label, true
}
