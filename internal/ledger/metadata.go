package ledger

import (
	"time"

	"github.com/go-viper/mapstructure/v2"
)

// ParseRecord hydrates a Record from a node's raw extra metadata map.
// The stored value is a list of RFC3339 timestamp strings; weak typing
// handles the interface{} values the SDK hands back. A map with no
// ledger key decodes to an empty (healthy) Record.
func ParseRecord(extra map[string]any) (Record, error) {
	var rec Record

	config := &mapstructure.DecoderConfig{
		Result:           &rec,
		WeaklyTypedInput: true,
		TagName:          "json",
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeHookFunc(time.RFC3339),
		),
	}

	decoder, err := mapstructure.NewDecoder(config)
	if err != nil {
		return Record{}, err
	}

	if err := decoder.Decode(extra); err != nil {
		return Record{}, err
	}

	return rec, nil
}

// ToExtraValue serializes the record's timestamps for storage in the
// node extra field.
func (r Record) ToExtraValue() []string {
	out := make([]string, 0, len(r.Attempts))
	for _, t := range r.Attempts {
		out = append(out, t.UTC().Format(time.RFC3339))
	}
	return out
}
