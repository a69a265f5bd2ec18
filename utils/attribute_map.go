package utils

import (
	"reflect"

	"github.com/go-viper/mapstructure/v2"
	"github.com/pkg/errors"
)

// AttributeMap is a free-form map of attributes, as found in config files.
type AttributeMap map[string]interface{}

// Has returns whether the given attribute exists.
func (am AttributeMap) Has(name string) bool {
	_, has := am[name]
	return has
}

// DecodeAttributes converts an attribute map into T using its json tags. Unknown attributes are
// rejected so that typos in config files surface as errors.
func DecodeAttributes[T any](attributes AttributeMap) (T, error) {
	var out T
	if reflect.TypeOf(out) != nil && reflect.TypeOf(out).Kind() == reflect.Ptr {
		return out, errors.Errorf("cannot decode attributes into pointer type %T", out)
	}

	var md mapstructure.Metadata
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:  "json",
		Result:   &out,
		Metadata: &md,
	})
	if err != nil {
		return out, err
	}
	if err := decoder.Decode(map[string]interface{}(attributes)); err != nil {
		return out, err
	}
	if len(md.Unused) != 0 {
		return out, errors.Errorf("unknown attributes %q", md.Unused)
	}
	return out, nil
}
