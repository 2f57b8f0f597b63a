package resource

import (
	"strings"
)

// ValidateParameters checks a supplied parameter mapping against the
// descriptor. Every placeholder token in the URI template must have an
// entry, and every supplied value must satisfy its declaration's allowed
// set. Supplied parameters without a declaration are tolerated.
func (d Descriptor) ValidateParameters(params map[string]string) error {
	for _, name := range d.Placeholders() {
		if _, ok := params[name]; !ok {
			return &MissingParameterError{Resource: d.Name, Parameter: name}
		}
	}

	for _, p := range d.Parameters {
		value, ok := params[p.Name]
		if !ok {
			continue
		}
		if !p.AllowedValues.Contains(value) {
			return &InvalidParameterValueError{
				Resource:  d.Name,
				Parameter: p.Name,
				Value:     value,
				Allowed:   p.AllowedValues.Values(),
			}
		}
	}

	return nil
}

// Expand validates the supplied parameters and substitutes them into the
// descriptor's URI template. Substitution is literal token replacement:
// each {name} placeholder is replaced by the supplied string, with no
// escaping or encoding.
func (d Descriptor) Expand(params map[string]string) (string, error) {
	if err := d.ValidateParameters(params); err != nil {
		return "", err
	}

	uri := d.URI
	for _, name := range d.Placeholders() {
		uri = strings.ReplaceAll(uri, "{"+name+"}", params[name])
	}
	return uri, nil
}
