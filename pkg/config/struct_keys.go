package config

import (
	"reflect"
	"strings"
)

const keySep = "."

// GetStructKeys returns the dotted key for every leaf field of a nested
// struct, named by the given tag when present and the field name otherwise.
// An embedded struct tagged with the squash suffix contributes no name
// component, matching mapstructure. Pointers are chased; maps are treated
// as leaves.
func GetStructKeys(typ reflect.Type, tag, squashValue string) []string {
	return appendStructKeys(typ, tag, ","+squashValue, nil, nil)
}

func appendStructKeys(typ reflect.Type, tag, squashSuffix string, prefix, keys []string) []string {
	for typ.Kind() == reflect.Ptr {
		typ = typ.Elem()
	}
	if typ.Kind() != reflect.Struct {
		return append(keys, strings.Join(prefix, keySep))
	}

	for i := 0; i < typ.NumField(); i++ {
		field := typ.Field(i)
		name, ok := field.Tag.Lookup(tag)
		squash := false
		if ok {
			if strings.HasSuffix(name, squashSuffix) {
				squash = true
				name = strings.TrimSuffix(name, squashSuffix)
			}
		} else {
			name = field.Name
		}
		key := make([]string, len(prefix), len(prefix)+1)
		copy(key, prefix)
		if !squash {
			key = append(key, name)
		}
		keys = appendStructKeys(field.Type, tag, squashSuffix, key, keys)
	}
	return keys
}
