// Package icons provides the embedded country flag table used for the tray
// icon. Flags are PNG images keyed by lowercase ISO 3166-1 alpha-2 code,
// with "xx" as the unknown-location fallback.
package icons

import (
	"embed"
	"sort"
	"strings"
	"sync"
)

//go:embed flags/*.png
var flagFS embed.FS

const fallbackCode = "xx"

var (
	loadOnce sync.Once
	flags    map[string][]byte
	codes    []string // sorted, for a deterministic last-resort fallback
)

func load() {
	entries, err := flagFS.ReadDir("flags")
	if err != nil {
		flags = map[string][]byte{}
		return
	}

	flags = make(map[string][]byte, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		code := strings.TrimSuffix(name, ".png")
		data, err := flagFS.ReadFile("flags/" + name)
		if err != nil {
			continue
		}
		flags[code] = data
		codes = append(codes, code)
	}
	sort.Strings(codes)
}

// Flag returns the PNG bytes for the given country code. The lookup is
// case-insensitive. Unknown codes fall back to the "xx" globe flag, and if
// that is also absent, to any single available flag. The result is empty
// only if no flags are embedded at all.
func Flag(countryCode string) []byte {
	loadOnce.Do(load)

	code := strings.ToLower(countryCode)
	if data, ok := flags[code]; ok {
		return data
	}
	if data, ok := flags[fallbackCode]; ok {
		return data
	}
	if len(codes) > 0 {
		return flags[codes[0]]
	}
	return nil
}

// Has reports whether a flag exists for the given country code
func Has(countryCode string) bool {
	loadOnce.Do(load)

	_, ok := flags[strings.ToLower(countryCode)]
	return ok
}

// Count returns the number of embedded flag icons
func Count() int {
	loadOnce.Do(load)

	return len(flags)
}
