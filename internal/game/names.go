package game

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// DisplayName turns an enum constant such as PHYSICAL_ATTACK or
// spirit_herb_seed into "Physical Attack" / "Spirit Herb Seed".
func DisplayName(s string) string {
	if s == "" {
		return ""
	}
	return cases.Title(language.English).String(strings.ReplaceAll(strings.ToLower(s), "_", " "))
}
