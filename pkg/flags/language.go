package flags

import (
	"path/filepath"
	"slices"
	"strings"

	"github.com/albertocavalcante/ccflags/pkg/util"
)

// Language names accepted by the -x flag.
const (
	LangC      = "c"
	LangCXX    = "c++"
	LangObjC   = "objective-c"
	LangObjCXX = "objective-c++"
	LangAuto   = "auto" // pick from the file extension
)

// standards lists the -std= values recognised per language (GCC names).
var standards = map[string][]string{
	LangC: {
		"c90", "c89", "iso9899:1990",
		"iso9899:199409",
		"c99", "c9x", "iso9899:1999", "iso9899:199x",
		"c11", "c1x", "iso9899:2011",
		"gnu90", "gnu89",
		"gnu99", "gnu9x",
		"gnu11", "gnu1x",
	},
	LangCXX: {
		"c++98",
		"gnu++98",
		"c++11",
		"gnu++11",
	},
	LangObjC:   {},
	LangObjCXX: {},
}

// defaultStandards is used when the requested standard is absent or unknown.
var defaultStandards = map[string]string{
	LangC:   "gnu90",
	LangCXX: "gnu++98",
}

// extensions maps a language to the source extensions it is inferred from.
var extensions = map[string][]string{
	LangC:      {".c", ".h"},
	LangCXX:    {".cpp", ".cc", ".c++", ".cxx", ".C", ".hpp", ".hxx", ".hh", ".tcc", ".txx"},
	LangObjC:   {".m"},
	LangObjCXX: {".mm"},
}

// Languages returns the recognised language names, sorted.
func Languages() []string {
	return util.SortedKeys(standards)
}

// IsLanguage reports whether lang is a recognised -x language.
func IsLanguage(lang string) bool {
	_, ok := standards[lang]
	return ok
}

// Standards returns the recognised standards for lang, or nil.
func Standards(lang string) []string {
	return slices.Clone(standards[lang])
}

// DefaultStandard returns the fallback standard for lang, if it has one.
func DefaultStandard(lang string) (string, bool) {
	std, ok := defaultStandards[lang]
	return std, ok
}

// LanguageForFile infers the language from filename's extension. It returns
// "" for unknown extensions.
func LanguageForFile(filename string) string {
	ext := filepath.Ext(filename)
	if ext == "" {
		return ""
	}
	for _, lang := range Languages() {
		if slices.Contains(extensions[lang], ext) {
			return lang
		}
	}
	// .CPP, .HPP and friends
	if lower := strings.ToLower(ext); lower != ext {
		for _, lang := range Languages() {
			if slices.Contains(extensions[lang], lower) {
				return lang
			}
		}
	}
	return ""
}

// LanguageFlags returns "-x language" plus a -std= flag. An unrecognised
// standard falls back to the language default; an unrecognised language
// yields no flags so the compiler infers it from the extension.
func LanguageFlags(language, standard string) []string {
	stds, ok := standards[language]
	if !ok {
		return []string{}
	}

	out := []string{"-x", language}
	if slices.Contains(stds, standard) {
		return append(out, "-std="+standard)
	}
	if std, ok := defaultStandards[language]; ok {
		return append(out, "-std="+std)
	}
	return out
}
