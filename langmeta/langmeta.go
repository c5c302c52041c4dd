// Package langmeta provides the registry of supported language tags, their
// translation provider codes and display names.
package langmeta

import (
	"sort"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// Meta describes a supported language.
type Meta struct {
	// Tag is the language tag as used in file and sheet names.
	Tag string
	// Code is the translation provider language code.
	Code string
	// Name is the English display name.
	Name string
}

// Default is the pseudo tag for "the default publication language".
const Default = "default"

// Registry contains the supported languages keyed by tag.
var Registry = map[string]Meta{
	Default:   {Tag: Default, Code: "en", Name: "Default"},
	"bg-BG":   {Tag: "bg-BG", Code: "bg", Name: "Bulgarian"},
	"bn-BD":   {Tag: "bn-BD", Code: "bn", Name: "Bengali"},
	"da-DK":   {Tag: "da-DK", Code: "da", Name: "Danish"},
	"de-DE":   {Tag: "de-DE", Code: "de", Name: "German"},
	"en-US":   {Tag: "en-US", Code: "en", Name: "English"},
	"es-ES":   {Tag: "es-ES", Code: "es", Name: "Spanish"},
	"fil-PH":  {Tag: "fil-PH", Code: "fil", Name: "Filipino"},
	"fr-FR":   {Tag: "fr-FR", Code: "fr", Name: "French"},
	"hi-IN":   {Tag: "hi-IN", Code: "hi", Name: "Hindi"},
	"hr-HR":   {Tag: "hr-HR", Code: "hr", Name: "Croatian"},
	"hu-HU":   {Tag: "hu-HU", Code: "hu", Name: "Hungarian"},
	"id-ID":   {Tag: "id-ID", Code: "id", Name: "Bahasa Indonesia"},
	"it-IT":   {Tag: "it-IT", Code: "it", Name: "Italian"},
	"ja-JP":   {Tag: "ja-JP", Code: "ja", Name: "Japanese"},
	"ko-KR":   {Tag: "ko-KR", Code: "ko", Name: "Korean"},
	"nl-NL":   {Tag: "nl-NL", Code: "nl", Name: "Dutch"},
	"pl-PL":   {Tag: "pl-PL", Code: "pl", Name: "Polish"},
	"pt-PT":   {Tag: "pt-PT", Code: "pt", Name: "Portuguese"},
	"ro-RO":   {Tag: "ro-RO", Code: "ro", Name: "Romanian"},
	"ru-RU":   {Tag: "ru-RU", Code: "ru", Name: "Russian"},
	"sk-SK":   {Tag: "sk-SK", Code: "sk", Name: "Slovakian"},
	"sr-Cyrl": {Tag: "sr-Cyrl", Code: "sr-Cyrl", Name: "Serbian"},
	"th-TH":   {Tag: "th-TH", Code: "th", Name: "Thai"},
	"tr-TR":   {Tag: "tr-TR", Code: "tr", Name: "Turkish"},
	"uk-UA":   {Tag: "uk-UA", Code: "uk", Name: "Ukrainian"},
	"ur-PK":   {Tag: "ur-PK", Code: "ur", Name: "Urdu"},
	"vi-VN":   {Tag: "vi-VN", Code: "vi", Name: "Vietnamese"},
	"zh-CHS":  {Tag: "zh-CHS", Code: "zh-Hans", Name: "Simplified Chinese"},
}

// byLower indexes Registry case-insensitively.
var byLower = func() map[string]Meta {
	m := make(map[string]Meta, len(Registry))
	for tag, meta := range Registry {
		m[strings.ToLower(tag)] = meta
	}
	return m
}()

func canonicalize(lang string) string {
	return strings.ToLower(strings.ReplaceAll(strings.TrimSpace(lang), "_", "-"))
}

// Lookup returns the metadata for a tag, matched case-insensitively.
// pt_PT and pt-PT are equivalent.
func Lookup(tag string) (Meta, bool) {
	m, ok := byLower[canonicalize(tag)]
	return m, ok
}

// ProviderCode returns the translation provider code for a tag, or "" when
// the language is not supported.
func ProviderCode(tag string) string {
	m, _ := Lookup(tag)
	return m.Code
}

// NativeName returns the language's name in that language, falling back to
// the registry name and finally to the tag itself.
func NativeName(tag string) string {
	if t, err := language.Parse(tag); err == nil {
		if name := display.Self.Name(t); name != "" {
			return name
		}
	}
	if m, ok := Lookup(tag); ok {
		return m.Name
	}
	return tag
}

// Tags returns all supported tags (without Default), sorted.
func Tags() []string {
	tags := make([]string, 0, len(Registry))
	for tag := range Registry {
		if tag != Default {
			tags = append(tags, tag)
		}
	}
	sort.Strings(tags)
	return tags
}
