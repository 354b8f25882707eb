package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeySupplier(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"lowercases", "ABC Steel", "abc steel"},
		{"strips legal suffix", "ABC Trading Co.", "abc"},
		{"strips ltd", "Falcon Industries Ltd", "falcon industries"},
		{"keeps meaningful tokens", "Contracting and Trading", "contracting and"},
		{"punctuation to spaces", "Al-Noor (Group)", "al noor group"},
		{"collapses whitespace", "  ABC   Steel  ", "abc steel"},
		{"digits kept", "Route 66 Logistics", "route 66 logistics"},
		{"empty", "", ""},
		{"whitespace only", "   ", ""},
		{"only boilerplate", "Trading Co. Ltd.", ""},
		{"arabic company prefix", "شركة النور", "النور"},
		{"alef hamza unified", "أحمد للمقاولات", "احمد للمقاولات"},
		{"alef madda unified", "آفاق الخليج", "افاق الخليج"},
		{"teh marbuta to heh", "مؤسسة الأمانة", "الامانه"},
		{"alef maksura to yeh", "مصنع المصطفى", "مصنع المصطفي"},
		{"tatweel stripped", "النـــور", "النور"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Key(tt.input, DomainSupplier))
		})
	}
}

func TestKeyBank(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"strips bank token", "National Commercial Bank", "national commercial"},
		{"strips arabic bank token", "بنك الرياض", "الرياض"},
		{"strips al-bank form", "البنك الأهلي", "الاهلي"},
		{"masraf stripped", "مصرف الإنماء", "الانماء"},
		{"supplier stop word kept for banks", "Trading Bank", "trading"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Key(tt.input, DomainBank))
		})
	}
}

func TestKeyIdempotent(t *testing.T) {
	inputs := []string{
		"ABC Trading Co.",
		"شركة النور للتجارة",
		"البنك الأهلي التجاري",
		"Al-Noor (Group) Ltd",
		"",
		"  mixed شركة Case  ",
	}

	for _, domain := range []Domain{DomainSupplier, DomainBank} {
		for _, in := range inputs {
			once := Key(in, domain)
			assert.Equal(t, once, Key(once, domain), "Key not idempotent for %q in %s", in, domain)
		}
	}
}

func TestKeyPartialTokensPreserved(t *testing.T) {
	// Stop words are removed by whole-token match only; substrings of
	// meaningful tokens must survive.
	assert.Equal(t, "cobalt", Key("Cobalt", DomainSupplier))
	assert.Equal(t, "colimited", Key("CoLimited", DomainSupplier))
	assert.Equal(t, "bankside", Key("Bankside", DomainBank))
}

func TestStrictKey(t *testing.T) {
	assert.Equal(t, "abcsteel", StrictKey("ABC Steel Co.", DomainSupplier))
	assert.Equal(t, "النور", StrictKey("شركة النور", DomainSupplier))
	assert.Equal(t, "", StrictKey("   ", DomainSupplier))

	// Variants of the same name collapse to one strict key.
	a := StrictKey("Al Noor Group", DomainSupplier)
	b := StrictKey("Al-Noor Group Ltd.", DomainSupplier)
	assert.Equal(t, a, b)
}

func TestDomainValid(t *testing.T) {
	assert.True(t, DomainSupplier.Valid())
	assert.True(t, DomainBank.Valid())
	assert.False(t, Domain("customer").Valid())
	assert.False(t, Domain("").Valid())
}
