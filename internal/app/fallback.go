package app

import (
	"sort"
	"strings"

	"github.com/DanteTheCreator/real-estate-deployment-sub001/internal/domain"
)

// Georgian real-estate vocabulary with target-language equivalents. This is a
// best-effort degradation path for when the statements API is unreachable,
// not a real translation.
var fallbackTerms = map[string]map[domain.Language]string{
	"იყიდება":    {domain.LangEnglish: "For Sale", domain.LangRussian: "Продается"},
	"ქირავდება":  {domain.LangEnglish: "For Rent", domain.LangRussian: "Сдается в аренду"},
	"ბინა":       {domain.LangEnglish: "Apartment", domain.LangRussian: "Квартира"},
	"სახლი":      {domain.LangEnglish: "House", domain.LangRussian: "Дом"},
	"ოთახიანი":   {domain.LangEnglish: "Room", domain.LangRussian: "комнатный"},
	"ოთახი":      {domain.LangEnglish: "Room", domain.LangRussian: "Комната"},
	"კომერციული": {domain.LangEnglish: "Commercial", domain.LangRussian: "Коммерческий"},
	"ოფისი":      {domain.LangEnglish: "Office", domain.LangRussian: "Офис"},
	"მაღაზია":    {domain.LangEnglish: "Shop", domain.LangRussian: "Магазин"},
	"ავტოფარეხი": {domain.LangEnglish: "Garage", domain.LangRussian: "Гараж"},
	"ზღვის":      {domain.LangEnglish: "Sea", domain.LangRussian: "Море"},
	"ცენტრი":     {domain.LangEnglish: "Center", domain.LangRussian: "Центр"},
	"ახალი":      {domain.LangEnglish: "New", domain.LangRussian: "Новый"},
	"რემონტი":    {domain.LangEnglish: "Renovation", domain.LangRussian: "Ремонт"},
	"ავეჯი":      {domain.LangEnglish: "Furniture", domain.LangRussian: "Мебель"},
	"ლიფტი":      {domain.LangEnglish: "Elevator", domain.LangRussian: "Лифт"},
	"ბალკონი":    {domain.LangEnglish: "Balcony", domain.LangRussian: "Балкон"},
	"ტელეფონი":   {domain.LangEnglish: "Phone", domain.LangRussian: "Телефон"},
	"ინტერნეტი":  {domain.LangEnglish: "Internet", domain.LangRussian: "Интернет"},
}

type termPair struct{ src, dst string }

// TermTranslator substitutes known source-language terms with target-language
// equivalents. The table is immutable after construction.
type TermTranslator struct {
	terms map[domain.Language][]termPair
}

func NewTermTranslator() *TermTranslator {
	t := &TermTranslator{terms: make(map[domain.Language][]termPair)}
	for src, targets := range fallbackTerms {
		for lang, dst := range targets {
			t.terms[lang] = append(t.terms[lang], termPair{src: src, dst: dst})
		}
	}
	// longest source term first, so "ოთახიანი" wins over its prefix "ოთახი"
	for lang := range t.terms {
		pairs := t.terms[lang]
		sort.Slice(pairs, func(i, j int) bool {
			if len(pairs[i].src) != len(pairs[j].src) {
				return len(pairs[i].src) > len(pairs[j].src)
			}
			return pairs[i].src < pairs[j].src
		})
	}
	return t
}

// Translate substitutes recognized terms in title and description. A field is
// returned only when at least one term matched in it; no match in either
// field means no result — the dictionary never fabricates a translation.
func (t *TermTranslator) Translate(title, description string, lang domain.Language) (domain.Translation, bool) {
	tr := domain.Translation{Language: lang, Origin: domain.OriginFallback}

	if out, changed := t.substitute(title, lang); changed {
		tr.Title = &out
	}
	if description != "" {
		if out, changed := t.substitute(description, lang); changed {
			tr.Description = &out
		}
	}
	return tr, tr.Title != nil || tr.Description != nil
}

func (t *TermTranslator) substitute(text string, lang domain.Language) (string, bool) {
	out := text
	for _, p := range t.terms[lang] {
		out = strings.ReplaceAll(out, p.src, p.dst)
	}
	if out == text {
		return text, false
	}
	return strings.TrimSpace(out), true
}
