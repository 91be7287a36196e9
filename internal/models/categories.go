package models

import "slices"

const (
	CategoryNotice = "공지사항"
	CategoryTOEFL  = "TOEFL"
	CategorySAT    = "SAT"

	TabAll = "전체"
	TabAP  = "AP"
)

var APSubcategories = []string{
	"AP Physics 1",
	"AP Physics C",
	"AP Chemistry",
	"AP Biology",
	"AP Economics",
}

// NavTabs groups categories for browsing; TabAP covers every AP subcategory.
var NavTabs = []string{TabAll, CategoryNotice, TabAP, CategoryTOEFL, CategorySAT}

// PostCategories is the fixed set a post may be filed under.
var PostCategories = append(append([]string{CategoryNotice}, APSubcategories...), CategoryTOEFL, CategorySAT)

func IsValidCategory(category string) bool {
	for _, c := range PostCategories {
		if c == category {
			return true
		}
	}
	return false
}

// InTab reports whether a post filed under category shows up in tab.
func InTab(category, tab string) bool {
	return slices.Contains(CategoriesForTab(tab), category)
}

// CategoriesForTab lists the categories a tab shows. The all tab returns every
// category; an unknown tab returns nil.
func CategoriesForTab(tab string) []string {
	switch tab {
	case "", TabAll:
		return PostCategories
	case TabAP:
		return APSubcategories
	}
	if IsValidCategory(tab) {
		return []string{tab}
	}
	return nil
}
