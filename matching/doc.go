// Package matching identifies which known vendor a page belongs to.
//
// Page text and vendor keywords are normalized (case folded, diacritics
// stripped, punctuation collapsed to spaces) and each keyword earns credit:
// a full point for an exact phrase match on word boundaries, or a reduced
// fuzzy credit when a same-length run of page words is within edit distance.
// A vendor's confidence is the mean credit of its keywords, so keyword
// presence always outweighs raw string similarity.
//
// The best vendor at or above the acceptance threshold wins; ties go to the
// most recently updated template. Below the threshold [Matcher.Match]
// reports no match and callers must ask for an explicit vendor.
package matching
