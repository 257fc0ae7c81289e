package service

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/sivd/piivault/internal/anonymizer/domain"
	apperrors "github.com/sivd/piivault/internal/errors"
	vaultDomain "github.com/sivd/piivault/internal/vault/domain"
)

const (
	emailPattern = `(?i)\b[A-Z0-9._%+-]+@[A-Z0-9.-]+\.[A-Z]{2,}\b`
	phonePattern = `[+(]?\d[\d\s\-.()]{5,}\d`

	minPhoneDigits = 7
)

var phoneSeparators = regexp.MustCompile(`[\s\-.()+]`)

// regexDetector finds PII spans with one regex rule per category.
type regexDetector struct {
	emailRegex *regexp.Regexp
	phoneRegex *regexp.Regexp
	nameRegex  *regexp.Regexp
}

// NewDetector creates a Detector. The name rule matches runs of 2 to 4
// capitalized words over ASCII letters; extraNameLetters widens the letter
// classes, e.g. "ÁÉÍÓÚÑáéíóúñ" to accept accented Spanish names. Without it,
// "José Gómez" is silently not a name; that locale sensitivity is a deliberate
// configuration choice, not an accident.
func NewDetector(extraNameLetters string) (Detector, error) {
	nameRegex, err := compileNameRegex(extraNameLetters)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrConfiguration, "invalid detector name letters")
	}

	return &regexDetector{
		emailRegex: regexp.MustCompile(emailPattern),
		phoneRegex: regexp.MustCompile(phonePattern),
		nameRegex:  nameRegex,
	}, nil
}

func compileNameRegex(extraLetters string) (*regexp.Regexp, error) {
	var upper, lower strings.Builder
	for _, r := range extraLetters {
		if unicode.IsUpper(r) {
			upper.WriteRune(r)
		} else {
			lower.WriteRune(r)
		}
	}

	// No \b: word boundaries are ASCII-only in Go regexp and would reject
	// names starting with an accented capital. Adjacency is checked manually.
	word := fmt.Sprintf(`[A-Z%s][a-z%s]+`, upper.String(), lower.String())
	return regexp.Compile(fmt.Sprintf(`%s(?:\s+%s){1,3}`, word, word))
}

// Detect returns non-overlapping matches sorted by descending start offset.
func (d *regexDetector) Detect(text string) []domain.Match {
	var candidates []domain.Match
	candidates = append(candidates, d.detectEmails(text)...)
	candidates = append(candidates, d.detectPhones(text)...)
	candidates = append(candidates, d.detectNames(text)...)

	matches := resolveOverlaps(candidates)

	sort.Slice(matches, func(i, j int) bool {
		return matches[i].Start > matches[j].Start
	})

	return matches
}

func (d *regexDetector) detectEmails(text string) []domain.Match {
	return collectMatches(d.emailRegex, text, vaultDomain.CategoryEmail, nil)
}

func (d *regexDetector) detectPhones(text string) []domain.Match {
	return collectMatches(d.phoneRegex, text, vaultDomain.CategoryPhone, func(value string) bool {
		digits := phoneSeparators.ReplaceAllString(value, "")
		return len(digits) >= minPhoneDigits && isAllDigits(digits)
	})
}

func (d *regexDetector) detectNames(text string) []domain.Match {
	matches := collectMatches(d.nameRegex, text, vaultDomain.CategoryName, func(value string) bool {
		return !strings.ContainsAny(value, "0123456789@")
	})

	// The name classes may include non-ASCII letters, so boundary checks
	// cannot be expressed in the pattern itself. Drop candidates glued to a
	// surrounding letter or digit.
	filtered := matches[:0]
	for _, match := range matches {
		if hasWordNeighbor(text, match.Start, match.End) {
			continue
		}
		filtered = append(filtered, match)
	}
	return filtered
}

func collectMatches(
	re *regexp.Regexp,
	text string,
	category vaultDomain.Category,
	accept func(string) bool,
) []domain.Match {
	var matches []domain.Match
	for _, loc := range re.FindAllStringIndex(text, -1) {
		value := text[loc[0]:loc[1]]
		if accept != nil && !accept(value) {
			continue
		}
		matches = append(matches, domain.Match{
			Category: category,
			Start:    loc[0],
			End:      loc[1],
			Value:    value,
		})
	}
	return matches
}

func isAllDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func hasWordNeighbor(text string, start, end int) bool {
	if before, size := utf8.DecodeLastRuneInString(text[:start]); size > 0 {
		if unicode.IsLetter(before) || unicode.IsDigit(before) {
			return true
		}
	}
	if after, size := utf8.DecodeRuneInString(text[end:]); size > 0 {
		if unicode.IsLetter(after) || unicode.IsDigit(after) {
			return true
		}
	}
	return false
}

// resolveOverlaps keeps the higher-priority candidate of every overlapping
// pair and discards the loser entirely, never trimming spans.
func resolveOverlaps(candidates []domain.Match) []domain.Match {
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].Category.Priority() != candidates[j].Category.Priority() {
			return candidates[i].Category.Priority() > candidates[j].Category.Priority()
		}
		return candidates[i].Start < candidates[j].Start
	})

	var kept []domain.Match
	for _, candidate := range candidates {
		overlaps := false
		for _, winner := range kept {
			if candidate.Start < winner.End && winner.Start < candidate.End {
				overlaps = true
				break
			}
		}
		if !overlaps {
			kept = append(kept, candidate)
		}
	}
	return kept
}
