package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/sivd/piivault/internal/errors"
	vaultDomain "github.com/sivd/piivault/internal/vault/domain"
)

func newTestDetector(t *testing.T, extraLetters string) Detector {
	t.Helper()

	detector, err := NewDetector(extraLetters)
	require.NoError(t, err)
	return detector
}

func TestNewDetector_InvalidExtraLetters(t *testing.T) {
	_, err := NewDetector(`]`)
	assert.ErrorIs(t, err, apperrors.ErrConfiguration)
}

func TestDetector_Detect_Email(t *testing.T) {
	detector := newTestDetector(t, "")

	tests := []struct {
		name  string
		text  string
		value string
	}{
		{name: "Simple", text: "contact ana.torres@mail.com please", value: "ana.torres@mail.com"},
		{name: "Uppercase", text: "send to ANA@EXAMPLE.ORG now", value: "ANA@EXAMPLE.ORG"},
		{name: "PlusTag", text: "cc ana+news@mail.co today", value: "ana+news@mail.co"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			matches := detector.Detect(tt.text)
			require.Len(t, matches, 1)
			assert.Equal(t, vaultDomain.CategoryEmail, matches[0].Category)
			assert.Equal(t, tt.value, matches[0].Value)
		})
	}
}

func TestDetector_Detect_Phone(t *testing.T) {
	detector := newTestDetector(t, "")

	tests := []struct {
		name    string
		text    string
		value   string
		matched bool
	}{
		{name: "PlainDigits", text: "call 3001234567 now", value: "3001234567", matched: true},
		{name: "Separators", text: "call 300-123-4567 now", value: "300-123-4567", matched: true},
		{name: "CountryPrefix", text: "call +57 300 123 4567 now", value: "+57 300 123 4567", matched: true},
		{name: "Parentheses", text: "call (300) 123 4567 now", value: "(300) 123 4567", matched: true},
		{name: "TooFewDigits", text: "pin 123456 only", matched: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			matches := detector.Detect(tt.text)
			if !tt.matched {
				assert.Empty(t, matches)
				return
			}
			require.Len(t, matches, 1)
			assert.Equal(t, vaultDomain.CategoryPhone, matches[0].Category)
			assert.Equal(t, tt.value, matches[0].Value)
		})
	}
}

func TestDetector_Detect_Name(t *testing.T) {
	detector := newTestDetector(t, "")

	tests := []struct {
		name    string
		text    string
		value   string
		matched bool
	}{
		{name: "TwoWords", text: "ask Ana Torres about it", value: "Ana Torres", matched: true},
		{name: "FourWords", text: "for Ana Maria Torres Lopez only", value: "Ana Maria Torres Lopez", matched: true},
		{name: "SingleWordIgnored", text: "ask Ana about it", matched: false},
		{name: "Lowercase", text: "ask ana torres about it", matched: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			matches := detector.Detect(tt.text)
			if !tt.matched {
				assert.Empty(t, matches)
				return
			}
			require.Len(t, matches, 1)
			assert.Equal(t, vaultDomain.CategoryName, matches[0].Category)
			assert.Equal(t, tt.value, matches[0].Value)
		})
	}
}

func TestDetector_Detect_AccentedNames(t *testing.T) {
	text := "saluda a José Gómez hoy"

	// ASCII-only classes stop at the accent, so the candidate never reaches
	// two full words.
	ascii := newTestDetector(t, "")
	assert.Empty(t, ascii.Detect(text))

	accented := newTestDetector(t, "ÁÉÍÓÚÑáéíóúñ")
	matches := accented.Detect(text)
	require.Len(t, matches, 1)
	assert.Equal(t, vaultDomain.CategoryName, matches[0].Category)
	assert.Equal(t, "José Gómez", matches[0].Value)
}

func TestDetector_Detect_OverlapPriority(t *testing.T) {
	detector := newTestDetector(t, "")

	// The digits of the local part would match the phone rule on their own;
	// the email span wins and the phone candidate is discarded entirely.
	matches := detector.Detect("write to 3001234567@mail.com today")
	require.Len(t, matches, 1)
	assert.Equal(t, vaultDomain.CategoryEmail, matches[0].Category)
	assert.Equal(t, "3001234567@mail.com", matches[0].Value)
}

func TestDetector_Detect_RightToLeftOrder(t *testing.T) {
	detector := newTestDetector(t, "")

	matches := detector.Detect("Ana Torres at ana@mail.com or 3001234567")
	require.Len(t, matches, 3)

	for i := 1; i < len(matches); i++ {
		assert.Greater(t, matches[i-1].Start, matches[i].Start)
	}
	assert.Equal(t, vaultDomain.CategoryPhone, matches[0].Category)
	assert.Equal(t, vaultDomain.CategoryEmail, matches[1].Category)
	assert.Equal(t, vaultDomain.CategoryName, matches[2].Category)
}

func TestDetector_Detect_Offsets(t *testing.T) {
	detector := newTestDetector(t, "")

	text := "mail ana@mail.com now"
	matches := detector.Detect(text)
	require.Len(t, matches, 1)
	assert.Equal(t, "ana@mail.com", text[matches[0].Start:matches[0].End])
}

func TestDetector_Detect_NoMatches(t *testing.T) {
	detector := newTestDetector(t, "")

	assert.Empty(t, detector.Detect("nothing sensitive here"))
	assert.Empty(t, detector.Detect(""))
}
