// Package dto provides data transfer objects for the anonymization API.
package dto

import (
	validation "github.com/jellydator/validation"

	customValidation "github.com/sivd/piivault/internal/validation"
)

// AnonymizeTextRequest contains the text to anonymize.
type AnonymizeTextRequest struct {
	Message string `json:"message"`
}

// Validate checks if the anonymize request is valid.
func (r *AnonymizeTextRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Message,
			validation.Required,
			customValidation.NotBlank,
		),
	)
}

// DeanonymizeTextRequest contains the anonymized text to restore.
type DeanonymizeTextRequest struct {
	AnonymizedMessage string `json:"anonymized_message"`
}

// Validate checks if the deanonymize request is valid.
func (r *DeanonymizeTextRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.AnonymizedMessage,
			validation.Required,
			customValidation.NotBlank,
		),
	)
}

// AnonymizeObjectRequest contains the structured value to anonymize and an
// optional explicit PII field-name list.
type AnonymizeObjectRequest struct {
	Data      any      `json:"data"`
	PIIFields []string `json:"pii_fields,omitempty"`
}

// Validate checks if the anonymize object request is valid. The shape of Data
// is checked by the use case; here only presence is enforced.
func (r *AnonymizeObjectRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Data, validation.Required),
	)
}

// DeanonymizeObjectRequest contains the structured value to restore.
type DeanonymizeObjectRequest struct {
	Data any `json:"data"`
}

// Validate checks if the deanonymize object request is valid.
func (r *DeanonymizeObjectRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Data, validation.Required),
	)
}
