package entity

import (
	"github.com/caseflow-app/client-aggregator/constants"
)

// SalaryFields is the structured sub-record carried by a salary-shaped
// field: one recurring monetary record tied to an employer.
type SalaryFields struct {
	EmployerName string `json:"employer_name"`
	Gross        string `json:"gross"`
	Net          string `json:"net,omitempty"`
	CurrencyCode string `json:"currency_code,omitempty"`
	PayPeriod    string `json:"pay_period,omitempty"`
}

// FieldValue is one extracted field as delivered by the extraction
// collaborator: a raw value tagged with its kind. Salary is set only
// when Kind is SALARY.
type FieldValue struct {
	Name       string              `json:"name"`
	Kind       constants.FieldKind `json:"kind"`
	Raw        string              `json:"raw"`
	Confidence *float32            `json:"confidence,omitempty"`
	Salary     *SalaryFields       `json:"salary,omitempty"`
}

// ExtractedDocument is the immutable per-document input to the engine.
// ClientKey, when set, overrides any folder-derived routing hint.
// Timestamp is kept raw; the engine parses it and treats unparsable
// values as "unknown recency".
type ExtractedDocument struct {
	ID        string                 `json:"document_id"`
	ClientKey string                 `json:"client_key,omitempty"`
	Type      constants.DocumentType `json:"document_type"`
	Timestamp string                 `json:"timestamp"`
	Fields    []FieldValue           `json:"fields"`
}
