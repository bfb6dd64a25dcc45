package constants

import "strings"

// DocumentType classifies the source document of an extraction result.
type DocumentType string

const (
	Payslip       DocumentType = "Payslip"
	TaxReturn     DocumentType = "TaxReturn"
	Identity      DocumentType = "Identity"
	BankStatement DocumentType = "BankStatement"
	Contract      DocumentType = "Contract"
	OtherDocument DocumentType = "Other"
)

var allDocumentTypes = []DocumentType{
	Payslip,
	TaxReturn,
	Identity,
	BankStatement,
	Contract,
	OtherDocument,
}

func DocumentTypesAsStrings() []string {
	result := make([]string, len(allDocumentTypes))
	for i, dt := range allDocumentTypes {
		result[i] = string(dt)
	}
	return result
}

// CanonicalizeDocumentType maps free-form type tags from the extraction
// collaborator onto the known set. Unknown input maps to Other.
func CanonicalizeDocumentType(input string) (DocumentType, bool) {
	if input == "" {
		return OtherDocument, false
	}

	normalized := strings.ToLower(strings.TrimSpace(input))

	// synonyms map
	synonyms := map[string]DocumentType{
		"recibo de vencimento": Payslip,
		"payslip":              Payslip,
		"pay slip":             Payslip,
		"salary slip":          Payslip,
		"irs":                  TaxReturn,
		"tax return":           TaxReturn,
		"modelo 3":             TaxReturn,
		"cc":                   Identity,
		"citizen card":         Identity,
		"id card":              Identity,
		"passport":             Identity,
		"bank statement":       BankStatement,
		"extrato bancario":     BankStatement,
		"work contract":        Contract,
		"employment contract":  Contract,
	}

	if dt, ok := synonyms[normalized]; ok {
		return dt, true
	}

	for _, dt := range allDocumentTypes {
		if normalized == strings.ToLower(string(dt)) {
			return dt, true
		}
	}

	return OtherDocument, false
}
