package enums

import "fmt"

// DocumentType maps to the document_type enum in Postgres.
type DocumentType string

const (
	DocumentTypeBusinessLicense DocumentType = "business_license"
	DocumentTypeTaxDocument     DocumentType = "tax_document"
	DocumentTypeBankStatement   DocumentType = "bank_statement"
	DocumentTypeSignedAgreement DocumentType = "signed_agreement"
	DocumentTypeIdentityProof   DocumentType = "identity_proof"
	DocumentTypeKYCDocument     DocumentType = "kyc_document"
)

var validDocumentTypes = []DocumentType{
	DocumentTypeBusinessLicense,
	DocumentTypeTaxDocument,
	DocumentTypeBankStatement,
	DocumentTypeSignedAgreement,
	DocumentTypeIdentityProof,
	DocumentTypeKYCDocument,
}

// String implements fmt.Stringer.
func (d DocumentType) String() string {
	return string(d)
}

// IsValid reports whether the value matches the canonical document_type enum.
func (d DocumentType) IsValid() bool {
	for _, candidate := range validDocumentTypes {
		if candidate == d {
			return true
		}
	}
	return false
}

// ParseDocumentType converts raw input into DocumentType.
func ParseDocumentType(value string) (DocumentType, error) {
	for _, candidate := range validDocumentTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid document type %q", value)
}
