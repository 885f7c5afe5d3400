// Package domain holds the immutable value objects exchanged between
// pipeline stages: certificates, CRLs, revoked entries, the aggregate
// payload the parser hands to the store, and the credential pair threaded
// between the two token stages. Nothing here performs I/O.
package domain

import (
	"time"

	"github.com/hashicorp/go-uuid"
)

// SourceICAOMasterList is the literal "source" tag stamped on every record
// this pipeline produces.
const SourceICAOMasterList = "icao-masterlist"

// NewID generates the 128-bit application identifier every stored record
// carries. It is the only place record identifiers are minted.
func NewID() (string, error) {
	return uuid.GenerateUUID()
}

// CertificateRecord is one X.509 certificate plus the metadata extracted
// from it. SubjectKeyIdentifier and AuthorityKeyIdentifier are empty when
// the corresponding extension (or the AKI's keyIdentifier field) is absent;
// a certificate with a malformed SKI or AKI extension fails to parse and
// yields no record. Callers must not
// confuse an empty string with a zero-length key identifier, since the
// latter cannot occur for a well-formed extension.
type CertificateRecord struct {
	ID                     string
	Certificate            []byte
	SubjectKeyIdentifier   string
	AuthorityKeyIdentifier string
	Issuer                 string
	X500Issuer             []byte
	Source                 string
	SerialHex              string
	UpdatedAt              *time.Time
}

// CrlRecord is one X.509 v2 CRL plus the issuer metadata extracted from it.
// Country is empty when the issuer DN carries no C= attribute.
type CrlRecord struct {
	ID        string
	Crl       []byte
	Source    string
	Issuer    string
	Country   string
	UpdatedAt *time.Time
}

// RevokedCertificateRecord is one entry from a CrlRecord's revoked list.
// CrlID must reference a CrlRecord.ID present in the same MasterListPayload.
type RevokedCertificateRecord struct {
	ID               string
	Source           string
	Country          string
	SerialHex        string
	CrlID            string
	RevocationReason string
	RevocationDate   time.Time
	UpdatedAt        *time.Time
}

// MasterListPayload is the aggregate the parser builds and the store
// persists atomically. DSCs is always empty under the current ICAO Master
// List model: the
// schema reserves the field and its backing table for a document-signer
// distribution channel outside the Master List itself, but no code path
// here produces one.
type MasterListPayload struct {
	RootCAs             []CertificateRecord
	DSCs                []CertificateRecord
	Crls                []CrlRecord
	RevokedCertificates []RevokedCertificateRecord
}

// AuthCredentials is the dual-token pair carried from stage 2 into stage 3;
// it never leaves the pipeline.
type AuthCredentials struct {
	AccessToken string
	SfcToken    string
}
