package masterlist

import (
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/asn1"
	"fmt"

	"masterlist-ingestor/internal/domain"
)

// oidCRLReason is the CRL entry extension (RFC 5280 §5.3.1) carrying the
// revocation reason code.
var oidCRLReason = asn1.ObjectIdentifier{2, 5, 29, 21}

// reasonTokens maps the CRLReason enumeration to the lowercase tokens
// stored in revocation_reason.
var reasonTokens = map[int]string{
	0:  "unspecified",
	1:  "key_compromise",
	2:  "ca_compromise",
	3:  "affiliation_changed",
	4:  "superseded",
	5:  "cessation_of_operation",
	6:  "certificate_hold",
	8:  "remove_from_crl",
	9:  "privilege_withdrawn",
	10: "aa_compromise",
}

// crlAndRevokedFromDER builds a CrlRecord and its RevokedCertificateRecords
// from the exact DER bytes of a single CertificateList. der is stored
// verbatim on the returned CrlRecord.
func crlAndRevokedFromDER(der []byte) (domain.CrlRecord, []domain.RevokedCertificateRecord, error) {
	crl, err := x509.ParseRevocationList(der)
	if err != nil {
		return domain.CrlRecord{}, nil, fmt.Errorf("parsing CRL: %w", err)
	}

	id, err := domain.NewID()
	if err != nil {
		return domain.CrlRecord{}, nil, fmt.Errorf("generating CRL id: %w", err)
	}

	rdn, err := rdnSequenceFromRawIssuer(crl.RawIssuer)
	if err != nil {
		return domain.CrlRecord{}, nil, fmt.Errorf("parsing CRL issuer name: %w", err)
	}

	record := domain.CrlRecord{
		ID:      id,
		Crl:     der,
		Source:  domain.SourceICAOMasterList,
		Issuer:  rfc4514String(rdn),
		Country: countryFromRDN(rdn),
	}

	revoked := make([]domain.RevokedCertificateRecord, 0, len(crl.RevokedCertificateEntries))
	for _, entry := range crl.RevokedCertificateEntries {
		revokedID, err := domain.NewID()
		if err != nil {
			return domain.CrlRecord{}, nil, fmt.Errorf("generating revoked certificate id: %w", err)
		}

		revoked = append(revoked, domain.RevokedCertificateRecord{
			ID:               revokedID,
			Source:           domain.SourceICAOMasterList,
			Country:          record.Country,
			SerialHex:        "0x" + entry.SerialNumber.Text(16),
			CrlID:            record.ID,
			RevocationReason: revocationReason(entry.Extensions),
			RevocationDate:   entry.RevocationTime.UTC(),
		})
	}

	return record, revoked, nil
}

// revocationReason scans a revoked entry's extensions for the CRLReason
// extension and maps its value to a lowercase token. It returns "" if the
// extension is absent.
func revocationReason(extensions []pkix.Extension) string {
	for _, ext := range extensions {
		if !ext.Id.Equal(oidCRLReason) {
			continue
		}
		// The reason code is an ENUMERATED, not an INTEGER.
		var code asn1.Enumerated
		if _, err := asn1.Unmarshal(ext.Value, &code); err != nil {
			return ""
		}
		if token, ok := reasonTokens[int(code)]; ok {
			return token
		}
		return fmt.Sprintf("reason_%d", code)
	}
	return ""
}
