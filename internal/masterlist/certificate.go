package masterlist

import (
	"crypto/x509"
	"encoding/asn1"
	"fmt"

	"github.com/hashicorp/go-hclog"

	"masterlist-ingestor/internal/domain"
)

var (
	oidSubjectKeyIdentifier   = asn1.ObjectIdentifier{2, 5, 29, 14}
	oidAuthorityKeyIdentifier = asn1.ObjectIdentifier{2, 5, 29, 35}
)

// authorityKeyIdentifier mirrors RFC 5280 §4.2.1.1. Only keyIdentifier is
// consumed; authorityCertIssuer/authorityCertSerialNumber are declared so
// the surrounding SEQUENCE decodes even when they are present.
type authorityKeyIdentifier struct {
	KeyIdentifier             []byte        `asn1:"optional,tag:0"`
	AuthorityCertIssuer       asn1.RawValue `asn1:"optional,tag:1"`
	AuthorityCertSerialNumber asn1.RawValue `asn1:"optional,tag:2"`
}

// certificateRecordFromDER builds a CertificateRecord from the exact DER
// bytes of a single Certificate. der must be byte-for-byte what was
// extracted from the bundle; it is stored verbatim.
func certificateRecordFromDER(der []byte, logger hclog.Logger) (domain.CertificateRecord, error) {
	cert, err := x509.ParseCertificate(der)
	if err != nil {
		return domain.CertificateRecord{}, fmt.Errorf("parsing certificate: %w", err)
	}

	id, err := domain.NewID()
	if err != nil {
		return domain.CertificateRecord{}, fmt.Errorf("generating certificate id: %w", err)
	}

	rdn, err := rdnSequenceFromRawIssuer(cert.RawIssuer)
	if err != nil {
		return domain.CertificateRecord{}, fmt.Errorf("parsing issuer name: %w", err)
	}

	record := domain.CertificateRecord{
		ID:          id,
		Certificate: der,
		Issuer:      rfc4514String(rdn),
		X500Issuer:  cert.RawIssuer,
		Source:      domain.SourceICAOMasterList,
		SerialHex:   serialHex(cert),
	}

	if ski, ok := extractSubjectKeyIdentifier(cert); ok {
		record.SubjectKeyIdentifier = hexString(ski)
	} else {
		logger.Warn("certificate missing or malformed subject key identifier", "issuer", record.Issuer, "serial", record.SerialHex)
	}

	if aki, ok := extractAuthorityKeyIdentifier(cert); ok {
		record.AuthorityKeyIdentifier = hexString(aki)
	}

	return record, nil
}

// serialHex renders a certificate serial number as "0x" + lowercase hex,
// with no zero padding beyond what big.Int's own hex conversion produces.
func serialHex(cert *x509.Certificate) string {
	if cert.SerialNumber == nil {
		return "0x0"
	}
	return "0x" + cert.SerialNumber.Text(16)
}

// extractSubjectKeyIdentifier scans the certificate's extensions for the
// SKI extension and decodes its OCTET STRING value directly. It reports
// false when the extension is absent. A malformed SKI extension does not
// reach this function: x509.ParseCertificate rejects that certificate, and
// certificateRecordFromDER returns the error, which fails the whole parse.
func extractSubjectKeyIdentifier(cert *x509.Certificate) ([]byte, bool) {
	for _, ext := range cert.Extensions {
		if !ext.Id.Equal(oidSubjectKeyIdentifier) {
			continue
		}
		var ski []byte
		if _, err := asn1.Unmarshal(ext.Value, &ski); err != nil {
			return nil, false
		}
		return ski, true
	}
	return nil, false
}

// extractAuthorityKeyIdentifier scans for the AKI extension and returns its
// keyIdentifier field. Both an absent extension and an extension lacking
// the keyIdentifier field (self-signed roots legitimately omit it) report
// false, silently.
func extractAuthorityKeyIdentifier(cert *x509.Certificate) ([]byte, bool) {
	for _, ext := range cert.Extensions {
		if !ext.Id.Equal(oidAuthorityKeyIdentifier) {
			continue
		}
		var aki authorityKeyIdentifier
		if _, err := asn1.Unmarshal(ext.Value, &aki); err != nil {
			return nil, false
		}
		if len(aki.KeyIdentifier) == 0 {
			return nil, false
		}
		return aki.KeyIdentifier, true
	}
	return nil, false
}

func hexString(b []byte) string {
	const hexDigits = "0123456789abcdef"
	out := make([]byte, len(b)*2)
	for i, v := range b {
		out[i*2] = hexDigits[v>>4]
		out[i*2+1] = hexDigits[v&0x0f]
	}
	return string(out)
}
