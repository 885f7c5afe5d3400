package masterlist

import (
	"crypto/x509/pkix"
	"encoding/asn1"
	"encoding/hex"
	"strings"

	"github.com/go-ldap/ldap/v3"
)

// attributeShortNames maps the X.500 attribute OIDs that appear in CSCA and
// CRL issuer names to their RFC 4514 short names. An OID outside this table
// is rendered in dotted form, per RFC 4514 §2.3.
var attributeShortNames = map[string]string{
	"2.5.4.3":                    "CN",
	"2.5.4.5":                    "SERIALNUMBER",
	"2.5.4.6":                    "C",
	"2.5.4.7":                    "L",
	"2.5.4.8":                    "ST",
	"2.5.4.9":                    "STREET",
	"2.5.4.10":                   "O",
	"2.5.4.11":                   "OU",
	"0.9.2342.19200300.100.1.1":  "UID",
	"0.9.2342.19200300.100.1.25": "DC",
	"1.2.840.113549.1.9.1":       "E",
}

// countryOID is the countryName attribute type used both for RFC 4514
// rendering and for extracting a CrlRecord's ISO 3166-1 country code.
var countryOID = asn1.ObjectIdentifier{2, 5, 4, 6}

// rdnSequenceFromRawIssuer parses the raw DER bytes of an X.500 Name (the
// issuer field of a Certificate or CertificateList) into its RDNSequence.
func rdnSequenceFromRawIssuer(raw []byte) (pkix.RDNSequence, error) {
	var rdn pkix.RDNSequence
	if _, err := asn1.Unmarshal(raw, &rdn); err != nil {
		return nil, err
	}
	return rdn, nil
}

// rfc4514String renders an RDNSequence as specified by RFC 4514: most
// specific (leaf) RDN first, most general (root) RDN last, the reverse of
// the order the RDNSequence is encoded in. Attribute values are escaped
// via go-ldap's EscapeDN. The attribute types come from this package's own
// short-name table because go-ldap's AttributeTypeAndValue.String is a
// normalized (case-folded) form, and downstream consumers match on the
// conventional uppercase short names.
func rfc4514String(rdn pkix.RDNSequence) string {
	parts := make([]string, 0, len(rdn))
	for i := len(rdn) - 1; i >= 0; i-- {
		parts = append(parts, relativeDNString(rdn[i]))
	}
	return strings.Join(parts, ",")
}

func relativeDNString(atvs []pkix.AttributeTypeAndValue) string {
	pieces := make([]string, 0, len(atvs))
	for _, atv := range atvs {
		pieces = append(pieces, attributeTypeAndValueString(atv))
	}
	return strings.Join(pieces, "+")
}

func attributeTypeAndValueString(atv pkix.AttributeTypeAndValue) string {
	typ, ok := attributeShortNames[atv.Type.String()]
	if !ok {
		typ = atv.Type.String()
	}

	value, ok := atv.Value.(string)
	if !ok {
		// Non-string attribute values (rare in practice for issuer DNs) are
		// rendered as a hex-encoded RFC 4514 #-escape so no information is
		// lost.
		raw, err := asn1.Marshal(atv.Value)
		if err != nil {
			raw = nil
		}
		return typ + "=#" + hex.EncodeToString(raw)
	}

	return typ + "=" + ldap.EscapeDN(value)
}

// countryFromRDN extracts the two-character countryName attribute value
// from an RDNSequence, or "" if none is present.
func countryFromRDN(rdn pkix.RDNSequence) string {
	for _, atvs := range rdn {
		for _, atv := range atvs {
			if atv.Type.Equal(countryOID) {
				if s, ok := atv.Value.(string); ok {
					return s
				}
			}
		}
	}
	return ""
}
