package masterlist

import "encoding/asn1"

// The CMS/PKCS#7 and ICAO Master List structures below are declared
// directly against encoding/asn1 rather than through a higher-level CMS
// library (see DESIGN.md). The certificates and crls fields are decoded as
// raw SET members so every extracted Certificate/CertificateList keeps its
// exact original encoding. A library that re-parses each member into
// pkix.CertificateList loses the original TLV bytes, and the stored
// certificate and crl columns must match the bundle byte-for-byte.

// oidSignedData is the RFC 5652 SignedData content type.
var oidSignedData = asn1.ObjectIdentifier{1, 2, 840, 113549, 1, 7, 2}

// oidCscaMasterList is the informational OID for the ICAO CSCA Master List
// eContent type. The parser does not require it to match.
var oidCscaMasterList = asn1.ObjectIdentifier{2, 23, 136, 1, 1, 2}

// contentInfo ::= SEQUENCE { contentType OID, content [0] EXPLICIT ANY }
type contentInfo struct {
	ContentType asn1.ObjectIdentifier
	Content     asn1.RawValue `asn1:"explicit,tag:0"`
}

// encapsulatedContentInfo ::= SEQUENCE {
//
//	eContentType OID,
//	eContent     [0] EXPLICIT OCTET STRING OPTIONAL }
type encapsulatedContentInfo struct {
	EContentType asn1.ObjectIdentifier
	EContent     asn1.RawValue `asn1:"optional,explicit,tag:0"`
}

// signedData ::= SEQUENCE {
//
//	version          INTEGER,
//	digestAlgorithms SET OF ...      -- opaque, unused
//	encapContentInfo EncapsulatedContentInfo,
//	certificates     [0] IMPLICIT CertificateSet OPTIONAL,
//	crls             [1] IMPLICIT RevocationInfoChoices OPTIONAL,
//	signerInfos      SET OF ...      -- opaque, unused
type signedData struct {
	Version          int
	DigestAlgorithms asn1.RawValue
	EncapContentInfo encapsulatedContentInfo
	Certificates     asn1.RawValue `asn1:"optional,tag:0"`
	Crls             asn1.RawValue `asn1:"optional,tag:1"`
	SignerInfos      asn1.RawValue
}

// cscaMasterList ::= SEQUENCE { version INTEGER, certList SET OF Certificate }
type cscaMasterList struct {
	Version  int
	CertList asn1.RawValue
}

// decodeContentInfo unwraps the outer ContentInfo/SignedData layers and
// returns the parsed SignedData. Any non-signedData contentType, or any
// structurally invalid DER, is an error.
func decodeContentInfo(der []byte) (*signedData, error) {
	var ci contentInfo
	rest, err := asn1.Unmarshal(der, &ci)
	if err != nil {
		return nil, err
	}
	if len(rest) != 0 {
		return nil, errTrailingData
	}
	if !ci.ContentType.Equal(oidSignedData) {
		return nil, errUnsupportedContentType
	}

	// ci.Content is explicit,tag:0: its FullBytes still carries the
	// context-specific [0] wrapper tag, not the SEQUENCE tag signedData
	// itself starts with. Bytes is the unwrapped inner encoding.
	var sd signedData
	if rest, err := asn1.Unmarshal(ci.Content.Bytes, &sd); err != nil {
		return nil, err
	} else if len(rest) != 0 {
		return nil, errTrailingData
	}
	return &sd, nil
}

// rawSetMembers splits the Bytes of a decoded SET (or IMPLICIT-tagged SET)
// into its individual top-level element encodings, preserving each
// element's exact original bytes via asn1.RawValue.FullBytes.
func rawSetMembers(set asn1.RawValue) ([]asn1.RawValue, error) {
	var members []asn1.RawValue
	rest := set.Bytes
	for len(rest) > 0 {
		var rv asn1.RawValue
		next, err := asn1.Unmarshal(rest, &rv)
		if err != nil {
			return nil, err
		}
		members = append(members, rv)
		rest = next
	}
	return members, nil
}

// isUntaggedSequence reports whether rv is the CHOICE alternative that
// carries its own universal SEQUENCE tag unmodified — i.e. a plain
// Certificate or CertificateList, as opposed to an attribute certificate or
// an "other" revocation info format tagged with a context-specific class.
func isUntaggedSequence(rv asn1.RawValue) bool {
	return rv.Class == asn1.ClassUniversal && rv.Tag == asn1.TagSequence
}
