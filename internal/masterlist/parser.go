// Package masterlist decodes the CMS/PKCS#7 SignedData envelope carrying
// an ICAO CSCA Master List and extracts every certificate, CRL, and
// revoked entry it contains.
package masterlist

import (
	"encoding/asn1"
	"fmt"

	"github.com/hashicorp/go-hclog"

	"masterlist-ingestor/internal/domain"
	"masterlist-ingestor/internal/result"
)

// Parser holds nothing but a logger: decoding is pure given its input
// bytes.
type Parser struct {
	logger hclog.Logger
}

func NewParser(logger hclog.Logger) *Parser {
	return &Parser{logger: logger.Named("masterlist-parser")}
}

// Parse decodes raw as a DER ContentInfo/SignedData envelope and builds the
// aggregate MasterListPayload. Any decoding failure — malformed ASN.1,
// wrong content type, missing required fields, empty input — yields
// TECHNICAL_ERROR.
func (p *Parser) Parse(raw []byte) result.Result[domain.MasterListPayload] {
	return result.FromComputation(result.TechnicalError, "parsing master list bundle", func() (domain.MasterListPayload, error) {
		if len(raw) == 0 {
			return domain.MasterListPayload{}, errEmptyInput
		}

		sd, err := decodeContentInfo(raw)
		if err != nil {
			return domain.MasterListPayload{}, fmt.Errorf("decoding CMS envelope: %w", err)
		}

		innerCerts, err := p.innerMasterListCertificates(sd)
		if err != nil {
			return domain.MasterListPayload{}, err
		}

		outerCerts, err := p.outerCertificates(sd)
		if err != nil {
			return domain.MasterListPayload{}, err
		}

		crls, revoked, err := p.crlsAndRevoked(sd)
		if err != nil {
			return domain.MasterListPayload{}, err
		}

		payload := domain.MasterListPayload{
			// Inner master list certificates first, outer envelope
			// signers appended after.
			RootCAs: append(innerCerts, outerCerts...),
			// DSCs are always empty under the current ICAO Master List
			// model; see the open question recorded in DESIGN.md.
			DSCs:                nil,
			Crls:                crls,
			RevokedCertificates: revoked,
		}
		return payload, nil
	})
}

// innerMasterListCertificates decodes encapContentInfo.eContent (if
// present) as a CscaMasterList and returns its certList entries.
func (p *Parser) innerMasterListCertificates(sd *signedData) ([]domain.CertificateRecord, error) {
	eContent := sd.EncapContentInfo.EContent
	if len(eContent.FullBytes) == 0 {
		return nil, nil
	}

	// eContent is explicit,tag:0 around an OCTET STRING: Bytes (the
	// unwrapped explicit content) is still the OCTET STRING's own
	// tag+length+value, not its payload. Unwrap that OCTET STRING before
	// decoding the CscaMasterList SEQUENCE it carries.
	var octets []byte
	if rest, err := asn1.Unmarshal(eContent.Bytes, &octets); err != nil {
		return nil, fmt.Errorf("decoding eContent octet string: %w", err)
	} else if len(rest) != 0 {
		return nil, errTrailingData
	}

	var inner cscaMasterList
	if rest, err := asn1.Unmarshal(octets, &inner); err != nil {
		return nil, fmt.Errorf("decoding inner CSCA master list: %w", err)
	} else if len(rest) != 0 {
		return nil, errTrailingData
	}
	if inner.Version != 0 {
		p.logger.Warn("CSCA master list version is not 0, continuing", "version", inner.Version)
	}

	members, err := rawSetMembers(inner.CertList)
	if err != nil {
		return nil, fmt.Errorf("decoding inner master list certList: %w", err)
	}

	records := make([]domain.CertificateRecord, 0, len(members))
	for _, member := range members {
		if !isUntaggedSequence(member) {
			continue
		}
		record, err := certificateRecordFromDER(member.FullBytes, p.logger)
		if err != nil {
			return nil, fmt.Errorf("decoding inner master list certificate: %w", err)
		}
		records = append(records, record)
	}
	return records, nil
}

// outerCertificates decodes SignedData.certificates (if present) and
// returns a record for every plain-Certificate alternative. Non-Certificate
// alternatives (attribute certificates, other) are silently skipped.
func (p *Parser) outerCertificates(sd *signedData) ([]domain.CertificateRecord, error) {
	if len(sd.Certificates.FullBytes) == 0 {
		return nil, nil
	}

	members, err := rawSetMembers(sd.Certificates)
	if err != nil {
		return nil, fmt.Errorf("decoding outer certificates set: %w", err)
	}

	records := make([]domain.CertificateRecord, 0, len(members))
	for _, member := range members {
		if !isUntaggedSequence(member) {
			continue
		}
		record, err := certificateRecordFromDER(member.FullBytes, p.logger)
		if err != nil {
			return nil, fmt.Errorf("decoding outer signer certificate: %w", err)
		}
		records = append(records, record)
	}
	return records, nil
}

// crlsAndRevoked decodes SignedData.crls (if present) and returns a
// CrlRecord plus RevokedCertificateRecords for every standard X.509 v2 CRL
// alternative. Non-CRL alternatives are silently skipped.
func (p *Parser) crlsAndRevoked(sd *signedData) ([]domain.CrlRecord, []domain.RevokedCertificateRecord, error) {
	if len(sd.Crls.FullBytes) == 0 {
		return nil, nil, nil
	}

	members, err := rawSetMembers(sd.Crls)
	if err != nil {
		return nil, nil, fmt.Errorf("decoding crls set: %w", err)
	}

	var crls []domain.CrlRecord
	var revoked []domain.RevokedCertificateRecord
	for _, member := range members {
		if !isUntaggedSequence(member) {
			continue
		}
		crl, entries, err := crlAndRevokedFromDER(member.FullBytes)
		if err != nil {
			return nil, nil, fmt.Errorf("decoding CRL: %w", err)
		}
		crls = append(crls, crl)
		revoked = append(revoked, entries...)
	}
	return crls, revoked, nil
}
