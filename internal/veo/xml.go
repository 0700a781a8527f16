package veo

import (
	"bytes"
	"encoding/base64"
	"strconv"
	"strings"
	"time"

	"trimveo/internal/textutil"
)

const (
	versNamespace = "http://www.prov.vic.gov.au/VERS"
	versVersion   = "3.0"
	versDateTime  = "2006-01-02T15:04:05-07:00"
	base64LineLen = 76
)

func writeContentHeader(b *strings.Builder, hashAlgorithm string) {
	b.WriteString("<?xml version=\"1.0\" encoding=\"UTF-8\" standalone=\"yes\" ?>\n")
	b.WriteString("<vers:VEO xmlns:vers=\"" + versNamespace + "\" xmlns:rdf=\"http://www.w3.org/1999/02/22-rdf-syntax-ns#\">\n")
	b.WriteString(" <vers:Version>" + versVersion + "</vers:Version>\n")
	b.WriteString(" <vers:HashFunctionAlgorithm>" + textutil.XMLEscape(hashAlgorithm) + "</vers:HashFunctionAlgorithm>\n")
}

func writeContentFooter(b *strings.Builder) {
	b.WriteString("</vers:VEO>\n")
}

func writeObjectStart(b *strings.Builder, label string, depth int) {
	b.WriteString(" <vers:InformationObject>\n")
	if label != "" {
		b.WriteString("  <vers:InformationObjectType>" + textutil.XMLEscape(label) + "</vers:InformationObjectType>\n")
	}
	b.WriteString("  <vers:InformationObjectDepth>" + strconv.Itoa(depth) + "</vers:InformationObjectDepth>\n")
}

func writeObjectEnd(b *strings.Builder) {
	b.WriteString(" </vers:InformationObject>\n")
}

func writeMetadataPackage(b *strings.Builder, schemaURI, syntaxURI, content string) {
	b.WriteString("  <vers:MetadataPackage>\n")
	b.WriteString("   <vers:MetadataSchemaIdentifier>" + textutil.XMLEscape(schemaURI) + "</vers:MetadataSchemaIdentifier>\n")
	b.WriteString("   <vers:MetadataSyntaxIdentifier>" + textutil.XMLEscape(syntaxURI) + "</vers:MetadataSyntaxIdentifier>\n")
	b.WriteString(content)
	if content != "" && !strings.HasSuffix(content, "\n") {
		b.WriteByte('\n')
	}
	b.WriteString("  </vers:MetadataPackage>\n")
}

func writePieceStart(b *strings.Builder, label string) {
	b.WriteString("  <vers:InformationPiece>\n")
	if label != "" {
		b.WriteString("   <vers:Label>" + textutil.XMLEscape(label) + "</vers:Label>\n")
	}
}

func writePieceEnd(b *strings.Builder) {
	b.WriteString("  </vers:InformationPiece>\n")
}

func writeContentFile(b *strings.Builder, ref, digest string) {
	b.WriteString("   <vers:ContentFile>\n")
	b.WriteString("    <vers:PathName>" + textutil.XMLEscape(ref) + "</vers:PathName>\n")
	b.WriteString("    <vers:HashValue>" + digest + "</vers:HashValue>\n")
	b.WriteString("   </vers:ContentFile>\n")
}

func renderHistory(events []event) []byte {
	var b bytes.Buffer
	b.WriteString("<?xml version=\"1.0\" encoding=\"UTF-8\" standalone=\"yes\" ?>\n")
	b.WriteString("<vers:VEOHistory xmlns:vers=\"" + versNamespace + "\">\n")
	b.WriteString(" <vers:Version>" + versVersion + "</vers:Version>\n")
	for _, e := range events {
		b.WriteString(" <vers:Event>\n")
		b.WriteString("  <vers:EventDateTime>" + e.when.Format(versDateTime) + "</vers:EventDateTime>\n")
		b.WriteString("  <vers:EventType>" + textutil.XMLEscape(e.eventType) + "</vers:EventType>\n")
		b.WriteString("  <vers:Initiator>" + textutil.XMLEscape(e.initiator) + "</vers:Initiator>\n")
		if e.description != "" {
			b.WriteString("  <vers:Description>" + textutil.XMLEscape(e.description) + "</vers:Description>\n")
		}
		b.WriteString(" </vers:Event>\n")
	}
	b.WriteString("</vers:VEOHistory>\n")
	return b.Bytes()
}

type signatureData struct {
	when         time.Time
	algorithm    string
	signer       string
	signature    []byte
	certificates [][]byte
}

func renderSignature(s signatureData) []byte {
	var b bytes.Buffer
	b.WriteString("<?xml version=\"1.0\" encoding=\"UTF-8\" standalone=\"yes\" ?>\n")
	b.WriteString("<vers:SignatureBlock xmlns:vers=\"" + versNamespace + "\">\n")
	b.WriteString(" <vers:Version>" + versVersion + "</vers:Version>\n")
	b.WriteString(" <vers:SignatureDateTime>" + s.when.Format(versDateTime) + "</vers:SignatureDateTime>\n")
	b.WriteString(" <vers:Signer>" + textutil.XMLEscape(s.signer) + "</vers:Signer>\n")
	b.WriteString(" <vers:SignatureAlgorithm>" + s.algorithm + "</vers:SignatureAlgorithm>\n")
	b.WriteString(" <vers:Signature>\n" + wrapBase64(s.signature) + " </vers:Signature>\n")
	b.WriteString(" <vers:CertificateChain>\n")
	for _, cert := range s.certificates {
		b.WriteString("  <vers:Certificate>\n" + wrapBase64(cert) + "  </vers:Certificate>\n")
	}
	b.WriteString(" </vers:CertificateChain>\n")
	b.WriteString("</vers:SignatureBlock>\n")
	return b.Bytes()
}

func wrapBase64(data []byte) string {
	encoded := base64.StdEncoding.EncodeToString(data)
	var b strings.Builder
	for len(encoded) > base64LineLen {
		b.WriteString(encoded[:base64LineLen])
		b.WriteByte('\n')
		encoded = encoded[base64LineLen:]
	}
	b.WriteString(encoded)
	b.WriteByte('\n')
	return b.String()
}
