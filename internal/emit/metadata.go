package emit

import (
	"fmt"
	"net/url"
	"strings"

	"trimveo/internal/records"
	"trimveo/internal/textutil"
)

// Metadata package identifiers.
const (
	AGLSSchema = "http://prov.vic.gov.au/vers/schema/AGLS"
	AGLSSyntax = "http://www.w3.org/1999/02/22-rdf-syntax-ns"
	TRIMSchema = "http://prov.vic.gov.au/vers/schema/TRIM"
	TRIMSyntax = "https://www.w3.org/TR/2008/REC-xml-20081126/"
)

// rdfAbout builds the rdf:about value for a record package name.
func rdfAbout(prefix, name string) (string, error) {
	if prefix == "" {
		prefix = "file:///"
	}
	about, err := url.JoinPath(prefix, name)
	if err != nil {
		return "", fmt.Errorf("build rdf identifier from %q: %w", prefix, err)
	}
	return about, nil
}

func aglsMetadata(rec *records.Record, about, created, common string) string {
	var b strings.Builder
	b.WriteString(" <rdf:RDF xmlns:dcterms=\"http://purl.org/dc/terms/\"\n")
	b.WriteString("\txmlns:aglsterms=\"http://www.agls.gov.au/agls/terms/\"\n")
	b.WriteString("\txmlns:versterms=\"http://www.prov.vic.gov.au/vers/terms/\">\n")
	b.WriteString(" <rdf:Description rdf:about=\"" + textutil.XMLEscape(about) + "\">\n")
	b.WriteString(" <dcterms:title>" + textutil.XMLEscape(rec.Title) + "</dcterms:title>\n")
	b.WriteString(" <dcterms:created rdf:datatype=\"xsd:dateTime\">" + created + "</dcterms:created>\n")
	b.WriteString(" <dcterms:type>" + textutil.XMLEscape(rec.RecordTypeRaw) + "</dcterms:type>\n")
	b.WriteString(" <dcterms:description>" + textutil.XMLEscape(rec.RecordType) + "</dcterms:description>\n")
	b.WriteString(" <dcterms:identifier>" + textutil.XMLEscape(rec.Key()) + "</dcterms:identifier>\n")
	if common != "" {
		b.WriteString(common)
		if !strings.HasSuffix(common, "\n") {
			b.WriteByte('\n')
		}
	}
	b.WriteString(" </rdf:Description>\n</rdf:RDF>\n")
	return b.String()
}

// trimMetadata writes every non-empty cell under a tag made from its column
// label. Labels that strip to nothing are skipped.
func trimMetadata(header, fields []string) string {
	var b strings.Builder
	for i, label := range header {
		if i >= len(fields) || fields[i] == "" {
			continue
		}
		tag := textutil.XMLTagName(label)
		if tag == "" {
			continue
		}
		b.WriteString("   <" + tag + ">" + textutil.XMLEscape(fields[i]) + "</" + tag + ">\n")
	}
	return b.String()
}

// contentName picks the file named by a DOS file cell. The cell holds one or
// two names separated by '|'; the last one is the file on disk.
func contentName(spec string) string {
	parts := strings.Split(spec, "|")
	for i := len(parts) - 1; i >= 0; i-- {
		if name := strings.TrimSpace(parts[i]); name != "" {
			return name
		}
	}
	return ""
}

func informationObjectLabel(prefix string, rec *records.Record) string {
	if strings.TrimSpace(rec.RecordTypeRaw) == "" {
		return ""
	}
	return prefix + rec.RecordType
}
