package export

import (
	"bytes"
	"encoding/csv"
	"errors"
	"strconv"
	"strings"
	"time"

	"sabadototal/internal/domain/registration"
)

// Format constants for export artifacts.
const (
	FormatCSV = "csv"
	FormatXML = "xml"
)

// File name constants for the downloaded artifacts.
const (
	FileNameCSV = "inscricoes.csv"
	FileNameXML = "inscricoes.xml"
)

// ErrNoRecords indicates an export was requested over an empty set.
// No file is produced in that case.
var ErrNoRecords = errors.New("no registrations to export")

// utf8BOM is prepended to CSV output so spreadsheet software opens the
// accented Portuguese text correctly.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// csvHeader is the fixed column set, in order. The Status column is the
// workflow status; payment has its own column.
var csvHeader = []string{
	"ID",
	"Criança",
	"Data de Nascimento",
	"Idade",
	"Responsável",
	"WhatsApp",
	"Turma",
	"Restrição Alimentar",
	"Detalhes da Restrição",
	"Status",
	"Pagamento",
	"Data de Inscrição",
}

// dateLayout renders birth dates the way the form collects them.
const dateLayout = "02/01/2006"

// ToCSV renders the full record set as a UTF-8 CSV file with a BOM.
// Fields containing commas, quotes or newlines are quoted per RFC 4180.
// PRE: now is the instant used for the age column
// POST: Returns the file bytes, or ErrNoRecords for an empty set
func ToCSV(regs []registration.Registration, now time.Time) ([]byte, error) {
	if len(regs) == 0 {
		return nil, ErrNoRecords
	}

	var buf bytes.Buffer
	buf.Write(utf8BOM)

	w := csv.NewWriter(&buf)
	if err := w.Write(csvHeader); err != nil {
		return nil, err
	}
	for _, r := range regs {
		record := []string{
			r.ID,
			r.ChildName,
			r.BirthDate.Format(dateLayout),
			strconv.Itoa(r.AgeAt(now)),
			r.GuardianName,
			r.GuardianWhatsapp,
			r.AgeGroup,
			r.HasDietaryRestriction,
			r.RestrictionDisplay(),
			r.Status,
			r.PaymentStatus,
			r.SubmissionDate.Format(time.RFC3339),
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// xmlReplacer escapes the five XML special characters with their named
// entities. encoding/xml emits numeric entities for quotes, which the
// spreadsheet importer used by the organizers does not accept, so the
// flat document is built by hand.
var xmlReplacer = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	"'", "&apos;",
	`"`, "&quot;",
)

// ToXML renders the full record set as a flat element-per-field XML
// document under a <registrations> root.
// POST: Returns the file bytes, or ErrNoRecords for an empty set
func ToXML(regs []registration.Registration, now time.Time) ([]byte, error) {
	if len(regs) == 0 {
		return nil, ErrNoRecords
	}

	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	b.WriteString("<registrations>\n")
	for _, r := range regs {
		b.WriteString("  <registration>\n")
		writeElem(&b, "id", r.ID)
		writeElem(&b, "childName", r.ChildName)
		writeElem(&b, "birthDate", r.BirthDate.Format(dateLayout))
		writeElem(&b, "age", strconv.Itoa(r.AgeAt(now)))
		writeElem(&b, "guardianName", r.GuardianName)
		writeElem(&b, "guardianWhatsapp", r.GuardianWhatsapp)
		writeElem(&b, "ageGroup", r.AgeGroup)
		writeElem(&b, "hasDietaryRestriction", r.HasDietaryRestriction)
		writeElem(&b, "dietaryRestrictionDetails", r.RestrictionDisplay())
		writeElem(&b, "status", r.Status)
		writeElem(&b, "paymentStatus", r.PaymentStatus)
		writeElem(&b, "submissionDate", r.SubmissionDate.Format(time.RFC3339))
		b.WriteString("  </registration>\n")
	}
	b.WriteString("</registrations>\n")
	return []byte(b.String()), nil
}

func writeElem(b *strings.Builder, name, value string) {
	b.WriteString("    <")
	b.WriteString(name)
	b.WriteString(">")
	b.WriteString(xmlReplacer.Replace(value))
	b.WriteString("</")
	b.WriteString(name)
	b.WriteString(">\n")
}
