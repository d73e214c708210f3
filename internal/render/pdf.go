package render

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"

	"resume-generator/internal/generation"
)

const (
	pdfCreator   = "Resume Generator"
	pdfSubject   = "Professional Resume"
	maxKeywords  = 10
	marginMM     = 18.0
	lineHeightMM = 5.0
)

// BuildPDF lays out one resume and returns the PDF bytes.
func BuildPDF(job generation.RenderJob, style Style, created time.Time) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "Letter", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	doc := job.Document
	name := job.Contact.Name
	if name == "" {
		name = doc.Name
	}

	keywords := doc.Skills
	if len(keywords) > maxKeywords {
		keywords = keywords[:maxKeywords]
	}
	pdf.SetTitle(tr("Resume - "+name), false)
	pdf.SetAuthor(tr(name), false)
	pdf.SetSubject(pdfSubject, false)
	pdf.SetKeywords(tr(strings.Join(keywords, ", ")), false)
	pdf.SetCreator(pdfCreator, false)
	pdf.SetCreationDate(created)

	pdf.SetMargins(marginMM, 16, marginMM)
	pdf.SetAutoPageBreak(true, 16)
	pdf.AddPage()

	w := contentWidth(pdf)
	l := layout{pdf: pdf, tr: tr, style: style, width: w}

	l.header(name, job)
	l.heading("Professional Summary")
	l.body(doc.Summary)

	l.heading("Skills")
	l.body(strings.Join(doc.Skills, ", "))

	l.heading("Experience")
	for _, e := range doc.Experience {
		l.experience(e)
	}

	if len(doc.Education) > 0 {
		l.heading("Education")
		for _, e := range doc.Education {
			l.education(e)
		}
	}
	if len(doc.Certifications) > 0 {
		l.heading("Certifications")
		for _, c := range doc.Certifications {
			l.bullet(c)
		}
	}

	if pdf.Err() {
		return nil, fmt.Errorf("layout: %w", pdf.Error())
	}
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("write pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func contentWidth(pdf *fpdf.Fpdf) float64 {
	pageW, _ := pdf.GetPageSize()
	left, _, right, _ := pdf.GetMargins()
	return pageW - left - right
}

type layout struct {
	pdf   *fpdf.Fpdf
	tr    func(string) string
	style Style
	width float64
}

func (l layout) header(name string, job generation.RenderJob) {
	pdf, s := l.pdf, l.style
	align := "L"
	if s.CenterHeader {
		align = "C"
	}
	if s.ShadedHeader {
		pdf.SetFillColor(s.Accent.r, s.Accent.g, s.Accent.b)
		pdf.SetTextColor(255, 255, 255)
	} else {
		pdf.SetTextColor(s.Accent.r, s.Accent.g, s.Accent.b)
	}
	pdf.SetFont(s.Font, "B", s.NameSize)
	pdf.CellFormat(l.width, s.NameSize*0.5, l.tr(name), "", 1, align, s.ShadedHeader, 0, "")

	if len(job.Document.Experience) > 0 {
		pdf.SetFont(s.Font, "", s.HeadingSize)
		pdf.CellFormat(l.width, 6, l.tr(job.Document.Experience[0].Title), "", 1, align, s.ShadedHeader, 0, "")
	}

	pdf.SetTextColor(60, 60, 60)
	pdf.SetFont(s.Font, "", s.BodySize-1)
	var contact []string
	for _, v := range []string{job.Contact.Email, job.Contact.Phone, job.Contact.Location} {
		if strings.TrimSpace(v) != "" {
			contact = append(contact, v)
		}
	}
	pdf.CellFormat(l.width, lineHeightMM, l.tr(strings.Join(contact, " | ")), "", 1, align, false, 0, "")
	pdf.Ln(2)
}

func (l layout) heading(title string) {
	pdf, s := l.pdf, l.style
	if s.UpperHeadings {
		title = strings.ToUpper(title)
	}
	pdf.Ln(2)
	pdf.SetTextColor(s.Accent.r, s.Accent.g, s.Accent.b)
	pdf.SetFont(s.Font, "B", s.HeadingSize)
	pdf.CellFormat(l.width, 6, l.tr(title), "", 1, "L", false, 0, "")
	if s.HeadingRule {
		y := pdf.GetY()
		left, _, _, _ := pdf.GetMargins()
		pdf.SetDrawColor(s.Accent.r, s.Accent.g, s.Accent.b)
		pdf.SetLineWidth(0.3)
		pdf.Line(left, y, left+l.width, y)
		pdf.Ln(1)
	}
	pdf.SetTextColor(20, 20, 20)
}

func (l layout) body(text string) {
	l.pdf.SetFont(l.style.Font, "", l.style.BodySize)
	l.pdf.MultiCell(l.width, lineHeightMM, l.tr(text), "", "L", false)
}

func (l layout) bullet(text string) {
	l.pdf.SetFont(l.style.Font, "", l.style.BodySize)
	l.pdf.MultiCell(l.width, lineHeightMM, l.tr("- "+text), "", "L", false)
}

func (l layout) experience(e generation.Experience) {
	pdf, s := l.pdf, l.style
	dates := strings.TrimSpace(e.StartDate + " - " + e.EndDate)
	pdf.SetFont(s.Font, "", s.BodySize)
	datesW := pdf.GetStringWidth(dates) + 2

	pdf.SetFont(s.Font, "B", s.BodySize+0.5)
	pdf.CellFormat(l.width-datesW, 6, l.tr(e.Title), "", 0, "L", false, 0, "")
	pdf.SetFont(s.Font, "", s.BodySize)
	pdf.CellFormat(datesW, 6, l.tr(dates), "", 1, "R", false, 0, "")

	company := e.Company
	if e.Location != "" {
		company += ", " + e.Location
	}
	pdf.SetFont(s.Font, "I", s.BodySize)
	pdf.CellFormat(l.width, lineHeightMM, l.tr(company), "", 1, "L", false, 0, "")
	for _, b := range e.Bullets {
		l.bullet(b)
	}
	pdf.Ln(1.5)
}

func (l layout) education(e generation.Education) {
	pdf, s := l.pdf, l.style
	pdf.SetFont(s.Font, "B", s.BodySize)
	pdf.CellFormat(l.width, lineHeightMM, l.tr(e.Degree), "", 1, "L", false, 0, "")

	line := e.Institution
	if e.Year != "" {
		line += ", " + e.Year
	}
	if e.GPA != "" {
		line += " (GPA " + e.GPA + ")"
	}
	pdf.SetFont(s.Font, "", s.BodySize)
	pdf.CellFormat(l.width, lineHeightMM, l.tr(line), "", 1, "L", false, 0, "")
}
