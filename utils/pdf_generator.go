package utils

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"time"

	"despachos/models"
	"despachos/repository"
	"despachos/rndc"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
)

const manifestTemplate = "manifiesto_template.html"

var copyTitles = []string{"ORIGINAL", "COPIA CONDUCTOR", "COPIA EMPRESA"}

// ManifestPDFGenerator prints registered manifests with headless Chrome.
type ManifestPDFGenerator struct {
	Repo         *repository.PDFRepository
	TemplatesDir string
}

// completeManifestData fills the display fields derived from the records.
func completeManifestData(data *models.ManifestPDFData) {
	m := data.Manifest
	data.IssueDate = rndc.FormatDate(m.IssueDate)
	data.PaymentDate = rndc.FormatDate(m.IssueDate.AddDate(0, 0, rndc.PaymentTermDays))
	data.FreightText = FormatPesos(m.FreightValue)
	data.FreightWord = PesosToWords(m.FreightValue)

	qr := rndc.QRData{
		IssueDate:    data.IssueDate,
		Plate:        m.Plate,
		Origin:       m.OriginMunicipality,
		Destination:  m.DestMunicipality,
		DriverID:     m.DriverID,
		FreightValue: m.FreightValue,
	}
	if m.IngresoID != nil {
		qr.IngresoID = *m.IngresoID
	}
	if m.SecurityCode != nil {
		qr.SecurityCode = *m.SecurityCode
	}
	if data.Config != nil {
		qr.CompanyNIT = data.Config.CompanyNIT
	}
	data.QRPayload = rndc.QRPayload(qr)
}

// RenderManifestHTML renders the three copies of a manifest into one page
// document. Each copy avoids being split across pages.
func RenderManifestHTML(tmpl *template.Template, data models.ManifestPDFData) (string, error) {
	completeManifestData(&data)

	var copies bytes.Buffer
	for _, title := range copyTitles {
		data.CopyTitle = title
		var buf bytes.Buffer
		if err := tmpl.Execute(&buf, data); err != nil {
			return "", fmt.Errorf("render %s copy: %w", title, err)
		}
		copies.WriteString("<div class='manifest-copy'>")
		copies.Write(buf.Bytes())
		copies.WriteString("</div>")
	}

	return `<!DOCTYPE html>
<html>
<head>
<meta charset="UTF-8">
<style>
@page { size: A4; margin: 16px; }
body { font-family: Arial, Helvetica, sans-serif; font-size: 11px; margin: 0; padding: 0; }
.manifest-copy { page-break-inside: avoid; page-break-after: always; }
.manifest-copy:last-child { page-break-after: auto; }
</style>
</head>
<body>` + copies.String() + `</body></html>`, nil
}

// GenerateManifestPDF returns nil, nil when the manifest does not exist.
func (g *ManifestPDFGenerator) GenerateManifestPDF(ctx context.Context, number string) ([]byte, error) {
	data, err := g.Repo.GetManifestForPDF(number)
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, nil
	}
	if data.Manifest.Status != models.ManifestSuccess && data.Manifest.Status != models.ManifestFulfilled &&
		data.Manifest.Status != models.ManifestFulfillmentFailed {
		return nil, fmt.Errorf("manifest %s is %s and has no RNDC acceptance to print", number, data.Manifest.Status)
	}

	tmpl, err := template.ParseFiles(filepath.Join(g.TemplatesDir, manifestTemplate))
	if err != nil {
		return nil, err
	}
	html, err := RenderManifestHTML(tmpl, *data)
	if err != nil {
		return nil, err
	}

	tmpHTML := filepath.Join(os.TempDir(), "manifiesto_"+number+"_"+time.Now().Format("20060102150405")+".html")
	if err := os.WriteFile(tmpHTML, []byte(html), 0644); err != nil {
		return nil, err
	}
	defer os.Remove(tmpHTML)

	cctx, cancel := chromedp.NewContext(ctx)
	defer cancel()
	cctx, cancelTimeout := context.WithTimeout(cctx, 60*time.Second)
	defer cancelTimeout()

	var pdfBuf []byte
	err = chromedp.Run(cctx,
		chromedp.Navigate("file://"+tmpHTML),
		chromedp.WaitReady("body"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			var err error
			pdfBuf, _, err = page.PrintToPDF().
				WithPrintBackground(true).
				WithPaperWidth(8.27).  // A4 width
				WithPaperHeight(11.7). // A4 height
				Do(ctx)
			return err
		}),
	)
	if err != nil {
		return nil, err
	}
	return pdfBuf, nil
}
