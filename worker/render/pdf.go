package render

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"

	"injaaz-backend/models"
)

const (
	pdfMargin     = 14.0
	photoCellW    = 58.0
	photoCellH    = 44.0
	photoGap      = 4.0
	signatureW    = 60.0
	signatureH    = 28.0
	brandAccentR  = 0x1f
	brandAccentG  = 0x4e
	brandAccentB  = 0x79
)

// writePDF renders the full site visit report to path: a header with the
// visit info, one section per report item with its photos, and the
// signature block at the end.
func (e *Engine) writePDF(ctx context.Context, visit *models.Visit, path string) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Site Visit Report", false)
	pdf.SetMargins(pdfMargin, pdfMargin, pdfMargin)
	pdf.SetAutoPageBreak(true, pdfMargin)
	pdf.AddPage()

	e.writeHeader(pdf, visit)
	e.writeVisitInfo(pdf, visit)

	for i, item := range visit.ReportItems {
		if err := ctx.Err(); err != nil {
			return err
		}
		e.writeItem(ctx, pdf, visit.VisitID, i, item)
	}

	e.writeSignatures(pdf, visit)

	if pdf.Err() {
		return fmt.Errorf("pdf rendering failed: %s", pdf.Error())
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return pdf.Output(f)
}

func (e *Engine) writeHeader(pdf *gofpdf.Fpdf, visit *models.Visit) {
	pdf.SetFont("Helvetica", "B", 20)
	pdf.SetTextColor(brandAccentR, brandAccentG, brandAccentB)
	pdf.CellFormat(0, 12, "Site Visit Report", "", 1, "C", false, 0, "")

	pdf.SetFont("Helvetica", "", 9)
	pdf.SetTextColor(110, 110, 110)
	generated := time.Now().Format("02/01/2006 15:04")
	pdf.CellFormat(0, 5, fmt.Sprintf("Visit %s  -  Generated %s", visit.VisitID, generated), "", 1, "C", false, 0, "")
	pdf.Ln(4)
	pdf.SetTextColor(0, 0, 0)
}

func (e *Engine) writeVisitInfo(pdf *gofpdf.Fpdf, visit *models.Visit) {
	keys := make([]string, 0, len(visit.VisitInfo))
	for k := range visit.VisitInfo {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.SetFillColor(brandAccentR, brandAccentG, brandAccentB)
	pdf.SetTextColor(255, 255, 255)
	pdf.CellFormat(0, 8, "  Visit Information", "", 1, "L", true, 0, "")
	pdf.SetTextColor(0, 0, 0)

	pdf.SetFont("Helvetica", "", 10)
	for _, k := range keys {
		v := strings.TrimSpace(visit.VisitInfo[k])
		if v == "" {
			v = "-"
		}
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(55, 7, humanizeKey(k), "B", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 10)
		pdf.CellFormat(0, 7, v, "B", 1, "L", false, 0, "")
	}
	pdf.Ln(5)
}

func (e *Engine) writeItem(ctx context.Context, pdf *gofpdf.Fpdf, visitID string, index int, item models.ReportItem) {
	// Keep the item header together with at least one row of content.
	_, pageH := pdf.GetPageSize()
	if pdf.GetY() > pageH-70 {
		pdf.AddPage()
	}

	pdf.SetFont("Helvetica", "B", 12)
	pdf.SetFillColor(235, 240, 247)
	pdf.CellFormat(0, 8, fmt.Sprintf("  Item %d: %s / %s", index+1, item.Asset, item.System), "", 1, "L", true, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	writeField := func(label, value string) {
		if strings.TrimSpace(value) == "" {
			return
		}
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(30, 6, label, "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 10)
		pdf.MultiCell(0, 6, value, "", "L", false)
	}
	writeField("Description", item.Description)
	writeField("Quantity", fmt.Sprintf("%d", item.Quantity))
	writeField("Brand", item.Brand)
	writeField("Comments", item.Comments)
	pdf.Ln(2)

	e.writeItemPhotos(ctx, pdf, visitID, index, item.PhotoURLs)
	pdf.Ln(4)
}

// writeItemPhotos lays the item's photos out in a grid, three per row.
// A photo that cannot be fetched or embedded leaves a placeholder cell
// instead of failing the whole report.
func (e *Engine) writeItemPhotos(ctx context.Context, pdf *gofpdf.Fpdf, visitID string, itemIndex int, urls []string) {
	if len(urls) == 0 {
		return
	}

	x0 := pdfMargin
	perRow := 3
	_, pageH := pdf.GetPageSize()

	for i, url := range urls {
		col := i % perRow
		if col == 0 {
			if pdf.GetY()+photoCellH > pageH-pdfMargin {
				pdf.AddPage()
			}
		}
		x := x0 + float64(col)*(photoCellW+photoGap)
		y := pdf.GetY()

		raw, err := e.fetchPhoto(ctx, url)
		if err != nil {
			e.logger.Warnf("Failed to fetch photo %d of item %d for visit %s: %v", i, itemIndex, visitID, err)
			e.writePhotoPlaceholder(pdf, x, y)
		} else if err := embedImage(pdf, fmt.Sprintf("v-%s-i%d-p%d", visitID, itemIndex, i), raw, x, y); err != nil {
			e.logger.Warnf("Failed to embed photo %d of item %d for visit %s: %v", i, itemIndex, visitID, err)
			e.writePhotoPlaceholder(pdf, x, y)
		}

		if col == perRow-1 || i == len(urls)-1 {
			pdf.SetY(y + photoCellH + photoGap)
		}
	}
}

func (e *Engine) writePhotoPlaceholder(pdf *gofpdf.Fpdf, x, y float64) {
	pdf.SetDrawColor(200, 200, 200)
	pdf.Rect(x, y, photoCellW, photoCellH, "D")
	pdf.SetFont("Helvetica", "I", 8)
	pdf.SetTextColor(150, 150, 150)
	pdf.SetXY(x, y+photoCellH/2-2)
	pdf.CellFormat(photoCellW, 4, "photo unavailable", "", 0, "C", false, 0, "")
	pdf.SetTextColor(0, 0, 0)
	pdf.SetDrawColor(0, 0, 0)
}

func (e *Engine) writeSignatures(pdf *gofpdf.Fpdf, visit *models.Visit) {
	_, pageH := pdf.GetPageSize()
	if pdf.GetY() > pageH-60 {
		pdf.AddPage()
	}

	pdf.SetFont("Helvetica", "B", 12)
	pdf.SetFillColor(brandAccentR, brandAccentG, brandAccentB)
	pdf.SetTextColor(255, 255, 255)
	pdf.CellFormat(0, 8, "  Signatures", "", 1, "L", true, 0, "")
	pdf.SetTextColor(0, 0, 0)
	pdf.Ln(2)

	y := pdf.GetY()
	e.writeSignatureBox(pdf, "Technician", visit.TechSignature, pdfMargin, y)
	e.writeSignatureBox(pdf, "Operations Manager", visit.OpManSignature, pdfMargin+signatureW+30, y)
	pdf.SetY(y + signatureH + 12)
}

func (e *Engine) writeSignatureBox(pdf *gofpdf.Fpdf, label, dataURI string, x, y float64) {
	pdf.SetDrawColor(160, 160, 160)
	pdf.Rect(x, y, signatureW, signatureH, "D")

	if raw := decodeSignature(dataURI); raw != nil {
		name := "sig-" + strings.ReplaceAll(strings.ToLower(label), " ", "-")
		if err := embedImageFit(pdf, name, raw, x+2, y+2, signatureW-4, signatureH-4); err != nil {
			e.logger.Warnf("Failed to embed %s signature: %v", label, err)
		}
	}

	pdf.SetFont("Helvetica", "", 9)
	pdf.SetXY(x, y+signatureH+1)
	pdf.CellFormat(signatureW, 5, label, "", 0, "C", false, 0, "")
	pdf.SetDrawColor(0, 0, 0)
}

// embedImage registers raw image bytes under name and draws them in the
// standard photo cell at (x, y).
func embedImage(pdf *gofpdf.Fpdf, name string, raw []byte, x, y float64) error {
	return embedImageFit(pdf, name, raw, x, y, photoCellW, photoCellH)
}

func embedImageFit(pdf *gofpdf.Fpdf, name string, raw []byte, x, y, w, h float64) error {
	imgType := sniffImageType(raw)
	if imgType == "" {
		return fmt.Errorf("unsupported image format")
	}
	opt := gofpdf.ImageOptions{ImageType: imgType, ReadDpi: false}
	info := pdf.RegisterImageOptionsReader(name, opt, bytes.NewReader(raw))
	if pdf.Err() {
		err := pdf.Error()
		pdf.ClearError()
		return err
	}
	if info == nil {
		return fmt.Errorf("image registration failed")
	}

	// Scale proportionally into the cell.
	iw, ih := info.Extent()
	scale := w / iw
	if ih*scale > h {
		scale = h / ih
	}
	dw := iw * scale
	dh := ih * scale
	pdf.ImageOptions(name, x+(w-dw)/2, y+(h-dh)/2, dw, dh, false, opt, 0, "")
	if pdf.Err() {
		err := pdf.Error()
		pdf.ClearError()
		return err
	}
	return nil
}

func sniffImageType(raw []byte) string {
	switch http.DetectContentType(raw) {
	case "image/jpeg":
		return "JPEG"
	case "image/png":
		return "PNG"
	case "image/gif":
		return "GIF"
	default:
		return ""
	}
}

// humanizeKey turns a snake_case visit-info key into a display label.
func humanizeKey(key string) string {
	parts := strings.Split(key, "_")
	for i, p := range parts {
		if p == "" {
			continue
		}
		parts[i] = strings.ToUpper(p[:1]) + p[1:]
	}
	return strings.Join(parts, " ")
}
