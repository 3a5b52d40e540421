package infra

import (
	"bytes"
	"fmt"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/shopspring/decimal"
)

// CenterSheet is the data printed on a betting center's A4 summary sheet.
type CenterSheet struct {
	Name          string
	Address       string
	AdminUsername string
	GeneratedAt   time.Time
	Taquillas     []SheetTaquilla
	Limits        []SheetLimit // empty when the center has no configuration
}

type SheetTaquilla struct {
	Number       int
	Status       string
	AssignedUser string // empty when unassigned
}

type SheetLimit struct {
	Label string
	Value *decimal.Decimal
}

// RenderCenterSheet renders sheet as an A4 PDF and returns its bytes.
func RenderCenterSheet(sheet CenterSheet) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 30

	// ── Header ───────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(contentW, 9, tr(sheet.Name), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(contentW, 6, tr(sheet.Address), "", 1, "L", false, 0, "")
	pdf.CellFormat(contentW, 6, tr("Administrador: "+orDash(sheet.AdminUsername)), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "I", 8)
	pdf.CellFormat(contentW, 5, "Generado: "+sheet.GeneratedAt.Format("02/01/2006 15:04"), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	// ── Taquillas ────────────────────────────────────────────────────────────
	col1, col2, col3 := contentW*0.2, contentW*0.3, contentW*0.5
	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(col1, 7, "Taquilla", "B", 0, "L", false, 0, "")
	pdf.CellFormat(col2, 7, "Estado", "B", 0, "L", false, 0, "")
	pdf.CellFormat(col3, 7, "Usuario asignado", "B", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	if len(sheet.Taquillas) == 0 {
		pdf.CellFormat(contentW, 6, "Sin taquillas registradas", "", 1, "L", false, 0, "")
	}
	for _, t := range sheet.Taquillas {
		pdf.CellFormat(col1, 6, fmt.Sprintf("#%d", t.Number), "", 0, "L", false, 0, "")
		pdf.CellFormat(col2, 6, t.Status, "", 0, "L", false, 0, "")
		pdf.CellFormat(col3, 6, tr(orDash(t.AssignedUser)), "", 1, "L", false, 0, "")
	}

	// ── Limits ───────────────────────────────────────────────────────────────
	if len(sheet.Limits) > 0 {
		pdf.Ln(6)
		pdf.SetFont("Helvetica", "B", 12)
		pdf.CellFormat(contentW, 7, tr("Configuración"), "", 1, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 10)
		for _, l := range sheet.Limits {
			value := "-"
			if l.Value != nil {
				value = l.Value.StringFixed(2)
			}
			pdf.CellFormat(contentW*0.6, 6, tr(l.Label), "", 0, "L", false, 0, "")
			pdf.CellFormat(contentW*0.4, 6, value, "", 1, "R", false, 0, "")
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("pdf: render center sheet: %w", err)
	}
	return buf.Bytes(), nil
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
