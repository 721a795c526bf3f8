package service

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/sangkips/salonpos-api/internal/domain/entity"
	"github.com/sangkips/salonpos-api/internal/domain/enum"
	"github.com/sangkips/salonpos-api/internal/domain/repository"
	"github.com/sangkips/salonpos-api/pkg/apperror"
)

const (
	dateLayout     = "2006-01-02"
	maxReportDays  = 366
	summarySheet   = "Résumé"
	salesSheet     = "Ventes"
	dailySheet     = "Par jour"
	defaultSheet   = "Sheet1"
	exportFilename = "ventes_%s_%s.xlsx"
)

// ReportService builds sales reports for the salon in ctx
type ReportService struct {
	reportRepo repository.ReportRepository
	salons     *SalonService
}

// NewReportService creates a new report service
func NewReportService(reportRepo repository.ReportRepository, salons *SalonService) *ReportService {
	return &ReportService{reportRepo: reportRepo, salons: salons}
}

// PaymentTotal is the amount collected with one method
type PaymentTotal struct {
	Method enum.PaymentMethod `json:"method"`
	Label  string             `json:"label"`
	Count  int64              `json:"count"`
	Amount decimal.Decimal    `json:"amount"`
}

// DailyTotal is one day of the series. Days without sales are included.
type DailyTotal struct {
	Date         string          `json:"date"`
	SaleCount    int64           `json:"sale_count"`
	GrandTotal   decimal.Decimal `json:"grand_total"`
	PointsEarned int64           `json:"points_earned"`
}

// SalesSummary aggregates completed sales
type SalesSummary struct {
	SaleCount      int64           `json:"sale_count"`
	ItemCount      int64           `json:"item_count"`
	Subtotal       decimal.Decimal `json:"subtotal"`
	LineDiscounts  decimal.Decimal `json:"line_discounts"`
	TotalDiscount  decimal.Decimal `json:"total_discount"`
	GrandTotal     decimal.Decimal `json:"grand_total"`
	AverageBasket  decimal.Decimal `json:"average_basket"`
	PointsEarned   int64           `json:"points_earned"`
	PointsRedeemed int64           `json:"points_redeemed"`
}

// SalesReport covers completed sales between From and To, both inclusive
type SalesReport struct {
	From     string         `json:"from"`
	To       string         `json:"to"`
	Currency string         `json:"currency"`
	Summary  SalesSummary   `json:"summary"`
	Payments []PaymentTotal `json:"payments"`
	Daily    []DailyTotal   `json:"daily"`

	sales []entity.Sale
	loc   *time.Location
}

// period parses the inclusive date range in the salon's time zone and
// returns it as a half-open interval. An empty from means today.
func period(from, to string, loc *time.Location) (time.Time, time.Time, error) {
	var start time.Time
	if from == "" {
		now := time.Now().In(loc)
		start = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)
	} else {
		t, err := time.ParseInLocation(dateLayout, from, loc)
		if err != nil {
			return time.Time{}, time.Time{}, apperror.NewValidationError([]apperror.FieldError{{Field: "from", Message: "must be YYYY-MM-DD"}})
		}
		start = t
	}

	last := start
	if to != "" {
		t, err := time.ParseInLocation(dateLayout, to, loc)
		if err != nil {
			return time.Time{}, time.Time{}, apperror.NewValidationError([]apperror.FieldError{{Field: "to", Message: "must be YYYY-MM-DD"}})
		}
		last = t
	}

	if last.Before(start) {
		return time.Time{}, time.Time{}, apperror.NewValidationError([]apperror.FieldError{{Field: "to", Message: "must not be before from"}})
	}
	end := last.AddDate(0, 0, 1)
	if end.Sub(start) > maxReportDays*24*time.Hour {
		return time.Time{}, time.Time{}, apperror.NewValidationError([]apperror.FieldError{{Field: "to", Message: fmt.Sprintf("range is limited to %d days", maxReportDays)}})
	}
	return start, end, nil
}

// SalesReport summarises completed sales over a date range
func (s *ReportService) SalesReport(ctx context.Context, from, to string) (*SalesReport, error) {
	salon, err := s.salons.Current(ctx)
	if err != nil {
		return nil, err
	}
	loc := salonLocation(salon)

	start, end, err := period(from, to, loc)
	if err != nil {
		return nil, err
	}

	summary, err := s.reportRepo.SalesSummary(ctx, start, end)
	if err != nil {
		return nil, err
	}
	breakdown, err := s.reportRepo.PaymentBreakdown(ctx, start, end)
	if err != nil {
		return nil, err
	}
	sales, err := s.reportRepo.CompletedSales(ctx, start, end)
	if err != nil {
		return nil, err
	}

	report := &SalesReport{
		From:     start.Format(dateLayout),
		To:       end.AddDate(0, 0, -1).Format(dateLayout),
		Currency: salon.Settings.Currency,
		Summary: SalesSummary{
			SaleCount:      summary.SaleCount,
			ItemCount:      summary.ItemCount,
			Subtotal:       summary.Subtotal,
			LineDiscounts:  summary.LineDiscounts,
			TotalDiscount:  summary.TotalDiscount,
			GrandTotal:     summary.GrandTotal,
			AverageBasket:  decimal.Zero,
			PointsEarned:   summary.PointsEarned,
			PointsRedeemed: summary.PointsRedeemed,
		},
		Payments: make([]PaymentTotal, 0, len(breakdown)),
		Daily:    dailySeries(sales, start, end, loc),
		sales:    sales,
		loc:      loc,
	}
	if summary.SaleCount > 0 {
		report.Summary.AverageBasket = summary.GrandTotal.DivRound(decimal.NewFromInt(summary.SaleCount), 2)
	}
	for _, b := range breakdown {
		report.Payments = append(report.Payments, PaymentTotal{
			Method: b.Method,
			Label:  paymentLabel(b.Method),
			Count:  b.Count,
			Amount: b.Amount,
		})
	}

	return report, nil
}

// dailySeries buckets sales by local calendar day
func dailySeries(sales []entity.Sale, start, end time.Time, loc *time.Location) []DailyTotal {
	index := make(map[string]int)
	var days []DailyTotal
	for d := start; d.Before(end); d = d.AddDate(0, 0, 1) {
		key := d.Format(dateLayout)
		index[key] = len(days)
		days = append(days, DailyTotal{Date: key, GrandTotal: decimal.Zero})
	}

	for _, sale := range sales {
		i, ok := index[sale.SaleDate.In(loc).Format(dateLayout)]
		if !ok {
			continue
		}
		days[i].SaleCount++
		days[i].GrandTotal = days[i].GrandTotal.Add(sale.GrandTotal)
		days[i].PointsEarned += sale.PointsEarned
	}
	return days
}

// ExportSales renders the report as an .xlsx workbook and returns it with a file name
func (s *ReportService) ExportSales(ctx context.Context, from, to string) ([]byte, string, error) {
	report, err := s.SalesReport(ctx, from, to)
	if err != nil {
		return nil, "", err
	}

	buf, err := report.Workbook()
	if err != nil {
		return nil, "", err
	}
	return buf.Bytes(), fmt.Sprintf(exportFilename, report.From, report.To), nil
}

func money(d decimal.Decimal) float64 {
	return d.InexactFloat64()
}

// Workbook writes the summary, daily series and sale list on three sheets
func (r *SalesReport) Workbook() (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return nil, err
	}
	writeRow := func(sheet string, row int, values ...interface{}) {
		for i, v := range values {
			cell, _ := excelize.CoordinatesToCellName(i+1, row)
			f.SetCellValue(sheet, cell, v)
		}
	}
	writeHeader := func(sheet string, headers ...interface{}) {
		writeRow(sheet, 1, headers...)
		last, _ := excelize.CoordinatesToCellName(len(headers), 1)
		f.SetCellStyle(sheet, "A1", last, headerStyle)
		f.SetPanes(sheet, &excelize.Panes{Freeze: true, Split: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"})
	}

	if err := f.SetSheetName(defaultSheet, summarySheet); err != nil {
		return nil, err
	}
	writeHeader(summarySheet, "Indicateur", "Valeur")
	rows := [][]interface{}{
		{"Période", r.From + " → " + r.To},
		{"Devise", r.Currency},
		{"Nombre de ventes", r.Summary.SaleCount},
		{"Articles vendus", r.Summary.ItemCount},
		{"Sous-total", money(r.Summary.Subtotal)},
		{"Remises lignes", money(r.Summary.LineDiscounts)},
		{"Remises globales et points", money(r.Summary.TotalDiscount)},
		{"Total encaissé", money(r.Summary.GrandTotal)},
		{"Panier moyen", money(r.Summary.AverageBasket)},
		{"Points gagnés", r.Summary.PointsEarned},
		{"Points utilisés", r.Summary.PointsRedeemed},
	}
	row := 2
	for _, values := range rows {
		writeRow(summarySheet, row, values...)
		row++
	}
	row++
	writeRow(summarySheet, row, "Moyen de paiement", "Montant", "Paiements")
	for _, p := range r.Payments {
		row++
		writeRow(summarySheet, row, p.Label, money(p.Amount), p.Count)
	}
	f.SetColWidth(summarySheet, "A", "A", 32)
	f.SetColWidth(summarySheet, "B", "C", 20)

	if _, err := f.NewSheet(dailySheet); err != nil {
		return nil, err
	}
	writeHeader(dailySheet, "Date", "Ventes", "Total", "Points gagnés")
	for i, d := range r.Daily {
		writeRow(dailySheet, i+2, d.Date, d.SaleCount, money(d.GrandTotal), d.PointsEarned)
	}

	if _, err := f.NewSheet(salesSheet); err != nil {
		return nil, err
	}
	writeHeader(salesSheet, "Facture", "Date", "Articles", "Sous-total", "Remises", "Total", "Payé", "Rendu", "Points gagnés", "Points utilisés")
	for i, s := range r.sales {
		writeRow(salesSheet, i+2,
			s.InvoiceNo,
			s.SaleDate.In(r.location()).Format("02/01/2006 15:04"),
			s.ItemCount,
			money(s.Subtotal),
			money(s.TotalDiscount.Add(s.LineDiscountTotal)),
			money(s.GrandTotal),
			money(s.TotalPaid),
			money(s.ChangeOwed),
			s.PointsEarned,
			s.PointsRedeemed,
		)
	}
	if len(r.sales) > 0 {
		f.AutoFilter(salesSheet, fmt.Sprintf("A1:J%d", len(r.sales)+1), []excelize.AutoFilterOptions{})
	}
	f.SetColWidth(salesSheet, "A", "B", 20)

	f.SetActiveSheet(0)
	return f.WriteToBuffer()
}

func (r *SalesReport) location() *time.Location {
	if r.loc == nil {
		return time.UTC
	}
	return r.loc
}
