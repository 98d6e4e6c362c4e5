package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"
	"time"

	"water-admin/internal/models"
	"water-admin/internal/reporting"
	"water-admin/internal/timeutil"

	"github.com/jung-kurt/gofpdf/v2"
)

// DeliveryReport is the delivery matrix view for one period.
type DeliveryReport struct {
	Period      reporting.Period            `json:"period"`
	Matrices    []*reporting.DeliveryMatrix `json:"matrices"`
	DailyTotals []reporting.DayTotal        `json:"daily_totals"`
}

// DriverDeliveries is the driver's own trip list plus the same matrix view.
type DriverDeliveries struct {
	Period      reporting.Period            `json:"period"`
	Trips       []models.Trip               `json:"trips"`
	Matrices    []*reporting.DeliveryMatrix `json:"matrices"`
	DailyTotals []reporting.DayTotal        `json:"daily_totals"`
}

// ReportService builds delivery reports from backend rows.
type ReportService struct {
	Backend Backend
	Clock   Clock
}

func NewReportService(b Backend, clock Clock) *ReportService {
	return &ReportService{Backend: b, Clock: clock}
}

// Deliveries fetches delivery rows for the period and pivots them. The
// backend query is narrowed to the period bounds; rows are filtered again on
// the local calendar day since the backend may bucket by UTC.
func (s *ReportService) Deliveries(ctx context.Context, token string, period reporting.Period, containerID models.ID) (*DeliveryReport, error) {
	now, loc := s.Clock.now(), s.Clock.loc()

	query := periodQuery(period, now, loc)
	if containerID != "" {
		query.Set("container_id", containerID.String())
	}
	rows, err := s.Backend.ListDeliveries(ctx, token, query)
	if err != nil {
		return nil, err
	}
	rows = reporting.FilterByPeriod(rows, func(r models.DeliveryRecord) models.Timestamp { return r.Date }, period, now, loc)
	if containerID != "" {
		rows = filterContainer(rows, containerID)
	}

	return &DeliveryReport{
		Period:      period,
		Matrices:    reporting.BuildDeliveryMatrices(rows, loc),
		DailyTotals: reporting.DailyTotals(rows, loc),
	}, nil
}

// WriteDeliveriesCSV writes every container matrix of the report.
func (s *ReportService) WriteDeliveriesCSV(w io.Writer, report *DeliveryReport) error {
	if len(report.Matrices) == 1 {
		return report.Matrices[0].WriteCSV(w)
	}
	return reporting.WriteMatricesCSV(w, report.Matrices)
}

// DeliveriesPDF renders the report as a landscape A4 printout, one table per
// container.
func (s *ReportService) DeliveriesPDF(report *DeliveryReport) ([]byte, error) {
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(10, 10, 10)
	pdf.SetAutoPageBreak(true, 10)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(277, 10, "Delivery Report", "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "", 10)
	start, end := report.Period.Bounds(s.Clock.now(), s.Clock.loc())
	pdf.CellFormat(277, 6, fmt.Sprintf("Period: %s", periodLabel(start, end)), "", 1, "C", false, 0, "")
	pdf.CellFormat(277, 6, fmt.Sprintf("Generated: %s", s.Clock.now().In(s.Clock.loc()).Format(timeutil.DisplayLayout)), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	if len(report.Matrices) == 0 {
		pdf.SetFont("Arial", "I", 11)
		pdf.CellFormat(277, 8, "No deliveries in this period.", "", 1, "C", false, 0, "")
	}

	for _, m := range report.Matrices {
		writeMatrixTable(pdf, m)
		pdf.Ln(6)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// writeMatrixTable lays out one matrix. Wide date ranges are split into
// column blocks so each page stays readable.
func writeMatrixTable(pdf *gofpdf.Fpdf, m *reporting.DeliveryMatrix) {
	// core fonts are cp1252; names arrive as UTF-8
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	const (
		nameWidth   = 55.0
		cellWidth   = 18.0
		totalWidth  = 22.0
		rowHeight   = 6.0
		blockLength = 11
	)

	pdf.SetFillColor(240, 240, 240)
	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(277, 8, tr(m.ContainerName), "1", 1, "L", true, 0, "")

	dates := m.Dates
	for blockStart := 0; blockStart == 0 || blockStart < len(dates); blockStart += blockLength {
		blockEnd := blockStart + blockLength
		if blockEnd > len(dates) {
			blockEnd = len(dates)
		}
		block := dates[blockStart:blockEnd]
		last := blockEnd == len(dates)

		pdf.SetFont("Arial", "B", 9)
		pdf.SetFillColor(200, 200, 200)
		pdf.CellFormat(nameWidth, rowHeight, "Customer", "1", 0, "L", true, 0, "")
		for _, day := range block {
			pdf.CellFormat(cellWidth, rowHeight, day[5:], "1", 0, "C", true, 0, "")
		}
		if last {
			pdf.CellFormat(totalWidth, rowHeight, "Total", "1", 0, "C", true, 0, "")
		}
		pdf.Ln(-1)

		pdf.SetFont("Arial", "", 9)
		for _, customer := range m.Customers {
			pdf.CellFormat(nameWidth, rowHeight, tr(customer), "1", 0, "L", false, 0, "")
			for _, day := range block {
				pdf.CellFormat(cellWidth, rowHeight, m.Value(customer, day).String(), "1", 0, "R", false, 0, "")
			}
			if last {
				pdf.CellFormat(totalWidth, rowHeight, m.RowTotal(customer).String(), "1", 0, "R", false, 0, "")
			}
			pdf.Ln(-1)
		}

		pdf.SetFont("Arial", "B", 9)
		pdf.CellFormat(nameWidth, rowHeight, "Total", "1", 0, "L", true, 0, "")
		for _, day := range block {
			pdf.CellFormat(cellWidth, rowHeight, m.ColumnTotal(day).String(), "1", 0, "R", true, 0, "")
		}
		if last {
			pdf.CellFormat(totalWidth, rowHeight, m.GrandTotal().String(), "1", 0, "R", true, 0, "")
		}
		pdf.Ln(-1)

		if last {
			break
		}
		pdf.Ln(2)
	}
}

// DriverTrips returns the trips visible to the token (the backend scopes a
// driver to their own trips) for the period.
func (s *ReportService) DriverTrips(ctx context.Context, token string, period reporting.Period) (*DriverDeliveries, error) {
	now, loc := s.Clock.now(), s.Clock.loc()

	trips, err := s.Backend.ListTrips(ctx, token, periodQuery(period, now, loc))
	if err != nil {
		return nil, err
	}
	trips = reporting.FilterByPeriod(trips, func(t models.Trip) models.Timestamp { return t.TripDate }, period, now, loc)
	records := reporting.FlattenTrips(trips)

	return &DriverDeliveries{
		Period:      period,
		Trips:       trips,
		Matrices:    reporting.BuildDeliveryMatrices(records, loc),
		DailyTotals: reporting.DailyTotals(records, loc),
	}, nil
}

// periodQuery narrows a list request to the period's day bounds.
func periodQuery(period reporting.Period, now time.Time, loc *time.Location) url.Values {
	query := url.Values{}
	start, end := period.Bounds(now, loc)
	if start != "" {
		query.Set("start_date", start)
	}
	if end != "" {
		query.Set("end_date", end)
	}
	return query
}

func filterContainer(rows []models.DeliveryRecord, containerID models.ID) []models.DeliveryRecord {
	out := rows[:0:0]
	for _, r := range rows {
		if r.ContainerID == containerID {
			out = append(out, r)
		}
	}
	return out
}

func periodLabel(start, end string) string {
	switch {
	case start == "" && end == "":
		return "All time"
	case start == end:
		return start
	case start == "":
		return "until " + end
	case end == "":
		return "from " + start
	}
	return start + " to " + end
}
