package reporting

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"sort"
	"time"

	"water-admin/internal/models"

	"github.com/shopspring/decimal"
)

// AllContainersName labels the partition for records without a container.
const AllContainersName = "All Containers"

// DeliveryMatrix is a customer × day grid of delivered quantities for one
// container. It is built once and never mutated.
type DeliveryMatrix struct {
	ContainerID   models.ID
	ContainerName string
	Customers     []string
	Dates         []string

	cells        map[string]map[string]decimal.Decimal
	rowTotals    map[string]decimal.Decimal
	columnTotals map[string]decimal.Decimal
	grandTotal   decimal.Decimal
}

// BuildDeliveryMatrices partitions records by container and pivots each
// partition. Day keys are computed in loc. Partitions are ordered by container
// name; an empty input yields no partitions.
func BuildDeliveryMatrices(records []models.DeliveryRecord, loc *time.Location) []*DeliveryMatrix {
	byContainer := make(map[models.ID]*DeliveryMatrix)

	for _, rec := range records {
		m, ok := byContainer[rec.ContainerID]
		if !ok {
			m = newDeliveryMatrix(rec.ContainerID, containerLabel(rec))
			byContainer[rec.ContainerID] = m
		} else if m.ContainerName == "" && rec.ContainerName != "" {
			m.ContainerName = rec.ContainerName
		}
		m.add(rec.CustomerName, rec.Date.DayKey(loc), rec.DeliveredQuantity.Decimal)
	}

	matrices := make([]*DeliveryMatrix, 0, len(byContainer))
	for _, m := range byContainer {
		m.finish()
		matrices = append(matrices, m)
	}
	sort.Slice(matrices, func(i, j int) bool {
		if matrices[i].ContainerName != matrices[j].ContainerName {
			return matrices[i].ContainerName < matrices[j].ContainerName
		}
		return matrices[i].ContainerID < matrices[j].ContainerID
	})
	return matrices
}

func containerLabel(rec models.DeliveryRecord) string {
	if rec.ContainerID == "" && rec.ContainerName == "" {
		return AllContainersName
	}
	if rec.ContainerName == "" {
		return rec.ContainerID.String()
	}
	return rec.ContainerName
}

func newDeliveryMatrix(id models.ID, name string) *DeliveryMatrix {
	return &DeliveryMatrix{
		ContainerID:   id,
		ContainerName: name,
		cells:         make(map[string]map[string]decimal.Decimal),
		rowTotals:     make(map[string]decimal.Decimal),
		columnTotals:  make(map[string]decimal.Decimal),
	}
}

func (m *DeliveryMatrix) add(customer, day string, qty decimal.Decimal) {
	row, ok := m.cells[customer]
	if !ok {
		row = make(map[string]decimal.Decimal)
		m.cells[customer] = row
	}
	row[day] = row[day].Add(qty)
	m.rowTotals[customer] = m.rowTotals[customer].Add(qty)
	m.columnTotals[day] = m.columnTotals[day].Add(qty)
	m.grandTotal = m.grandTotal.Add(qty)
}

func (m *DeliveryMatrix) finish() {
	for customer := range m.rowTotals {
		m.Customers = append(m.Customers, customer)
	}
	for day := range m.columnTotals {
		m.Dates = append(m.Dates, day)
	}
	sort.Strings(m.Customers)
	sort.Strings(m.Dates)
}

// Value returns the delivered quantity for (customer, day), zero when absent.
func (m *DeliveryMatrix) Value(customer, day string) decimal.Decimal {
	return m.cells[customer][day]
}

func (m *DeliveryMatrix) RowTotal(customer string) decimal.Decimal {
	return m.rowTotals[customer]
}

func (m *DeliveryMatrix) ColumnTotal(day string) decimal.Decimal {
	return m.columnTotals[day]
}

func (m *DeliveryMatrix) GrandTotal() decimal.Decimal {
	return m.grandTotal
}

// WriteCSV writes the header (Customer, days, Total), one row per customer
// and a closing totals row. encoding/csv quotes names with commas or quotes.
func (m *DeliveryMatrix) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	for _, record := range m.csvRecords() {
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteMatricesCSV writes every partition one after another, each preceded by
// its container name and separated by a blank line.
func WriteMatricesCSV(w io.Writer, matrices []*DeliveryMatrix) error {
	cw := csv.NewWriter(w)
	for i, m := range matrices {
		if i > 0 {
			if err := cw.Write([]string{""}); err != nil {
				return err
			}
		}
		if err := cw.Write([]string{m.ContainerName}); err != nil {
			return err
		}
		for _, record := range m.csvRecords() {
			if err := cw.Write(record); err != nil {
				return err
			}
		}
	}
	cw.Flush()
	return cw.Error()
}

func (m *DeliveryMatrix) csvRecords() [][]string {
	records := make([][]string, 0, len(m.Customers)+2)

	header := make([]string, 0, len(m.Dates)+2)
	header = append(header, "Customer")
	header = append(header, m.Dates...)
	header = append(header, "Total")
	records = append(records, header)

	for _, customer := range m.Customers {
		row := make([]string, 0, len(m.Dates)+2)
		row = append(row, customer)
		for _, day := range m.Dates {
			row = append(row, m.Value(customer, day).String())
		}
		row = append(row, m.RowTotal(customer).String())
		records = append(records, row)
	}

	totals := make([]string, 0, len(m.Dates)+2)
	totals = append(totals, "Total")
	for _, day := range m.Dates {
		totals = append(totals, m.ColumnTotal(day).String())
	}
	totals = append(totals, m.grandTotal.String())
	return append(records, totals)
}

type matrixRowJSON struct {
	Customer string          `json:"customer"`
	Values   []models.Number `json:"values"`
	Total    models.Number   `json:"total"`
}

type matrixJSON struct {
	ContainerID   models.ID       `json:"container_id"`
	ContainerName string          `json:"container_name"`
	Dates         []string        `json:"dates"`
	Rows          []matrixRowJSON `json:"rows"`
	ColumnTotals  []models.Number `json:"column_totals"`
	GrandTotal    models.Number   `json:"grand_total"`
}

// MarshalJSON renders the dense grid the table view consumes.
func (m *DeliveryMatrix) MarshalJSON() ([]byte, error) {
	out := matrixJSON{
		ContainerID:   m.ContainerID,
		ContainerName: m.ContainerName,
		Dates:         m.Dates,
		Rows:          make([]matrixRowJSON, 0, len(m.Customers)),
		ColumnTotals:  make([]models.Number, 0, len(m.Dates)),
		GrandTotal:    models.NewNumber(m.grandTotal),
	}
	if out.Dates == nil {
		out.Dates = []string{}
	}
	for _, customer := range m.Customers {
		row := matrixRowJSON{
			Customer: customer,
			Values:   make([]models.Number, 0, len(m.Dates)),
			Total:    models.NewNumber(m.RowTotal(customer)),
		}
		for _, day := range m.Dates {
			row.Values = append(row.Values, models.NewNumber(m.Value(customer, day)))
		}
		out.Rows = append(out.Rows, row)
	}
	for _, day := range m.Dates {
		out.ColumnTotals = append(out.ColumnTotals, models.NewNumber(m.ColumnTotal(day)))
	}
	return json.Marshal(out)
}

// FlattenTrips expands driver trips into delivery records, one per trip item.
func FlattenTrips(trips []models.Trip) []models.DeliveryRecord {
	var records []models.DeliveryRecord
	for _, trip := range trips {
		for _, item := range trip.Items {
			records = append(records, models.DeliveryRecord{
				CustomerName:      trip.ClientName,
				ContainerID:       item.ContainerID,
				ContainerName:     item.ContainerName,
				Date:              trip.TripDate,
				DeliveredQuantity: item.Delivered,
			})
		}
	}
	return records
}

// DayTotal is the delivered quantity on one calendar day.
type DayTotal struct {
	Date     string        `json:"date"`
	Quantity models.Number `json:"quantity"`
}

// DailyTotals buckets records by local calendar day, ascending.
func DailyTotals(records []models.DeliveryRecord, loc *time.Location) []DayTotal {
	sums := make(map[string]decimal.Decimal)
	for _, rec := range records {
		day := rec.Date.DayKey(loc)
		sums[day] = sums[day].Add(rec.DeliveredQuantity.Decimal)
	}
	out := make([]DayTotal, 0, len(sums))
	for day, qty := range sums {
		out = append(out, DayTotal{Date: day, Quantity: models.NewNumber(qty)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}
