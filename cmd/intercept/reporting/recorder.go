package reporting

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/picogrid/interceptor-simulations/cmd/intercept/controllers"
	"github.com/picogrid/interceptor-simulations/cmd/intercept/core"
)

// slot columns are named Target<n>_<field>, the layout replay tools key on
var slotFieldNames = [core.FieldsPerSlot]string{
	"x", "y", "z", "MajorAxis", "MinorAxis", "AngleRad", "Scatter", "Confidence",
}

// CarrierRow is the carrier positions at one tick
type CarrierRow struct {
	TimeStep  int
	Positions []core.Vector3D
}

// MeasurementRecorder accumulates measurement records and carrier positions for export.
// Records are immutable once recorded.
type MeasurementRecorder struct {
	records     []core.MeasurementRecord
	carriers    []CarrierRow
	maxCarriers int
	mu          sync.RWMutex
}

// NewMeasurementRecorder creates an empty recorder
func NewMeasurementRecorder() *MeasurementRecorder {
	return &MeasurementRecorder{}
}

// RecordTick stores the frame's records and carrier positions
func (r *MeasurementRecorder) RecordTick(frame controllers.TickFrame) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.records = append(r.records, frame.Records...)
	r.carriers = append(r.carriers, CarrierRow{
		TimeStep:  frame.TimeStep,
		Positions: append([]core.Vector3D(nil), frame.Carriers...),
	})
	if len(frame.Carriers) > r.maxCarriers {
		r.maxCarriers = len(frame.Carriers)
	}
}

// Rows returns all recorded measurement records in emission order
func (r *MeasurementRecorder) Rows() []core.MeasurementRecord {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]core.MeasurementRecord(nil), r.records...)
}

// CarrierRows returns the recorded carrier positions
func (r *MeasurementRecorder) CarrierRows() []CarrierRow {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]CarrierRow(nil), r.carriers...)
}

// MeasurementHeader is the column layout of the measurement export
func MeasurementHeader() []string {
	header := make([]string, 0, 3+core.MaxTargets*core.FieldsPerSlot)
	header = append(header, "TimeStep", "MissileID", "SensorID")
	for i := 1; i <= core.MaxTargets; i++ {
		for _, name := range slotFieldNames {
			header = append(header, fmt.Sprintf("Target%d_%s", i, name))
		}
	}
	return header
}

// WriteMeasurementsCSV writes every record as one row; absent values are empty cells
func (r *MeasurementRecorder) WriteMeasurementsCSV(w io.Writer) error {
	rows := r.Rows()

	cw := csv.NewWriter(w)
	if err := cw.Write(MeasurementHeader()); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	row := make([]string, 0, 3+core.MaxTargets*core.FieldsPerSlot)
	for _, rec := range rows {
		row = row[:0]
		row = append(row,
			strconv.Itoa(rec.TimeStep),
			strconv.Itoa(rec.MissileID),
			strconv.Itoa(rec.SensorID))
		for _, slot := range rec.Slots {
			for _, f := range slot.Fields() {
				row = append(row, f.String())
			}
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write record: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteCarriersCSV writes one row per tick, padded to the largest carrier count seen
func (r *MeasurementRecorder) WriteCarriersCSV(w io.Writer) error {
	r.mu.RLock()
	rows := append([]CarrierRow(nil), r.carriers...)
	maxCarriers := r.maxCarriers
	r.mu.RUnlock()

	header := []string{"TimeStep"}
	for i := 1; i <= maxCarriers; i++ {
		header = append(header,
			fmt.Sprintf("Carrier%d_X", i),
			fmt.Sprintf("Carrier%d_Y", i),
			fmt.Sprintf("Carrier%d_Z", i))
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for _, cr := range rows {
		row := make([]string, 1, len(header))
		row[0] = strconv.Itoa(cr.TimeStep)
		for i := 0; i < maxCarriers; i++ {
			if i < len(cr.Positions) {
				p := cr.Positions[i]
				row = append(row, formatFloat(p.X), formatFloat(p.Y), formatFloat(p.Z))
			} else {
				row = append(row, "", "", "")
			}
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write carrier row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// ExportMeasurementsCSV writes the measurement export to path, creating parent directories
func (r *MeasurementRecorder) ExportMeasurementsCSV(path string) error {
	return writeFile(path, r.WriteMeasurementsCSV)
}

// ExportCarriersCSV writes the carrier export to path, creating parent directories
func (r *MeasurementRecorder) ExportCarriersCSV(path string) error {
	return writeFile(path, r.WriteCarriersCSV)
}

func writeFile(path string, write func(io.Writer) error) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}

	if err := write(f); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return f.Close()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
