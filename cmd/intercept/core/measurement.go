package core

import (
	"encoding/json"
	"strconv"
)

// MaxTargets is the fixed number of target slots in every measurement record
const MaxTargets = 20

// FieldsPerSlot is the number of exported values per target slot
const FieldsPerSlot = 8

// OptionalFloat is a numeric field that may be absent (e.g. after a missed detection)
type OptionalFloat struct {
	value float64
	valid bool
}

// Some wraps a present value
func Some(v float64) OptionalFloat {
	return OptionalFloat{value: v, valid: true}
}

// None is the absent value
func None() OptionalFloat {
	return OptionalFloat{}
}

// Get returns the value and whether it is present
func (o OptionalFloat) Get() (float64, bool) {
	return o.value, o.valid
}

// Valid reports whether a value is present
func (o OptionalFloat) Valid() bool {
	return o.valid
}

// String formats the value for tabular export; absent values are empty cells
func (o OptionalFloat) String() string {
	if !o.valid {
		return ""
	}
	return strconv.FormatFloat(o.value, 'g', -1, 64)
}

func (o OptionalFloat) MarshalJSON() ([]byte, error) {
	if !o.valid {
		return []byte("null"), nil
	}
	return json.Marshal(o.value)
}

func (o *OptionalFloat) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*o = None()
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*o = Some(v)
	return nil
}

// TargetSlot is one target's measurement as seen by one sensor
type TargetSlot struct {
	X          OptionalFloat `json:"x"`
	Y          OptionalFloat `json:"y"`
	Z          OptionalFloat `json:"z"`
	MajorAxis  OptionalFloat `json:"major_axis"`
	MinorAxis  OptionalFloat `json:"minor_axis"`
	AngleRad   OptionalFloat `json:"angle_rad"`
	Scatter    OptionalFloat `json:"scatter"`
	Confidence OptionalFloat `json:"confidence"`

	// Class is the ground-truth class of the target behind this slot. It is kept for
	// run statistics and is not part of the exported schema.
	Class TargetClass `json:"-"`
}

// Detected reports whether the slot holds a measurement
func (s TargetSlot) Detected() bool {
	return s.X.Valid()
}

// Fields returns the eight exported values in schema order
func (s TargetSlot) Fields() [FieldsPerSlot]OptionalFloat {
	return [FieldsPerSlot]OptionalFloat{
		s.X, s.Y, s.Z, s.MajorAxis, s.MinorAxis, s.AngleRad, s.Scatter, s.Confidence,
	}
}

// MeasurementRecord is the output of one sensor of one missile at one time step
type MeasurementRecord struct {
	TimeStep  int                    `json:"time_step"`
	MissileID int                    `json:"missile_id"`
	SensorID  int                    `json:"sensor_id"`
	Slots     [MaxTargets]TargetSlot `json:"slots"`
}

// Detections counts the filled slots of a record
func (r MeasurementRecord) Detections() int {
	n := 0
	for _, s := range r.Slots {
		if s.Detected() {
			n++
		}
	}
	return n
}
