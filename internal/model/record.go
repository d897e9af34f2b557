package model

import (
	"fmt"
	"strings"
	"time"
)

// Direction is stored as an integer: 1 for inbound, 0 for outbound.
type Direction int

const (
	Outbound Direction = 0
	Inbound  Direction = 1
)

// ParseDirection accepts "inbound"/"in"/"1" and "outbound"/"out"/"0".
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "inbound", "in", "1":
		return Inbound, nil
	case "outbound", "out", "0":
		return Outbound, nil
	}
	return 0, fmt.Errorf("unknown direction %q", s)
}

func (d Direction) Valid() bool {
	return d == Inbound || d == Outbound
}

func (d Direction) String() string {
	switch d {
	case Inbound:
		return "inbound"
	case Outbound:
		return "outbound"
	}
	return fmt.Sprintf("Direction(%d)", int(d))
}

// Label is the CSV export label.
func (d Direction) Label() string {
	if d == Inbound {
		return "入库"
	}
	return "出库"
}

func (d Direction) MarshalText() ([]byte, error) {
	if !d.Valid() {
		return nil, fmt.Errorf("invalid direction %d", int(d))
	}
	return []byte(d.String()), nil
}

func (d *Direction) UnmarshalText(text []byte) error {
	parsed, err := ParseDirection(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Record is one immutable stock movement. Records are never updated and
// outlive the product they point at.
type Record struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	ProductID uint      `gorm:"column:product_id;not null;index" json:"product_id"`
	Direction Direction `gorm:"column:type;not null" json:"direction"`
	Count     int       `gorm:"not null;check:chk_records_count,count > 0" json:"count"`
	Timestamp int64     `gorm:"not null;index" json:"timestamp"` // unix seconds
	Remark    string    `json:"remark"`

	// Filled by joined reads; empty once the product is deleted.
	ProductName string `gorm:"->;-:migration" json:"product_name"`
}

// Time returns the record timestamp in local time.
func (r *Record) Time() time.Time {
	return time.Unix(r.Timestamp, 0)
}

// StockAdjustment is one request to move stock in or out.
type StockAdjustment struct {
	ProductID uint      `json:"product_id"`
	Count     int       `json:"count" validate:"gt=0"`
	Direction Direction `json:"direction" validate:"oneof=0 1"`
	Remark    string    `json:"remark" validate:"max=500"`
}
