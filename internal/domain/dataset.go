package domain

import "slices"

// Record is one accepted dataset row.
type Record struct {
	Location string
	Time     int
	Value    float64
	Raw      []string // every column as read, in header order
}

// RowSet is the raw-row view of one location, including columns the engine
// does not interpret.
type RowSet struct {
	Location string     `json:"location"`
	Header   []string   `json:"header"`
	Rows     [][]string `json:"rows"`
}

// Dataset is the immutable in-memory table built by the loader. All accessors
// return copies; nothing handed out aliases the internal storage.
type Dataset struct {
	header   []string
	records  []Record
	rejected int
}

// NewDataset takes ownership of a deep copy of header and records.
func NewDataset(header []string, records []Record, rejected int) *Dataset {
	owned := make([]Record, len(records))
	for i, r := range records {
		r.Raw = slices.Clone(r.Raw)
		owned[i] = r
	}
	return &Dataset{
		header:   slices.Clone(header),
		records:  owned,
		rejected: rejected,
	}
}

// Len returns the number of accepted records.
func (d *Dataset) Len() int {
	return len(d.records)
}

// Rejected returns the number of rows dropped at load time.
func (d *Dataset) Rejected() int {
	return d.rejected
}

// Header returns the column names in file order.
func (d *Dataset) Header() []string {
	return slices.Clone(d.header)
}

// Locations returns the distinct location keys in first-seen order.
func (d *Dataset) Locations() []string {
	seen := make(map[string]struct{})
	var out []string
	for _, r := range d.records {
		if _, ok := seen[r.Location]; ok {
			continue
		}
		seen[r.Location] = struct{}{}
		out = append(out, r.Location)
	}
	return out
}

// Select returns the observations for key in dataset order. Matching is exact
// and case-sensitive; an unknown key yields an empty Series.
func (d *Dataset) Select(key string) Series {
	points := []Point{}
	for _, r := range d.records {
		if r.Location == key {
			points = append(points, Point{Time: r.Time, Value: r.Value})
		}
	}
	return Series{Location: key, Points: points}
}

// Rows returns the raw rows for key with every column preserved.
func (d *Dataset) Rows(key string) RowSet {
	rows := [][]string{}
	for _, r := range d.records {
		if r.Location == key {
			rows = append(rows, slices.Clone(r.Raw))
		}
	}
	return RowSet{Location: key, Header: d.Header(), Rows: rows}
}
