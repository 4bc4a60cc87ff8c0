package quadbatch

// Record is the logical state of one sprite or tile cell. Records are owned
// by the caller; expansion only reads them.
type Record struct {
	Translate [3]float32
	Rotate    [3]float32 // Rotate[2] is the in-plane angle in radians
	Scale     [3]float32
	Color     Color
	Frame     int
	Flags     uint8
}

// DefaultRecord returns a record with unit scale and a white tint.
func DefaultRecord() Record {
	return Record{Scale: [3]float32{1, 1, 1}, Color: ColorWhite}
}

// RecordSource yields entity records by index. The number of records is fixed
// for the lifetime of the mesh reading them.
type RecordSource interface {
	Len() int
	Record(i int) *Record
}

// CornerColorSource is implemented by sources that supply a distinct color per
// quad corner. When ok is false the record's Color is broadcast instead.
type CornerColorSource interface {
	CornerColors(i int) (colors [4]Color, ok bool)
}

// Records is a slice-backed RecordSource.
type Records []Record

// NewRecords returns n default records.
func NewRecords(n int) Records {
	r := make(Records, n)
	for i := range r {
		r[i] = DefaultRecord()
	}
	return r
}

func (r Records) Len() int             { return len(r) }
func (r Records) Record(i int) *Record { return &r[i] }
