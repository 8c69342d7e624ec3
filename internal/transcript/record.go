package transcript

// UnitRecord is one unit enrollment taken from a transcript.
// Mark and CreditPoints are kept as text; an empty string means the value
// could not be recovered from the source line.
type UnitRecord struct {
	UnitCode     string `csv:"unit_code" json:"unit_code"`
	UnitName     string `csv:"unit_name" json:"unit_name"`
	Mark         string `csv:"mark" json:"mark"`
	Grade        string `csv:"grade" json:"grade"`
	CreditPoints string `csv:"credit_points" json:"credit_points"`
	Degree       string `csv:"degree" json:"degree"`
	Semester     string `csv:"semester" json:"semester"`
	Year         string `csv:"year" json:"year"`
}

var header = []string{
	"unit_code",
	"unit_name",
	"mark",
	"grade",
	"credit_points",
	"degree",
	"semester",
	"year",
}

// Header returns the export column names in schema order.
func Header() []string {
	out := make([]string, len(header))
	copy(out, header)
	return out
}

// Values returns the record's fields in the same order as Header.
func (r UnitRecord) Values() []string {
	return []string{
		r.UnitCode,
		r.UnitName,
		r.Mark,
		r.Grade,
		r.CreditPoints,
		r.Degree,
		r.Semester,
		r.Year,
	}
}

// blockContext is the year/degree/semester every record in a semester
// block inherits.
type blockContext struct {
	Year     string
	Degree   string
	Semester string
}

func (c blockContext) record() UnitRecord {
	return UnitRecord{Degree: c.Degree, Semester: c.Semester, Year: c.Year}
}
