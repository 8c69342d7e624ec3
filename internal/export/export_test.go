package export

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/dgallion1/transcriptr/internal/transcript"
)

func sampleRecords() []transcript.UnitRecord {
	return []transcript.UnitRecord{
		{UnitCode: "COM101", UnitName: "Algorithms", Mark: "85", Grade: "HD", CreditPoints: "12.5", Degree: "Bachelor of Science", Semester: "Semester 1", Year: "2019"},
		{UnitCode: "MAT201", UnitName: "Linear Algebra, Part 1", Grade: "WW", CreditPoints: "12.5", Degree: "Bachelor of Science", Semester: "Semester 2", Year: "2019"},
		{UnitName: "UP Unit with no code", Degree: "Bachelor of Arts", Semester: "Summer School", Year: "2020"},
	}
}

func TestParseFormat(t *testing.T) {
	t.Run("accepts known formats", func(t *testing.T) {
		for in, want := range map[string]Format{
			"csv":   FormatCSV,
			"CSV":   FormatCSV,
			".csv":  FormatCSV,
			"xlsx":  FormatXLSX,
			" XLSX": FormatXLSX,
		} {
			got, err := ParseFormat(in)
			require.NoError(t, err, in)
			assert.Equal(t, want, got, in)
		}
	})

	t.Run("rejects unknown formats", func(t *testing.T) {
		_, err := ParseFormat("json")
		assert.ErrorIs(t, err, ErrUnknownFormat)
	})
}

func TestFormat_Metadata(t *testing.T) {
	assert.Equal(t, ".csv", FormatCSV.Extension())
	assert.Equal(t, ".xlsx", FormatXLSX.Extension())
	assert.Contains(t, FormatCSV.ContentType(), "text/csv")
	assert.Contains(t, FormatXLSX.ContentType(), "spreadsheetml")
}

func TestWriteCSV(t *testing.T) {
	t.Run("writes header then rows in order", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, WriteCSV(&buf, sampleRecords()))

		lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
		require.Len(t, lines, 4)
		assert.Equal(t, strings.Join(transcript.Header(), ","), lines[0])
		assert.Equal(t, "COM101,Algorithms,85,HD,12.5,Bachelor of Science,Semester 1,2019", lines[1])
		assert.Equal(t, `MAT201,"Linear Algebra, Part 1",,WW,12.5,Bachelor of Science,Semester 2,2019`, lines[2])
		assert.Equal(t, ",UP Unit with no code,,,,Bachelor of Arts,Summer School,2020", lines[3])
	})

	t.Run("empty input still has a header", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, WriteCSV(&buf, nil))
		assert.Equal(t, strings.Join(transcript.Header(), ",")+"\n", buf.String())
	})
}

func TestReadCSV_RoundTripPreservesOrder(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, sampleRecords()))

	got, err := ReadCSV(&buf)
	require.NoError(t, err)
	assert.Equal(t, sampleRecords(), got)
}

func TestWriteXLSX(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, sampleRecords()))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(sheetName)
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, transcript.Header(), rows[0])
	assert.Equal(t, sampleRecords()[0].Values(), rows[1])
	assert.Equal(t, "Linear Algebra, Part 1", rows[2][1])
	assert.Equal(t, "", rows[2][2])
}

func TestReadXLSX_RoundTripPreservesOrder(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, sampleRecords()))

	got, err := Read(&buf, FormatXLSX)
	require.NoError(t, err)
	assert.Equal(t, sampleRecords(), got)
}

func TestReadXLSX_EmptyWorkbook(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, nil))

	got, err := ReadXLSX(&buf)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestWrite_Dispatch(t *testing.T) {
	var csvBuf, xlsxBuf bytes.Buffer
	require.NoError(t, Write(&csvBuf, FormatCSV, sampleRecords()))
	require.NoError(t, Write(&xlsxBuf, FormatXLSX, sampleRecords()))

	assert.True(t, strings.HasPrefix(csvBuf.String(), "unit_code,"))
	// XLSX is a zip archive.
	assert.True(t, bytes.HasPrefix(xlsxBuf.Bytes(), []byte("PK")))

	err := Write(&bytes.Buffer{}, Format("pdf"), nil)
	assert.ErrorIs(t, err, ErrUnknownFormat)
}
