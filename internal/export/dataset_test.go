package export

import (
	"bytes"
	"testing"
	"time"

	"github.com/aarondl/null/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"hisapi/internal/model"
)

func sampleMessages() []model.Message {
	at := time.Date(2024, 5, 2, 9, 30, 0, 0, time.UTC)
	return []model.Message{
		{ID: 1, HospitalID: 3, SenderID: 10, RecipientID: 11, PatientID: null.Int64From(99), Subject: "Lab results", IsRead: true, CreatedAt: at},
		{ID: 2, HospitalID: 3, SenderID: 11, RecipientID: 10, Subject: "Re: Lab results", CreatedAt: at},
	}
}

func TestFromRows(t *testing.T) {
	d := FromRows("messages", sampleMessages())

	assert.Equal(t, "messages", d.Sheet)
	assert.Equal(t, []string{"ID", "Hospital", "Sender", "Recipient", "Patient", "Subject", "Read", "Created"}, d.Headers)
	require.Len(t, d.Rows, 2)
	assert.Equal(t, int64(99), d.Rows[0][4])
	assert.Equal(t, "", d.Rows[1][4])

	empty := FromRows[model.Message]("messages", nil)
	assert.Len(t, empty.Headers, 8)
	assert.Empty(t, empty.Rows)
}

func TestDataset_Select(t *testing.T) {
	d := FromRows("messages", sampleMessages())

	sel, err := d.Select([]string{"subject", " ID "})
	require.NoError(t, err)
	assert.Equal(t, []string{"Subject", "ID"}, sel.Headers)
	assert.Equal(t, []any{"Lab results", int64(1)}, sel.Rows[0])

	all, err := d.Select(nil)
	require.NoError(t, err)
	assert.Equal(t, d.Headers, all.Headers)

	_, err = d.Select([]string{"password"})
	assert.ErrorContains(t, err, `unknown column "password"`)
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	sel, err := FromRows("messages", sampleMessages()).Select([]string{"ID", "Subject", "Read"})
	require.NoError(t, err)

	require.NoError(t, Write(&buf, model.FormatCSV, sel))
	assert.Equal(t, "ID,Subject,Read\n1,Lab results,yes\n2,Re: Lab results,no\n", buf.String())
}

func TestWriteXLSX(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, model.FormatXLSX, FromRows("messages", sampleMessages())))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("messages")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Subject", rows[0][5])
	assert.Equal(t, "Lab results", rows[1][5])
	assert.Equal(t, "2024-05-02 09:30", rows[2][7])
}

func TestWrite_UnknownFormat(t *testing.T) {
	err := Write(&bytes.Buffer{}, "pdf", Dataset{})
	assert.ErrorContains(t, err, "unsupported")
}

func TestContentType(t *testing.T) {
	assert.Equal(t, "text/csv", ContentType(model.FormatCSV))
	assert.Contains(t, ContentType(model.FormatXLSX), "spreadsheetml")
}
