package audit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

const (
	timeout = time.Second
	tick    = 5 * time.Millisecond
)

func TestBuildRow(t *testing.T) {
	user := uint(3)
	record := uint(17)

	row := BuildRow(Entry{
		UserID:   &user,
		Action:   "CREATE",
		Table:    "payments",
		RecordID: &record,
		Data:     map[string]any{"status": "pending", "amount": "100.00"},
	})

	assert.Equal(t, "CREATE", row.Action)
	assert.Equal(t, "payments", row.TableName)
	assert.Equal(t, &record, row.RecordID)
	assert.JSONEq(t, `{"status":"pending","amount":"100.00"}`, string(row.NewData))
}

func TestBuildRowWithoutData(t *testing.T) {
	row := BuildRow(Entry{Action: "DELETE", Table: "clients"})
	assert.Nil(t, row.NewData)
}

func TestBuildRowUnmarshalableData(t *testing.T) {
	row := BuildRow(Entry{Action: "CREATE", Data: make(chan int)})
	assert.Nil(t, row.NewData)
}
