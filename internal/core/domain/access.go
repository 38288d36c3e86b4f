package domain

import (
	"fmt"
	"time"
)

// AccessLogColumns is the fixed header row of the persisted access log.
var AccessLogColumns = []string{"Name", "Email", "Material"}

const MessageMissingIdentity = "Please enter both Name and Email."

type AccessRecord struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Material string `json:"material"`
}

func (r AccessRecord) Row() []string {
	return []string{r.Name, r.Email, r.Material}
}

type AccessLog struct {
	Exists  bool           `json:"exists"`
	Records []AccessRecord `json:"records"`
}

type RecordResult struct {
	OK      bool   `json:"ok"`
	Message string `json:"message"`
}

func AccessRecordedMessage(name string) string {
	return fmt.Sprintf("Access recorded for %s.", name)
}

// AccessRecorded is the event emitted after a record is durably appended.
type AccessRecorded struct {
	AccessRecord
	RecordedAt time.Time `json:"recorded_at"`
}
