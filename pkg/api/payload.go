package api

import (
	"encoding/json"
	"fmt"
	"time"
)

// ReviewPayload carries everything the manual-review flow needs to
// re-run extraction and prefill a transaction form. It is serialized
// into the prompt notification and deserialized later, so the wire
// format keeps the date as ISO-8601 with second precision.
type ReviewPayload struct {
	AppName string
	Title   string
	Body    string
	Date    time.Time
}

type reviewPayloadJSON struct {
	AppName string `json:"appName"`
	Title   string `json:"title"`
	Body    string `json:"body"`
	Date    string `json:"date"`
}

// MarshalJSON encodes the payload with the date truncated to seconds.
func (p ReviewPayload) MarshalJSON() ([]byte, error) {
	return json.Marshal(reviewPayloadJSON{
		AppName: p.AppName,
		Title:   p.Title,
		Body:    p.Body,
		Date:    p.Date.Truncate(time.Second).Format(time.RFC3339),
	})
}

// UnmarshalJSON decodes a payload produced by MarshalJSON.
func (p *ReviewPayload) UnmarshalJSON(data []byte) error {
	var raw reviewPayloadJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("decoding review payload: %w", err)
	}

	date, err := time.Parse(time.RFC3339, raw.Date)
	if err != nil {
		return fmt.Errorf("parsing review payload date: %w", err)
	}

	p.AppName = raw.AppName
	p.Title = raw.Title
	p.Body = raw.Body
	p.Date = date
	return nil
}
