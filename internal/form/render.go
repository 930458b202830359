package form

import (
	"fmt"
	"io"
	"time"
)

// timestampLayouts are tried in order when parsing a result timestamp.
// Langflow messages use the space separated form, in UTC.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05 MST",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
}

// displayLayout mirrors a browser's en-US locale string.
const displayLayout = "1/2/2006, 3:04:05 PM"

// FormatTimestamp renders ts in loc. A value that cannot be parsed is
// returned unchanged.
func FormatTimestamp(ts string, loc *time.Location) string {
	loc = orLocal(loc)
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, ts); err == nil {
			return t.In(loc).Format(displayLayout)
		}
	}
	return ts
}

// Render writes the state for a terminal: a loading line, an error, or the
// generated text with its timestamp.
func Render(w io.Writer, s State, loc *time.Location) error {
	var err error
	switch {
	case s.Loading:
		_, err = fmt.Fprintln(w, "Processing...")
	case s.Error != "":
		_, err = fmt.Fprintf(w, "Error: %s\n", s.Error)
	case s.Result != nil:
		text := s.Result.Message.Text
		if text == "" {
			text = string(s.Result.Payload)
		}
		_, err = fmt.Fprintf(w, "Generated Response\n\n%s\n\n", text)
		if err != nil {
			return err
		}
		if ts := s.Result.Message.Timestamp; ts != "" {
			_, err = fmt.Fprintf(w, "Generated at: %s\n", FormatTimestamp(ts, loc))
		} else if !s.Result.ReceivedAt.IsZero() {
			_, err = fmt.Fprintf(w, "Received at: %s\n", s.Result.ReceivedAt.In(orLocal(loc)).Format(displayLayout))
		}
	}
	return err
}

func orLocal(loc *time.Location) *time.Location {
	if loc == nil {
		return time.Local
	}
	return loc
}
