package transcript

import (
	"strings"

	"aria-support-chat/internal/domain/model"
)

const (
	csvHeader = "User ID,Name,Email,Session Start,Role,Message,Time\n"
	isoMillis = "2006-01-02T15:04:05.000Z07:00"
)

var flatten = strings.NewReplacer("\r\n", " ", "\r", " ", "\n", " ")

// appendRows renders one row per message. The message column is always
// quoted; the others only when they would break the row.
func appendRows(buf []byte, snap *model.Snapshot) []byte {
	lead := strings.Join([]string{
		field(snap.UserID),
		field(snap.UserInfo.Name),
		field(snap.UserInfo.Email),
		field(snap.StartTime.UTC().Format(isoMillis)),
	}, ",")
	for _, m := range snap.Messages {
		buf = append(buf, lead...)
		buf = append(buf, ',')
		buf = append(buf, field(string(m.Role))...)
		buf = append(buf, ',')
		buf = append(buf, quote(flatten.Replace(m.Content))...)
		buf = append(buf, ',')
		buf = append(buf, field(m.Timestamp.UTC().Format(isoMillis))...)
		buf = append(buf, '\n')
	}
	return buf
}

func field(s string) string {
	if strings.ContainsAny(s, ",\"\r\n") {
		return quote(flatten.Replace(s))
	}
	return s
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
