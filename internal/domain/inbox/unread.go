// Package inbox holds the read/unread and assignment rules shared by the
// three chat surfaces. Everything here is pure; persistence lives in the
// repositories.
package inbox

import (
	"time"

	"github.com/Elmalamb/vdm/internal/domain/entity"
)

// Latest returns the most recent message of log by timestamp. Messages whose
// timestamp has not been assigned yet are treated as written at now.
func Latest(log []*entity.Message, now time.Time) *entity.Message {
	var latest *entity.Message
	var latestAt time.Time
	for _, m := range log {
		if m == nil {
			continue
		}
		at := effectiveTime(m, now)
		if latest == nil || !at.Before(latestAt) {
			latest, latestAt = m, at
		}
	}
	return latest
}

// ComputeUnread reports whether side has a message it has not read yet: the
// latest message was written by another side after side's watermark.
//
// The log is authoritative. conv.LastMessageTimestamp is never consulted, so a
// summary that lags the log does not hide an unread message.
func ComputeUnread(conv *entity.Conversation, log []*entity.Message, side string, now time.Time) bool {
	latest := Latest(log, now)
	if latest == nil {
		return false
	}
	if latest.SenderSide == side {
		return false
	}
	return effectiveTime(latest, now).After(conv.Watermark(side))
}

func effectiveTime(m *entity.Message, now time.Time) time.Time {
	if m.Pending() {
		return now
	}
	return m.Timestamp
}
