// Package progress defines the tagged update type a Device reports
// operation progress through, per spec §3 and §4.11.
package progress

import "fmt"

// Kind tags which field of an Update is populated.
type Kind int

const (
	// KindMessage carries a free-form status line.
	KindMessage Kind = iota
	// KindErase carries erase-phase progress.
	KindErase
	// KindFlash carries flash-phase progress.
	KindFlash
)

func (k Kind) String() string {
	switch k {
	case KindMessage:
		return "message"
	case KindErase:
		return "erase"
	case KindFlash:
		return "flash"
	default:
		return "unknown"
	}
}

// EraseProgress reports how many of a device's application pages have
// been erased so far.
type EraseProgress struct {
	Page       uint32
	PageCount  int
	TotalPages int
}

// FlashProgress reports how many pages of a firmware image have been
// written and verified so far.
type FlashProgress struct {
	Page       uint32
	PageIndex  int
	TotalPages int
	BytesSent  int
	TotalBytes int
}

// Update is one progress event. Exactly one of Message, Erase, or Flash
// is meaningful, selected by Kind.
type Update struct {
	Kind    Kind
	Message string
	Erase   EraseProgress
	Flash   FlashProgress
}

// String renders the update for logging or a plain-text progress line.
func (u Update) String() string {
	switch u.Kind {
	case KindMessage:
		return u.Message
	case KindErase:
		return fmt.Sprintf("erasing page %d (%d/%d)", u.Erase.Page, u.Erase.PageCount, u.Erase.TotalPages)
	case KindFlash:
		return fmt.Sprintf("flashing page %d (%d/%d, %d/%d bytes)",
			u.Flash.Page, u.Flash.PageIndex, u.Flash.TotalPages, u.Flash.BytesSent, u.Flash.TotalBytes)
	default:
		return ""
	}
}

// Message builds a KindMessage update.
func Message(format string, args ...interface{}) Update {
	return Update{Kind: KindMessage, Message: fmt.Sprintf(format, args...)}
}

// Erase builds a KindErase update.
func Erase(page uint32, pageCount, totalPages int) Update {
	return Update{Kind: KindErase, Erase: EraseProgress{Page: page, PageCount: pageCount, TotalPages: totalPages}}
}

// Flash builds a KindFlash update.
func Flash(page uint32, pageIndex, totalPages, bytesSent, totalBytes int) Update {
	return Update{
		Kind: KindFlash,
		Flash: FlashProgress{
			Page: page, PageIndex: pageIndex, TotalPages: totalPages,
			BytesSent: bytesSent, TotalBytes: totalBytes,
		},
	}
}

// Sink receives progress updates. Implementations must return quickly;
// Device calls Sink synchronously from whichever goroutine drives the
// operation.
type Sink func(Update)

// Discard is a Sink that ignores every update.
func Discard(Update) {}
