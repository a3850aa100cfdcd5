// Package flash describes a device's flash memory layout: page size,
// page count, and the bootloader/application split, per spec §4.7.
package flash

import "fmt"

// Desc is a device's flash layout, built from the FlashInfo and
// AppInfoPageIdx constants read during Device.Init.
type Desc struct {
	// StartAddr is the first byte address of flash.
	StartAddr uint32

	// PageSize is the number of bytes per page; must be a positive
	// multiple of 4 (word alignment).
	PageSize uint32

	// PageCount is the total number of pages in flash.
	PageCount uint32

	// AppStartPage is the first page index belonging to the
	// application section; AppStartPage <= PageCount.
	AppStartPage uint32
}

// NewDesc validates and constructs a Desc.
func NewDesc(startAddr, pageSize, pageCount, appStartPage uint32) (Desc, error) {
	d := Desc{
		StartAddr:    startAddr,
		PageSize:     pageSize,
		PageCount:    pageCount,
		AppStartPage: appStartPage,
	}
	if pageSize == 0 || pageSize%4 != 0 {
		return Desc{}, fmt.Errorf("flash: page size %d must be a positive multiple of 4", pageSize)
	}
	if appStartPage > pageCount {
		return Desc{}, fmt.Errorf("flash: app start page %d exceeds page count %d", appStartPage, pageCount)
	}
	return d, nil
}

// PageAddress returns the starting byte address of a page.
func (d Desc) PageAddress(page uint32) uint32 {
	return d.StartAddr + page*d.PageSize
}

// AddressPage returns the page index containing a given byte address.
func (d Desc) AddressPage(addr uint32) uint32 {
	return (addr - d.StartAddr) / d.PageSize
}

// IsApplicationPage reports whether a page index falls in the
// application section [AppStartPage, PageCount).
func (d Desc) IsApplicationPage(page uint32) bool {
	return page >= d.AppStartPage && page < d.PageCount
}

// ApplicationPages returns the application page indices in ascending order.
func (d Desc) ApplicationPages() []uint32 {
	pages := make([]uint32, 0, d.PageCount-d.AppStartPage)
	for p := d.AppStartPage; p < d.PageCount; p++ {
		pages = append(pages, p)
	}
	return pages
}

// ApplicationByteRange returns the [start, end) byte range spanned by the
// application section.
func (d Desc) ApplicationByteRange() (start, end uint32) {
	return d.PageAddress(d.AppStartPage), d.PageAddress(d.PageCount)
}
