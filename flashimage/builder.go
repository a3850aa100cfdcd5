package flashimage

import (
	"fmt"
	"sort"

	"github.com/franklyfw/franklyfw/flash"
	"github.com/franklyfw/franklyfw/hexfile"
)

// ErasedFill is the value flash reads as when never written.
const ErasedFill = 0xFF

// Page is one page-sized, word-aligned, default-filled chunk of the
// application image.
type Page struct {
	// Index is the page's index in the device's flash, always within
	// the application section.
	Index uint32

	// Bytes is exactly desc.PageSize bytes long.
	Bytes []byte
}

// Image is an ordered sequence of pages, ascending by Index. Only pages
// that contain at least one byte from the source data are present.
type Image []Page

// OutOfRangeError indicates a byte in the source data falls within a
// page outside the device's application section.
type OutOfRangeError struct {
	Address uint32
	Page    uint32
}

func (e *OutOfRangeError) Error() string {
	return fmt.Sprintf("flashimage: address 0x%08X (page %d) is outside the application section", e.Address, e.Page)
}

// Build partitions data into application-section pages, filling any byte
// position absent from data but within a touched page with ErasedFill.
func Build(data hexfile.Data, desc flash.Desc) (Image, error) {
	pageBytes := make(map[uint32]map[uint32]byte)

	for addr, b := range data {
		page := desc.AddressPage(addr)
		if !desc.IsApplicationPage(page) {
			return nil, &OutOfRangeError{Address: addr, Page: page}
		}
		bucket, ok := pageBytes[page]
		if !ok {
			bucket = make(map[uint32]byte)
			pageBytes[page] = bucket
		}
		bucket[addr] = b
	}

	indices := make([]uint32, 0, len(pageBytes))
	for idx := range pageBytes {
		indices = append(indices, idx)
	}
	sort.Slice(indices, func(i, j int) bool { return indices[i] < indices[j] })

	image := make(Image, 0, len(indices))
	for _, idx := range indices {
		base := desc.PageAddress(idx)
		bytes := make([]byte, desc.PageSize)
		for i := range bytes {
			bytes[i] = ErasedFill
		}
		for addr, b := range pageBytes[idx] {
			bytes[addr-base] = b
		}
		image = append(image, Page{Index: idx, Bytes: bytes})
	}

	return image, nil
}

// Linearize concatenates the image's pages in ascending order, producing
// the contiguous byte sequence a whole-application CRC is computed over.
// Pages not present in the image (never touched by the source data) are
// not represented — callers wanting a full-span image should use
// BuildSpan instead.
func (img Image) Linearize() []byte {
	var out []byte
	for _, p := range img {
		out = append(out, p.Bytes...)
	}
	return out
}

// BuildSpan is like Build, but fills every page in the application
// section [desc.AppStartPage, desc.PageCount), not only pages containing
// source bytes. This is what a whole-image CRC comparison (spec §4.10
// step 3) needs: the device recomputes AppInfoCRCCalc over every
// application page it owns, regardless of which pages the latest image
// touched.
func BuildSpan(data hexfile.Data, desc flash.Desc) (Image, error) {
	sparse, err := Build(data, desc)
	if err != nil {
		return nil, err
	}

	have := make(map[uint32]Page, len(sparse))
	for _, p := range sparse {
		have[p.Index] = p
	}

	image := make(Image, 0, desc.PageCount-desc.AppStartPage)
	for idx := desc.AppStartPage; idx < desc.PageCount; idx++ {
		if p, ok := have[idx]; ok {
			image = append(image, p)
			continue
		}
		bytes := make([]byte, desc.PageSize)
		for i := range bytes {
			bytes[i] = ErasedFill
		}
		image = append(image, Page{Index: idx, Bytes: bytes})
	}
	return image, nil
}
