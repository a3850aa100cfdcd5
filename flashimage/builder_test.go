package flashimage

import (
	"testing"

	"github.com/franklyfw/franklyfw/flash"
	"github.com/franklyfw/franklyfw/hexfile"
)

func testDesc(t *testing.T) flash.Desc {
	t.Helper()
	d, err := flash.NewDesc(0x08000000, 1024, 64, 8)
	if err != nil {
		t.Fatalf("flash.NewDesc() error = %v", err)
	}
	return d
}

func TestBuildSinglePageDefaultFilled(t *testing.T) {
	desc := testDesc(t)
	data := hexfile.Data{desc.PageAddress(8): 0xAB}

	image, err := Build(data, desc)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	if len(image) != 1 {
		t.Fatalf("len(image) = %d, want 1", len(image))
	}
	page := image[0]
	if page.Index != 8 {
		t.Errorf("page.Index = %d, want 8", page.Index)
	}
	if len(page.Bytes) != int(desc.PageSize) {
		t.Fatalf("len(page.Bytes) = %d, want %d", len(page.Bytes), desc.PageSize)
	}
	if page.Bytes[0] != 0xAB {
		t.Errorf("page.Bytes[0] = 0x%02X, want 0xAB", page.Bytes[0])
	}
	for i := 1; i < len(page.Bytes); i++ {
		if page.Bytes[i] != ErasedFill {
			t.Fatalf("page.Bytes[%d] = 0x%02X, want 0xFF (default fill)", i, page.Bytes[i])
		}
	}
}

func TestBuildRejectsBootloaderSectionPage(t *testing.T) {
	desc := testDesc(t)
	data := hexfile.Data{desc.PageAddress(3): 0x01}

	_, err := Build(data, desc)
	if err == nil {
		t.Fatal("Build() should have failed for a bootloader-section address")
	}
	var outOfRange *OutOfRangeError
	if !asOutOfRange(err, &outOfRange) {
		t.Fatalf("Build() error = %v, want *OutOfRangeError", err)
	}
	if outOfRange.Page != 3 {
		t.Errorf("OutOfRangeError.Page = %d, want 3", outOfRange.Page)
	}
}

func asOutOfRange(err error, target **OutOfRangeError) bool {
	oor, ok := err.(*OutOfRangeError)
	if !ok {
		return false
	}
	*target = oor
	return true
}

func TestBuildAscendingOrder(t *testing.T) {
	desc := testDesc(t)
	data := hexfile.Data{
		desc.PageAddress(20): 0x01,
		desc.PageAddress(8):  0x02,
		desc.PageAddress(15): 0x03,
	}

	image, err := Build(data, desc)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if len(image) != 3 {
		t.Fatalf("len(image) = %d, want 3", len(image))
	}
	want := []uint32{8, 15, 20}
	for i, p := range image {
		if p.Index != want[i] {
			t.Errorf("image[%d].Index = %d, want %d", i, p.Index, want[i])
		}
	}
}

func TestBuildSpanCoversWholeApplicationSection(t *testing.T) {
	desc := testDesc(t)
	data := hexfile.Data{
		desc.PageAddress(8):  0x01,
		desc.PageAddress(10): 0x02,
	}

	image, err := BuildSpan(data, desc)
	if err != nil {
		t.Fatalf("BuildSpan() error = %v", err)
	}
	wantLen := int(desc.PageCount - desc.AppStartPage)
	if len(image) != wantLen {
		t.Fatalf("len(image) = %d, want %d (pages %d..%d)", len(image), wantLen, desc.AppStartPage, desc.PageCount-1)
	}
	for i, p := range image {
		if p.Index != desc.AppStartPage+uint32(i) {
			t.Errorf("image[%d].Index = %d, want %d", i, p.Index, desc.AppStartPage+uint32(i))
		}
	}
	// Page 9 was never touched, so it must be entirely erased-fill.
	for _, b := range image[1].Bytes {
		if b != ErasedFill {
			t.Fatalf("untouched page 9 has non-fill byte 0x%02X", b)
		}
	}
	// The last application page (63) is outside every touched page but
	// still within the span a device's whole-application CRC rescans.
	last := image[len(image)-1]
	if last.Index != desc.PageCount-1 {
		t.Fatalf("last page index = %d, want %d", last.Index, desc.PageCount-1)
	}
	for _, b := range last.Bytes {
		if b != ErasedFill {
			t.Fatalf("untouched last page has non-fill byte 0x%02X", b)
		}
	}
}

func TestRoundTripAddressesSurviveBuildAndLinearize(t *testing.T) {
	desc := testDesc(t)
	base := desc.PageAddress(8)
	data := hexfile.Data{
		base:     0xAA,
		base + 1: 0xBB,
		base + 2: 0xCC,
	}

	image, err := Build(data, desc)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	linear := image.Linearize()

	for addr, want := range data {
		offset := addr - base
		if linear[offset] != want {
			t.Errorf("linear[%d] = 0x%02X, want 0x%02X", offset, linear[offset], want)
		}
	}
}
