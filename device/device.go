// Package device drives a single Frankly bootloader target over a
// transport.Transport: discovering its flash layout, erasing pages,
// and flashing a parsed Intel HEX image page by page, per spec §4.6
// and §4.10.
package device

import (
	"encoding/binary"
	"fmt"
	"hash/crc32"

	"github.com/pkg/errors"

	"github.com/franklyfw/franklyfw/flash"
	"github.com/franklyfw/franklyfw/flashimage"
	"github.com/franklyfw/franklyfw/hexfile"
	"github.com/franklyfw/franklyfw/progress"
	"github.com/franklyfw/franklyfw/transport"
	"github.com/franklyfw/franklyfw/wire"
)

// Device is a handle to one bootloader target reachable through a
// transport.Transport. It is not safe for concurrent use: callers must
// serialize Init/Reset/Erase/Flash against a single Device.
type Device struct {
	transport transport.Transport
	config    Config

	bootloaderVersion *constEntry
	bootloaderCRC     *constEntry
	vid               *constEntry
	pid               *constEntry
	prd               *constEntry
	uid1              *constEntry
	uid2              *constEntry
	uid3              *constEntry
	uid4              *constEntry
	flashStartAddr    *constEntry
	flashPageSize     *constEntry
	flashPageCount    *constEntry
	appStartPage      *constEntry

	appInfoCRC          *roEntry
	pageBufferClear     *cmdEntry
	pageBufferWriteWord *rwEntry
	pageBufferCalcCRC   *rwEntry
	pageBufferToFlash   *rwEntry
	flashErasePage      *rwEntry
	flashAppCRC         *rwEntry
	resetCmd            *cmdEntry
	startAppCmd         *cmdEntry

	desc      flash.Desc
	descValid bool
}

// New constructs a Device bound to t. Call Init before Erase or Flash.
func New(t transport.Transport, opts ...Option) *Device {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	d := &Device{transport: t, config: cfg}
	d.bootloaderVersion = newConstEntry(d, wire.ReqDevInfoBootloaderVersion)
	d.bootloaderCRC = newConstEntry(d, wire.ReqDevInfoBootloaderCRC)
	d.vid = newConstEntry(d, wire.ReqDevInfoVID)
	d.pid = newConstEntry(d, wire.ReqDevInfoPID)
	d.prd = newConstEntry(d, wire.ReqDevInfoPRD)
	d.uid1 = newConstEntry(d, wire.ReqDevInfoUID1)
	d.uid2 = newConstEntry(d, wire.ReqDevInfoUID2)
	d.uid3 = newConstEntry(d, wire.ReqDevInfoUID3)
	d.uid4 = newConstEntry(d, wire.ReqDevInfoUID4)
	d.flashStartAddr = newConstEntry(d, wire.ReqFlashInfoStartAddr)
	d.flashPageSize = newConstEntry(d, wire.ReqFlashInfoPageSize)
	d.flashPageCount = newConstEntry(d, wire.ReqFlashInfoNumPages)
	d.appStartPage = newConstEntry(d, wire.ReqAppInfoPageIdx)

	d.appInfoCRC = newROEntry(d, wire.ReqAppInfoCRCCalc)
	d.pageBufferClear = newCmdEntry(d, wire.ReqPageBufferClear)
	d.pageBufferWriteWord = newRWEntry(d, wire.ReqPageBufferWriteWord)
	d.pageBufferCalcCRC = newRWEntry(d, wire.ReqPageBufferCalcCRC)
	d.pageBufferToFlash = newRWEntry(d, wire.ReqPageBufferWriteToFlash)
	d.flashErasePage = newRWEntry(d, wire.ReqFlashWriteErasePage)
	d.flashAppCRC = newRWEntry(d, wire.ReqFlashWriteAppCRC)
	d.resetCmd = newCmdEntry(d, wire.ReqResetDevice)
	d.startAppCmd = newCmdEntry(d, wire.ReqStartApp)

	return d
}

// Identity is the device's fixed identity fields, read during Init.
type Identity struct {
	BootloaderVersion      uint32
	BootloaderCRC          uint32
	VID, PID, PRD          uint32
	UID1, UID2, UID3, UID4 uint32
}

// Init reads the device's identity and flash layout, populating the
// flash.Desc that Erase and Flash validate pages against. It must be
// called once before either operation.
func (d *Device) Init() (Identity, error) {
	d.config.Logger.Debug("device: reading identity")
	d.config.Progress(progress.Message("initializing device"))

	var id Identity
	var err error
	if id.BootloaderVersion, err = d.bootloaderVersion.Get(); err != nil {
		return Identity{}, errors.Wrap(err, "read bootloader version")
	}
	if id.BootloaderCRC, err = d.bootloaderCRC.Get(); err != nil {
		return Identity{}, errors.Wrap(err, "read bootloader crc")
	}
	if id.VID, err = d.vid.Get(); err != nil {
		return Identity{}, errors.Wrap(err, "read vid")
	}
	if id.PID, err = d.pid.Get(); err != nil {
		return Identity{}, errors.Wrap(err, "read pid")
	}
	if id.PRD, err = d.prd.Get(); err != nil {
		return Identity{}, errors.Wrap(err, "read prd")
	}
	if id.UID1, err = d.uid1.Get(); err != nil {
		return Identity{}, errors.Wrap(err, "read uid1")
	}
	if id.UID2, err = d.uid2.Get(); err != nil {
		return Identity{}, errors.Wrap(err, "read uid2")
	}
	if id.UID3, err = d.uid3.Get(); err != nil {
		return Identity{}, errors.Wrap(err, "read uid3")
	}
	if id.UID4, err = d.uid4.Get(); err != nil {
		return Identity{}, errors.Wrap(err, "read uid4")
	}

	d.config.Logger.Debug("device: reading flash layout")
	startAddr, err := d.flashStartAddr.Get()
	if err != nil {
		return Identity{}, errors.Wrap(err, "read flash start address")
	}
	pageSize, err := d.flashPageSize.Get()
	if err != nil {
		return Identity{}, errors.Wrap(err, "read flash page size")
	}
	pageCount, err := d.flashPageCount.Get()
	if err != nil {
		return Identity{}, errors.Wrap(err, "read flash page count")
	}
	appStartPage, err := d.appStartPage.Get()
	if err != nil {
		return Identity{}, errors.Wrap(err, "read application start page")
	}

	desc, err := flash.NewDesc(startAddr, pageSize, pageCount, appStartPage)
	if err != nil {
		return Identity{}, errors.Wrap(err, "build flash descriptor")
	}
	d.desc = desc
	d.descValid = true

	d.config.Logger.Info("device initialized",
		"vid", id.VID, "pid", id.PID, "prd", id.PRD,
		"page_size", pageSize, "page_count", pageCount, "app_start_page", appStartPage,
	)
	d.config.Progress(progress.Message("device initialized (vid=0x%04X pid=0x%04X)", id.VID, id.PID))
	return id, nil
}

// Desc returns the flash descriptor discovered by Init. Init must have
// succeeded first.
func (d *Device) Desc() (flash.Desc, error) {
	if !d.descValid {
		return flash.Desc{}, &Error{Op: "Desc", Msg: "device not initialized, call Init first"}
	}
	return d.desc, nil
}

// Reset asks the device to reset. A ComNoResponse is treated as success:
// the device may reset before it can answer.
func (d *Device) Reset() error {
	d.config.Logger.Debug("device: resetting")
	_, err := d.resetCmd.Run(0, 0)
	return softOnNoResponse(err)
}

// StartApp asks the device to exit the bootloader and jump to the
// application. A ComNoResponse is treated as success for the same
// reason as Reset.
func (d *Device) StartApp() error {
	d.config.Logger.Debug("device: starting application")
	_, err := d.startAppCmd.Run(0, 0)
	return softOnNoResponse(err)
}

func softOnNoResponse(err error) error {
	if _, ok := err.(*ComNoResponse); ok {
		return nil
	}
	return err
}

// Erase erases every application-section page on the device, in
// ascending order, reporting progress through the configured sink.
// Init must have succeeded first.
func (d *Device) Erase() error {
	if !d.descValid {
		return &Error{Op: "Erase", Msg: "device not initialized, call Init first"}
	}

	pages := d.desc.ApplicationPages()
	d.config.Logger.Info("device: erasing application section", "pages", len(pages))

	for i, page := range pages {
		echoed, err := d.flashErasePage.Set(0, page)
		if err != nil {
			return errors.Wrapf(err, "erase page %d", page)
		}
		if echoed != page {
			return &Error{Op: "Erase", Msg: "device echoed unexpected page index after erase"}
		}
		d.config.Progress(progress.Erase(page, i+1, len(pages)))
	}
	return nil
}

// Flash partitions fw into application-section pages and writes each
// one through the page-buffer pipeline: clear, buffer, verify-by-CRC,
// erase (unless disabled with WithEraseBeforeFlash(false)), commit.
// After every page is committed, it verifies the whole application's
// CRC against the device's own recomputation and persists it. Flash does
// not send StartApp. Init must have succeeded first.
func (d *Device) Flash(fw hexfile.Data) error {
	if !d.descValid {
		return &Error{Op: "Flash", Msg: "device not initialized, call Init first"}
	}

	image, err := flashimage.Build(fw, d.desc)
	if err != nil {
		return errors.Wrap(err, "build flash image")
	}

	totalBytes := len(image) * int(d.desc.PageSize)
	bytesSent := 0

	for i, page := range image {
		if err := d.bufferPage(page); err != nil {
			return errors.Wrapf(err, "buffer page %d", page.Index)
		}

		if d.config.EraseBeforeFlash {
			if _, err := d.flashErasePage.Set(0, page.Index); err != nil {
				return errors.Wrapf(err, "erase page %d before flashing", page.Index)
			}
		}

		resp, err := d.pageBufferToFlash.SetMatch(0, page.Index)
		if err != nil {
			return errors.Wrapf(err, "commit page %d", page.Index)
		}
		if resp.Data != page.Index {
			return &Error{Op: "Flash", Msg: "device echoed unexpected page index after commit"}
		}

		bytesSent += len(page.Bytes)
		d.config.Progress(progress.Flash(page.Index, i+1, len(image), bytesSent, totalBytes))
	}

	return d.verifyApplicationCRC(fw)
}

// bufferPage clears the device's page buffer, writes page's bytes into
// it one word at a time, then asks the device to confirm its CRC
// matches what was sent before the caller commits it to flash.
func (d *Device) bufferPage(page flashimage.Page) error {
	if _, err := d.pageBufferClear.Run(0, 0); err != nil {
		return errors.Wrap(err, "clear page buffer")
	}

	words := len(page.Bytes) / 4
	for w := 0; w < words; w++ {
		word := binary.LittleEndian.Uint32(page.Bytes[w*4 : w*4+4])
		if _, err := d.pageBufferWriteWord.Set(uint8(w), word); err != nil {
			return errors.Wrapf(err, "write word %d", w)
		}
	}

	expectedCRC := crc32.ChecksumIEEE(page.Bytes)
	if _, err := d.pageBufferCalcCRC.SetMatch(0, expectedCRC); err != nil {
		return errors.Wrap(err, "verify buffered page crc")
	}
	return nil
}

// verifyApplicationCRC computes CRC-32/ISO-HDLC over the whole
// application section as flashimage.BuildSpan lays it out (fw's pages,
// plus erased fill for every application page fw does not touch), reads the device's
// own recomputation of that CRC, and compares them host-side before
// persisting it to the device's CRC slot.
func (d *Device) verifyApplicationCRC(fw hexfile.Data) error {
	span, err := flashimage.BuildSpan(fw, d.desc)
	if err != nil {
		return errors.Wrap(err, "build verification span")
	}
	expected := crc32.ChecksumIEEE(span.Linearize())

	got, err := d.appInfoCRC.Get()
	if err != nil {
		return errors.Wrap(err, "read application crc")
	}
	if got != expected {
		return &Error{Op: "Flash", Msg: fmt.Sprintf("application crc mismatch: device=0x%08X host=0x%08X", got, expected)}
	}

	if _, err := d.flashAppCRC.Set(0, expected); err != nil {
		return errors.Wrap(err, "persist application crc")
	}
	return nil
}
