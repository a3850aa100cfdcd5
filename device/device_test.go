package device_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/franklyfw/franklyfw/device"
	"github.com/franklyfw/franklyfw/flash"
	"github.com/franklyfw/franklyfw/hexfile"
	"github.com/franklyfw/franklyfw/progress"
	"github.com/franklyfw/franklyfw/transport/sim"
)

func newSimDevice(t *testing.T, opts ...device.Option) (*device.Device, flash.Desc) {
	t.Helper()
	desc, err := flash.NewDesc(0x08000000, 1024, 64, 8)
	require.NoError(t, err)

	simDev := sim.NewDevice(sim.Config{
		Identity: sim.Identity{VID: 0x1111, PID: 0x2222, PRD: 1, UID1: 0xABCD},
		Desc:     desc,
		Node:     0,
	})
	tr := sim.New(simDev)
	return device.New(tr, opts...), desc
}

func TestInitPopulatesIdentityAndDesc(t *testing.T) {
	dev, desc := newSimDevice(t)

	id, err := dev.Init()
	require.NoError(t, err)
	assert.Equal(t, uint32(0x1111), id.VID)
	assert.Equal(t, uint32(0x2222), id.PID)
	assert.Equal(t, uint32(0xABCD), id.UID1)

	got, err := dev.Desc()
	require.NoError(t, err)
	assert.Equal(t, desc, got)
}

func TestDescBeforeInitFails(t *testing.T) {
	dev, _ := newSimDevice(t)
	_, err := dev.Desc()
	assert.Error(t, err)
}

func TestEraseVisitsEveryApplicationPage(t *testing.T) {
	dev, desc := newSimDevice(t)
	_, err := dev.Init()
	require.NoError(t, err)

	var updates []progress.Update
	dev2, _ := newSimDevice(t, device.WithProgress(func(u progress.Update) {
		updates = append(updates, u)
	}))
	_, err = dev2.Init()
	require.NoError(t, err)
	// Drop Init's own Message updates; only Erase's updates are counted.
	updates = nil

	err = dev2.Erase()
	require.NoError(t, err)

	want := int(desc.PageCount - desc.AppStartPage)
	assert.Len(t, updates, want)
	assert.Equal(t, progress.KindErase, updates[0].Kind)
}

func TestFlashWritesAndVerifiesImage(t *testing.T) {
	dev, desc := newSimDevice(t)
	_, err := dev.Init()
	require.NoError(t, err)

	base := desc.PageAddress(8)
	fw := hexfile.Data{
		base:     0x01,
		base + 1: 0x02,
		base + 2: 0x03,
		base + 3: 0x04,
	}

	err = dev.Flash(fw)
	require.NoError(t, err)
}

func TestFlashRejectsBootloaderSectionAddress(t *testing.T) {
	dev, desc := newSimDevice(t)
	_, err := dev.Init()
	require.NoError(t, err)

	fw := hexfile.Data{desc.PageAddress(1): 0xFF}
	err = dev.Flash(fw)
	assert.Error(t, err)
}

func TestResetTreatsNoResponseAsSuccess(t *testing.T) {
	desc, err := flash.NewDesc(0x08000000, 1024, 64, 8)
	require.NoError(t, err)
	simDev := sim.NewDevice(sim.Config{Desc: desc, Unresponsive: true})
	dev := device.New(sim.New(simDev))

	err = dev.Reset()
	assert.NoError(t, err)
}
