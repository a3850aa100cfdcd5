package device

import "fmt"

// UID is a device's 128-bit unique identifier, assembled from the four
// 32-bit words read during Init (spec §3, §8 scenario 2). Word n occupies
// bits [32n, 32n+32): UID1 is the low word, UID4 the high word.
type UID [4]uint32

// String renders the UID the way the wire protocol's four words compose
// it: high word first, underscore-separated.
func (u UID) String() string {
	return fmt.Sprintf("0x%08X_%08X_%08X_%08X", u[3], u[2], u[1], u[0])
}

// Identify combines the identity words read by Init into the device's
// 128-bit UID. Init must have succeeded first.
func (d *Device) Identify() (UID, error) {
	uid1, err := d.uid1.Get()
	if err != nil {
		return UID{}, err
	}
	uid2, err := d.uid2.Get()
	if err != nil {
		return UID{}, err
	}
	uid3, err := d.uid3.Get()
	if err != nil {
		return UID{}, err
	}
	uid4, err := d.uid4.Get()
	if err != nil {
		return UID{}, err
	}
	return UID{uid1, uid2, uid3, uid4}, nil
}
