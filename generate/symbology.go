package generate

import (
	"errors"
	"slices"
	"strconv"

	"github.com/boombuler/barcode"
	"github.com/boombuler/barcode/utils"
)

// Barcode kinds reported in barcode.Metadata for the encoders below.
const (
	kindMSI        = "MSI"
	kindPharmacode = "Pharmacode"
)

// Pharmacode value range.
const (
	MinPharmacode = 3
	MaxPharmacode = 131070
)

// encodeMSI encodes digits as MSI Plessey with a mod 10 check digit.
func encodeMSI(value string) (barcode.Barcode, error) {
	if value == "" {
		return nil, errors.New("empty value")
	}
	digits := make([]int, 0, len(value)+1)
	for _, r := range value {
		if r < '0' || r > '9' {
			return nil, errors.New("MSI accepts digits only")
		}
		digits = append(digits, int(r-'0'))
	}
	check := luhnCheckDigit(digits)
	digits = append(digits, check)

	bits := utils.NewBitList(3 + len(digits)*12 + 4)
	bits.AddBit(true, true, false)
	for _, d := range digits {
		for i := 3; i >= 0; i-- {
			if d&(1<<i) != 0 {
				bits.AddBit(true, true, false)
			} else {
				bits.AddBit(true, false, false)
			}
		}
	}
	bits.AddBit(true, false, false, true)
	return utils.New1DCodeIntCheckSum(kindMSI, value, bits, check), nil
}

// luhnCheckDigit doubles every second digit from the right, starting with
// the rightmost.
func luhnCheckDigit(digits []int) int {
	sum := 0
	for i, d := range slices.Backward(digits) {
		if (len(digits)-1-i)%2 == 0 {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		sum += d
	}
	return (10 - sum%10) % 10
}

// encodePharmacode encodes a one-track Pharmacode: narrow bars are one
// module, wide bars three, with two-module gaps.
func encodePharmacode(value string) (barcode.Barcode, error) {
	n, err := strconv.Atoi(value)
	if err != nil {
		return nil, errors.New("pharmacode accepts an integer")
	}
	if n < MinPharmacode || n > MaxPharmacode {
		return nil, errors.New("pharmacode must be within 3-131070")
	}
	var wide []bool
	for n > 0 {
		if n%2 == 0 {
			wide = append(wide, true)
			n = (n - 2) / 2
		} else {
			wide = append(wide, false)
			n = (n - 1) / 2
		}
	}
	slices.Reverse(wide)

	bits := utils.NewBitList(len(wide) * 5)
	for i, w := range wide {
		if i > 0 {
			bits.AddBit(false, false)
		}
		if w {
			bits.AddBit(true, true, true)
		} else {
			bits.AddBit(true)
		}
	}
	return utils.New1DCode(kindPharmacode, value, bits), nil
}
