package domain

import (
	"slices"
	"strings"
)

// Maximum legal payload in pounds per marketplace equipment code.
var equipmentMaxWeight = map[string]int{
	"V":  45000, // van
	"VM": 45000, // van w/ team
	"VR": 45000, // van or reefer
	"VF": 45000, // van or flatbed
	"R":  43500, // reefer
	"RM": 43500, // reefer w/ team
	"RG": 43500, // reefer, hanging
	"F":  48000, // flatbed
	"FD": 48000, // flatbed or step deck
	"FM": 48000, // flatbed w/ team
	"SD": 48000, // step deck
	"DD": 42000, // double drop
	"LB": 40000, // lowboy
	"CN": 44000, // conestoga
	"PO": 36000, // power only
	"HB": 48000, // hopper bottom
	"TA": 45000, // tanker
}

// EquipmentMaxWeight returns the payload ceiling for an equipment code.
func EquipmentMaxWeight(code string) (int, bool) {
	w, ok := equipmentMaxWeight[strings.ToUpper(strings.TrimSpace(code))]
	return w, ok
}

// IsKnownEquipment reports whether code is a supported equipment code.
func IsKnownEquipment(code string) bool {
	_, ok := EquipmentMaxWeight(code)
	return ok
}

// EquipmentCodes lists supported codes in sorted order.
func EquipmentCodes() []string {
	out := make([]string, 0, len(equipmentMaxWeight))
	for code := range equipmentMaxWeight {
		out = append(out, code)
	}
	slices.Sort(out)
	return out
}
