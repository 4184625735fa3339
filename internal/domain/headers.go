package domain

import "strings"

// Marketplace bulk-upload column names. Order is significant; a trailing
// asterisk marks a required column.
const (
	HeaderPickupEarliest        = "Pickup Earliest*"
	HeaderPickupLatest          = "Pickup Latest"
	HeaderLength                = "Length (ft)*"
	HeaderWeight                = "Weight (lbs)*"
	HeaderFullPartial           = "Full/Partial*"
	HeaderEquipment             = "Equipment*"
	HeaderUsePrivateNetwork     = "Use Private Network*"
	HeaderPrivateNetworkRate    = "Private Network Rate"
	HeaderAllowPrivateBooking   = "Allow Private Network Booking"
	HeaderAllowPrivateBidding   = "Allow Private Network Bidding"
	HeaderUseLoadboard          = "Use DAT Loadboard*"
	HeaderLoadboardRate         = "DAT Loadboard Rate"
	HeaderAllowLoadboardBooking = "Allow DAT Loadboard Booking"
	HeaderUseExtendedNetwork    = "Use Extended Network"
	HeaderContactMethod         = "Contact Method*"
	HeaderOriginCity            = "Origin City*"
	HeaderOriginState           = "Origin State*"
	HeaderOriginPostalCode      = "Origin Postal Code"
	HeaderDestinationCity       = "Destination City*"
	HeaderDestinationState      = "Destination State*"
	HeaderDestinationPostalCode = "Destination Postal Code"
	HeaderComment               = "Comment"
	HeaderCommodity             = "Commodity"
	HeaderReferenceID           = "Reference ID"
)

// Headers is the fixed 24-column output header in emission order.
var Headers = []string{
	HeaderPickupEarliest,
	HeaderPickupLatest,
	HeaderLength,
	HeaderWeight,
	HeaderFullPartial,
	HeaderEquipment,
	HeaderUsePrivateNetwork,
	HeaderPrivateNetworkRate,
	HeaderAllowPrivateBooking,
	HeaderAllowPrivateBidding,
	HeaderUseLoadboard,
	HeaderLoadboardRate,
	HeaderAllowLoadboardBooking,
	HeaderUseExtendedNetwork,
	HeaderContactMethod,
	HeaderOriginCity,
	HeaderOriginState,
	HeaderOriginPostalCode,
	HeaderDestinationCity,
	HeaderDestinationState,
	HeaderDestinationPostalCode,
	HeaderComment,
	HeaderCommodity,
	HeaderReferenceID,
}

// HeaderCount is the exact number of columns in every row.
const HeaderCount = 24

// IsRequiredHeader reports whether a column must be non-empty.
func IsRequiredHeader(h string) bool {
	return strings.HasSuffix(h, "*")
}

// DateLayout is the canonical date display used in rows.
const DateLayout = "01/02/2006"
