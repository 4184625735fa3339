package domain

// Kinds of posting emitted for a lane.
type PostingKind string

const (
	PostingBase      PostingKind = "base"
	PostingAlternate PostingKind = "alternate"
	// Padding posting reusing the base cities to satisfy a minimum posting count.
	PostingSynthetic PostingKind = "synthetic_fallback"
)

// Contact methods; each posting emits one row per method.
const (
	ContactEmail = "email"
	ContactPhone = "primary phone"
)

// ContactMethods lists the response channels in emission order.
var ContactMethods = []string{ContactEmail, ContactPhone}

// One pickup/delivery combination to advertise.
type Posting struct {
	Kind        PostingKind
	Origin      City
	Destination City
	Score       float64
	Tags        []string
}

// IsSynthetic reports whether the posting was added as padding.
func (p Posting) IsSynthetic() bool { return p.Kind == PostingSynthetic }

// A flat CSV row keyed by header name.
type Row map[string]string
