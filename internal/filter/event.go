package filter

// rawEvent is a single decoded, typed event record, the fixed shape every
// attribute is coerced into as soon as it is parsed. Downstream pairing
// logic never sees untyped XML attributes again.
type rawEvent struct {
	Type   string
	Person string
	Link   string
	Time   int
}

func (e rawEvent) key() pairKey {
	return pairKey{person: e.Person, link: e.Link}
}

type pairKey struct {
	person string
	link   string
}

const (
	eventTypeEnterLink = "EnterLink"
	eventTypeLeaveLink = "LeaveLink"
)
