package domain

// Party-name resolution for board summaries. Cases migrated from older
// schema versions may carry party names only inside the legacy details
// document, under one of two historical shapes:
//
//	details.plaintiffName                  (flat, first migration)
//	details.parties.plaintiff.name         (nested, original shape)
//
// Resolution tries the explicit column first, then each legacy accessor in
// order, and returns "" when nothing matches. This is a deliberate
// backward-compatibility shim, not duck-typing: the accessor list is fixed
// and exhaustive.

type partyAccessor func(details map[string]interface{}) string

func flatKey(key string) partyAccessor {
	return func(details map[string]interface{}) string {
		value, _ := details[key].(string)
		return value
	}
}

func nestedPartyName(party string) partyAccessor {
	return func(details map[string]interface{}) string {
		parties, _ := details["parties"].(map[string]interface{})
		entry, _ := parties[party].(map[string]interface{})
		name, _ := entry["name"].(string)
		return name
	}
}

var plaintiffAccessors = []partyAccessor{
	flatKey("plaintiffName"),
	nestedPartyName("plaintiff"),
}

var defendantAccessors = []partyAccessor{
	flatKey("defendantName"),
	nestedPartyName("defendant"),
}

func resolveParty(explicit string, details map[string]interface{}, accessors []partyAccessor) string {
	if explicit != "" {
		return explicit
	}
	for _, accessor := range accessors {
		if name := accessor(details); name != "" {
			return name
		}
	}
	return ""
}

// ResolvePlaintiffName returns the case's plaintiff display name.
func (c *Case) ResolvePlaintiffName() string {
	return resolveParty(c.PlaintiffName, c.LegacyDetails, plaintiffAccessors)
}

// ResolveDefendantName returns the case's defendant display name.
func (c *Case) ResolveDefendantName() string {
	return resolveParty(c.DefendantName, c.LegacyDetails, defendantAccessors)
}
