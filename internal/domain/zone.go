package domain

// Zone is a placement domain. Concrete availability zones plus the
// "regional" and "global" sentinels for kinds that are not zone-scoped.
type Zone string

const (
	Region = "eu-west-1"

	ZoneA Zone = "eu-west-1a"
	ZoneB Zone = "eu-west-1b"
	ZoneC Zone = "eu-west-1c"

	ZoneRegional Zone = "regional"
	ZoneGlobal   Zone = "global"

	// DefaultStandbyZone is used when a multi-AZ store has no standby zone set
	DefaultStandbyZone = ZoneB
)

// DefaultZones returns the fixed zone set used for round-robin placement
func DefaultZones() []Zone {
	return []Zone{ZoneA, ZoneB, ZoneC}
}

// IsSentinel reports whether z is one of the non-zonal sentinels
func (z Zone) IsSentinel() bool {
	return z == ZoneRegional || z == ZoneGlobal
}

// Valid reports whether z is a known zone or sentinel
func (z Zone) Valid() bool {
	switch z {
	case ZoneA, ZoneB, ZoneC, ZoneRegional, ZoneGlobal:
		return true
	}
	return false
}

// DefaultZoneFor returns the zone a freshly created node of kind k starts in
func DefaultZoneFor(k NodeKind) Zone {
	switch k.Locality() {
	case LocalityGlobal:
		return ZoneGlobal
	case LocalityRegional:
		return ZoneRegional
	default:
		return ZoneA
	}
}

// alternateZone picks the zone a standby moves to when it collides with primary
func alternateZone(primary Zone) Zone {
	if primary == ZoneA {
		return ZoneB
	}
	return ZoneA
}
