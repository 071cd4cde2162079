package engine

// Role is a player's secret role
type Role string

const (
	RoleCitizen     Role = "citizen"
	RoleSquatter    Role = "squatter"
	RoleSaboteur    Role = "saboteur"
	RoleDealer      Role = "dealer"
	RoleUnionLeader Role = "union_leader"
	RoleOfficial    Role = "official"
	RoleArchitect   Role = "architect"

	// RoleHidden replaces other players' roles in redacted views
	RoleHidden Role = "hidden"
)

// AllRoles lists the assignable roles; START_GAME deals from this pool
var AllRoles = []Role{RoleSquatter, RoleSaboteur, RoleDealer, RoleUnionLeader, RoleOfficial, RoleArchitect, RoleCitizen}

// Valid reports whether r is an assignable role
func (r Role) Valid() bool {
	for _, role := range AllRoles {
		if role == r {
			return true
		}
	}
	return false
}

// roleTraits is the per-role rule record
type roleTraits struct {
	VoteWeight      int
	ConstructionPct int
	// WeatherImmune ignores negative weather step modifiers
	WeatherImmune bool
	// HubAccess lets other players hop through transit tiles this role owns
	HubAccess bool
}

var roleTable = map[Role]roleTraits{
	RoleCitizen:     {VoteWeight: 1, ConstructionPct: 100},
	RoleSquatter:    {VoteWeight: 1, ConstructionPct: 100, HubAccess: true},
	RoleSaboteur:    {VoteWeight: 1, ConstructionPct: 100},
	RoleDealer:      {VoteWeight: 1, ConstructionPct: 100, WeatherImmune: true},
	RoleUnionLeader: {VoteWeight: 2, ConstructionPct: 100},
	RoleOfficial:    {VoteWeight: 1, ConstructionPct: 100},
	RoleArchitect:   {VoteWeight: 1, ConstructionPct: 80},
}

func traitsFor(r Role) roleTraits {
	if t, ok := roleTable[r]; ok {
		return t
	}
	return roleTable[RoleCitizen]
}

// weatherSteps is the step modifier of each weather
var weatherSteps = map[Weather]int{
	WeatherClear:    0,
	WeatherRain:     -1,
	WeatherStorm:    -2,
	WeatherTailwind: 1,
}

// stepModifier returns the adjustment applied to a rolled step count
func stepModifier(w Weather, role Role) int {
	mod := weatherSteps[w]
	if mod < 0 && traitsFor(role).WeatherImmune {
		return 0
	}
	return mod
}
