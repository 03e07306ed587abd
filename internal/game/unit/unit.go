package unit

// Flags is a bitfield of situational modifiers applied when a unit is
// spawned. Bit 0 is the least significant bit.
type Flags uint8

const (
	// FlagPoisoned scales defence by 0.8.
	FlagPoisoned Flags = 1 << iota
	// FlagBonusTerrain scales defence by 1.5 (defensible terrain).
	FlagBonusTerrain
	// FlagWalled scales defence by 4.0 (unit in a walled city).
	FlagWalled
	// FlagBoosted adds a flat 0.5 to defence, after all scaling.
	FlagBoosted
	// FlagVeteran raises maximum health by 5.
	FlagVeteran
	// FlagForceRetaliation forces retaliation on; wins over FlagNoRetaliation.
	FlagForceRetaliation
	// FlagNoRetaliation forces retaliation off.
	FlagNoRetaliation
	// FlagFrozen spawns the unit already frozen.
	FlagFrozen
)

// Has reports whether flag is set in f.
func (f Flags) Has(flag Flags) bool {
	return f&flag != 0
}

// Retaliation is a unit's retaliation override. The zero value leaves the
// decision to the engine's default rule.
type Retaliation int

const (
	// RetaliationDefault applies the standard melee/ranged rule.
	RetaliationDefault Retaliation = iota
	// RetaliationForced always retaliates (when the defender is able to).
	RetaliationForced
	// RetaliationSuppressed never retaliates.
	RetaliationSuppressed
)

func (r Retaliation) String() string {
	switch r {
	case RetaliationForced:
		return "forced"
	case RetaliationSuppressed:
		return "suppressed"
	case RetaliationDefault:
		return "default"
	default:
		return "unknown"
	}
}

// Unit is a live combat participant spawned from a Template. All fields are
// plain values so a shallow copy is a full copy.
type Unit struct {
	Name      string
	MaxHealth float64
	Health    float64
	Attack    float64
	Defence   float64
	// DefenceWithBonus is the defence after situational modifiers. Force
	// calculations use it; retaliation damage uses the base Defence.
	DefenceWithBonus float64
	// ForcedRetaliation is this unit's retaliation override. On an attacker
	// it takes precedence over the defender's own setting.
	ForcedRetaliation Retaliation
	CanRetaliate      bool
	CanConvert        bool
	CanFreeze         bool
	Ranged            bool
	Veteran           bool
	Frozen            bool
	Converted         bool
}

// NewUnit spawns a live unit from tmpl with the given flags applied.
// Health starts at the flag-adjusted maximum; callers that want a wounded
// unit overwrite Health after spawning.
//
// Precondition: tmpl must be valid (see Template.Validate).
// Postcondition: The returned unit has Health == MaxHealth and all derived
// capabilities set from the template.
func NewUnit(tmpl *Template, flags Flags) *Unit {
	u := &Unit{
		Name:             tmpl.Name,
		MaxHealth:        tmpl.Health,
		Attack:           tmpl.Attack,
		Defence:          tmpl.Defence,
		DefenceWithBonus: tmpl.Defence,
		CanRetaliate:     tmpl.Attack != 0 && tmpl.Defence != 0,
		CanConvert:       tmpl.HasAbility(AbilityConvert),
		CanFreeze:        tmpl.HasAbility(AbilityFreezeArea),
		Ranged:           tmpl.Range > 1,
	}
	u.applyFlags(flags)
	u.Health = u.MaxHealth
	return u
}

// applyFlags folds the flag bits into the unit's stats. Defence modifiers
// apply in bit order, so the flat boost lands after every multiplier.
func (u *Unit) applyFlags(f Flags) {
	if f.Has(FlagPoisoned) {
		u.DefenceWithBonus *= 0.8
	}
	if f.Has(FlagBonusTerrain) {
		u.DefenceWithBonus *= 1.5
	}
	if f.Has(FlagWalled) {
		u.DefenceWithBonus *= 4.0
	}
	if f.Has(FlagBoosted) {
		u.DefenceWithBonus += 0.5
	}
	if f.Has(FlagVeteran) {
		u.Veteran = true
		u.MaxHealth += 5
	}
	switch {
	case f.Has(FlagForceRetaliation):
		u.ForcedRetaliation = RetaliationForced
	case f.Has(FlagNoRetaliation):
		u.ForcedRetaliation = RetaliationSuppressed
	}
	if f.Has(FlagFrozen) {
		u.Frozen = true
	}
}

// Clone returns an independent copy of the unit.
func (u *Unit) Clone() *Unit {
	c := *u
	return &c
}
