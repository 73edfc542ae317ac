package snap

import (
	"fmt"
	"strings"
	"time"
)

// GroupConstraintType represents the type of constraint for flag groups
type GroupConstraintType int

const (
	GroupNoConstraint      GroupConstraintType = iota // Flags work independently (DEFAULT)
	GroupMutuallyExclusive                            // At most one distinct flag can be set
	GroupCoOccurring                                  // If any flag is set, required members must be set
	GroupAllOrNone                                    // Either all flags or no flags
	GroupAtLeastOne                                   // At least one flag must be set
	GroupExactlyOne                                   // Exactly one flag must be set
)

func (c GroupConstraintType) String() string {
	switch c {
	case GroupMutuallyExclusive:
		return "mutually exclusive"
	case GroupCoOccurring:
		return "co-occurring"
	case GroupAllOrNone:
		return "all or none"
	case GroupAtLeastOne:
		return "at least one required"
	case GroupExactlyOne:
		return "exactly one required"
	default:
		return ""
	}
}

// FlagGroup represents a group of related flags with constraints
type FlagGroup struct {
	Name        string
	Description string
	Flags       []*Flag
	Constraint  GroupConstraintType
}

// FlagGroupParent interface for type-safe group building
type FlagGroupParent interface {
	FlagParent
	addFlagGroup(group *FlagGroup)
}

// FlagGroupBuilder provides fluent API for flag group configuration
// P is the parent type (*App or *CommandBuilder)
type FlagGroupBuilder[P FlagGroupParent] struct {
	group  *FlagGroup
	parent P
}

func newFlagGroup[P FlagGroupParent](parent P, name string) *FlagGroupBuilder[P] {
	group := &FlagGroup{Name: name}
	parent.addFlagGroup(group)
	return &FlagGroupBuilder[P]{group: group, parent: parent}
}

// Group constraint methods

// MutuallyExclusive allows at most one of the group's flags to be set
func (g *FlagGroupBuilder[P]) MutuallyExclusive() *FlagGroupBuilder[P] {
	g.group.Constraint = GroupMutuallyExclusive
	return g
}

// CoOccurring requires every member marked Required once any member is set.
// Required members of such a group are not required on their own.
func (g *FlagGroupBuilder[P]) CoOccurring() *FlagGroupBuilder[P] {
	g.group.Constraint = GroupCoOccurring
	return g
}

// AllOrNone sets the group to require either all flags or no flags
func (g *FlagGroupBuilder[P]) AllOrNone() *FlagGroupBuilder[P] {
	g.group.Constraint = GroupAllOrNone
	return g
}

// ExactlyOne sets the group to require exactly one flag to be set
func (g *FlagGroupBuilder[P]) ExactlyOne() *FlagGroupBuilder[P] {
	g.group.Constraint = GroupExactlyOne
	return g
}

// AtLeastOne sets the group to require at least one flag to be set
func (g *FlagGroupBuilder[P]) AtLeastOne() *FlagGroupBuilder[P] {
	g.group.Constraint = GroupAtLeastOne
	return g
}

// Description sets a description for the flag group
func (g *FlagGroupBuilder[P]) Description(desc string) *FlagGroupBuilder[P] {
	g.group.Description = desc
	return g
}

// Flag creation methods for groups - return FlagBuilder with FlagGroupBuilder as parent

func (g *FlagGroupBuilder[P]) StringFlag(name, description string) *FlagBuilder[string, *FlagGroupBuilder[P]] {
	return stringFlag(g, name, description)
}

func (g *FlagGroupBuilder[P]) IntFlag(name, description string) *FlagBuilder[int, *FlagGroupBuilder[P]] {
	return intFlag(g, name, description)
}

func (g *FlagGroupBuilder[P]) BoolFlag(name, description string) *FlagBuilder[bool, *FlagGroupBuilder[P]] {
	return boolFlag(g, name, description)
}

func (g *FlagGroupBuilder[P]) CountFlag(name, description string) *FlagBuilder[int, *FlagGroupBuilder[P]] {
	return countFlag(g, name, description)
}

func (g *FlagGroupBuilder[P]) DurationFlag(name, description string) *FlagBuilder[time.Duration, *FlagGroupBuilder[P]] {
	return durationFlag(g, name, description)
}

func (g *FlagGroupBuilder[P]) FloatFlag(name, description string) *FlagBuilder[float64, *FlagGroupBuilder[P]] {
	return floatFlag(g, name, description)
}

func (g *FlagGroupBuilder[P]) EnumFlag(name, description string, values ...string) *FlagBuilder[string, *FlagGroupBuilder[P]] {
	return enumFlag(g, name, description, values)
}

func (g *FlagGroupBuilder[P]) StringSliceFlag(name, description string) *FlagBuilder[[]string, *FlagGroupBuilder[P]] {
	return stringSliceFlag(g, name, description)
}

func (g *FlagGroupBuilder[P]) IntSliceFlag(name, description string) *FlagBuilder[[]int, *FlagGroupBuilder[P]] {
	return intSliceFlag(g, name, description)
}

// Navigation methods

// EndGroup terminates the group and returns to the parent builder
func (g *FlagGroupBuilder[P]) EndGroup() P {
	return g.parent
}

// attachFlag registers the flag with the group and the owning command.
func (g *FlagGroupBuilder[P]) attachFlag(flag *Flag) {
	flag.group = g.group
	g.group.Flags = append(g.group.Flags, flag)
	g.parent.attachFlag(flag)
}

// provided reports whether a flag counts as set for group checks: given on
// the command line, through the environment or by a value source.
func (c *Context) provided(flag *Flag) bool {
	v, ok := c.values[flag]
	if !ok {
		return false
	}
	switch v.source {
	case SourceArgv, SourceEnv, SourceValueSource:
		return true
	}
	return false
}

// validateGroups checks every group of the command and returns all violations.
func (c *Context) validateGroups() []*ParseError {
	var errs []*ParseError
	for _, group := range c.command.flagGroups {
		if err := c.validateGroup(group); err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}

func (c *Context) validateGroup(group *FlagGroup) *ParseError {
	set := c.providedMembers(group)

	switch group.Constraint {
	case GroupMutuallyExclusive:
		if matched := c.matchedMembers(group); len(matched) > 1 {
			return exclusiveError(matched)
		}

	case GroupCoOccurring:
		if len(set) == 0 {
			return nil
		}
		for _, flag := range group.Flags {
			if flag.Required && !c.provided(flag) {
				err := newError(KindMissingParameter, "missing option %s (required when %s is given)",
					flag.DisplayName(), set[0].DisplayName())
				err.Param = flag.DisplayName()
				return err
			}
		}

	case GroupAtLeastOne:
		if len(set) == 0 {
			err := newError(KindMissingParameter, "group '%s' requires at least one of %s",
				group.Name, memberList(group))
			err.Param = group.Name
			return err
		}

	case GroupAllOrNone:
		if len(set) > 0 && len(set) < len(group.Flags) {
			err := newError(KindUsage, "group '%s' requires either all or none of %s",
				group.Name, memberList(group))
			err.Param = group.Name
			return err
		}

	case GroupExactlyOne:
		switch {
		case len(set) == 0:
			err := newError(KindMissingParameter, "group '%s' requires exactly one of %s",
				group.Name, memberList(group))
			err.Param = group.Name
			return err
		case len(c.matchedMembers(group)) > 1:
			return exclusiveError(c.matchedMembers(group))
		}

	case GroupNoConstraint:
	}
	return nil
}

// providedMembers returns the distinct set members of group, the ones seen
// on the command line first and in match order.
func (c *Context) providedMembers(group *FlagGroup) []*Flag {
	var set []*Flag
	seen := make(map[*Flag]bool, len(group.Flags))
	for _, inv := range c.matched {
		if inv.flag.group == group && !seen[inv.flag] && c.provided(inv.flag) {
			seen[inv.flag] = true
			set = append(set, inv.flag)
		}
	}
	for _, flag := range group.Flags {
		if !seen[flag] && c.provided(flag) {
			seen[flag] = true
			set = append(set, flag)
		}
	}
	return set
}

// matchedMembers returns the distinct members of group given on the
// command line, in match order. Values from env or value sources only fill
// options argv left unset, so they never conflict.
func (c *Context) matchedMembers(group *FlagGroup) []*Flag {
	var set []*Flag
	seen := make(map[*Flag]bool, len(group.Flags))
	for _, inv := range c.matched {
		if inv.flag.group == group && !seen[inv.flag] {
			seen[inv.flag] = true
			set = append(set, inv.flag)
		}
	}
	return set
}

func exclusiveError(set []*Flag) *ParseError {
	err := newError(KindMutuallyExclusive, "option %s cannot be used with %s",
		set[1].DisplayName(), set[0].DisplayName())
	err.Param = set[1].DisplayName()
	return err
}

func memberList(group *FlagGroup) string {
	names := make([]string, len(group.Flags))
	for i, f := range group.Flags {
		names[i] = f.DisplayName()
	}
	return fmt.Sprintf("[%s]", strings.Join(names, ", "))
}
