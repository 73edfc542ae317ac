package snap

import (
	"fmt"
	"io"
	"slices"
	"strings"
	"text/tabwriter"
)

// usageLine builds "Usage: prog sub [OPTIONS] ARGS... COMMAND [ARGS]...".
func usageLine(cmd *Command, path []string) string {
	if len(path) == 0 {
		path = cmd.Path()
	}
	var b strings.Builder
	b.WriteString("Usage: ")
	b.WriteString(strings.Join(path, " "))
	if len(cmd.flags) > 0 {
		b.WriteString(" [OPTIONS]")
	}
	for _, arg := range cmd.args {
		b.WriteString(" ")
		b.WriteString(arg.Metavar())
	}
	if len(cmd.subcommands) > 0 {
		if cmd.Settings.InvokeWithoutSubcommand {
			b.WriteString(" [COMMAND [ARGS]...]")
		} else {
			b.WriteString(" COMMAND [ARGS]...")
		}
	}
	return b.String()
}

// renderHelp writes the help page for cmd.
func (a *App) renderHelp(w io.Writer, cmd *Command, path []string) {
	if cmd == nil {
		cmd = a.root
	}
	fmt.Fprintln(w, usageLine(cmd, path))

	if cmd.description != "" {
		fmt.Fprintf(w, "\n  %s\n", cmd.description)
	}
	if cmd.HelpText != "" {
		fmt.Fprintf(w, "\n%s\n", cmd.HelpText)
	}
	if cmd == a.root && a.version != "" {
		fmt.Fprintf(w, "\nVersion: %s\n", a.version)
	}
	if cmd == a.root && len(a.authors) > 0 {
		if len(a.authors) == 1 {
			fmt.Fprintf(w, "Author: %s <%s>\n", a.authors[0].Name, a.authors[0].Email)
		} else {
			fmt.Fprintln(w, "Authors:")
			for _, author := range a.authors {
				fmt.Fprintf(w, "  %s <%s>\n", author.Name, author.Email)
			}
		}
	}

	showArgs(w, cmd)
	showOrganizedFlags(w, cmd)
	showSubcommands(w, cmd)
}

func showArgs(w io.Writer, cmd *Command) {
	var described []*Arg
	for _, arg := range cmd.args {
		if arg.Description != "" {
			described = append(described, arg)
		}
	}
	if len(described) == 0 {
		return
	}
	fmt.Fprintln(w, "\nArguments:")
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, arg := range described {
		fmt.Fprintf(tw, "  %s\t%s\n", arg.Metavar(), arg.Description)
	}
	tw.Flush()
}

// showOrganizedFlags lists grouped options under their group heading, then
// the ungrouped ones, each in declaration order.
func showOrganizedFlags(w io.Writer, cmd *Command) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	defer tw.Flush()

	for _, group := range cmd.flagGroups {
		visible := slices.DeleteFunc(slices.Clone(group.Flags), func(f *Flag) bool { return f.Hidden })
		if len(visible) == 0 {
			continue
		}
		if group.Description != "" {
			fmt.Fprintf(tw, "\n%s - %s:\n", group.Name, group.Description)
		} else {
			fmt.Fprintf(tw, "\n%s:\n", group.Name)
		}
		for _, flag := range visible {
			showFlag(tw, flag)
		}
		if note := formatGroupConstraint(group.Constraint); note != "" {
			fmt.Fprintf(tw, "  Note: %s\n", note)
		}
	}

	var ungrouped []*Flag
	for _, flag := range cmd.flags {
		if flag.group == nil && !flag.Hidden {
			ungrouped = append(ungrouped, flag)
		}
	}
	if len(ungrouped) == 0 {
		return
	}
	fmt.Fprintln(tw, "\nOptions:")
	for _, flag := range ungrouped {
		showFlag(tw, flag)
	}
}

func showFlag(w io.Writer, flag *Flag) {
	// Short names first, as in "-v, --verbose".
	var short, long []string
	for _, n := range flag.Names() {
		if strings.HasPrefix(n, "--") {
			long = append(long, n)
		} else {
			short = append(short, n)
		}
	}
	names := append(short, long...)

	display := strings.Join(names, ", ")
	if flag.Arity > 0 {
		display += " " + flagMetavar(flag)
	}

	desc := flag.Description
	if def := defaultText(flag); def != "" {
		desc += " (default: " + def + ")"
	}
	if flag.Required {
		desc += " (required)"
	}
	if len(flag.EnvVars) > 0 {
		desc += " [env: " + strings.Join(flag.EnvVars, ", ") + "]"
	}
	fmt.Fprintf(w, "  %s\t%s\n", display, desc)
}

func flagMetavar(flag *Flag) string {
	var one string
	switch flag.Type {
	case FlagTypeInt, FlagTypeIntSlice:
		one = "INT"
	case FlagTypeFloat:
		one = "FLOAT"
	case FlagTypeDuration:
		one = "DURATION"
	case FlagTypeEnum:
		one = "[" + strings.Join(flag.EnumValues, "|") + "]"
	default:
		one = "TEXT"
	}
	if flag.Arity > 1 {
		return strings.TrimSpace(strings.Repeat(one+" ", flag.Arity))
	}
	return one
}

// formatGroupConstraint returns a human-readable constraint description
func formatGroupConstraint(constraint GroupConstraintType) string {
	switch constraint {
	case GroupMutuallyExclusive:
		return "Only one of these options can be used at a time"
	case GroupCoOccurring:
		return "Required options of this group are needed once any of them is used"
	case GroupAllOrNone:
		return "Either all of these options must be provided, or none"
	case GroupExactlyOne:
		return "Exactly one of these options must be provided"
	case GroupAtLeastOne:
		return "At least one of these options is required"
	default:
		return ""
	}
}

func defaultText(flag *Flag) string {
	if !flag.hasDefault || flag.builtin {
		return ""
	}
	switch v := flag.Default.(type) {
	case []string:
		return strings.Join(v, ",")
	case []int:
		parts := make([]string, len(v))
		for i, n := range v {
			parts[i] = fmt.Sprint(n)
		}
		return strings.Join(parts, ",")
	case bool:
		if !v {
			return ""
		}
	case string:
		if v == "" {
			return ""
		}
	}
	return fmt.Sprint(flag.Default)
}

func showSubcommands(w io.Writer, cmd *Command) {
	var visible []*Command
	for _, sub := range cmd.subcommands {
		if !sub.Hidden {
			visible = append(visible, sub)
		}
	}
	if len(visible) == 0 {
		return
	}

	fmt.Fprintln(w, "\nCommands:")
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, sub := range visible {
		line := "  " + sub.name + "\t" + sub.description
		if len(sub.Aliases) > 0 {
			line += " (aliases: " + strings.Join(sub.Aliases, ", ") + ")"
		}
		fmt.Fprintln(tw, line)
	}
	tw.Flush()
}
