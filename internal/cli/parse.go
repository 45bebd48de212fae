package cli

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// timeLayouts — принимаемые форматы ISO 8601.
var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// parseTime разбирает значение флага как ISO 8601.
// Время без зоны считается UTC.
func parseTime(flag, value string) (time.Time, error) {
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid value for --%s: %q is not an ISO 8601 time", flag, value)
}

// optionalTime возвращает время из флага, если он был задан.
func optionalTime(flags *pflag.FlagSet, name, value string) (*time.Time, error) {
	if !flags.Changed(name) {
		return nil, nil
	}
	t, err := parseTime(name, value)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// optionalFloat возвращает указатель на значение флага, если он был задан.
func optionalFloat(flags *pflag.FlagSet, name string, value float64) *float64 {
	if !flags.Changed(name) {
		return nil
	}
	return &value
}

// optionalString возвращает указатель на значение флага, если он был задан.
func optionalString(flags *pflag.FlagSet, name, value string) *string {
	if !flags.Changed(name) {
		return nil
	}
	return &value
}

func formatFloat(f *float64) string {
	if f == nil {
		return ""
	}
	return strconv.FormatFloat(*f, 'f', -1, 64)
}

// positionalNumbers переносит отрицательные числа из аргументов за "--",
// иначе pflag разбирает "-5" как короткий флаг.
// Значения флагов ("--lat -5") остаются на месте.
func positionalNumbers(root *cobra.Command, args []string) []string {
	cmd, _, err := root.Find(args)
	if err != nil {
		return args
	}

	var rest, numbers []string
	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch {
		case arg == "--":
			if len(numbers) == 0 {
				return args
			}
			rest = append(rest, arg)
			rest = append(rest, numbers...)
			return append(rest, args[i+1:]...)

		case isNegativeNumber(arg):
			numbers = append(numbers, arg)
			continue

		case strings.HasPrefix(arg, "--") && !strings.Contains(arg, "="):
			if takesValue(lookupFlag(cmd, arg[2:])) && i+1 < len(args) {
				rest = append(rest, arg)
				i++
				arg = args[i]
			}

		case len(arg) == 2 && arg[0] == '-' && arg[1] != '-':
			if takesValue(lookupShorthand(cmd, arg[1:])) && i+1 < len(args) {
				rest = append(rest, arg)
				i++
				arg = args[i]
			}
		}
		rest = append(rest, arg)
	}

	if len(numbers) == 0 {
		return args
	}
	rest = append(rest, "--")
	return append(rest, numbers...)
}

func isNegativeNumber(arg string) bool {
	if len(arg) < 2 || arg[0] != '-' {
		return false
	}
	if c := arg[1]; (c < '0' || c > '9') && c != '.' {
		return false
	}
	_, err := strconv.ParseFloat(arg, 64)
	return err == nil
}

func lookupFlag(cmd *cobra.Command, name string) *pflag.Flag {
	for _, fs := range []*pflag.FlagSet{cmd.Flags(), cmd.PersistentFlags(), cmd.InheritedFlags()} {
		if f := fs.Lookup(name); f != nil {
			return f
		}
	}
	return nil
}

func lookupShorthand(cmd *cobra.Command, name string) *pflag.Flag {
	for _, fs := range []*pflag.FlagSet{cmd.Flags(), cmd.PersistentFlags(), cmd.InheritedFlags()} {
		if f := fs.ShorthandLookup(name); f != nil {
			return f
		}
	}
	return nil
}

// takesValue — флаг ожидает значение следующим аргументом.
func takesValue(f *pflag.Flag) bool {
	return f != nil && f.NoOptDefVal == ""
}
