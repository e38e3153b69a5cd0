package flags

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/pflag"
)

const (
	environmentFlagTypeName          = "KEY=VALUE"
	environmentAssignmentSeparator   = "="
	environmentAssignmentErrorFormat = "invalid environment assignment %q (expected KEY=VALUE)"
	environmentListSeparator         = ","
)

// ParseEnvironmentAssignments converts KEY=VALUE entries into a map. Values may
// contain further equals signs and commas; later keys win.
func ParseEnvironmentAssignments(assignments []string) (map[string]string, error) {
	environment := make(map[string]string, len(assignments))
	for _, assignment := range assignments {
		key, value, found := strings.Cut(assignment, environmentAssignmentSeparator)
		key = strings.TrimSpace(key)
		if !found || len(key) == 0 {
			return nil, fmt.Errorf(environmentAssignmentErrorFormat, assignment)
		}
		environment[key] = value
	}
	return environment, nil
}

// AddEnvironmentFlag registers a repeatable KEY=VALUE flag collecting into target.
// An empty shorthand registers the long form only.
func AddEnvironmentFlag(flagSet *pflag.FlagSet, target *map[string]string, name string, shorthand string, usage string) {
	if flagSet == nil || target == nil || len(name) == 0 {
		return
	}
	if *target == nil {
		*target = map[string]string{}
	}
	flagSet.VarP(&environmentValue{target: target}, name, shorthand, usage)
}

type environmentValue struct {
	target *map[string]string
}

func (value *environmentValue) Set(rawValue string) error {
	parsedEnvironment, parseError := ParseEnvironmentAssignments([]string{rawValue})
	if parseError != nil {
		return parseError
	}
	for key, assignedValue := range parsedEnvironment {
		(*value.target)[key] = assignedValue
	}
	return nil
}

func (value *environmentValue) String() string {
	if value == nil || value.target == nil {
		return ""
	}
	keys := make([]string, 0, len(*value.target))
	for key := range *value.target {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	renderedAssignments := make([]string, 0, len(keys))
	for _, key := range keys {
		renderedAssignments = append(renderedAssignments, key+environmentAssignmentSeparator+(*value.target)[key])
	}
	return strings.Join(renderedAssignments, environmentListSeparator)
}

func (value *environmentValue) Type() string {
	return environmentFlagTypeName
}
