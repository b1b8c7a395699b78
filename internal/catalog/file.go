package catalog

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// schedule file format, version 1:
//
//	version: 1
//	items:
//	  ipay9: 25
//	groups:
//	  group_a: [ipay9, ...]
//	rotation:
//	  monday: group_a

const fileVersion = 1

var weekdayNames = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

// LoadFile reads a full catalog + rotation from a schedule file. The file
// replaces the built-in defaults entirely; partial overrides are not
// supported, so a revision is always self-contained.
func LoadFile(path string) (*Catalog, Rotation, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, nil, fmt.Errorf("read schedule file: %w", err)
	}

	if got := v.GetInt("version"); got != fileVersion {
		return nil, nil, fmt.Errorf("schedule file %s: unsupported version %d (want %d)", path, got, fileVersion)
	}

	items := map[string]int{}
	for name := range v.GetStringMap("items") {
		items[name] = v.GetInt("items." + name)
	}
	if len(items) == 0 {
		return nil, nil, fmt.Errorf("schedule file %s: no items defined", path)
	}

	groups := map[string][]string{}
	for name := range v.GetStringMap("groups") {
		groups[name] = v.GetStringSlice("groups." + name)
	}
	if len(groups) == 0 {
		return nil, nil, fmt.Errorf("schedule file %s: no groups defined", path)
	}

	rotation := Rotation{}
	for dayName := range v.GetStringMap("rotation") {
		day, ok := weekdayNames[strings.ToLower(dayName)]
		if !ok {
			return nil, nil, fmt.Errorf("schedule file %s: unknown weekday %q", path, dayName)
		}
		rotation[day] = v.GetString("rotation." + dayName)
	}

	c := New(items, groups)
	if err := Validate(c, rotation); err != nil {
		return nil, nil, fmt.Errorf("schedule file %s: %w", path, err)
	}
	return c, rotation, nil
}

// Load returns the catalog and rotation from path, or the built-in
// defaults when path is empty.
func Load(path string) (*Catalog, Rotation, error) {
	if strings.TrimSpace(path) == "" {
		c := New(DefaultItems(), DefaultGroups())
		r := DefaultRotation()
		if err := Validate(c, r); err != nil {
			return nil, nil, err
		}
		return c, r, nil
	}
	return LoadFile(path)
}
