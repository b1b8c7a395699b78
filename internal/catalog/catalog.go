// Package catalog holds the static forwarding configuration: the item
// table (name → source message id), named ordered groups, and the weekly
// rotation that picks a group per weekday. Everything here is loaded once
// at startup and read-only afterwards.
package catalog

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrUnknownItem  = errors.New("unknown item")
	ErrUnknownGroup = errors.New("unknown group")
)

// Item is one forwardable message, keyed by name.
type Item struct {
	Name      string
	MessageID int
}

// Catalog maps item names to message ids and group names to ordered item
// sequences.
type Catalog struct {
	items  map[string]int
	groups map[string][]string
}

// New builds a Catalog from raw tables. The group slices keep their order;
// membership is not validated here (see Validate).
func New(items map[string]int, groups map[string][]string) *Catalog {
	c := &Catalog{
		items:  make(map[string]int, len(items)),
		groups: make(map[string][]string, len(groups)),
	}
	for name, id := range items {
		c.items[name] = id
	}
	for name, members := range groups {
		c.groups[name] = append([]string(nil), members...)
	}
	return c
}

// Resolve returns the message id for an item name.
func (c *Catalog) Resolve(name string) (int, error) {
	id, ok := c.items[name]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownItem, name)
	}
	return id, nil
}

// GroupMembers returns the group's items in configured order.
func (c *Catalog) GroupMembers(group string) ([]Item, error) {
	names, ok := c.groups[group]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownGroup, group)
	}
	items := make([]Item, 0, len(names))
	for _, name := range names {
		id, err := c.Resolve(name)
		if err != nil {
			return nil, fmt.Errorf("group %q: %w", group, err)
		}
		items = append(items, Item{Name: name, MessageID: id})
	}
	return items, nil
}

// Rotation maps weekdays to group names. Days absent from the table are
// no-rotation days. Both the two-day and the all-week variants are plain
// tables; nothing else changes between them.
type Rotation map[time.Weekday]string

// SelectForDay returns the ordered item names to forward on the given
// weekday, or an empty slice on a no-rotation day.
func (r Rotation) SelectForDay(c *Catalog, day time.Weekday) ([]string, error) {
	group, ok := r[day]
	if !ok {
		return nil, nil
	}
	items, err := c.GroupMembers(group)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(items))
	for i, it := range items {
		names[i] = it.Name
	}
	return names, nil
}

// Validate checks that every rotation entry names a known group and every
// group member names a known item. Called once at startup; any error here
// is a configuration error and fatal.
func Validate(c *Catalog, r Rotation) error {
	for day, group := range r {
		if _, ok := c.groups[group]; !ok {
			return fmt.Errorf("rotation for %s: %w: %q", day, ErrUnknownGroup, group)
		}
	}
	for group, members := range c.groups {
		for _, name := range members {
			if _, ok := c.items[name]; !ok {
				return fmt.Errorf("group %q: %w: %q", group, ErrUnknownItem, name)
			}
		}
	}
	return nil
}
