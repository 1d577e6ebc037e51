package zabbix

import (
	"context"
	"fmt"
)

// Element types of map elements.
const (
	ElementHost      = 0
	ElementMap       = 1
	ElementTrigger   = 2
	ElementHostGroup = 3
	ElementImage     = 4
)

// Map is a network map with its elements and links.
type Map struct {
	ID       string    `json:"sysmapid"`
	Name     string    `json:"name"`
	Width    flexInt   `json:"width"`
	Height   flexInt   `json:"height"`
	Elements []Element `json:"selements"`
	Links    []Link    `json:"links"`
}

// Element is a map element drawn with an icon at (X, Y), its top-left corner.
type Element struct {
	SelementID  string  `json:"selementid"`
	ElementID   string  `json:"elementid"`
	ElementType flexInt `json:"elementtype"`
	IconIDOff   string  `json:"iconid_off"`
	X           flexInt `json:"x"`
	Y           flexInt `json:"y"`
}

// Link joins two map elements.
type Link struct {
	LinkID      string `json:"linkid"`
	SelementID1 string `json:"selementid1"`
	SelementID2 string `json:"selementid2"`
}

// MapByName returns the map with the given name.
func (c *Client) MapByName(ctx context.Context, name string) (*Map, error) {
	var maps []Map
	params := map[string]any{
		"filter":          map[string]any{"name": name},
		"selectSelements": []string{"elementid", "selementid", "elementtype", "iconid_off", "x", "y"},
		"selectLinks":     []string{"selementid1", "selementid2", "linkid"},
	}
	if err := c.call(ctx, "map.get", params, &maps); err != nil {
		return nil, err
	}
	m, err := one(maps, fmt.Sprintf("map %q", name))
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// ElementName returns the display name of the object an element shows.
func (c *Client) ElementName(ctx context.Context, elementType int, id string) (string, error) {
	switch elementType {
	case ElementHost:
		return c.name(ctx, "host.get", "hostids", id, "host")
	case ElementMap:
		return c.name(ctx, "map.get", "sysmapids", id, "name")
	case ElementTrigger:
		return c.name(ctx, "trigger.get", "triggerids", id, "description")
	case ElementHostGroup:
		return c.name(ctx, "hostgroup.get", "groupids", id, "name")
	case ElementImage:
		return c.name(ctx, "image.get", "imageids", id, "name")
	default:
		return "", fmt.Errorf("unsupported element type %d", elementType)
	}
}

func (c *Client) name(ctx context.Context, method, idsParam, id, field string) (string, error) {
	var objs []map[string]any
	params := map[string]any{
		idsParam: id,
		"output": []string{field},
	}
	if err := c.call(ctx, method, params, &objs); err != nil {
		return "", err
	}
	obj, err := one(objs, fmt.Sprintf("%s %s", method, id))
	if err != nil {
		return "", err
	}
	name, ok := obj[field].(string)
	if !ok {
		return "", fmt.Errorf("%s %s: missing %s", method, id, field)
	}
	return name, nil
}
