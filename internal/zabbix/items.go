package zabbix

import (
	"context"
	"fmt"
)

type host struct {
	HostID string `json:"hostid"`
	Host   string `json:"host"`
	Name   string `json:"name"`
}

type item struct {
	ItemID    string `json:"itemid"`
	LastValue string `json:"lastvalue"`
}

// HostID returns the id of the host with the given visible name.
func (c *Client) HostID(ctx context.Context, name string) (string, error) {
	var hosts []host
	params := map[string]any{
		"filter": map[string]any{"name": name},
		"output": []string{"hostid"},
	}
	if err := c.call(ctx, "host.get", params, &hosts); err != nil {
		return "", err
	}
	h, err := one(hosts, fmt.Sprintf("host %q", name))
	if err != nil {
		return "", err
	}
	return h.HostID, nil
}

// ItemValue returns the last value of the item with key on host hostID.
func (c *Client) ItemValue(ctx context.Context, hostID, key string) (int64, error) {
	var items []item
	params := map[string]any{
		"filter": map[string]any{"hostid": hostID, "key_": key},
		"output": []string{"itemid", "lastvalue"},
	}
	if err := c.call(ctx, "item.get", params, &items); err != nil {
		return 0, err
	}
	it, err := one(items, fmt.Sprintf("item %q", key))
	if err != nil {
		return 0, err
	}
	v, err := parseInt(it.LastValue)
	if err != nil {
		return 0, fmt.Errorf("item %q: %w", key, err)
	}
	return v, nil
}

// ItemRates returns the last input and output values, in bits per second,
// of two items on the named host.
func (c *Client) ItemRates(ctx context.Context, hostname, itemIn, itemOut string) (in, out int64, err error) {
	hostID, err := c.HostID(ctx, hostname)
	if err != nil {
		return 0, 0, err
	}
	if in, err = c.ItemValue(ctx, hostID, itemIn); err != nil {
		return 0, 0, err
	}
	if out, err = c.ItemValue(ctx, hostID, itemOut); err != nil {
		return 0, 0, err
	}
	c.log.Debug("polled item rates", "host", hostname, "in", in, "out", out)
	return in, out, nil
}
