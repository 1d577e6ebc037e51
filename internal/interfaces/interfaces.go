// Package interfaces defines the monitoring-side dependencies of the
// weathermap so they can be replaced in tests.
package interfaces

import (
	"context"

	"github.com/ankek/terraform-provider-weathermap/internal/zabbix"
)

// RateSource reports the current traffic of a link.
type RateSource interface {
	// ItemRates returns the last input and output values, in bits per
	// second, of two items on a host.
	ItemRates(ctx context.Context, hostname, itemIn, itemOut string) (in, out int64, err error)
}

// ImageUploader publishes rendered maps.
type ImageUploader interface {
	// UploadImage stores png under name and returns the image id.
	UploadImage(ctx context.Context, name string, png []byte) (string, error)
}

// MapScanner reads an existing network map so a config can be generated.
type MapScanner interface {
	MapByName(ctx context.Context, name string) (*zabbix.Map, error)
	ElementName(ctx context.Context, elementType int, id string) (string, error)
	ImageSize(ctx context.Context, imageID string) (width, height int, err error)
}

// PathValidator checks paths before they are read or written.
type PathValidator interface {
	ValidateConfigPath(path string) error
	ValidateImagePath(path string) error
	ValidateInputPath(path string, mustBeDir bool) error
}

// Monitor is everything the weathermap needs from the monitoring server.
type Monitor interface {
	RateSource
	ImageUploader
	MapScanner
}

var _ Monitor = (*zabbix.Client)(nil)
