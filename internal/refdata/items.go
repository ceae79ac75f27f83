package refdata

import (
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

// ItemInfo is static reference data for one item type.
type ItemInfo struct {
	Name            string  `yaml:"name"`
	NameKR          string  `yaml:"name_kr"`
	IconURL         string  `yaml:"icon_url"`
	FallbackPriceFE float64 `yaml:"fallback_price_fe"`
}

// itemsFile is the on-disk YAML shape: items keyed by ConfigBaseId.
type itemsFile struct {
	Items map[int]ItemInfo `yaml:"items"`
}

// Items maps ConfigBaseId to item reference data (display names, icon URLs,
// fallback FE prices). It is an explicit loader: construct it, call Load,
// inject it into consumers. Load may be called again to pick up an updated
// file; lookups before the first Load just miss.
type Items struct {
	path  string
	items map[int]ItemInfo
}

// NewItems creates an item reference loader for the given YAML file.
func NewItems(path string) *Items {
	return &Items{
		path:  path,
		items: make(map[int]ItemInfo),
	}
}

// Load reads and replaces the item table. On error the previous table is
// kept, so a bad reload does not wipe working data.
func (it *Items) Load() error {
	data, err := os.ReadFile(it.path)
	if err != nil {
		return fmt.Errorf("failed to read item reference file: %w", err)
	}

	var file itemsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("failed to parse item reference file: %w", err)
	}
	if file.Items == nil {
		file.Items = make(map[int]ItemInfo)
	}

	it.items = file.Items
	log.Info().
		Str("path", it.path).
		Int("items", len(it.items)).
		Msg("Item reference data loaded")
	return nil
}

// Get returns reference data for an item type.
func (it *Items) Get(configID int) (ItemInfo, bool) {
	info, ok := it.items[configID]
	return info, ok
}

// Name returns the display name for an item type, falling back to the
// numeric id when the item is unknown.
func (it *Items) Name(configID int) string {
	if info, ok := it.items[configID]; ok && info.Name != "" {
		return info.Name
	}
	return fmt.Sprintf("#%d", configID)
}

// FallbackPriceFE returns the static FE price for an item type, or zero
// when none is known.
func (it *Items) FallbackPriceFE(configID int) float64 {
	return it.items[configID].FallbackPriceFE
}

// Len returns the number of loaded items.
func (it *Items) Len() int {
	return len(it.items)
}
