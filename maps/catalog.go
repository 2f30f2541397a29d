package maps

import (
	"encoding/json"
	"github.com/lefinal/bedwars-server/errors"
	"go.uber.org/zap"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// DefaultPlayType is used for maps that do not specify a play type.
const DefaultPlayType = "2x1"

// Catalog holds all loaded maps. It is read-only after loading and therefore
// safe for concurrent use.
type Catalog struct {
	maps map[string]Map
	ids  []string
}

// NewCatalog creates a Catalog from the given maps. Later maps with the same
// name replace earlier ones.
func NewCatalog(maps ...Map) *Catalog {
	c := &Catalog{maps: make(map[string]Map, len(maps))}
	for _, m := range maps {
		c.maps[m.Name] = m
	}
	c.ids = make([]string, 0, len(c.maps))
	for name := range c.maps {
		c.ids = append(c.ids, name)
	}
	sort.Strings(c.ids)
	return c
}

// LoadCatalog loads all JSON map files from the given directory. Files that
// fail to parse are logged and skipped. If playType is not empty, only maps
// built for it are included.
func LoadCatalog(logger *zap.Logger, dir string, playType string) (*Catalog, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.NewInternalErrorFromErr(err, "read maps dir", errors.Details{"dir": dir})
	}
	loaded := make([]Map, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		m, err := loadMapFile(path)
		if err != nil {
			errors.Log(logger, errors.Wrap(err, "load map file", errors.Details{"path": path}))
			continue
		}
		if playType != "" && !strings.EqualFold(m.PlayType, playType) {
			logger.Debug("skipping map for other play type",
				zap.String("map", m.Name), zap.String("map_play_type", m.PlayType))
			continue
		}
		loaded = append(loaded, m)
	}
	logger.Info("maps loaded", zap.Int("count", len(loaded)), zap.String("dir", dir))
	return NewCatalog(loaded...), nil
}

func loadMapFile(path string) (Map, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Map{}, errors.NewInternalErrorFromErr(err, "read file", nil)
	}
	var f mapFile
	err = json.Unmarshal(raw, &f)
	if err != nil {
		return Map{}, errors.Error{
			Code:    errors.ErrBadRequest,
			Err:     err,
			Message: "parse map json",
		}
	}
	return f.toMap(strings.TrimSuffix(filepath.Base(path), ".json")), nil
}

// ListMapIDs returns the names of all maps in lexicographic order.
func (c *Catalog) ListMapIDs() []string {
	out := make([]string, len(c.ids))
	copy(out, c.ids)
	return out
}

// Get returns the Map with the given name.
func (c *Catalog) Get(name string) (Map, bool) {
	m, ok := c.maps[name]
	return m, ok
}

// Len returns the number of maps.
func (c *Catalog) Len() int {
	return len(c.ids)
}
