package revenue

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// ErrInvalidTable indicates a split table whose legs do not fit inside the impression value.
var ErrInvalidTable = errors.New("revenue: invalid split table")

// Table is the operator-tunable value of one rewarded ad impression and how it is shared.
// The platform keeps whatever the creator and viewer legs leave over.
type Table struct {
	ImpressionValuePaise int64 `yaml:"impression_value_paise"`
	CreatorPaise         int64 `yaml:"creator_paise"`
	ViewerCoins          int64 `yaml:"viewer_coins"`
	ViewerCoinValuePaise int64 `yaml:"viewer_coin_value_paise"`
}

// Share is the outcome of splitting one impression.
type Share struct {
	CreatorPaise  int64
	ViewerCoins   int64
	PlatformPaise int64
}

// DefaultTable is ₹4.00 per impression: ₹2.80 to the creator, 8 coins (₹0.80) to the viewer, ₹0.40 retained.
func DefaultTable() Table {
	return Table{
		ImpressionValuePaise: 400,
		CreatorPaise:         280,
		ViewerCoins:          8,
		ViewerCoinValuePaise: 10,
	}
}

func (t Table) viewerPaise() int64 {
	return t.ViewerCoins * t.ViewerCoinValuePaise
}

func (t Table) Validate() error {
	if t.ImpressionValuePaise <= 0 {
		return fmt.Errorf("%w: impression value must be positive", ErrInvalidTable)
	}
	if t.CreatorPaise < 0 || t.ViewerCoins < 0 || t.ViewerCoinValuePaise < 0 {
		return fmt.Errorf("%w: legs must be non-negative", ErrInvalidTable)
	}
	if t.ViewerCoins > 0 && t.ViewerCoinValuePaise == 0 {
		return fmt.Errorf("%w: viewer coins need a paise value", ErrInvalidTable)
	}
	if t.CreatorPaise+t.viewerPaise() > t.ImpressionValuePaise {
		return fmt.Errorf("%w: creator and viewer legs exceed impression value", ErrInvalidTable)
	}
	return nil
}

// Split maps one completed impression to its three legs. Identical tables always yield
// identical shares.
func (t Table) Split() Share {
	return Share{
		CreatorPaise:  t.CreatorPaise,
		ViewerCoins:   t.ViewerCoins,
		PlatformPaise: t.ImpressionValuePaise - t.CreatorPaise - t.viewerPaise(),
	}
}

// TotalPaise values the share in paise using the table's viewer coin value.
func (s Share) TotalPaise(t Table) int64 {
	return s.CreatorPaise + s.ViewerCoins*t.ViewerCoinValuePaise + s.PlatformPaise
}

// Percentages reports the creator/viewer/platform split as whole percentages of the impression.
func (t Table) Percentages() (creator, viewer, platform int64) {
	s := t.Split()
	v := t.ImpressionValuePaise
	return s.CreatorPaise * 100 / v, t.viewerPaise() * 100 / v, s.PlatformPaise * 100 / v
}

// Load reads a split table from YAML. An empty path or an empty file yields DefaultTable;
// fields missing from the file keep their default values.
func Load(path string) (Table, error) {
	t := DefaultTable()
	if path == "" {
		return t, nil
	}
	file, err := os.Open(path)
	if err != nil {
		return Table{}, fmt.Errorf("open split table: %w", err)
	}
	defer file.Close()
	if err := yaml.NewDecoder(file).Decode(&t); err != nil && !errors.Is(err, io.EOF) {
		return Table{}, fmt.Errorf("decode split table: %w", err)
	}
	if err := t.Validate(); err != nil {
		return Table{}, err
	}
	return t, nil
}
