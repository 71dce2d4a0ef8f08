package config

import (
	"fmt"
	"os"
	"path/filepath"
)

const configTemplate = `# stocksense configuration

[analysis]
# Local-extrema window used by the chart and level detectors
extrema_order = 5
# Support/resistance clustering tolerance as percent of the cluster mean
cluster_tolerance_pct = 1.5
# Minimum touches for a level to count
min_touches = 2
# Bars used for average-volume comparisons
volume_lookback = 20
# Indicator periods
atr_period = 14
rsi_period = 14

[aggregator]
# Optional overrides for component weights, e.g.
# [aggregator.weights]
# news_sentiment = 0.20
# candlestick = 0.20
# chart_pattern = 0.25
# support_resistance = 0.20
# volume = 0.15

[log]
# Log level: debug, info, warn, error
level = "info"
console = true
file = true

[store]
# SQLite database path; defaults under the config directory

[ui]
color_enabled = true
date_format = "02-Jan-2006"
`

// createTemplateConfig writes a commented starter config so the defaults are
// discoverable. Never overwrites an existing file.
func createTemplateConfig(configDir string) error {
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	path := filepath.Join(configDir, "config.toml")
	if _, err := os.Stat(path); err == nil {
		return nil
	}

	return os.WriteFile(path, []byte(configTemplate), 0644)
}
