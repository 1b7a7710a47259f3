package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DATA_PATH", "")
	t.Setenv("PORT", "")
	t.Setenv("CHART_WIDTH", "")
	t.Setenv("CHART_HEIGHT", "")

	cfg := Load()
	if cfg.DataPath != "Crime_Data_from_2020_to_Present.csv" {
		t.Errorf("DataPath = %q", cfg.DataPath)
	}
	if cfg.Port != "8080" {
		t.Errorf("Port = %q", cfg.Port)
	}
	if cfg.ChartWidth != 800 || cfg.ChartHeight != 500 {
		t.Errorf("chart size = %dx%d", cfg.ChartWidth, cfg.ChartHeight)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("DATA_PATH", "/data/crimes.csv")
	t.Setenv("SQLITE_PATH", "/tmp/q.db")
	t.Setenv("CHART_WIDTH", "1200")
	t.Setenv("CHART_HEIGHT", "not-a-number")

	cfg := Load()
	if cfg.DataPath != "/data/crimes.csv" || cfg.SQLitePath != "/tmp/q.db" {
		t.Errorf("unexpected paths: %+v", cfg)
	}
	opts := cfg.RenderOptions()
	if opts.Width != 1200 {
		t.Errorf("Width = %d", opts.Width)
	}
	if opts.Height != 500 {
		t.Errorf("invalid height should fall back to default, got %d", opts.Height)
	}
}
