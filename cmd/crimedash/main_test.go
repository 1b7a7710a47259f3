package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/smartcity/crimedash/internal/domain"
)

const sampleCSV = "DR_NO,DATE OCC,TIME OCC,AREA NAME,Crm Cd Desc,Status Desc,Vict Age,Vict Sex,Vict Descent,Weapon Desc,LAT,LON\n" +
	"1,01/05/2021 12:00:00 AM,0900,Central,BURGLARY,Invest Cont,30,M,H,,34.05,-118.25\n" +
	"2,02/10/2021 12:00:00 AM,1400,Central,ROBBERY,Adult Arrest,41,F,W,KNIFE,34.04,-118.26\n" +
	"3,02/15/2021 12:00:00 AM,2100,Hollywood,BURGLARY,Invest Cont,55,F,B,,34.10,-118.33\n"

func writeSample(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "crimes.csv")
	if err := os.WriteFile(path, []byte(sampleCSV), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestOptionsCommand(t *testing.T) {
	out, err := run(t, "options", "--data", writeSample(t))
	if err != nil {
		t.Fatalf("options failed: %v", err)
	}

	var opts domain.FilterOptions
	if err := json.Unmarshal([]byte(out), &opts); err != nil {
		t.Fatalf("invalid JSON output: %v\n%s", err, out)
	}
	if opts.Records != 3 || len(opts.Areas) != 3 {
		t.Errorf("options = %+v", opts)
	}
}

func TestChartCommandJSON(t *testing.T) {
	out, err := run(t, "chart", "trend", "--data", writeSample(t), "--json", "--area", "Central")
	if err != nil {
		t.Fatalf("chart failed: %v", err)
	}

	var result struct {
		Total int                 `json:"total"`
		Data  []domain.TrendPoint `json:"data"`
	}
	if err := json.Unmarshal([]byte(out), &result); err != nil {
		t.Fatalf("invalid JSON output: %v\n%s", err, out)
	}
	if result.Total != 2 || len(result.Data) != 2 {
		t.Errorf("result = %+v", result)
	}
}

func TestChartCommandPNG(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "out.png")
	out, err := run(t, "chart", "time-heatmap", "--data", writeSample(t), "--out", dest, "--width", "320", "--height", "240")
	if err != nil {
		t.Fatalf("chart failed: %v", err)
	}
	if !strings.Contains(out, dest) {
		t.Errorf("output = %q", out)
	}
	b, err := os.ReadFile(dest)
	if err != nil || len(b) < 8 || string(b[1:4]) != "PNG" {
		t.Errorf("no PNG written: %v", err)
	}
}

func TestChartCommandErrors(t *testing.T) {
	data := writeSample(t)
	if _, err := run(t, "chart", "pie", "--data", data, "--json"); err == nil {
		t.Error("expected an error for an unknown chart kind")
	}
	if _, err := run(t, "chart", "trend", "--data", filepath.Join(t.TempDir(), "missing.csv"), "--json"); err == nil {
		t.Error("expected an error for a missing dataset")
	}
	if _, err := run(t, "chart", "--data", data); err == nil {
		t.Error("expected an error without a chart kind")
	}
}
