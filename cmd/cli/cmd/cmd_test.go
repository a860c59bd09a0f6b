package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"azure-bom-cost/internal/config"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestVersion(t *testing.T) {
	cfg := filepath.Join(t.TempDir(), "none.yaml")
	out, err := execute(t, "--config", cfg, "version")
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	if !strings.Contains(out, Version) {
		t.Errorf("output = %q, want version %s", out, Version)
	}
}

func TestConfigInit(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cfg.toml")

	if _, err := execute(t, "--config", filepath.Join(dir, "none.yaml"), "config", "init", path); err != nil {
		t.Fatalf("config init: %v", err)
	}
	got, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load(%s): %v", path, err)
	}
	if got.Currency() != config.Default().Currency() {
		t.Errorf("currency = %s", got.Currency())
	}

	if _, err := execute(t, "--config", filepath.Join(dir, "none.yaml"), "config", "init", path); err == nil {
		t.Error("second init without --force should fail")
	}
}

func TestPricingInspect(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "retail.csv")
	body := "serviceName,productName,skuName,armSkuName,meterName,unitOfMeasure,retailPrice,currencyCode,armRegionName,type\n" +
		"Virtual Machines,Virtual Machines Dsv5 Series,D4s v5,Standard_D4s_v5,D4s v5,1 Hour,0.648,AUD,australiaeast,Consumption\n" +
		"Virtual Machines,Virtual Machines Dsv5 Series,D4s v5,Standard_D4s_v5,D4s v5,1 Hour,,AUD,australiaeast,Consumption\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	out, err := execute(t, "--config", filepath.Join(dir, "none.yaml"), "pricing", "inspect", path)
	if err != nil {
		t.Fatalf("pricing inspect: %v", err)
	}
	for _, want := range []string{"Rows:         2", "Records:      1", "missing unit price"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}
