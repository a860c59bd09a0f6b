package normalize

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"azure-bom-cost/core/types"
)

func TestRegion(t *testing.T) {
	tests := map[string]string{
		"Australia East": "australiaeast",
		"australiaeast":  "australiaeast",
		" West  US 2 ":   "westus2",
		"Global":         "",
		"global":         "",
		"":               "",
	}
	for in, want := range tests {
		if got := Region(in); got != want {
			t.Errorf("Region(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestRetailMapsFields(t *testing.T) {
	rows := []Row{{
		"serviceName":        "Virtual Machines",
		"productName":        "Virtual Machines Dsv5 Series",
		"skuName":            "D4s v5",
		"armSkuName":         "Standard_D4s_v5",
		"meterName":          "D4s v5",
		"serviceFamily":      "Compute",
		"armRegionName":      "AustraliaEast",
		"retailPrice":        json.Number("0.648"),
		"unitPrice":          json.Number("0.648"),
		"unitOfMeasure":      "1 Hour",
		"currencyCode":       "AUD",
		"type":               "Consumption",
		"effectiveStartDate": "2024-03-01T00:00:00Z",
		"tierMinimumUnits":   json.Number("0"),
		"meterId":            "m-1",
	}}

	res := Retail(rows, types.SourceRetailLive, types.CurrencyUSD)
	if len(res.Records) != 1 {
		t.Fatalf("expected 1 record, got %d (dropped %v)", len(res.Records), res.Dropped)
	}
	r := res.Records[0]

	if r.RegionKey != "australiaeast" {
		t.Errorf("RegionKey = %q", r.RegionKey)
	}
	if !r.UnitPrice.Equal(decimal.RequireFromString("0.648")) {
		t.Errorf("UnitPrice = %s", r.UnitPrice)
	}
	if r.CurrencyCode != "AUD" {
		t.Errorf("CurrencyCode = %q", r.CurrencyCode)
	}
	if r.PriceType != types.PriceConsumption {
		t.Errorf("PriceType = %q", r.PriceType)
	}
	if r.EffectiveStart == nil || !r.EffectiveStart.Equal(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("EffectiveStart = %v", r.EffectiveStart)
	}
	if r.EffectiveEnd != nil {
		t.Errorf("EffectiveEnd should be absent, got %v", r.EffectiveEnd)
	}
	if r.TierMinimumUnits == nil || !r.TierMinimumUnits.IsZero() {
		t.Errorf("TierMinimumUnits = %v", r.TierMinimumUnits)
	}
	if r.Source != types.SourceRetailLive {
		t.Errorf("Source = %q", r.Source)
	}
}

func TestRetailGlobalRegionAndLocationFallback(t *testing.T) {
	rows := []Row{
		{"serviceName": "Functions", "skuName": "Standard", "retailPrice": "0.2", "armRegionName": "Global"},
		{"serviceName": "Functions", "skuName": "Standard", "retailPrice": "0.2", "location": "AU East"},
	}
	res := Retail(rows, types.SourceRetailOffline, types.CurrencyAUD)
	if len(res.Records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(res.Records))
	}
	if !res.Records[0].IsGlobal() {
		t.Errorf("Global region should normalize to a global meter, got %q", res.Records[0].RegionKey)
	}
	if res.Records[1].RegionKey != "aueast" {
		t.Errorf("location fallback = %q", res.Records[1].RegionKey)
	}
	if res.Records[1].CurrencyCode != types.CurrencyAUD {
		t.Errorf("fallback currency not applied: %q", res.Records[1].CurrencyCode)
	}
}

func TestDroppedRows(t *testing.T) {
	base := func(overrides Row) Row {
		r := Row{"serviceName": "Storage", "skuName": "Hot LRS", "retailPrice": "0.02", "unitOfMeasure": "1 GB/Month"}
		for k, v := range overrides {
			r[k] = v
		}
		return r
	}

	tests := []struct {
		name   string
		row    Row
		reason string
	}{
		{"negative price", base(Row{"retailPrice": "-1"}), ReasonNegativePrice},
		{"missing price", base(Row{"retailPrice": nil}), ReasonMissingPrice},
		{"garbage price", base(Row{"retailPrice": "n/a"}), ReasonBadPrice},
		{"no sku", base(Row{"skuName": ""}), ReasonMissingSku},
		{"no service", base(Row{"serviceName": " "}), ReasonMissingService},
		{"bad date", base(Row{"effectiveStartDate": "yesterday"}), ReasonBadDate},
		{"unknown price type", base(Row{"type": "Spot"}), ReasonBadPriceType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Retail([]Row{tt.row}, types.SourceRetailOffline, types.CurrencyAUD)
			if len(res.Records) != 0 {
				t.Fatalf("row should be dropped, got %+v", res.Records[0])
			}
			if res.Dropped[tt.reason] != 1 {
				t.Errorf("Dropped = %v, want reason %q", res.Dropped, tt.reason)
			}
		})
	}
}

func TestNoNegativePricesSurvive(t *testing.T) {
	rows := []Row{
		{"serviceName": "A", "skuName": "x", "retailPrice": "-0.01"},
		{"serviceName": "A", "skuName": "x", "retailPrice": "0"},
		{"serviceName": "A", "skuName": "x", "retailPrice": "1.5"},
	}
	res := Retail(rows, types.SourceRetailLive, "")
	for _, r := range res.Records {
		if r.UnitPrice.IsNegative() {
			t.Fatalf("negative price survived: %s", r.UnitPrice)
		}
	}
	if len(res.Records) != 2 || res.DroppedTotal() != 1 {
		t.Errorf("records=%d dropped=%d", len(res.Records), res.DroppedTotal())
	}
	errs := res.DropErrors()
	if len(errs) != 1 || errs[0].Context["rows"] != 1 {
		t.Errorf("DropErrors() = %v", errs)
	}
}

func TestEnterpriseColumnVariants(t *testing.T) {
	tests := []struct {
		name    string
		row     Row
		service string
		sku     string
		region  string
		unit    string
		price   string
		ptype   types.PriceType
	}{
		{
			name:    "billing api casing",
			row:     Row{"ServiceName": "Virtual Machines", "SkuName": "D2s v5", "UnitPrice": "0.11", "UnitOfMeasure": "1 Hour", "ArmRegionName": "australiaeast", "PriceType": "Consumption"},
			service: "Virtual Machines", sku: "D2s v5", region: "australiaeast", unit: "1 Hour", price: "0.11", ptype: types.PriceConsumption,
		},
		{
			name:    "export with display columns",
			row:     Row{"ProductName": "Event Hubs", "MeterName": "Standard Throughput Unit", "DiscountedPrice": "0.02", "UnitOfMeasureDisplay": "1 Hour", "Region": "Australia East"},
			service: "Event Hubs", sku: "Standard Throughput Unit", region: "australiaeast", unit: "1 Hour", price: "0.02", ptype: types.PriceConsumption,
		},
		{
			name:    "rate and uom with blank region",
			row:     Row{"serviceName": "Key Vault", "skuName": "Operations", "rate": "0.03", "uom": "10,000", "regionName": "", "type": "Reservation"},
			service: "Key Vault", sku: "Operations", region: "", unit: "10,000", price: "0.03", ptype: types.PriceReservation,
		},
		{
			name:    "effective unit price",
			row:     Row{"serviceName": "Storage", "armSkuName": "Standard_LRS", "EffectiveUnitPrice": "0.05", "unitOfMeasure": "1 GB/Month", "Location": "Global"},
			service: "Storage", sku: "Standard_LRS", region: "", unit: "1 GB/Month", price: "0.05", ptype: types.PriceConsumption,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Enterprise([]Row{tt.row}, types.SourceEnterpriseCSV, types.CurrencyAUD)
			if len(res.Records) != 1 {
				t.Fatalf("expected 1 record, dropped %v", res.Dropped)
			}
			r := res.Records[0]
			if r.ServiceName != tt.service {
				t.Errorf("ServiceName = %q, want %q", r.ServiceName, tt.service)
			}
			if r.Sku() != tt.sku {
				t.Errorf("Sku() = %q, want %q", r.Sku(), tt.sku)
			}
			if r.RegionKey != tt.region {
				t.Errorf("RegionKey = %q, want %q", r.RegionKey, tt.region)
			}
			if r.UnitOfMeasure != tt.unit {
				t.Errorf("UnitOfMeasure = %q, want %q", r.UnitOfMeasure, tt.unit)
			}
			if !r.UnitPrice.Equal(decimal.RequireFromString(tt.price)) {
				t.Errorf("UnitPrice = %s, want %s", r.UnitPrice, tt.price)
			}
			if r.PriceType != tt.ptype {
				t.Errorf("PriceType = %q, want %q", r.PriceType, tt.ptype)
			}
		})
	}
}

func TestRetailDeduplicatesMeterRows(t *testing.T) {
	row := Row{"meterId": "abc", "serviceName": "Storage", "skuName": "Hot LRS", "retailPrice": "0.02", "armRegionName": "australiaeast"}
	res := Retail([]Row{row, row}, types.SourceRetailLive, types.CurrencyAUD)
	if len(res.Records) != 1 {
		t.Errorf("expected duplicate meter to collapse, got %d records", len(res.Records))
	}
	if res.Dropped[ReasonDuplicateMeterID] != 1 {
		t.Errorf("Dropped = %v", res.Dropped)
	}
}
