package pricing

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"go.uber.org/zap"

	"azure-bom-cost/core/normalize"
	"azure-bom-cost/internal/errors"
)

// EnterpriseMode selects the billing scope of the price sheet
type EnterpriseMode string

const (
	// ModeMCA downloads a Microsoft Customer Agreement billing account sheet
	ModeMCA EnterpriseMode = "mca"
	// ModeEA downloads an Enterprise Agreement enrollment account sheet
	ModeEA EnterpriseMode = "ea"
)

const (
	// DefaultManagementURL is the Azure Resource Manager endpoint
	DefaultManagementURL = "https://management.azure.com"

	// PriceSheetAPIVersion is the Cost Management API version requested
	PriceSheetAPIVersion = "2023-03-01"

	managementScope = "https://management.azure.com/.default"
)

// Environment variables holding service principal credentials
const (
	EnvTenantID     = "AZ_TENANT_ID"
	EnvClientID     = "AZ_CLIENT_ID"
	EnvClientSecret = "AZ_CLIENT_SECRET"
)

// EnterpriseConfig configures the price sheet client
type EnterpriseConfig struct {
	Mode              EnterpriseMode
	BillingAccount    string
	EnrollmentAccount string

	BaseURL     string
	APIVersion  string
	HTTPTimeout time.Duration
}

// Validate checks that the account for the mode is set
func (c *EnterpriseConfig) Validate() error {
	switch c.Mode {
	case ModeMCA:
		if c.BillingAccount == "" {
			return errors.Config("mca price sheet requires a billing account", nil).WithContext("field", "billing_account")
		}
	case ModeEA:
		if c.EnrollmentAccount == "" {
			return errors.Config("ea price sheet requires an enrollment account", nil).WithContext("field", "enrollment_account")
		}
	default:
		return errors.Config(fmt.Sprintf("unknown enterprise price sheet mode %q", c.Mode), nil).WithContext("field", "mode")
	}
	return nil
}

// NewCredential returns a client secret credential when the service
// principal environment variables are all set, and the default Azure
// credential chain otherwise
func NewCredential() (azcore.TokenCredential, error) {
	tenant, client, secret := os.Getenv(EnvTenantID), os.Getenv(EnvClientID), os.Getenv(EnvClientSecret)
	if tenant != "" && client != "" && secret != "" {
		cred, err := azidentity.NewClientSecretCredential(tenant, client, secret, nil)
		if err != nil {
			return nil, errors.Config("failed to create client secret credential", err)
		}
		return cred, nil
	}
	cred, err := azidentity.NewDefaultAzureCredential(nil)
	if err != nil {
		return nil, errors.Config("failed to create default Azure credential", err)
	}
	return cred, nil
}

// EnterpriseClient downloads contract price sheets
type EnterpriseClient struct {
	httpClient *http.Client
	cfg        EnterpriseConfig
	cred       azcore.TokenCredential
	logger     *zap.Logger
}

// NewEnterpriseClient creates a price sheet client
func NewEnterpriseClient(cfg EnterpriseConfig, cred azcore.TokenCredential, logger *zap.Logger) (*EnterpriseClient, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cred == nil {
		return nil, errors.Config("enterprise price sheet requires a credential", nil)
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultManagementURL
	}
	if cfg.APIVersion == "" {
		cfg.APIVersion = PriceSheetAPIVersion
	}
	if cfg.HTTPTimeout == 0 {
		cfg.HTTPTimeout = 5 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EnterpriseClient{
		httpClient: &http.Client{Timeout: cfg.HTTPTimeout},
		cfg:        cfg,
		cred:       cred,
		logger:     logger,
	}, nil
}

// downloadURL returns the price sheet download request URL for the scope
func (c *EnterpriseClient) downloadURL() string {
	scope := "billingAccounts/" + url.PathEscape(c.cfg.BillingAccount)
	if c.cfg.Mode == ModeEA {
		scope = "enrollmentAccounts/" + url.PathEscape(c.cfg.EnrollmentAccount)
	}
	return fmt.Sprintf("%s/providers/Microsoft.Billing/%s/providers/Microsoft.CostManagement/pricesheets/default/download?api-version=%s",
		strings.TrimRight(c.cfg.BaseURL, "/"), scope, url.QueryEscape(c.cfg.APIVersion))
}

type downloadMeta struct {
	Properties struct {
		DownloadURL string `json:"downloadUrl"`
	} `json:"properties"`
}

// Download requests the price sheet and returns its rows. The sheet
// itself is served as CSV or as a JSON list of rows.
func (c *EnterpriseClient) Download(ctx context.Context) ([]normalize.Row, error) {
	token, err := c.cred.GetToken(ctx, policy.TokenRequestOptions{Scopes: []string{managementScope}})
	if err != nil {
		return nil, errors.Wrap(errors.TypeConfig, "failed to acquire management token", err)
	}

	body, _, err := c.get(ctx, c.downloadURL(), token.Token)
	if err != nil {
		return nil, err
	}
	var meta downloadMeta
	if err := json.Unmarshal(body, &meta); err != nil {
		return nil, errors.Parsing("invalid price sheet download response", err)
	}
	link := meta.Properties.DownloadURL
	if link == "" {
		return nil, errors.Pricing(fmt.Sprintf("no downloadUrl in %s price sheet response", c.cfg.Mode), nil)
	}

	// the download link is pre-signed; no bearer token
	data, contentType, err := c.get(ctx, link, "")
	if err != nil {
		return nil, err
	}

	var rows []normalize.Row
	if isCSV(contentType, link) {
		rows, err = ReadCSV(bytes.NewReader(data))
	} else {
		rows, err = decodeRowList(data)
	}
	if err != nil {
		return nil, err
	}

	c.logger.Info("enterprise price sheet downloaded",
		zap.String("mode", string(c.cfg.Mode)),
		zap.Int("rows", len(rows)))
	return rows, nil
}

func (c *EnterpriseClient) get(ctx context.Context, target, token string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, "", errors.Network("failed to create request", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, "", errors.Network("price sheet request failed", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", errors.Network("failed to read price sheet response", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, "", errors.Network(fmt.Sprintf("price sheet request returned status %d", resp.StatusCode), nil).
			WithContext("status", resp.StatusCode)
	}
	return data, resp.Header.Get("Content-Type"), nil
}

func isCSV(contentType, link string) bool {
	if strings.Contains(strings.ToLower(contentType), "csv") {
		return true
	}
	if u, err := url.Parse(link); err == nil {
		return strings.HasSuffix(strings.ToLower(u.Path), ".csv")
	}
	return false
}

func decodeRowList(data []byte) ([]normalize.Row, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var rows []normalize.Row
	if err := dec.Decode(&rows); err != nil {
		return nil, errors.Parsing("price sheet is neither CSV nor a JSON list of rows", err)
	}
	return rows, nil
}
