// Package api is the HTTP JSON client for the missing-data analysis service.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gapscope/internal/model"
)

// Timeouts holds the per-call deadlines.
type Timeouts struct {
	Upload  time.Duration
	Preview time.Duration
	List    time.Duration
	Details time.Duration
	Patch   time.Duration
}

// DefaultTimeouts returns the standard per-call deadlines.
func DefaultTimeouts() Timeouts {
	return Timeouts{
		Upload:  60 * time.Second,
		Preview: 15 * time.Second,
		List:    30 * time.Second,
		Details: 15 * time.Second,
		Patch:   10 * time.Second,
	}
}

// Client calls the analysis service. All responses use the uniform
// {success, message?, ...} envelope; success=false or a non-2xx status is
// a failure classified per the error taxonomy.
type Client struct {
	baseURL    string
	httpClient *http.Client
	timeouts   Timeouts
}

// New builds a client against the given base URL (e.g. http://localhost:8000).
func New(baseURL string, timeouts Timeouts) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{},
		timeouts:   timeouts,
	}
}

type envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// Suggestions are the server's pre-checked missing-value indicators.
type Suggestions struct {
	Blanks bool `json:"blanks"`
	NA     bool `json:"na"`
}

// FeatureDetails is the per-feature analysis payload.
type FeatureDetails struct {
	Correlated  []model.CorrelationEntry `json:"correlated_features"`
	Informative model.Informative        `json:"informative_missingness"`
}

// ValidateUpload posts the dataset file for server-side validation.
func (c *Client) ValidateUpload(ctx context.Context, path string) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open dataset: %w", err)
	}
	defer func() {
		// Best-effort close of the read-only handle.
		_ = file.Close()
	}()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", filepath.Base(path))
	if err != nil {
		return fmt.Errorf("failed to build upload form: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return fmt.Errorf("failed to read dataset: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finish upload form: %w", err)
	}

	var resp struct {
		envelope
	}
	return c.do(ctx, http.MethodPost, "/api/validate-upload", nil, &body, writer.FormDataContentType(), c.timeouts.Upload, &resp)
}

type previewRequest struct {
	MissingDataOptions model.MissingIndicators `json:"missing_data_options"`
	HasHeaderRow       bool                    `json:"has_header_row"`
}

// PreviewLive fetches the grid preview for the current configuration.
func (c *Client) PreviewLive(ctx context.Context, cfg model.WizardConfig) (model.PreviewGrid, error) {
	req := previewRequest{
		MissingDataOptions: cfg.Indicators,
		HasHeaderRow:       cfg.HasHeaderRow(),
	}
	var resp struct {
		envelope
		model.PreviewGrid
	}
	if err := c.postJSON(ctx, "/api/dataset-preview-live", req, c.timeouts.Preview, &resp); err != nil {
		return model.PreviewGrid{}, err
	}
	return resp.PreviewGrid, nil
}

// SubmitFeatureNames persists the header-row choice.
func (c *Client) SubmitFeatureNames(ctx context.Context, hasHeaderRow bool) error {
	req := struct {
		HasHeaderRow bool `json:"has_header_row"`
	}{HasHeaderRow: hasHeaderRow}
	var resp envelope
	return c.postJSON(ctx, "/api/submit-feature-names", req, c.timeouts.Patch, &resp)
}

// SubmitMissingDataOptions persists the missing-value indicator set.
func (c *Client) SubmitMissingDataOptions(ctx context.Context, indicators model.MissingIndicators) error {
	req := struct {
		MissingDataOptions model.MissingIndicators `json:"missing_data_options"`
	}{MissingDataOptions: indicators}
	var resp envelope
	return c.postJSON(ctx, "/api/submit-missing-data-options", req, c.timeouts.Patch, &resp)
}

// SubmitData persists the full configuration including the target feature.
// The service expects multipart form fields with the indicator set as a
// JSON-encoded string.
func (c *Client) SubmitData(ctx context.Context, cfg model.WizardConfig) error {
	options, err := json.Marshal(cfg.Indicators)
	if err != nil {
		return fmt.Errorf("failed to encode missing data options: %w", err)
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	fields := map[string]string{
		"missingDataOptions": string(options),
		"targetFeature":      cfg.TargetFeature,
		"targetType":         string(cfg.TargetType),
	}
	for name, value := range fields {
		if err := writer.WriteField(name, value); err != nil {
			return fmt.Errorf("failed to build submit form: %w", err)
		}
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finish submit form: %w", err)
	}

	var resp envelope
	return c.do(ctx, http.MethodPost, "/api/submit-data", nil, &body, writer.FormDataContentType(), c.timeouts.Patch, &resp)
}

// DetectMissingOptions asks the service which indicators look present.
func (c *Client) DetectMissingOptions(ctx context.Context) (Suggestions, error) {
	var resp struct {
		envelope
		Suggestions Suggestions `json:"suggestions"`
	}
	if err := c.getJSON(ctx, "/api/detect-missing-data-options", nil, c.timeouts.Details, &resp); err != nil {
		return Suggestions{}, err
	}
	return resp.Suggestions, nil
}

// MissingFeatures fetches one page of features that have missing values.
func (c *Client) MissingFeatures(ctx context.Context, page, limit int) ([]model.FeatureRecord, model.Pagination, error) {
	return c.featurePage(ctx, "/api/missing-features-table", page, limit)
}

// CompleteFeatures fetches one page of features without missing values.
func (c *Client) CompleteFeatures(ctx context.Context, page, limit int) ([]model.FeatureRecord, model.Pagination, error) {
	return c.featurePage(ctx, "/api/complete-features-table", page, limit)
}

func (c *Client) featurePage(ctx context.Context, path string, page, limit int) ([]model.FeatureRecord, model.Pagination, error) {
	query := url.Values{}
	query.Set("page", strconv.Itoa(page))
	query.Set("limit", strconv.Itoa(limit))
	var resp struct {
		envelope
		Features   []model.FeatureRecord `json:"features"`
		Pagination model.Pagination      `json:"pagination"`
	}
	if err := c.getJSON(ctx, path, query, c.timeouts.List, &resp); err != nil {
		return nil, model.Pagination{}, err
	}
	return resp.Features, resp.Pagination, nil
}

// FeatureDetails fetches the analysis for a single feature under the
// given correlation thresholds.
func (c *Client) FeatureDetails(ctx context.Context, name string, t model.Thresholds) (FeatureDetails, error) {
	query := url.Values{}
	query.Set("pearson_threshold", formatThreshold(t.Pearson))
	query.Set("cramer_v_threshold", formatThreshold(t.CramerV))
	query.Set("eta_threshold", formatThreshold(t.Eta))
	var resp struct {
		envelope
		FeatureDetails
	}
	path := "/api/feature-details/" + url.PathEscape(name)
	if err := c.getJSON(ctx, path, query, c.timeouts.Details, &resp); err != nil {
		return FeatureDetails{}, err
	}
	return resp.FeatureDetails, nil
}

// PatchDataType changes a feature's declared data type on the service.
func (c *Client) PatchDataType(ctx context.Context, name string, dataType model.DataType) error {
	req := struct {
		FeatureName string         `json:"feature_name"`
		DataType    model.DataType `json:"data_type"`
	}{FeatureName: name, DataType: dataType}

	payload, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("failed to encode data type patch: %w", err)
	}
	var resp envelope
	return c.do(ctx, http.MethodPatch, "/api/features-table", nil, bytes.NewReader(payload), "application/json", c.timeouts.Patch, &resp)
}

// Recommendations fetches the grouped treatment recommendations.
func (c *Client) Recommendations(ctx context.Context) ([]model.Recommendation, error) {
	var resp struct {
		envelope
		Recommendations []model.Recommendation `json:"recommendations"`
	}
	if err := c.getJSON(ctx, "/api/missing-data-recommendations", nil, c.timeouts.List, &resp); err != nil {
		return nil, err
	}
	return resp.Recommendations, nil
}

// Mechanism fetches the dataset-level missingness mechanism.
func (c *Client) Mechanism(ctx context.Context) (model.Mechanism, error) {
	var resp struct {
		envelope
		model.Mechanism
	}
	if err := c.getJSON(ctx, "/api/missing-data-mechanism", nil, c.timeouts.List, &resp); err != nil {
		return model.Mechanism{}, err
	}
	return resp.Mechanism, nil
}

// CaseCount fetches the case summary card data.
func (c *Client) CaseCount(ctx context.Context) (model.CaseSummary, error) {
	var resp struct {
		envelope
		model.CaseSummary
	}
	if err := c.getJSON(ctx, "/api/case-count", nil, c.timeouts.Details, &resp); err != nil {
		return model.CaseSummary{}, err
	}
	return resp.CaseSummary, nil
}

// FeatureCount fetches the feature summary card data.
func (c *Client) FeatureCount(ctx context.Context) (model.FeatureSummary, error) {
	var resp struct {
		envelope
		model.FeatureSummary
	}
	if err := c.getJSON(ctx, "/api/feature-count", nil, c.timeouts.Details, &resp); err != nil {
		return model.FeatureSummary{}, err
	}
	return resp.FeatureSummary, nil
}

func (c *Client) getJSON(ctx context.Context, path string, query url.Values, timeout time.Duration, out any) error {
	return c.do(ctx, http.MethodGet, path, query, nil, "", timeout, out)
}

func (c *Client) postJSON(ctx context.Context, path string, in any, timeout time.Duration, out any) error {
	payload, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}
	return c.do(ctx, http.MethodPost, path, nil, bytes.NewReader(payload), "application/json", timeout, out)
}

// do issues one request and decodes the envelope. out must embed or be an
// envelope so success=false responses can surface the server message.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body io.Reader, contentType string, timeout time.Duration, out any) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}
	if body == nil {
		body = http.NoBody
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return classifyTransport(err)
	}
	defer func() {
		// Best-effort body close.
		_ = resp.Body.Close()
	}()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return classifyTransport(err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var env envelope
		// The body may not be JSON on proxy-level failures.
		_ = json.Unmarshal(data, &env)
		return &Error{Kind: classifyStatus(resp.StatusCode), Status: resp.StatusCode, Message: env.Message}
	}

	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return &Error{Kind: KindUnknown, Status: resp.StatusCode, cause: fmt.Errorf("failed to decode response: %w", err)}
	}
	if !env.Success && !isEnvelopeFree(path) {
		return &Error{Kind: KindUnknown, Status: resp.StatusCode, Message: env.Message}
	}
	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return &Error{Kind: KindUnknown, Status: resp.StatusCode, cause: fmt.Errorf("failed to decode response: %w", err)}
		}
	}
	return nil
}

// isEnvelopeFree marks the endpoints that answer without a success flag.
func isEnvelopeFree(path string) bool {
	return path == "/api/missing-data-mechanism"
}

func formatThreshold(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
