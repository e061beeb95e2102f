package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/jwalitptl/license-monitor/internal/model"
	apperrors "github.com/jwalitptl/license-monitor/pkg/errors"
)

const (
	twilioAPIBase    = "https://api.twilio.com/2010-04-01"
	twilioVerifyBase = "https://verify.twilio.com/v2"
)

type TwilioConfig struct {
	AccountSID       string
	AuthToken        string
	FromNumber       string
	VerifyServiceSID string
}

// TwilioClient talks to the Twilio REST API directly: the Messages resource
// for alert SMS and the Verify service for login codes.
type TwilioClient struct {
	cfg        TwilioConfig
	httpClient *http.Client
	apiBase    string
	verifyBase string
}

func NewTwilioClient(cfg TwilioConfig) *TwilioClient {
	return &TwilioClient{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		apiBase:    twilioAPIBase,
		verifyBase: twilioVerifyBase,
	}
}

func (c *TwilioClient) SendExpiryAlert(ctx context.Context, recipient string, alert ExpiryAlert) error {
	if c.cfg.AccountSID == "" || c.cfg.AuthToken == "" || c.cfg.FromNumber == "" {
		return apperrors.Configuration("Twilio credentials not configured", nil)
	}

	endpoint := fmt.Sprintf("%s/Accounts/%s/Messages.json", c.apiBase, c.cfg.AccountSID)
	form := url.Values{
		"To":   {recipient},
		"From": {c.cfg.FromNumber},
		"Body": {smsBody(alert)},
	}
	_, err := c.postForm(ctx, endpoint, form)
	return err
}

func (c *TwilioClient) StartVerification(ctx context.Context, phone string) error {
	if c.cfg.AccountSID == "" || c.cfg.AuthToken == "" || c.cfg.VerifyServiceSID == "" {
		return apperrors.Configuration("SMS service not configured", nil)
	}

	endpoint := fmt.Sprintf("%s/Services/%s/Verifications", c.verifyBase, c.cfg.VerifyServiceSID)
	form := url.Values{
		"To":      {phone},
		"Channel": {"sms"},
	}
	_, err := c.postForm(ctx, endpoint, form)
	return err
}

func (c *TwilioClient) CheckVerification(ctx context.Context, phone, code string) (bool, error) {
	if c.cfg.AccountSID == "" || c.cfg.AuthToken == "" || c.cfg.VerifyServiceSID == "" {
		return false, apperrors.Configuration("SMS service not configured", nil)
	}

	endpoint := fmt.Sprintf("%s/Services/%s/VerificationCheck", c.verifyBase, c.cfg.VerifyServiceSID)
	form := url.Values{
		"To":   {phone},
		"Code": {code},
	}
	body, err := c.postForm(ctx, endpoint, form)
	if err != nil {
		return false, err
	}

	var result struct {
		Status string `json:"status"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return false, fmt.Errorf("failed to parse verification response: %w", err)
	}
	return result.Status == "approved", nil
}

func (c *TwilioClient) postForm(ctx context.Context, endpoint string, form url.Values) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to build Twilio request: %w", err)
	}
	req.SetBasicAuth(c.cfg.AccountSID, c.cfg.AuthToken)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("twilio request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read Twilio response: %w", err)
	}
	if resp.StatusCode >= 400 {
		var apiErr struct {
			Message string `json:"message"`
		}
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Message != "" {
			return nil, fmt.Errorf("twilio error (%d): %s", resp.StatusCode, apiErr.Message)
		}
		return nil, fmt.Errorf("twilio error: status %d", resp.StatusCode)
	}
	return body, nil
}

func smsBody(alert ExpiryAlert) string {
	expiry := alert.ExpiryDate.Format("Jan 2, 2006")
	if alert.Level == model.AlertLevelExpired {
		return fmt.Sprintf("WPL ALERT: %s's %s has EXPIRED (%s). Renew immediately.",
			alert.WorkerName, alert.LicenseTypeName, expiry)
	}
	return fmt.Sprintf("WPL ALERT: %s's %s expires %s (%s). Please arrange renewal.",
		alert.WorkerName, alert.LicenseTypeName, expiry, alert.Level)
}
