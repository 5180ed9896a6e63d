package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// HTTPGateway talks to the mobile-money gateway's merchant API.
// A fresh bearer token is obtained for every transaction.
type HTTPGateway struct {
	BaseURL     string
	Email       string
	Password    string
	Currency    string
	WebhookBase string
	client      *http.Client
}

func NewHTTPGateway(baseURL, email, password, currency, webhookBase string, timeout time.Duration) *HTTPGateway {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if currency == "" {
		currency = "UGX"
	}
	return &HTTPGateway{
		BaseURL:     baseURL,
		Email:       email,
		Password:    password,
		Currency:    currency,
		WebhookBase: webhookBase,
		client:      &http.Client{Timeout: timeout},
	}
}

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResp struct {
	Token string `json:"token"`
}

func (g *HTTPGateway) getToken(ctx context.Context) (string, error) {
	body, _ := json.Marshal(loginReq{Email: g.Email, Password: g.Password})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.BaseURL+"/api/v1/merchants/login", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := g.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("login failed: %d", resp.StatusCode)
	}
	var out loginResp
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", err
	}
	if out.Token == "" {
		return "", fmt.Errorf("login returned empty token")
	}
	return out.Token, nil
}

// do sends an authenticated JSON request and decodes a 200/201 body into out.
func (g *HTTPGateway) do(ctx context.Context, method, path string, in, out interface{}) error {
	token, err := g.getToken(ctx)
	if err != nil {
		return fmt.Errorf("gateway login: %w", err)
	}
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, g.BaseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := g.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	respBody, _ := io.ReadAll(resp.Body)
	log.Printf("[GATEWAY] %s %s status=%d", method, path, resp.StatusCode)
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("gateway %s: %d %s", path, resp.StatusCode, string(respBody))
	}
	return json.Unmarshal(respBody, out)
}

func (g *HTTPGateway) callbackURL(explicit string) string {
	if explicit != "" {
		return explicit
	}
	if g.WebhookBase == "" {
		return ""
	}
	return g.WebhookBase + "/api/v1/webhooks/gateway"
}

type collectionReq struct {
	Amount            string                 `json:"amount"`
	Currency          string                 `json:"currency"`
	Description       string                 `json:"description"`
	CustomerPhone     string                 `json:"customer_phone"`
	CustomerName      string                 `json:"customer_name"`
	Provider          string                 `json:"provider,omitempty"`
	CallbackURL       string                 `json:"callback_url,omitempty"`
	MerchantReference string                 `json:"merchant_reference"`
	Metadata          map[string]interface{} `json:"metadata,omitempty"`
}

type transactionResp struct {
	Reference         string `json:"reference"`
	MerchantReference string `json:"merchant_reference"`
	Status            string `json:"status"`
	FailureReason     string `json:"failure_reason"`
	CompletedAt       string `json:"completed_at"`
}

func (t *transactionResp) toStatus() *StatusResult {
	out := &StatusResult{Reference: t.Reference, Status: t.Status, FailureReason: t.FailureReason}
	if t.CompletedAt != "" {
		if ts, err := time.Parse(time.RFC3339, t.CompletedAt); err == nil {
			out.CompletedAt = &ts
		}
	}
	return out
}

func (g *HTTPGateway) CreatePayment(ctx context.Context, req PaymentRequest) (*Result, error) {
	currency := req.Currency
	if currency == "" {
		currency = g.Currency
	}
	payload := collectionReq{
		Amount:            strconv.FormatInt(req.Amount, 10),
		Currency:          currency,
		Description:       req.Description,
		CustomerPhone:     req.Phone,
		CustomerName:      req.PayerName,
		Provider:          req.Provider,
		CallbackURL:       g.callbackURL(req.CallbackURL),
		MerchantReference: req.DepositID,
		Metadata:          req.Metadata,
	}
	log.Printf("[GATEWAY] collection deposit_id=%s amount=%d phone=%s", req.DepositID, req.Amount, req.Phone)
	var out transactionResp
	if err := g.do(ctx, http.MethodPost, "/api/v1/collections", payload, &out); err != nil {
		return nil, err
	}
	if out.Reference == "" {
		return nil, fmt.Errorf("gateway returned no reference for %s", req.DepositID)
	}
	return &Result{Reference: out.Reference, Status: out.Status}, nil
}

func (g *HTTPGateway) GetPaymentStatus(ctx context.Context, reference string) (*StatusResult, error) {
	var out transactionResp
	if err := g.do(ctx, http.MethodGet, "/api/v1/collections/"+url.PathEscape(reference), nil, &out); err != nil {
		return nil, err
	}
	if out.Reference == "" {
		out.Reference = reference
	}
	return out.toStatus(), nil
}

type disbursementReq struct {
	Amount            string                 `json:"amount"`
	Currency          string                 `json:"currency"`
	PhoneNumber       string                 `json:"phone_number"`
	Provider          string                 `json:"provider,omitempty"`
	AccountName       string                 `json:"account_name"`
	Narration         string                 `json:"narration"`
	CallbackURL       string                 `json:"callback_url,omitempty"`
	MerchantReference string                 `json:"merchant_reference"`
	Metadata          map[string]interface{} `json:"metadata,omitempty"`
}

func (g *HTTPGateway) CreatePayout(ctx context.Context, req PayoutRequest) (*Result, error) {
	currency := req.Currency
	if currency == "" {
		currency = g.Currency
	}
	narration := req.Narration
	if narration == "" {
		narration = "Withdrawal payment"
	}
	payload := disbursementReq{
		Amount:            strconv.FormatInt(req.Amount, 10),
		Currency:          currency,
		PhoneNumber:       req.Phone,
		Provider:          req.Provider,
		AccountName:       req.AccountName,
		Narration:         narration,
		CallbackURL:       g.callbackURL(req.CallbackURL),
		MerchantReference: req.OrderRef,
		Metadata:          req.Metadata,
	}
	log.Printf("[GATEWAY] payout order_ref=%s amount=%d phone=%s", req.OrderRef, req.Amount, req.Phone)
	var out transactionResp
	if err := g.do(ctx, http.MethodPost, "/api/v1/payouts", payload, &out); err != nil {
		return nil, err
	}
	if out.Reference == "" {
		return nil, fmt.Errorf("gateway returned no reference for %s", req.OrderRef)
	}
	return &Result{Reference: out.Reference, Status: out.Status}, nil
}

func (g *HTTPGateway) GetPayoutStatus(ctx context.Context, reference string) (*StatusResult, error) {
	var out transactionResp
	if err := g.do(ctx, http.MethodGet, "/api/v1/payouts/"+url.PathEscape(reference), nil, &out); err != nil {
		return nil, err
	}
	if out.Reference == "" {
		out.Reference = reference
	}
	return out.toStatus(), nil
}
