package gemini

import (
	"context"
	"crypto/tls"
	"errors"
	"net/http"
	"strings"
	"time"

	"google.golang.org/genai"
)

type Client struct {
	c     *genai.Client
	model string
}

func New(ctx context.Context, apiKey, model string, timeout time.Duration) (*Client, error) {
	tr := &http.Transport{
		Proxy:             http.ProxyFromEnvironment,
		TLSClientConfig:   &tls.Config{MinVersion: tls.VersionTLS12},
		ForceAttemptHTTP2: false,
		MaxIdleConns:      100,
		IdleConnTimeout:   90 * time.Second,
	}
	hc := &http.Client{Transport: tr, Timeout: timeout}
	cl, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:     apiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: hc,
		HTTPOptions: genai.HTTPOptions{
			APIVersion: "v1",
			Timeout:    &timeout,
		},
	})
	if err != nil {
		return nil, err
	}
	return &Client{c: cl, model: model}, nil
}

func (g *Client) Complete(ctx context.Context, prompt string) (string, error) {
	temp := float32(0.7)
	resp, err := g.c.Models.GenerateContent(ctx, g.model, genai.Text(prompt), &genai.GenerateContentConfig{
		Temperature: &temp,
	})
	if err != nil {
		return "", err
	}
	return textOf(resp)
}

func textOf(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil {
		return "", errors.New("gemini: nil response")
	}
	var b strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, p := range cand.Content.Parts {
			if p.Text != "" && !p.Thought {
				b.WriteString(p.Text)
			}
		}
		if b.Len() > 0 {
			break
		}
	}
	return b.String(), nil
}
