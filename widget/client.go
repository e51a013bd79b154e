package widget

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	hmacext "github.com/alexellis/hmac/v2"
	"github.com/hashicorp/go-retryablehttp"

	"github.com/marcus-crane/tunestatus/utils"
)

const SignatureHeader = "X-TuneStatus-Signature"

// Client sends playback controls to a running tunestatus over its local API.
type Client struct {
	base   string
	secret string
	http   *retryablehttp.Client
}

func NewClient(addr, secret string) *Client {
	base := strings.TrimRight(addr, "/")
	if !strings.HasPrefix(base, "http://") && !strings.HasPrefix(base, "https://") {
		base = "http://" + base
	}
	return &Client{base: base, secret: secret, http: utils.NewHTTPClient(0)}
}

// ControlRequest is the signed body of a control call. The server only acts
// when it names the same command and level as the URL.
type ControlRequest struct {
	Command string `json:"command"`
	Level   *int   `json:"level,omitempty"`
}

func (c *Client) Control(ctx context.Context, command string) error {
	return c.post(ctx, "/api/control/"+command, ControlRequest{Command: command})
}

func (c *Client) Volume(ctx context.Context, level int) error {
	return c.post(ctx, "/api/volume?level="+strconv.Itoa(level), ControlRequest{Command: "volume", Level: &level})
}

func (c *Client) post(ctx context.Context, path string, payload ControlRequest) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, c.base+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.secret != "" {
		req.Header.Set(SignatureHeader, Sign(body, c.secret))
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send %s: %w", payload.Command, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s returned %s", payload.Command, resp.Status)
	}
	return nil
}

// Sign returns the header value the control endpoints expect for body.
func Sign(body []byte, secret string) string {
	return "sha256=" + hex.EncodeToString(hmacext.Sign(body, []byte(secret), sha256.New))
}

// Verify checks a signature header against body.
func Verify(body []byte, signature, secret string) error {
	return hmacext.Validate(body, signature, secret)
}
