package predict

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strconv"
	"strings"
	"time"

	"github.com/abhisek/carescope/internal/imaging"
	"github.com/abhisek/carescope/internal/store"
)

// BrainResult is the scan classifier's answer.
type BrainResult struct {
	// Result is "No Tumor" or "Tumor: <Type>".
	Result string `json:"result"`
	// Confidence is formatted by the server, e.g. "97.31%".
	Confidence  string `json:"confidence"`
	FilePath    string `json:"file_path"`
	Explanation string `json:"explanation"`
}

// TumorDetected reports whether the scan was classified as a tumor.
func (r BrainResult) TumorDetected() bool {
	return strings.HasPrefix(r.Result, "Tumor:")
}

// TumorType returns the type after "Tumor: ", or "".
func (r BrainResult) TumorType() string {
	_, t, ok := strings.Cut(r.Result, ": ")
	if !ok {
		return ""
	}
	return t
}

// ConfidenceValue parses Confidence into [0, 1].
func (r BrainResult) ConfidenceValue() (float64, error) {
	s := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(r.Confidence), "%"))
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("confidence %q: %w", r.Confidence, err)
	}
	return v / 100, nil
}

// ClassifyBrainScan uploads an image as multipart field "file" to /.
func (c *Client) ClassifyBrainScan(ctx context.Context, up imaging.Upload) (*BrainResult, error) {
	started := time.Now()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, up.Filename))
	h.Set("Content-Type", up.ContentType)
	part, err := mw.CreatePart(h)
	if err != nil {
		return nil, err
	}
	if _, err := part.Write(up.Data); err != nil {
		return nil, err
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	raw, err := c.do(ctx, call{
		service:     ServiceBrain,
		method:      http.MethodPost,
		path:        "/",
		contentType: mw.FormDataContentType(),
		body:        buf.Bytes(),
		schema:      schemaBrain,
	})
	var res BrainResult
	if err == nil {
		if uerr := json.Unmarshal(raw, &res); uerr != nil {
			err = &DecodeError{Service: ServiceBrain, Body: raw, Err: uerr}
		}
	}

	summary := ""
	if err == nil {
		summary = fmt.Sprintf("%s (%s)", res.Result, res.Confidence)
	}
	c.record(ctx, store.KindBrainScan, []byte(up.Filename), raw, summary, started, err)

	if err != nil {
		return nil, err
	}
	return &res, nil
}
