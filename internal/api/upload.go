package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"

	dErrors "cockpit/pkg/domain-errors"
)

// UploadFile describes one file in an upload request.
type UploadFile struct {
	Field    string
	Name     string
	Content  io.Reader
	Metadata map[string]string
}

// ProgressFunc receives upload progress as bytes sent against the total
// multipart body size.
type ProgressFunc func(sent, total int64)

// BatchResult reports the outcome for one file of a batch upload, indexed by
// the file's position in the input slice.
type BatchResult struct {
	Index int
	Data  json.RawMessage
	Err   error
}

// Upload sends a single file as multipart form data. Uploads are not retried:
// the request body is consumed by the first attempt and partial server-side
// writes are not safe to repeat blindly.
func (c *Client) Upload(ctx context.Context, path string, file UploadFile, progress ProgressFunc, opts ...RequestOption) (json.RawMessage, error) {
	var ro requestOptions
	for _, opt := range opts {
		opt(&ro)
	}

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile(file.Field, file.Name)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "creating multipart part")
	}
	if _, err := io.Copy(part, file.Content); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInvalidInput, "reading upload content")
	}
	for k, v := range file.Metadata {
		if err := writer.WriteField(k, v); err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "writing multipart field")
		}
	}
	if err := writer.Close(); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "finalizing multipart body")
	}

	total := int64(buf.Len())
	body := &progressReader{r: &buf, total: total, progress: progress}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, body)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInvalidInput, "building upload request")
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.ContentLength = total
	if ro.tenantID != "" {
		req.Header.Set(HeaderTenantID, ro.tenantID)
	}
	if ro.projectID != "" {
		req.Header.Set(HeaderProjectID, ro.projectID)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		code := Classify(err, 0)
		c.countUpload(false)
		return nil, dErrors.Wrap(err, code, "upload transport failure")
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		c.countUpload(false)
		return nil, dErrors.Wrap(err, dErrors.CodeNetwork, "reading upload response")
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		code := Classify(nil, resp.StatusCode)
		msg := errorMessage(raw)
		if msg == "" {
			msg = "upload failed"
		}
		c.countUpload(false)
		return nil, dErrors.New(code, msg)
	}

	data, _, decErr := decodeEnvelope(raw)
	if decErr != nil {
		c.countUpload(false)
		return nil, decErr
	}
	c.countUpload(true)
	return data, nil
}

// UploadBatch uploads files strictly sequentially so progress and partial
// failures stay attributable to a single file index. A failed file does not
// stop the batch; its result carries the error.
func (c *Client) UploadBatch(ctx context.Context, path string, files []UploadFile, progress func(index int, sent, total int64), opts ...RequestOption) []BatchResult {
	results := make([]BatchResult, 0, len(files))
	for i, file := range files {
		var perFile ProgressFunc
		if progress != nil {
			idx := i
			perFile = func(sent, total int64) { progress(idx, sent, total) }
		}
		data, err := c.Upload(ctx, path, file, perFile, opts...)
		results = append(results, BatchResult{Index: i, Data: data, Err: err})
	}
	return results
}

func (c *Client) countUpload(ok bool) {
	if c.metrics == nil {
		return
	}
	if ok {
		c.metrics.UploadsProcessed.Inc()
	} else {
		c.metrics.UploadFailures.Inc()
	}
}

// progressReader reports cumulative bytes read from the multipart body.
type progressReader struct {
	r        io.Reader
	sent     int64
	total    int64
	progress ProgressFunc
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	if n > 0 {
		p.sent += int64(n)
		if p.progress != nil {
			p.progress(p.sent, p.total)
		}
	}
	return n, err
}
