package sdk

import (
	"context"
	"encoding/base64"
	"fmt"
	"io/ioutil"

	"github.com/cavaliercoder/grab"
	"github.com/pkg/errors"
)

// Attachment represents a file attached to an entry
type Attachment struct {
	ID        string `json:"id"`
	EntryID   string `json:"entry_id"`
	Filename  string `json:"filename"`
	SizeBytes int64  `json:"size_bytes"`
	URL       string `json:"url"`
}

// UploadAttachment attaches a local file to an entry. The backend expects the
// content base64-encoded inside the JSON envelope.
func (p *Plume) UploadAttachment(ctx context.Context, entryID string, filename string, localPath string) (*Attachment, error) {
	content, e := ioutil.ReadFile(localPath)
	if e != nil {
		return nil, fmt.Errorf("could not read attachment file '%s': %s", localPath, e)
	}

	requestBody := map[string]string{
		"filename": filename,
		"content":  base64.StdEncoding.EncodeToString(content),
	}

	var attachment Attachment
	e = p.client.Post(ctx, "/v1/entries/"+entryID+"/attachments", nil, requestBody, &attachment)
	if e != nil {
		return nil, errors.Wrapf(e, "error uploading attachment to entry '%s'", entryID)
	}
	return &attachment, nil
}

// DownloadAttachment fetches an attachment's content to destDir, resuming a
// partial download when the backend supports range requests. It returns the
// path of the downloaded file.
func (p *Plume) DownloadAttachment(ctx context.Context, attachment Attachment, destDir string) (string, error) {
	if attachment.URL == "" {
		return "", fmt.Errorf("attachment '%s' has no download URL", attachment.ID)
	}

	req, e := grab.NewRequest(destDir, attachment.URL)
	if e != nil {
		return "", fmt.Errorf("could not create download request for attachment '%s': %s", attachment.ID, e)
	}
	if ctx != nil {
		req = req.WithContext(ctx)
	}

	resp := grab.NewClient().Do(req)
	if e := resp.Err(); e != nil {
		return "", errors.Wrapf(e, "error downloading attachment '%s'", attachment.ID)
	}

	p.l.Infof("downloaded attachment '%s' (%d bytes) to %s\n", attachment.ID, resp.BytesComplete(), resp.Filename)
	return resp.Filename, nil
}
