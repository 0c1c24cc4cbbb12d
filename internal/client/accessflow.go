package client

import (
	"context"

	"github.com/docvault/docvault/internal/accessflow"
)

// FlowAdapter implements accessflow.Client on top of LinkClient
type FlowAdapter struct {
	client *LinkClient
}

// NewFlowAdapter wraps a LinkClient for use with accessflow.Flow
func NewFlowAdapter(client *LinkClient) *FlowAdapter {
	return &FlowAdapter{client: client}
}

// FetchMeta implements accessflow.Client
func (a *FlowAdapter) FetchMeta(ctx context.Context, token string) (*accessflow.LinkMeta, error) {
	meta, err := a.client.GetLinkMeta(ctx, token)
	if err != nil {
		return nil, err
	}

	out := &accessflow.LinkMeta{
		IsPasswordProtected: meta.IsPasswordProtected,
		VisitorFields:       meta.VisitorFields,
	}
	if meta.File != nil {
		out.File = toFlowFile(meta.File)
	}

	return out, nil
}

// SubmitAccess implements accessflow.Client
func (a *FlowAdapter) SubmitAccess(ctx context.Context, token string, req accessflow.AccessRequest) (*accessflow.SignedFile, error) {
	visitorInfo := map[string]interface{}{}
	if req.FirstName != "" {
		visitorInfo["firstName"] = req.FirstName
	}
	if req.LastName != "" {
		visitorInfo["lastName"] = req.LastName
	}
	if req.Email != "" {
		visitorInfo["email"] = req.Email
	}
	for k, v := range req.Metadata {
		visitorInfo[k] = v
	}

	file, err := a.client.RequestAccess(ctx, token, req.Password, visitorInfo)
	if err != nil {
		return nil, err
	}

	return toFlowFile(file), nil
}

func toFlowFile(f *File) *accessflow.SignedFile {
	return &accessflow.SignedFile{
		SignedURL:  f.SignedURL,
		FileName:   f.FileName,
		Size:       f.Size,
		FileType:   f.FileType,
		DocumentID: f.DocumentID,
	}
}
