package ingestion

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	gmail "google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
)

// Attachment is one résumé file pulled from a mailbox, kept in memory only.
type Attachment struct {
	Filename string
	Data     []byte
}

// GmailFetcher pulls résumé attachments from a Gmail mailbox so a batch
// scoring run can be fed straight from an inbox. It requires a previously
// authorized OAuth token on disk; there is no interactive consent flow here.
type GmailFetcher struct {
	service *gmail.Service
	logger  *zap.Logger
}

// NewGmailFetcher builds a fetcher from an OAuth client-credentials file and
// a stored token file.
func NewGmailFetcher(ctx context.Context, credentialsPath, tokenPath string, logger *zap.Logger) (*GmailFetcher, error) {
	creds, err := os.ReadFile(credentialsPath)
	if err != nil {
		return nil, fmt.Errorf("read gmail credentials: %w", err)
	}

	config, err := google.ConfigFromJSON(creds, gmail.GmailReadonlyScope)
	if err != nil {
		return nil, fmt.Errorf("parse gmail credentials: %w", err)
	}

	token, err := tokenFromFile(tokenPath)
	if err != nil {
		return nil, fmt.Errorf("load gmail token (authorize the app first): %w", err)
	}

	service, err := gmail.NewService(ctx, option.WithHTTPClient(config.Client(ctx, token)))
	if err != nil {
		return nil, fmt.Errorf("create gmail service: %w", err)
	}

	return &GmailFetcher{service: service, logger: logger}, nil
}

func tokenFromFile(path string) (*oauth2.Token, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	token := &oauth2.Token{}
	if err := json.NewDecoder(f).Decode(token); err != nil {
		return nil, err
	}
	return token, nil
}

// FetchAttachments returns the supported attachments of every message whose
// subject matches the given filter. Messages or attachments that cannot be
// fetched are logged and skipped; they never abort the whole fetch.
func (g *GmailFetcher) FetchAttachments(ctx context.Context, subject string) ([]Attachment, error) {
	const user = "me"

	query := fmt.Sprintf("subject:%s has:attachment", subject)
	list, err := g.service.Users.Messages.List(user).Q(query).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("list gmail messages: %w", err)
	}
	if len(list.Messages) == 0 {
		return nil, fmt.Errorf("no messages found with subject %q", subject)
	}

	var attachments []Attachment
	for _, ref := range list.Messages {
		msg, err := g.service.Users.Messages.Get(user, ref.Id).Context(ctx).Do()
		if err != nil {
			g.logger.Warn("skipping unreadable message", zap.String("message_id", ref.Id), zap.Error(err))
			continue
		}

		for _, part := range msg.Payload.Parts {
			if part.Filename == "" || part.Body == nil || part.Body.AttachmentId == "" {
				continue
			}
			if !supportedExtension(part.Filename) {
				g.logger.Debug("skipping unsupported attachment", zap.String("filename", part.Filename))
				continue
			}

			body, err := g.service.Users.Messages.Attachments.Get(user, ref.Id, part.Body.AttachmentId).Context(ctx).Do()
			if err != nil {
				g.logger.Warn("skipping unreadable attachment",
					zap.String("message_id", ref.Id),
					zap.String("filename", part.Filename),
					zap.Error(err),
				)
				continue
			}

			data, err := base64.URLEncoding.DecodeString(body.Data)
			if err != nil {
				g.logger.Warn("skipping undecodable attachment", zap.String("filename", part.Filename), zap.Error(err))
				continue
			}

			attachments = append(attachments, Attachment{Filename: part.Filename, Data: data})
		}
	}

	if len(attachments) == 0 {
		return nil, fmt.Errorf("messages with subject %q carry no supported attachments", subject)
	}

	g.logger.Info("fetched gmail attachments", zap.String("subject", subject), zap.Int("count", len(attachments)))
	return attachments, nil
}

func supportedExtension(filename string) bool {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf", ".docx":
		return true
	}
	return false
}
