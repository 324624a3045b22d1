package service

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/commwatch/commwatch/internal/domain"
	"github.com/commwatch/commwatch/internal/errors"
	"github.com/commwatch/commwatch/internal/logger"
	"github.com/commwatch/commwatch/internal/mailer"
	"github.com/commwatch/commwatch/internal/middleware/metrics"
	"github.com/commwatch/commwatch/internal/storage/blob"
)

type ForwardService interface {
	Forward(ctx context.Context, id domain.ReportId, groupIds []domain.GroupId, sentBy string) (ForwardResult, error)
}

type ForwardStorage interface {
	Report(id domain.ReportId) (domain.Report, error)
	AppendForwardHistory(id domain.ReportId, entry domain.ForwardEntry) error
}

// ForwardResult reports the outcome of a forward request under the
// best-effort policy: groups that fail are counted, not fatal.
type ForwardResult struct {
	History domain.ForwardHistory
	Sent    int
	Failed  int
}

type Forward struct {
	reports      ForwardStorage
	groups       GroupStorage
	blobs        blob.Store
	mail         mailer.Sender
	attachLimit  int64
	dashboardURL string
	now          func() time.Time
}

func NewForward(reports ForwardStorage, groups GroupStorage, blobs blob.Store, mail mailer.Sender, attachLimit int64, dashboardURL string) *Forward {
	return &Forward{
		reports:      reports,
		groups:       groups,
		blobs:        blobs,
		mail:         mail,
		attachLimit:  attachLimit,
		dashboardURL: dashboardURL,
		now:          time.Now,
	}
}

var errNoGroupsSelected = &errors.ErrorWithStatusCode{Message: "No groups selected", StatusCode: http.StatusBadRequest}

// Forward emails the report to every resolved group. Validation
// failures abort the whole request with no side effects. After that,
// sends run best-effort per group: a failed group is logged and
// skipped, and each successful send appends its history entry
// immediately, so a later failure can never leave a sent mail
// unrecorded.
func (f *Forward) Forward(ctx context.Context, id domain.ReportId, groupIds []domain.GroupId, sentBy string) (ForwardResult, error) {
	report, err := f.reports.Report(id)
	if err != nil {
		return ForwardResult{}, err
	}

	if len(groupIds) == 0 {
		return ForwardResult{}, errNoGroupsSelected
	}
	groups, err := f.groups.GroupsByIds(groupIds)
	if err != nil {
		return ForwardResult{}, err
	}
	if len(groups) == 0 {
		return ForwardResult{}, errNoGroupsSelected
	}

	attachments, evidenceText := f.buildEvidence(ctx, report)
	subject := fmt.Sprintf("New Report: %s - %s", report.ReferenceNumber, report.Type)
	body := f.buildBody(report, evidenceText)

	var result ForwardResult
	for _, group := range groups {
		recipients := group.Recipients()
		if len(recipients) == 0 {
			logger.Log.Warn("email group has no recipients, skipping", "group", group.Name)
			result.Failed++
			continue
		}

		err := f.mail.Send(mailer.Message{
			Recipients:  recipients,
			Subject:     subject,
			Body:        body,
			Attachments: attachments,
		})
		metrics.ForwardSend(err == nil)
		if err != nil {
			logger.Log.Error("failed to send forward mail", "report_id", id, "group", group.Name, "error", err)
			result.Failed++
			continue
		}

		entry := domain.ForwardEntry{To: group.Name, SentAt: f.now().UTC(), SentBy: sentBy}
		if err := f.reports.AppendForwardHistory(id, entry); err != nil {
			// the mail is out; surface the storage failure loudly
			logger.Log.Error("forward sent but history append failed", "report_id", id, "group", group.Name, "error", err)
			return result, err
		}
		result.Sent++
	}

	// Re-fetch so the returned history includes entries appended by
	// concurrent forwards as well.
	updated, err := f.reports.Report(id)
	if err != nil {
		logger.Log.Error("failed to re-fetch report after forward", "report_id", id, "error", err)
		return result, err
	}
	result.History = updated.ForwardHistory

	return result, nil
}

// buildEvidence decides between inline attachments and download links.
// Files are attached only when their total size fits the configured
// limit; otherwise (or when a file cannot be read) the mail carries
// direct download links instead.
func (f *Forward) buildEvidence(ctx context.Context, report domain.Report) ([]mailer.Attachment, string) {
	if len(report.Evidence) == 0 {
		return nil, "See attached files."
	}

	attachments := make([]mailer.Attachment, 0, len(report.Evidence))
	var total int64
	linkMode := false

	for _, name := range report.Evidence {
		rc, size, err := f.blobs.Open(ctx, name)
		if err != nil {
			logger.Log.Warn("failed to open evidence file, falling back to links", "file", name, "error", err)
			linkMode = true
			break
		}

		total += size
		if total > f.attachLimit {
			rc.Close()
			linkMode = true
			break
		}

		content, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			logger.Log.Warn("failed to read evidence file, falling back to links", "file", name, "error", err)
			linkMode = true
			break
		}
		attachments = append(attachments, mailer.Attachment{Filename: name, Content: content})
	}

	if !linkMode {
		return attachments, "See attached files."
	}

	text := "Evidence files are too large to attach. Download them here:\n"
	for _, name := range report.Evidence {
		url, err := f.blobs.URL(ctx, name)
		if err != nil {
			logger.Log.Warn("failed to build evidence link", "file", name, "error", err)
			continue
		}
		text += fmt.Sprintf("- %s\n", url)
	}
	return nil, text
}

func (f *Forward) buildBody(report domain.Report, evidenceText string) string {
	return fmt.Sprintf(`New Community Watch Report Received.

Reference: %s
Type: %s
Location: %s
Date/Time: %s at %s

Description:
%s

Evidence:
%s

View full report on Dashboard: %s`,
		report.ReferenceNumber, report.Type, report.Location,
		report.Date, report.Time, report.Description,
		evidenceText, f.dashboardURL)
}
