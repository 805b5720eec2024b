package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"image"
	"image/png"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/redis/go-redis/v9"

	"adbuilder/internal/builder"
	"adbuilder/internal/interfaces"
)

type fakePublisher struct {
	channel string
	payload []byte
}

func (f *fakePublisher) Publish(_ context.Context, channel string, message interface{}) *redis.IntCmd {
	f.channel = channel
	f.payload, _ = message.([]byte)
	return redis.NewIntResult(1, nil)
}

func TestRedisNotifierPublishesJSON(t *testing.T) {
	pub := &fakePublisher{}
	n := NewRedisNotifier(pub, "")
	n.now = func() time.Time { return time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC) }

	if err := n.Notify(context.Background(), "Campaign launched"); err != nil {
		t.Fatalf("Notify() error = %v", err)
	}
	if pub.channel != "campaign-launches" {
		t.Fatalf("unexpected channel %q", pub.channel)
	}
	var msg launchMessage
	if err := json.Unmarshal(pub.payload, &msg); err != nil {
		t.Fatalf("invalid payload: %v", err)
	}
	if msg.Type != "campaign.launched" || msg.Message != "Campaign launched" {
		t.Fatalf("unexpected message %+v", msg)
	}
}

type fakeSender struct {
	sent []string
	fail map[string]bool
}

func (f *fakeSender) Send(to, subject, body string) error {
	if f.fail[to] {
		return errors.New("rejected")
	}
	f.sent = append(f.sent, to)
	return nil
}

func TestEmailNotifierTriesEveryRecipient(t *testing.T) {
	sender := &fakeSender{fail: map[string]bool{"bad@example.com": true}}
	n := NewEmailNotifier(sender, []string{"bad@example.com", " ", "ops@example.com"})

	err := n.Notify(context.Background(), "done")
	if err == nil || !strings.Contains(err.Error(), "bad@example.com") {
		t.Fatalf("expected joined error naming the failed recipient, got %v", err)
	}
	if len(sender.sent) != 1 || sender.sent[0] != "ops@example.com" {
		t.Fatalf("unexpected deliveries %v", sender.sent)
	}
}

func TestSMTPMessageHeadersAreOrdered(t *testing.T) {
	s := &SMTPSender{From: "noreply@example.com"}
	msg := string(s.buildMessage("ops@example.com", "Hi", "body"))
	want := "From: noreply@example.com\r\nTo: ops@example.com\r\nSubject: Hi\r\n"
	if !strings.HasPrefix(msg, want) {
		t.Fatalf("unexpected message start %q", msg)
	}
	if !strings.HasSuffix(msg, "\r\n\r\nbody") {
		t.Fatalf("body must follow a blank line, got %q", msg)
	}
}

type errNotifier struct{}

func (errNotifier) Notify(context.Context, string) error { return errors.New("down") }

func TestMultiNotifierContinuesAfterFailure(t *testing.T) {
	pub := &fakePublisher{}
	m := MultiNotifier{errNotifier{}, NewRedisNotifier(pub, "launches")}
	if err := m.Notify(context.Background(), "x"); err == nil {
		t.Fatalf("expected error")
	}
	if pub.channel != "launches" {
		t.Fatalf("second notifier not called")
	}
}

func TestFeedbackCollectorForwardsAndStreams(t *testing.T) {
	next := NewFeedbackCollector(nil)
	c := NewFeedbackCollector(next)
	var streamed []FeedbackEntry
	c.OnEntry(func(e FeedbackEntry) { streamed = append(streamed, e) })

	c.Report(interfaces.FeedbackError, "Launch failed", "boom")

	if len(c.Entries()) != 1 || len(streamed) != 1 || len(next.Entries()) != 1 {
		t.Fatalf("expected one entry everywhere")
	}
	if streamed[0].Kind != interfaces.FeedbackError {
		t.Fatalf("unexpected kind %q", streamed[0].Kind)
	}
}

type fakeUploader struct {
	input *s3.PutObjectInput
	body  []byte
	err   error
}

func (f *fakeUploader) Upload(_ context.Context, in *s3.PutObjectInput, _ ...func(*manager.Uploader)) (*manager.UploadOutput, error) {
	f.input = in
	f.body, _ = io.ReadAll(in.Body)
	return &manager.UploadOutput{}, f.err
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h))); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func TestAssetUploaderDetectsImageSize(t *testing.T) {
	up := &fakeUploader{}
	u := newAssetUploader(up, "bucket", "https://cdn.example/")

	asset, err := u.Upload(context.Background(), "square.png", bytes.NewReader(pngBytes(t, 40, 40)))
	if err != nil {
		t.Fatalf("Upload() error = %v", err)
	}
	if !strings.HasPrefix(asset.ID, "upload-") || asset.Type != builder.AssetTypeImage {
		t.Fatalf("unexpected asset %+v", asset)
	}
	if asset.Width == nil || *asset.Width != 40 || asset.Height == nil || *asset.Height != 40 {
		t.Fatalf("expected 40x40 dimensions, got %v x %v", asset.Width, asset.Height)
	}
	if aws.ToString(up.input.ContentType) != "image/png" || !strings.HasSuffix(aws.ToString(up.input.Key), ".png") {
		t.Fatalf("unexpected put input %+v", up.input)
	}
	if !strings.HasPrefix(asset.Preview, "https://cdn.example/creatives/") {
		t.Fatalf("unexpected preview %q", asset.Preview)
	}
}

func TestAssetUploaderFallsBackToFileType(t *testing.T) {
	u := newAssetUploader(&fakeUploader{}, "bucket", "https://cdn.example")
	asset, err := u.Upload(context.Background(), "notes.txt", strings.NewReader("plain text"))
	if err != nil {
		t.Fatalf("Upload() error = %v", err)
	}
	if asset.Type != builder.AssetTypeFile || asset.Width != nil {
		t.Fatalf("unexpected asset %+v", asset)
	}
}

func TestAssetUploaderReportsS3Failure(t *testing.T) {
	u := newAssetUploader(&fakeUploader{err: errors.New("denied")}, "bucket", "https://cdn.example")
	if _, err := u.Upload(context.Background(), "a.png", bytes.NewReader(pngBytes(t, 1, 1))); err == nil {
		t.Fatalf("expected error")
	}
}

const catalogueYAML = `
templates:
  - id: shared
    name: Evergreen
    default_objective: awareness
  - id: acme-holiday
    tenant_id: adv-1
    name: Holiday
    default_budget: 250
    default_audience:
      locations: [US, CA]
      age_range: {min: 18, max: 35}
      interests: [gifts]
  - id: other
    tenant_id: adv-2
    name: Other tenant
`

func TestYAMLCatalogueFiltersByTenant(t *testing.T) {
	c, err := ParseYAMLCatalogue([]byte(catalogueYAML))
	if err != nil {
		t.Fatalf("ParseYAMLCatalogue() error = %v", err)
	}
	got, _ := c.ListTemplates(context.Background(), "adv-1")
	if len(got) != 2 || got[0].ID != "shared" || got[1].ID != "acme-holiday" {
		t.Fatalf("unexpected templates %+v", got)
	}
	if *got[1].DefaultBudget != 250 || got[1].DefaultAudience.AgeRange.Min != 18 {
		t.Fatalf("defaults not decoded: %+v", got[1])
	}
}

func TestYAMLCatalogueRejectsDuplicateIDs(t *testing.T) {
	_, err := ParseYAMLCatalogue([]byte("templates:\n  - id: a\n  - id: a\n"))
	if err == nil {
		t.Fatalf("expected duplicate id error")
	}
}
