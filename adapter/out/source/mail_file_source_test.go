package source

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestFetchMessages(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "mails.json")
	feed := `[
  {"id": "m-1", "subject": "Invoice due", "mail_body_text": "pay", "received_at": "2025-08-27T06:50:00Z"},
  {"subject": "no id, must be dropped"},
  {"id": "m-2", "subject": "hello", "body_preview": "hi"}
]`
	if err := os.WriteFile(path, []byte(feed), 0o600); err != nil {
		t.Fatal(err)
	}

	mails, err := NewFileSource(path).FetchMessages(context.Background(), "")
	if err != nil {
		t.Fatalf("FetchMessages: %v", err)
	}
	if len(mails) != 2 {
		t.Fatalf("len = %d, want 2 (id-less mail dropped)", len(mails))
	}
	if mails[0].ID != "m-1" || mails[1].ID != "m-2" {
		t.Errorf("ids = %s, %s", mails[0].ID, mails[1].ID)
	}
	if mails[1].BestBody() != "hi" {
		t.Errorf("body preview fallback = %q", mails[1].BestBody())
	}
}

func TestFetchMessagesErrors(t *testing.T) {
	if _, err := NewFileSource("/does/not/exist.json").FetchMessages(context.Background(), ""); err == nil {
		t.Error("missing file must error")
	}

	dir := t.TempDir()
	path := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := NewFileSource(path).FetchMessages(context.Background(), ""); err == nil {
		t.Error("malformed feed must error")
	}
}
