package disk

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stylesense/stylesense-backend/pkg/config"
)

func testClient(t *testing.T) *Client {
	t.Helper()
	client, err := NewClient(context.Background(), config.UploadConfig{Dir: t.TempDir()}, nil)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return client
}

func TestSaveAndOpen(t *testing.T) {
	client := testClient(t)

	name, err := client.Save(context.Background(), strings.NewReader("jpeg-bytes"), "JPG")
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if !strings.HasSuffix(name, ".jpg") {
		t.Fatalf("expected lowercased extension got %q", name)
	}
	if filepath.Base(name) != name {
		t.Fatalf("expected a bare filename got %q", name)
	}

	data, err := client.Open(context.Background(), name)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if string(data) != "jpeg-bytes" {
		t.Fatalf("unexpected contents %q", data)
	}
}

func TestSaveGeneratesUniqueNames(t *testing.T) {
	client := testClient(t)

	first, err := client.Save(context.Background(), strings.NewReader("a"), "png")
	if err != nil {
		t.Fatalf("save first: %v", err)
	}
	second, err := client.Save(context.Background(), strings.NewReader("b"), "png")
	if err != nil {
		t.Fatalf("save second: %v", err)
	}
	if first == second {
		t.Fatalf("expected distinct names got %q twice", first)
	}
}

func TestDeleteMissingBlobIsNoError(t *testing.T) {
	client := testClient(t)
	if err := client.Delete(context.Background(), "never-stored.jpg"); err != nil {
		t.Fatalf("delete missing blob: %v", err)
	}
}

func TestDeleteRemovesBlob(t *testing.T) {
	client := testClient(t)

	name, err := client.Save(context.Background(), strings.NewReader("x"), "jpg")
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := client.Delete(context.Background(), name); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := client.Open(context.Background(), name); err == nil {
		t.Fatal("expected open to fail after delete")
	}
}

func TestPathRejectsTraversal(t *testing.T) {
	client := testClient(t)

	for _, name := range []string{"../escape.jpg", "a/b.jpg", "", ".", " "} {
		if _, err := client.Open(context.Background(), name); err == nil {
			t.Fatalf("expected %q to be rejected", name)
		}
		if err := client.Delete(context.Background(), name); err == nil {
			t.Fatalf("expected delete of %q to be rejected", name)
		}
	}
}

func TestNewClientRequiresDir(t *testing.T) {
	if _, err := NewClient(context.Background(), config.UploadConfig{}, nil); err == nil {
		t.Fatal("expected error for empty directory")
	}
}
