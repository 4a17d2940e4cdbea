package adapter

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	m "srcverify.dev/pkg/srcverify/internal/model"
)

func TestLocalSourceFSAdapter_ReadFile(t *testing.T) {
	adapter := NewLocalSourceFSAdapter()

	root := t.TempDir()
	path := filepath.Join(root, "a.cs")
	content := "class A\n{\n}\n"
	writeTestFile(t, path, content)

	got, err := adapter.ReadFile(context.Background(), m.Path(path))
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}

	if string(got) != content {
		t.Fatalf("ReadFile() = %q, want %q", string(got), content)
	}
}

func TestLocalSourceFSAdapter_ReadFileMissing(t *testing.T) {
	adapter := NewLocalSourceFSAdapter()

	_, err := adapter.ReadFile(context.Background(), m.Path(filepath.Join(t.TempDir(), "missing.cs")))
	if !os.IsNotExist(err) {
		t.Fatalf("ReadFile() error = %v, want not-exist", err)
	}
}

func TestLocalSourceFSAdapter_ReadFileCancelled(t *testing.T) {
	adapter := NewLocalSourceFSAdapter()

	path := filepath.Join(t.TempDir(), "a.cs")
	writeTestFile(t, path, "class A {}\n")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := adapter.ReadFile(ctx, m.Path(path))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("ReadFile() error = %v, want context.Canceled", err)
	}
}

func TestLocalSourceFSAdapter_FileInfo(t *testing.T) {
	adapter := NewLocalSourceFSAdapter()
	ctx := context.Background()

	root := t.TempDir()
	path := filepath.Join(root, "a.cs")
	writeTestFile(t, path, "class A {}\n")

	info, err := adapter.FileInfo(ctx, m.Path(path))
	if err != nil {
		t.Fatalf("FileInfo() error = %v", err)
	}

	if info.IsDir() {
		t.Fatalf("FileInfo() reported file as directory")
	}

	dirInfo, err := adapter.FileInfo(ctx, m.Path(root))
	if err != nil {
		t.Fatalf("FileInfo() error = %v", err)
	}

	if !dirInfo.IsDir() {
		t.Fatalf("FileInfo() reported directory as file")
	}
}

func TestLocalSourceFSAdapter_PathHelpers(t *testing.T) {
	adapter := NewLocalSourceFSAdapter()
	ctx := context.Background()

	joined := adapter.JoinPath(ctx, "/repo", "src", "a.cs")
	if string(joined) != filepath.Join("/repo", "src", "a.cs") {
		t.Fatalf("JoinPath() = %s, want %s", joined, filepath.Join("/repo", "src", "a.cs"))
	}

	abs, err := adapter.AbsPath(ctx, "/repo/src/../a.cs")
	if err != nil {
		t.Fatalf("AbsPath() error = %v", err)
	}

	if string(abs) != filepath.Clean("/repo/a.cs") {
		t.Fatalf("AbsPath() = %s, want %s", abs, filepath.Clean("/repo/a.cs"))
	}

	rel, err := adapter.AbsPath(ctx, "a.cs")
	if err != nil {
		t.Fatalf("AbsPath() error = %v", err)
	}

	if !filepath.IsAbs(string(rel)) {
		t.Fatalf("AbsPath() = %s, want absolute path", rel)
	}
}

func writeTestFile(t *testing.T, path, contents string) {
	t.Helper()
	writeTestBytes(t, path, []byte(contents))
}

func writeTestBytes(t *testing.T, path string, contents []byte) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("failed to create dir for %s: %v", path, err)
	}

	if err := os.WriteFile(path, contents, 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
}
