// Package testutil holds helpers shared by package tests.
package testutil

import (
	"io"
	"os"
	"path/filepath"
	"testing"
)

// WriteFiles creates a temporary directory holding the given files and returns it.
func WriteFiles(tb testing.TB, files map[string]string) string {
	tb.Helper()

	root := tb.TempDir()
	for relPath, content := range files {
		fullPath := filepath.Join(root, relPath)
		if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
			tb.Fatalf("creating directory for %s: %v", relPath, err)
		}
		if err := os.WriteFile(fullPath, []byte(content), 0o600); err != nil {
			tb.Fatalf("writing file %s: %v", fullPath, err)
		}
	}
	return root
}

// LambdaEnv sets the variables the Lambda runtime would provide, with static
// credentials so the AWS SDK never looks further. An empty region leaves
// AWS_REGION set but empty.
func LambdaEnv(tb testing.TB, region string) {
	tb.Helper()

	tb.Setenv("AWS_REGION", region)
	tb.Setenv("AWS_ACCESS_KEY_ID", "test")
	tb.Setenv("AWS_SECRET_ACCESS_KEY", "test")
	tb.Setenv("AWS_EC2_METADATA_DISABLED", "true")
	tb.Setenv("OTEL_EXPORTER", "stdout")
	tb.Setenv("SERVICE_NAME", "bwchat-test")
}

// CaptureStdout runs fn with os.Stdout redirected to a pipe and returns what was written.
func CaptureStdout(tb testing.TB, fn func()) []byte {
	tb.Helper()

	r, w, err := os.Pipe()
	if err != nil {
		tb.Fatalf("creating pipe: %v", err)
	}
	orig := os.Stdout
	os.Stdout = w
	defer func() { os.Stdout = orig }()

	done := make(chan []byte)
	go func() {
		b, _ := io.ReadAll(r)
		done <- b
	}()

	fn()

	os.Stdout = orig
	if err := w.Close(); err != nil {
		tb.Fatalf("closing pipe: %v", err)
	}
	return <-done
}
