package bwboot_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"github.com/basewarphq/bwchat/bwboot"
	"github.com/basewarphq/bwchat/internal/testutil"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

func TestConfigure_Release(t *testing.T) {
	testutil.LambdaEnv(t, "eu-west-1")
	var logs bytes.Buffer

	c, err := bwboot.Configure(context.Background(), bwboot.Options{
		BuildMode: bwboot.BuildRelease,
		Dir:       t.TempDir(),
		LogOutput: &logs,
	})
	if err != nil {
		t.Fatalf("Configure error: %v", err)
	}

	if c.Config == nil || c.Logger == nil || c.KeyValueStore == nil || c.EventBus == nil {
		t.Fatalf("expected all services to be set, got %+v", c)
	}

	kv, ok := c.KeyValueStore.(*dynamodb.Client)
	if !ok {
		t.Fatalf("KeyValueStore is %T, want *dynamodb.Client", c.KeyValueStore)
	}
	if got := kv.Options().Region; got != "eu-west-1" {
		t.Errorf("key-value store region = %q, want %q", got, "eu-west-1")
	}

	bus, ok := c.EventBus.(*eventbridge.Client)
	if !ok {
		t.Fatalf("EventBus is %T, want *eventbridge.Client", c.EventBus)
	}
	if got := bus.Options().Region; got != "eu-west-1" {
		t.Errorf("event bus region = %q, want %q", got, "eu-west-1")
	}

	if !c.Tracing.Enabled() {
		t.Error("expected tracing to stay enabled in a release build")
	}
	if !strings.Contains(logs.String(), "service container configured") {
		t.Errorf("expected startup log line, got %q", logs.String())
	}
}

func TestConfigure_ReleaseDefaultsKeepStdoutJSONLines(t *testing.T) {
	testutil.LambdaEnv(t, "eu-west-1")
	t.Setenv("OTEL_EXPORTER", "")
	t.Setenv("AWS_LAMBDA_FUNCTION_NAME", "")

	out := testutil.CaptureStdout(t, func() {
		c, err := bwboot.Configure(context.Background(), bwboot.Options{
			BuildMode: bwboot.BuildRelease,
			Dir:       t.TempDir(),
		})
		if err != nil {
			t.Errorf("Configure error: %v", err)
			return
		}
		if !c.Tracing.Enabled() {
			t.Error("expected tracing to be enabled")
		}

		ctx, span := c.Tracing.Tracer("test").Start(context.Background(), "op")
		c.Logger.Ctx(ctx).Info("inside span")
		span.End()
		if err := c.Tracing.Shutdown(ctx); err != nil {
			t.Errorf("Shutdown error: %v", err)
		}
	})

	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d stdout lines, want 2 log lines:\n%s", len(lines), out)
	}
	for _, line := range lines {
		var rec map[string]any
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			t.Errorf("stdout line is not a JSON object: %q: %v", line, err)
			continue
		}
		if _, ok := rec["msg"]; !ok {
			t.Errorf("stdout line is not a log record: %q", line)
		}
	}
}

func TestConfigure_DebugDisablesTracing(t *testing.T) {
	testutil.LambdaEnv(t, "us-east-1")

	c, err := bwboot.Configure(context.Background(), bwboot.Options{
		BuildMode: bwboot.BuildDebug,
		Dir:       t.TempDir(),
		LogOutput: &bytes.Buffer{},
	})
	if err != nil {
		t.Fatalf("Configure error: %v", err)
	}
	if c.Tracing.Enabled() {
		t.Error("expected tracing to be disabled in a debug build")
	}
}

func TestConfigure_EnvironmentOverridesSettingsFile(t *testing.T) {
	testutil.LambdaEnv(t, "eu-central-1")
	dir := writeSettings(t, `{"LOG_LEVEL": "Debug", "MainTableName": "chat-main"}`)
	t.Setenv("LOG_LEVEL", "Information")

	c, err := bwboot.Configure(context.Background(), bwboot.Options{Dir: dir, LogOutput: &bytes.Buffer{}})
	if err != nil {
		t.Fatalf("Configure error: %v", err)
	}
	if got := c.Config.Get("LOG_LEVEL"); got != "Information" {
		t.Errorf("LOG_LEVEL = %q, want %q", got, "Information")
	}
	if got := c.Config.Get("MainTableName"); got != "chat-main" {
		t.Errorf("MainTableName = %q, want %q", got, "chat-main")
	}
}

func TestConfigure_Fails(t *testing.T) {
	tests := []struct {
		name     string
		region   string
		settings string
		source   string
	}{
		{"missing region", "", "", bwboot.RegionEnvVar},
		{"unknown region", "mars-north-1", "", bwboot.RegionEnvVar},
		{"malformed settings", "eu-west-1", `{"broken":`, bwboot.SettingsFileName},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			testutil.LambdaEnv(t, tt.region)
			dir := t.TempDir()
			if tt.settings != "" {
				dir = writeSettings(t, tt.settings)
			}

			c, err := bwboot.Configure(context.Background(), bwboot.Options{Dir: dir, LogOutput: &bytes.Buffer{}})
			if c != nil {
				t.Error("expected no container on failure")
			}
			var cerr *bwboot.ConfigurationError
			if !errors.As(err, &cerr) {
				t.Fatalf("expected ConfigurationError, got %v", err)
			}
			if cerr.Source != tt.source {
				t.Errorf("Source = %q, want %q", cerr.Source, tt.source)
			}
		})
	}
}

func TestParseBuildMode(t *testing.T) {
	tests := []struct {
		in   string
		want bwboot.BuildMode
	}{
		{"", bwboot.BuildRelease},
		{"release", bwboot.BuildRelease},
		{"debug", bwboot.BuildDebug},
	}
	for _, tt := range tests {
		got, err := bwboot.ParseBuildMode(tt.in)
		if err != nil {
			t.Errorf("ParseBuildMode(%q) error: %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseBuildMode(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}

	if _, err := bwboot.ParseBuildMode("profiling"); err == nil {
		t.Error("expected error for unknown build mode")
	}
}

func TestContainer_Module(t *testing.T) {
	testutil.LambdaEnv(t, "eu-west-1")

	c, err := bwboot.Configure(context.Background(), bwboot.Options{Dir: t.TempDir(), LogOutput: &bytes.Buffer{}})
	if err != nil {
		t.Fatalf("Configure error: %v", err)
	}

	var (
		kv     bwboot.KeyValueStore
		bus    bwboot.EventBus
		cfg    *bwboot.Config
		logger *bwboot.Logger
		zl     *zap.Logger
		tr     *bwboot.Tracing
	)
	app := fx.New(
		fx.NopLogger,
		c.Module(),
		fx.Populate(&kv, &bus, &cfg, &logger, &zl, &tr),
	)
	if err := app.Err(); err != nil {
		t.Fatalf("fx app error: %v", err)
	}

	ctx := context.Background()
	if err := app.Start(ctx); err != nil {
		t.Fatalf("app.Start error: %v", err)
	}

	if kv != c.KeyValueStore || bus != c.EventBus || cfg != c.Config || logger != c.Logger || tr != c.Tracing {
		t.Error("expected fx to supply the container's instances")
	}
	if zl != c.Logger.Zap() {
		t.Error("expected fx to supply the container's zap logger")
	}

	if err := app.Stop(ctx); err != nil {
		t.Fatalf("app.Stop error: %v", err)
	}
}
