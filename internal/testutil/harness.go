package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vk/buildmerge/internal/app"
	"github.com/vk/buildmerge/internal/hcl"
)

// HarnessResult holds the outcome of one end-to-end analysis run.
type HarnessResult struct {
	LogOutput string
	Report    map[string]any
	Err       error
	App       *app.App
}

// RunAnalysisTest writes the given manifest files (relative paths under a
// fresh temp root) and runs the full app over them: load, graph build,
// concurrent analysis, report. Startup panics surface as errors.
func RunAnalysisTest(t *testing.T, files map[string]string) *HarnessResult {
	t.Helper()

	tmpDir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(tmpDir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}

	cfg, err := app.NewConfig(app.Config{
		ManifestPath: tmpDir,
		DerivedRoot:  "out",
		SDKRoot:      "/sdk",
		LogLevel:     "debug",
		LogFormat:    "text",
		WorkerCount:  4,
	})
	require.NoError(t, err)

	logBuffer := &SafeBuffer{}
	var reportBuffer bytes.Buffer

	var testApp *app.App
	var panicErr any
	func() {
		defer func() {
			panicErr = recover()
		}()
		testApp = app.NewApp(logBuffer, cfg, hcl.NewLoader())
	}()
	if panicErr != nil {
		return &HarnessResult{
			LogOutput: logBuffer.String(),
			Err:       fmt.Errorf("application startup panicked | %v", panicErr),
		}
	}

	runErr := testApp.Run(context.Background(), &reportBuffer)

	result := &HarnessResult{
		LogOutput: logBuffer.String(),
		Err:       runErr,
		App:       testApp,
	}
	if runErr == nil {
		result.Report = decodeReport(t, reportBuffer.Bytes())
	}
	return result
}

// decodeReport indexes the JSON report by target ID for convenient lookup.
func decodeReport(t *testing.T, raw []byte) map[string]any {
	t.Helper()

	var doc struct {
		Targets []map[string]any `json:"targets"`
	}
	require.NoError(t, json.Unmarshal(raw, &doc))

	out := make(map[string]any, len(doc.Targets))
	for _, tr := range doc.Targets {
		id, _ := tr["id"].(string)
		out[id] = tr
	}
	return out
}
