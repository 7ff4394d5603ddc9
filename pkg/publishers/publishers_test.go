package publishers

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeTempFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

const yamlRegistry = `
publishers:
  - id: webhook
    type: http
    http:
      url: https://backoffice.example.com/hooks/news
      headers:
        Authorization: "Bearer token"
  - id: queue
    type: sqs
    enabled: false
    sqs:
      uri: https://sqs.eu-west-1.amazonaws.com/123/news
      region: eu-west-1
`

func TestLoadRegistryYAML(t *testing.T) {
	path := writeTempFile(t, "publishers.yaml", yamlRegistry)

	reg, err := LoadRegistry(path)
	if err != nil {
		t.Fatalf("LoadRegistry: %v", err)
	}

	if got := len(reg.All()); got != 2 {
		t.Fatalf("All() = %d entries", got)
	}

	webhook, ok := reg.ByID("webhook")
	if !ok {
		t.Fatal("webhook not found")
	}
	if webhook.HTTP.Method != "POST" {
		t.Errorf("method = %q, want default POST", webhook.HTTP.Method)
	}
	if webhook.HTTP.TimeoutSeconds != httpDefaultTimeoutSeconds {
		t.Errorf("timeout = %d, want default", webhook.HTTP.TimeoutSeconds)
	}
	if !webhook.EnabledValue() {
		t.Error("enabled should default to true")
	}

	enabled := reg.Enabled()
	if len(enabled) != 1 || enabled[0].ID != "webhook" {
		t.Errorf("Enabled() = %+v", enabled)
	}
}

func TestLoadRegistryJSON(t *testing.T) {
	content := `{"publishers":[{"id":"hook","type":"http","http":{"url":"https://x.example.com"}}]}`
	path := writeTempFile(t, "publishers.json", content)

	reg, err := LoadRegistry(path)
	if err != nil {
		t.Fatalf("LoadRegistry: %v", err)
	}
	if _, ok := reg.ByID("hook"); !ok {
		t.Error("hook not found")
	}
}

func TestLoadRegistryValidation(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			"missing id",
			"publishers:\n  - type: http\n    http:\n      url: https://x.example.com\n",
			"id is required",
		},
		{
			"missing type",
			"publishers:\n  - id: p1\n",
			"type is required",
		},
		{
			"http without url",
			"publishers:\n  - id: p1\n    type: http\n    http:\n      method: POST\n",
			"http.url is required",
		},
		{
			"sqs without region",
			"publishers:\n  - id: p1\n    type: sqs\n    sqs:\n      uri: https://sqs.example.com/q\n",
			"sqs.region is required",
		},
		{
			"sns without topic",
			"publishers:\n  - id: p1\n    type: sns\n    sns:\n      region: eu-west-1\n",
			"sns.topic_arn is required",
		},
		{
			"gcp without project",
			"publishers:\n  - id: p1\n    type: gcp_pubsub\n    gcp:\n      topic: t\n",
			"gcp.project_id is required",
		},
		{
			"duplicate ids",
			"publishers:\n  - id: p1\n    type: http\n    http:\n      url: https://a.example.com\n  - id: p1\n    type: http\n    http:\n      url: https://b.example.com\n",
			"duplicate publisher id",
		},
		{
			"empty list",
			"publishers: []\n",
			"no publishers",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeTempFile(t, "publishers.yaml", tt.content)
			_, err := LoadRegistry(path)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("err = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoadRegistryMissingFile(t *testing.T) {
	if _, err := LoadRegistry(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error")
	}
}
