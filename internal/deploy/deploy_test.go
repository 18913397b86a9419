package deploy

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const goManifest = `
services:
  - type: web
    name: project-scheduling-backend
    env: go
    plan: free
    buildCommand: go build -o bin/server ./cmd/server
    startCommand: ./bin/server
    envVars:
      - key: GO_VERSION
        value: 1.24.1
      - key: OPENAI_API_KEY
        sync: false
      - key: FRONTEND_URL
        value: https://app.example.com
      - key: SECRET_KEY
        generateValue: true
      - key: HOST
        value: 0.0.0.0
      - key: DEBUG
        value: "False"
    healthCheckPath: /health
    autoDeploy: true
`

const pythonManifest = `
services:
  - type: web
    name: project-scheduling-backend
    env: python
    plan: free
    buildCommand: pip install -r requirements.txt
    startCommand: uvicorn app.main:app --host 0.0.0.0 --port $PORT
    envVars:
      - key: PYTHON_VERSION
        value: 3.11.0
      - key: OPENAI_API_KEY
        sync: false
    healthCheckPath: /health
    autoDeploy: true
`

func repoWith(t *testing.T, files ...string) string {
	t.Helper()
	root := t.TempDir()
	for _, f := range files {
		p := filepath.Join(root, filepath.FromSlash(f))
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte("package main\n"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return root
}

func parse(t *testing.T, src string) Manifest {
	t.Helper()
	m, err := ParseManifest(strings.NewReader(src))
	if err != nil {
		t.Fatal(err)
	}
	return m
}

func TestParseManifest(t *testing.T) {
	m := parse(t, goManifest)
	if len(m.Services) != 1 {
		t.Fatalf("services = %d", len(m.Services))
	}
	s := m.Services[0]
	if s.Language() != "go" || s.HealthCheckPath != "/health" || s.AutoDeploy == nil || !*s.AutoDeploy {
		t.Errorf("service = %+v", s)
	}
	if len(s.EnvVars) != 6 || s.EnvVars[1].Sync == nil || *s.EnvVars[1].Sync {
		t.Errorf("envVars = %+v", s.EnvVars)
	}
	if !s.EnvVars[3].GenerateValue || s.EnvVars[3].Value != "" {
		t.Errorf("SECRET_KEY = %+v", s.EnvVars[3])
	}
	if s.EnvVars[5].Value != "False" {
		t.Errorf("DEBUG = %q", s.EnvVars[5].Value)
	}

	if _, err := ParseManifest(strings.NewReader("services: [")); err == nil {
		t.Error("broken yaml accepted")
	}
}

func TestCheckManifestGo(t *testing.T) {
	root := repoWith(t, "cmd/server/server.go")
	if ps := CheckManifest(parse(t, goManifest), root); len(ps) != 0 {
		t.Errorf("problems = %v", ps)
	}

	tests := []struct {
		name string
		from string
		to   string
		want string
	}{
		{"binary mismatch", "startCommand: ./bin/server", "startCommand: ./bin/api", "startCommand runs"},
		{"missing package", "./cmd/server", "./cmd/worker", "package ./cmd/worker not found"},
		{"no go build", "buildCommand: go build -o bin/server ./cmd/server", "buildCommand: make", "buildCommand has no"},
		{"duplicate env", "key: HOST", "key: FRONTEND_URL", "declared more than once"},
		{"relative health path", "healthCheckPath: /health", "healthCheckPath: health", "must start with /"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := strings.Replace(goManifest, tt.from, tt.to, 1)
			ps := CheckManifest(parse(t, src), root)
			if !HasErrors(ps) {
				t.Fatalf("no errors for %s: %v", tt.name, ps)
			}
			found := false
			for _, p := range ps {
				if strings.Contains(p.Message, tt.want) {
					found = true
				}
			}
			if !found {
				t.Errorf("problems = %v, want %q", ps, tt.want)
			}
		})
	}
}

func TestCheckManifestPython(t *testing.T) {
	ok := repoWith(t, "app/main.py")
	if ps := CheckManifest(parse(t, pythonManifest), ok); HasErrors(ps) {
		t.Errorf("problems = %v", ps)
	}
	missing := repoWith(t, "src/main.py")
	if ps := CheckManifest(parse(t, pythonManifest), missing); !HasErrors(ps) {
		t.Error("missing module not reported")
	}
}

func TestCheckManifestEmpty(t *testing.T) {
	if ps := CheckManifest(Manifest{}, t.TempDir()); !HasErrors(ps) {
		t.Error("empty manifest accepted")
	}
}

func TestGoBuildTarget(t *testing.T) {
	tests := []struct {
		cmd, out, pkg string
		ok            bool
	}{
		{"go build -o bin/server ./cmd/server", "bin/server", "./cmd/server", true},
		{"go mod download && go build -ldflags '-s' -o=app ./cmd/server", "app", "./cmd/server", true},
		{"go build ./...", "", "", false},
		{"pip install -r requirements.txt", "", "", false},
	}
	for _, tt := range tests {
		out, pkg, ok := goBuildTarget(tt.cmd)
		if out != tt.out || pkg != tt.pkg || ok != tt.ok {
			t.Errorf("goBuildTarget(%q) = %q %q %v", tt.cmd, out, pkg, ok)
		}
	}
}

func TestParseEnvFile(t *testing.T) {
	src := strings.Join([]string{
		"# runtime",
		"OPENAI_API_KEY=sk-xxx",
		"DEBUG=False",
		"export HOST=0.0.0.0",
		"PORT=8000",
		"",
		"FRONTEND_URL=http://localhost:3000",
		"PORT=9000",
		"SOMETHING_ELSE=1",
	}, "\n")
	f, err := ParseEnvFile(strings.NewReader(src))
	if err != nil {
		t.Fatal(err)
	}
	if strings.Join(f.Keys, ",") != "OPENAI_API_KEY,DEBUG,HOST,PORT,FRONTEND_URL,SOMETHING_ELSE" {
		t.Errorf("keys = %v", f.Keys)
	}
	if f.Values["DEBUG"] != "False" || f.Values["HOST"] != "0.0.0.0" {
		t.Errorf("values = %v", f.Values)
	}
	if len(f.Duplicates) != 1 || f.Duplicates[0] != "PORT" {
		t.Errorf("duplicates = %v", f.Duplicates)
	}

	ps := CheckEnvFile(f)
	if !HasErrors(ps) {
		t.Error("duplicate PORT not an error")
	}
	warned := false
	for _, p := range ps {
		if p.Severity == SeverityWarning && strings.Contains(p.Where, "SOMETHING_ELSE") {
			warned = true
		}
	}
	if !warned {
		t.Errorf("unknown key not warned: %v", ps)
	}
}

func TestParseEnvFileMultiline(t *testing.T) {
	src := strings.Join([]string{
		"OPENAI_API_KEY=sk-xxx",
		`SECRET_KEY="-----BEGIN KEY-----`,
		"PORT=1",
		"issuer: internal",
		`-----END KEY-----"`,
		"PORT=8000",
		"DATABASE_NAME='single'",
		"HOST=0.0.0.0",
	}, "\n")
	f, err := ParseEnvFile(strings.NewReader(src))
	if err != nil {
		t.Fatal(err)
	}
	if strings.Join(f.Keys, ",") != "OPENAI_API_KEY,SECRET_KEY,PORT,DATABASE_NAME,HOST" {
		t.Errorf("keys = %v", f.Keys)
	}
	if len(f.Duplicates) != 0 {
		t.Errorf("duplicates = %v", f.Duplicates)
	}
	if !strings.Contains(f.Values["SECRET_KEY"], "PORT=1") || f.Values["PORT"] != "8000" {
		t.Errorf("values = %v", f.Values)
	}
	if ps := CheckEnvFile(f); len(ps) != 0 {
		t.Errorf("problems = %v", ps)
	}
}

func TestShippedFiles(t *testing.T) {
	root := filepath.Join("..", "..")

	mf, err := os.Open(filepath.Join(root, "render.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	defer mf.Close()
	m, err := ParseManifest(mf)
	if err != nil {
		t.Fatal(err)
	}
	if ps := CheckManifest(m, root); HasErrors(ps) {
		t.Errorf("render.yaml: %v", ps)
	}
	secret := false
	for _, ev := range m.Services[0].EnvVars {
		if ev.Key == "SECRET_KEY" && ev.GenerateValue {
			secret = true
		}
	}
	if !secret {
		t.Error("render.yaml does not provide SECRET_KEY")
	}

	ef, err := os.Open(filepath.Join(root, ".env.example"))
	if err != nil {
		t.Fatal(err)
	}
	defer ef.Close()
	f, err := ParseEnvFile(ef)
	if err != nil {
		t.Fatal(err)
	}
	if ps := CheckEnvFile(f); len(ps) != 0 {
		t.Errorf(".env.example: %v", ps)
	}
}
