package deploy

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/steveyiyo/project-scheduling-backend/internal/config"
)

type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

type Problem struct {
	Severity Severity
	Where    string
	Message  string
}

func (p Problem) String() string {
	return fmt.Sprintf("%s: %s: %s", p.Severity, p.Where, p.Message)
}

func HasErrors(ps []Problem) bool {
	for _, p := range ps {
		if p.Severity == SeverityError {
			return true
		}
	}
	return false
}

// platformKeys are read by the hosting platform, not by the service.
var platformKeys = map[string]bool{
	"GO_VERSION":     true,
	"PYTHON_VERSION": true,
}

func knownKey(k string) bool {
	if platformKeys[k] {
		return true
	}
	for _, c := range config.Keys {
		if c == k {
			return true
		}
	}
	return false
}

func CheckEnvFile(f EnvFile) []Problem {
	var ps []Problem
	for _, k := range f.Duplicates {
		ps = append(ps, Problem{SeverityError, "env " + k, "declared more than once"})
	}
	for _, k := range f.Keys {
		if !knownKey(k) {
			ps = append(ps, Problem{SeverityWarning, "env " + k, "not read by the service"})
		}
	}
	return ps
}

// CheckManifest validates every service of m against the repository rooted at root.
func CheckManifest(m Manifest, root string) []Problem {
	if len(m.Services) == 0 {
		return []Problem{{SeverityError, "manifest", "no services declared"}}
	}
	var ps []Problem
	names := map[string]bool{}
	for i, s := range m.Services {
		where := fmt.Sprintf("services[%d]", i)
		if s.Name == "" {
			ps = append(ps, Problem{SeverityError, where, "name is required"})
		} else {
			where = "service " + s.Name
			if names[s.Name] {
				ps = append(ps, Problem{SeverityError, where, "duplicate service name"})
			}
			names[s.Name] = true
		}
		ps = append(ps, checkService(s, where, root)...)
	}
	return ps
}

func checkService(s Service, where, root string) []Problem {
	var ps []Problem
	add := func(sev Severity, format string, args ...any) {
		ps = append(ps, Problem{sev, where, fmt.Sprintf(format, args...)})
	}

	if s.Type == "web" && s.HealthCheckPath == "" {
		add(SeverityWarning, "web service has no healthCheckPath")
	}
	if s.HealthCheckPath != "" && !strings.HasPrefix(s.HealthCheckPath, "/") {
		add(SeverityError, "healthCheckPath %q must start with /", s.HealthCheckPath)
	}

	seen := map[string]bool{}
	for _, ev := range s.EnvVars {
		if ev.Key == "" {
			add(SeverityError, "envVars entry without key")
			continue
		}
		if seen[ev.Key] {
			add(SeverityError, "envVars key %s declared more than once", ev.Key)
		}
		seen[ev.Key] = true
		if ev.Sync != nil && !*ev.Sync && ev.Value != "" {
			add(SeverityWarning, "envVars key %s has a value but sync: false", ev.Key)
		}
		if ev.GenerateValue && ev.Value != "" {
			add(SeverityWarning, "envVars key %s has a value but generateValue: true", ev.Key)
		}
	}

	if strings.TrimSpace(s.StartCommand) == "" {
		add(SeverityError, "startCommand is required")
		return ps
	}
	switch s.Language() {
	case "go":
		ps = append(ps, checkGoEntry(s, where, root)...)
	case "python":
		ps = append(ps, checkPythonEntry(s, where, root)...)
	default:
		add(SeverityWarning, "cannot verify startCommand for env %q", s.Language())
	}
	return ps
}

// checkGoEntry requires the build to produce the binary the start command runs,
// from a package directory present under root.
func checkGoEntry(s Service, where, root string) []Problem {
	var ps []Problem
	out, pkg, ok := goBuildTarget(s.BuildCommand)
	if !ok {
		return []Problem{{SeverityError, where, "buildCommand has no `go build -o <binary> <package>`"}}
	}
	start := strings.Fields(s.StartCommand)[0]
	if path.Clean(start) != path.Clean(out) {
		ps = append(ps, Problem{SeverityError, where, fmt.Sprintf("startCommand runs %s but buildCommand produces %s", start, out)})
	}
	if !hasGoFiles(filepath.Join(root, filepath.FromSlash(pkg))) {
		ps = append(ps, Problem{SeverityError, where, fmt.Sprintf("package %s not found under %s", pkg, root)})
	}
	return ps
}

func goBuildTarget(cmd string) (out, pkg string, ok bool) {
	for _, part := range strings.Split(cmd, "&&") {
		f := strings.Fields(part)
		if len(f) < 2 || f[0] != "go" || f[1] != "build" {
			continue
		}
		for i := 2; i < len(f); i++ {
			switch {
			case f[i] == "-o" && i+1 < len(f):
				out = f[i+1]
				i++
			case strings.HasPrefix(f[i], "-o="):
				out = strings.TrimPrefix(f[i], "-o=")
			case strings.HasPrefix(f[i], "-"):
				if f[i] == "-tags" || f[i] == "-ldflags" || f[i] == "-gcflags" {
					i++
				}
			default:
				pkg = f[i]
			}
		}
		if out != "" && pkg != "" {
			return out, pkg, true
		}
	}
	return "", "", false
}

func hasGoFiles(dir string) bool {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return false
	}
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".go") && !strings.HasSuffix(e.Name(), "_test.go") {
			return true
		}
	}
	return false
}

// checkPythonEntry resolves "uvicorn pkg.module:app" to pkg/module.py under root.
func checkPythonEntry(s Service, where, root string) []Problem {
	f := strings.Fields(s.StartCommand)
	if len(f) < 2 || f[0] != "uvicorn" {
		return []Problem{{SeverityWarning, where, "startCommand is not a uvicorn invocation"}}
	}
	var ps []Problem
	target := f[1]
	mod, _, found := strings.Cut(target, ":")
	if !found {
		ps = append(ps, Problem{SeverityError, where, fmt.Sprintf("uvicorn target %q lacks :attribute", target)})
	}
	file := filepath.Join(root, filepath.FromSlash(strings.ReplaceAll(mod, ".", "/"))+".py")
	if _, err := os.Stat(file); err != nil {
		ps = append(ps, Problem{SeverityError, where, fmt.Sprintf("module %s not found at %s", mod, file)})
	}
	if !strings.Contains(s.StartCommand, "$PORT") {
		ps = append(ps, Problem{SeverityWarning, where, "startCommand does not bind $PORT"})
	}
	return ps
}
