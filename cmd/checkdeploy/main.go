// Command checkdeploy validates the environment file and render.yaml before a deploy.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/steveyiyo/project-scheduling-backend/internal/deploy"
)

func main() {
	root := flag.String("root", ".", "repository root")
	manifest := flag.String("manifest", "render.yaml", "deployment manifest")
	envFile := flag.String("env", ".env.example", "environment file")
	flag.Parse()

	var problems []deploy.Problem

	mf, err := os.Open(*manifest)
	if err != nil {
		fatal(err)
	}
	m, err := deploy.ParseManifest(mf)
	mf.Close()
	if err != nil {
		fatal(err)
	}
	problems = append(problems, deploy.CheckManifest(m, *root)...)

	ef, err := os.Open(*envFile)
	if err != nil {
		fatal(err)
	}
	f, err := deploy.ParseEnvFile(ef)
	ef.Close()
	if err != nil {
		fatal(err)
	}
	problems = append(problems, deploy.CheckEnvFile(f)...)

	for _, p := range problems {
		fmt.Println(p)
	}
	if deploy.HasErrors(problems) {
		os.Exit(1)
	}
	fmt.Printf("ok: %d service(s), %d env key(s)\n", len(m.Services), len(f.Keys))
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, "checkdeploy:", err)
	os.Exit(1)
}
